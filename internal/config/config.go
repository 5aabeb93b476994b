// Package config loads the draftbot configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
)

// Config represents the application configuration.
type Config struct {
	// Scoring and land optimizer settings
	Engine EngineConfig `toml:"engine"`

	// Deck builder slot counts and clustering constants
	Deck DeckConfig `toml:"deck"`

	// Logging configuration
	Log LogConfig `toml:"log"`

	// SQLite storage configuration
	Storage StorageConfig `toml:"storage"`
}

// EngineConfig contains scoring settings.
type EngineConfig struct {
	Seed              uint64 `toml:"seed"`                // Optimizer seed
	RandomizeSeed     bool   `toml:"randomize_seed"`      // Draw a fresh seed per evaluation
	MaxOptimizerSteps int    `toml:"max_optimizer_steps"` // Cap on accepted land swaps
	Concurrency       int    `toml:"concurrency"`         // Parallel candidate scoring (0 = GOMAXPROCS)
	LandBudget        int    `toml:"land_budget"`         // Lands per configuration
}

// DeckConfig contains deck builder settings.
type DeckConfig struct {
	NonlandSlots     int     `toml:"nonland_slots"`
	LandSlots        int     `toml:"land_slots"`
	InColorThreshold float64 `toml:"in_color_threshold"` // Minimum casting probability to count as in color
	KernelCount      int     `toml:"kernel_count"`
	KernelBudget     int     `toml:"kernel_budget"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Debug  bool   `toml:"debug"`  // Enable debug logging
	Format string `toml:"format"` // "console" or "json"
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path string `toml:"path"` // Path to the SQLite database
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	engine := draft.DefaultEngineConfig()
	deck := draft.DefaultDeckBuilderConfig()
	return &Config{
		Engine: EngineConfig{
			Seed:              engine.Seed,
			RandomizeSeed:     engine.RandomizeSeed,
			MaxOptimizerSteps: engine.MaxOptimizerSteps,
			Concurrency:       engine.Concurrency,
			LandBudget:        engine.LandBudget,
		},
		Deck: DeckConfig{
			NonlandSlots:     deck.NonlandSlots,
			LandSlots:        deck.LandSlots,
			InColorThreshold: deck.InColorThreshold,
			KernelCount:      deck.KernelCount,
			KernelBudget:     deck.KernelBudget,
		},
		Log: LogConfig{
			Debug:  false,
			Format: "console",
		},
		Storage: StorageConfig{
			Path: defaultDBPath(),
		},
	}
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "draftbot.db"
	}
	return filepath.Join(homeDir, ".mtga-draftbots", "draftbot.db")
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mtga-draftbots", "config.toml"), nil
}

// Load loads the configuration from path. Returns default config if the file
// doesn't exist. Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Engine.MaxOptimizerSteps < 0 {
		return fmt.Errorf("max optimizer steps cannot be negative: %d", c.Engine.MaxOptimizerSteps)
	}
	if c.Engine.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative: %d", c.Engine.Concurrency)
	}
	if c.Engine.LandBudget < 0 {
		return fmt.Errorf("land budget cannot be negative: %d", c.Engine.LandBudget)
	}

	if c.Deck.NonlandSlots <= 0 || c.Deck.LandSlots < 0 {
		return fmt.Errorf("invalid deck slots %d/%d", c.Deck.NonlandSlots, c.Deck.LandSlots)
	}
	if c.Deck.InColorThreshold < 0 || c.Deck.InColorThreshold > 1 {
		return fmt.Errorf("in-color threshold must be within [0, 1]: %v", c.Deck.InColorThreshold)
	}
	if c.Deck.KernelCount < 0 || c.Deck.KernelBudget < 0 {
		return fmt.Errorf("kernel settings cannot be negative: count %d, budget %d", c.Deck.KernelCount, c.Deck.KernelBudget)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	return nil
}

// EngineOptions converts the engine and deck sections into engine options.
func (c *Config) EngineOptions() []draft.Option {
	return []draft.Option{
		draft.WithConfig(draft.EngineConfig{
			Seed:              c.Engine.Seed,
			RandomizeSeed:     c.Engine.RandomizeSeed,
			MaxOptimizerSteps: c.Engine.MaxOptimizerSteps,
			Concurrency:       c.Engine.Concurrency,
			LandBudget:        c.Engine.LandBudget,
		}),
		draft.WithDeckBuilderConfig(draft.DeckBuilderConfig{
			NonlandSlots:     c.Deck.NonlandSlots,
			LandSlots:        c.Deck.LandSlots,
			InColorThreshold: c.Deck.InColorThreshold,
			KernelCount:      c.Deck.KernelCount,
			KernelBudget:     c.Deck.KernelBudget,
		}),
	}
}
