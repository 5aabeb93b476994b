package draft

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/metrics"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/probtable"
)

var (
	// ErrEmptyPack is returned when asked to pick from a pack with no cards.
	ErrEmptyPack = errors.New("pack is empty")
	// ErrNoOptions is returned when no option contains a legal card.
	ErrNoOptions = errors.New("no legal options")
	// ErrNilState is returned when a nil drafter state is passed in.
	ErrNilState = errors.New("drafter state is nil")
	// ErrInvalidSeat is returned for a seat outside the draft.
	ErrInvalidSeat = errors.New("invalid seat")
	// ErrBuildInfeasible matches every *BuildFailure.
	ErrBuildInfeasible = errors.New("deck build infeasible")
)

// EngineConfig controls scoring and the land optimizer.
type EngineConfig struct {
	// Seed for the optimizer's initial land draw.
	Seed uint64
	// RandomizeSeed draws a fresh seed for every evaluation.
	RandomizeSeed bool
	// MaxOptimizerSteps caps accepted hill-climb steps per evaluation.
	MaxOptimizerSteps int
	// Concurrency bounds parallel candidate scoring. Zero means GOMAXPROCS.
	Concurrency int
	// LandBudget is the number of lands in a configuration.
	LandBudget int
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Seed:              1,
		MaxOptimizerSteps: 100,
		LandBudget:        17,
	}
}

// DeckBuilderConfig holds the deck builder's slot counts and clustering
// constants.
type DeckBuilderConfig struct {
	NonlandSlots     int
	LandSlots        int
	InColorThreshold float64
	KernelCount      int
	KernelBudget     int
}

// DefaultDeckBuilderConfig returns the standard 23/17 limited split.
func DefaultDeckBuilderConfig() DeckBuilderConfig {
	return DeckBuilderConfig{
		NonlandSlots:     23,
		LandSlots:        17,
		InColorThreshold: 0.67,
		KernelCount:      2,
		KernelBudget:     18,
	}
}

// Engine scores candidates, picks cards and builds decks for one catalog.
// It owns the memoization caches, so separate engines share no state.
type Engine struct {
	catalog Catalog
	table   probabilityTable
	cfg     EngineConfig
	deckCfg DeckBuilderConfig
	logger  *zap.Logger
	metrics *metrics.EngineMetrics

	costs     *memoCache[string, costProfile]
	synergies *memoCache[[2]string, float64]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records engine activity into m.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithConfig overrides the engine configuration.
func WithConfig(cfg EngineConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithDeckBuilderConfig overrides the deck builder configuration.
func WithDeckBuilderConfig(cfg DeckBuilderConfig) Option {
	return func(e *Engine) { e.deckCfg = cfg }
}

// WithTable uses t instead of the embedded probability table.
func WithTable(t *probtable.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog Catalog, opts ...Option) (*Engine, error) {
	e := &Engine{
		catalog:   catalog,
		cfg:       DefaultEngineConfig(),
		deckCfg:   DefaultDeckBuilderConfig(),
		logger:    zap.NewNop(),
		costs:     newMemoCache[string, costProfile](),
		synergies: newMemoCache[[2]string, float64](),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.table == nil {
		table, err := probtable.Default()
		if err != nil {
			return nil, fmt.Errorf("load probability table: %w", err)
		}
		e.table = table
	}
	if e.cfg.LandBudget <= 0 {
		e.cfg.LandBudget = 17
	}
	if e.cfg.MaxOptimizerSteps <= 0 {
		e.cfg.MaxOptimizerSteps = 100
	}
	if e.cfg.Concurrency <= 0 {
		e.cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// CacheStats returns the cost and synergy cache statistics.
func (e *Engine) CacheStats() (costs, synergies CacheStats) {
	return e.costs.Stats(), e.synergies.Stats()
}

// Card returns the catalog entry for index, or a neutral placeholder for
// indices the catalog does not know.
func (e *Engine) Card(index int) *Card {
	return e.card(index)
}

func (e *Engine) card(index int) *Card {
	if e.catalog != nil {
		if c := e.catalog.Card(index); c != nil {
			return c
		}
	}
	return &Card{Index: index, ID: fmt.Sprintf("#%d", index)}
}

// EvaluateCandidates scores candidates against state, optimizing the land
// base for them. With no candidates it evaluates the pool alone.
func (e *Engine) EvaluateCandidates(ctx context.Context, candidates []int, state *DrafterState) (*BotScore, error) {
	if state == nil {
		return nil, ErrNilState
	}
	return e.evaluate(ctx, candidates, state)
}

func (e *Engine) recordCacheStats() {
	costs, synergies := e.CacheStats()
	e.metrics.SetCacheStats(costs.Hits+synergies.Hits, costs.Misses+synergies.Misses)
}
