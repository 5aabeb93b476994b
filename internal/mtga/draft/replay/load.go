package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
)

// draftFile is the fixture layout: cards are given as records rather than
// fully resolved card data.
type draftFile struct {
	ID           string             `yaml:"id"`
	Cards        []draft.CardRecord `yaml:"cards"`
	Basics       []int              `yaml:"basics"`
	InitialState [][]Pack           `yaml:"initial_state"`
	Seats        []Seat             `yaml:"seats"`
}

// ParseDraft decodes a YAML or JSON draft fixture.
func ParseDraft(data []byte) (*Draft, error) {
	var f draftFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	cards, err := draft.NewCardList(f.Cards)
	if err != nil {
		return nil, fmt.Errorf("parse draft cards: %w", err)
	}

	d := &Draft{
		ID:           f.ID,
		Cards:        cards,
		Basics:       f.Basics,
		InitialState: f.InitialState,
		Seats:        f.Seats,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDraft reads a draft fixture file.
func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft file: %w", err)
	}
	return ParseDraft(data)
}
