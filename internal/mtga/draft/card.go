package draft

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultElo is used for cards without a rating.
	DefaultElo = 1200

	// EmbeddingSize is the length of every synergy embedding.
	EmbeddingSize = 64
)

var (
	manaSymbolPattern  = regexp.MustCompile(`\{([^}]+)\}`)
	specialZonePattern = regexp.MustCompile(`(?i)\b(plane|phenomenon|vanguard|scheme|conspiracy|contraption)\b`)
)

// Card is immutable reference data for one card in a draft.
type Card struct {
	Index         int              `yaml:"index" json:"index"`
	ID            string           `yaml:"id" json:"id"`
	Name          string           `yaml:"name" json:"name"`
	ColorIdentity ColorCombination `yaml:"color_identity" json:"color_identity"`
	ManaCost      []string         `yaml:"mana_cost" json:"mana_cost"`
	CMC           int              `yaml:"cmc" json:"cmc"`
	TypeLine      string           `yaml:"type_line" json:"type_line"`
	Elo           int              `yaml:"elo" json:"elo"`
	Embedding     []float64        `yaml:"embedding,omitempty" json:"embedding,omitempty"`
	ProducedMana  ColorCombination `yaml:"produced_mana" json:"produced_mana"`
}

// Key returns the identity used for memoization.
func (c *Card) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

// IsLand reports whether the card is a land.
func (c *Card) IsLand() bool {
	return strings.Contains(strings.ToLower(c.TypeLine), "land")
}

// IsCreature reports whether the card is a creature.
func (c *Card) IsCreature() bool {
	return strings.Contains(strings.ToLower(c.TypeLine), "creature")
}

// IsBasic reports whether the card is a basic land.
func (c *Card) IsBasic() bool {
	return strings.Contains(strings.ToLower(c.TypeLine), "basic")
}

// IsSpecialZone reports whether the card lives outside the deck (planes,
// schemes, conspiracies and similar).
func (c *Card) IsSpecialZone() bool {
	return specialZonePattern.MatchString(c.TypeLine)
}

// Rating returns the card's elo, defaulting to DefaultElo.
func (c *Card) Rating() int {
	if c.Elo == 0 {
		return DefaultElo
	}
	return c.Elo
}

// HasEmbedding reports whether the card carries a usable embedding.
func (c *Card) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// LandColors returns the colors a land provides. Fetch lands resolve to the
// colors they can find.
func (c *Card) LandColors() ColorCombination {
	if colors, ok := FetchLands[c.Name]; ok {
		return colors
	}
	if c.ProducedMana != Colorless {
		return c.ProducedMana
	}
	return c.ColorIdentity
}

// Catalog resolves card indices to card data.
type Catalog interface {
	Card(index int) *Card
	Len() int
}

// CardList is a Catalog backed by a slice. Cards are addressed by position.
type CardList []Card

// Card returns the card at index, or nil when out of range.
func (l CardList) Card(index int) *Card {
	if index < 0 || index >= len(l) {
		return nil
	}
	return &l[index]
}

// Len returns the number of cards.
func (l CardList) Len() int {
	return len(l)
}

// ParseManaCost splits a cost like "{2}{W}{W/U}" into lowercase symbols
// ("2", "w", "w-u").
func ParseManaCost(manaCost string) []string {
	matches := manaSymbolPattern.FindAllStringSubmatch(manaCost, -1)
	symbols := make([]string, 0, len(matches))
	for _, match := range matches {
		symbol := strings.ToLower(strings.TrimSpace(match[1]))
		symbols = append(symbols, strings.ReplaceAll(symbol, "/", "-"))
	}
	return symbols
}

// ManaValue computes the converted cost of a parsed symbol list.
func ManaValue(symbols []string) int {
	total := 0
	for _, symbol := range symbols {
		if n, err := strconv.Atoi(symbol); err == nil {
			total += n
			continue
		}
		switch {
		case symbol == "x" || symbol == "y" || symbol == "z":
		case strings.HasPrefix(symbol, "2-"):
			total += 2
		default:
			total++
		}
	}
	return total
}

// CardRecord is the on-disk shape of a card in a fixture file.
type CardRecord struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Cost      string    `yaml:"cost"`
	CMC       *int      `yaml:"cmc"`
	Type      string    `yaml:"type"`
	Colors    string    `yaml:"colors"`
	Elo       int       `yaml:"elo"`
	Embedding []float64 `yaml:"embedding"`
	Produces  string    `yaml:"produces"`
}

// Card converts the record into a card at index. Missing cmc and color
// identity are derived from the cost.
func (r CardRecord) Card(index int) Card {
	cost := ParseManaCost(r.Cost)
	card := Card{
		Index:        index,
		ID:           r.ID,
		Name:         r.Name,
		ManaCost:     cost,
		TypeLine:     r.Type,
		Elo:          r.Elo,
		Embedding:    r.Embedding,
		ProducedMana: ParseColors(r.Produces),
	}
	if r.CMC != nil {
		card.CMC = *r.CMC
	} else {
		card.CMC = ManaValue(cost)
	}
	if r.Colors != "" {
		card.ColorIdentity = ParseColors(r.Colors)
	} else {
		card.ColorIdentity = ParseColors(strings.Join(cost, ""))
	}
	if card.ID == "" {
		card.ID = card.Name
	}
	if basic, ok := BasicLands[card.Name]; ok && card.ProducedMana == Colorless {
		card.ProducedMana = basic
	}
	return card
}

// NewCardList converts records into a catalog, indexed by position.
func NewCardList(records []CardRecord) (CardList, error) {
	cards := make(CardList, len(records))
	for i, r := range records {
		if len(r.Embedding) > 0 && len(r.Embedding) != EmbeddingSize {
			return nil, fmt.Errorf("card %q: embedding has %d values, want %d", r.Name, len(r.Embedding), EmbeddingSize)
		}
		cards[i] = r.Card(i)
	}
	return cards, nil
}

// ParseCards decodes a YAML or JSON list of card records.
func ParseCards(data []byte) (CardList, error) {
	var records []CardRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse cards: %w", err)
	}
	return NewCardList(records)
}

// LoadCards reads a card fixture file.
func LoadCards(path string) (CardList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cards file: %w", err)
	}
	return ParseCards(data)
}
