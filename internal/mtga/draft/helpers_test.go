package draft

import (
	"math"
	"os"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// axisEmbedding returns a unit vector spread evenly over the given axes.
func axisEmbedding(axes ...int) []float64 {
	v := make([]float64, EmbeddingSize)
	w := 1 / math.Sqrt(float64(len(axes)))
	for _, a := range axes {
		v[a] = w
	}
	return v
}

// cardSet builds a catalog incrementally, assigning indices in order.
type cardSet struct {
	cards CardList
}

func (s *cardSet) add(c Card) int {
	c.Index = len(s.cards)
	if c.ID == "" {
		c.ID = c.Name
	}
	if c.CMC == 0 && len(c.ManaCost) > 0 {
		c.CMC = ManaValue(c.ManaCost)
	}
	s.cards = append(s.cards, c)
	return c.Index
}

func (s *cardSet) spell(name, cost, typeLine string, elo int, embedding []float64) int {
	return s.add(Card{
		Name:          name,
		ManaCost:      ParseManaCost(cost),
		ColorIdentity: ParseColors(cost),
		TypeLine:      typeLine,
		Elo:           elo,
		Embedding:     embedding,
	})
}

func (s *cardSet) land(name string, colors ColorCombination) int {
	return s.add(Card{
		Name:          name,
		TypeLine:      "Land",
		ColorIdentity: colors,
		ProducedMana:  colors,
	})
}

// basics adds the five basic lands and returns their indices in WUBRG order.
func (s *cardSet) basics() []int {
	names := []string{"Plains", "Island", "Swamp", "Mountain", "Forest"}
	indices := make([]int, len(names))
	for i, name := range names {
		indices[i] = s.add(Card{
			Name:         name,
			TypeLine:     "Basic Land - " + name,
			ProducedMana: BasicLands[name],
		})
	}
	return indices
}

func newTestEngine(t *testing.T, catalog Catalog, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(catalog, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// twoColorPool builds a white-blue pool: flyers on one synergy axis, spells
// on another, plus some off-color red cards.
func twoColorPool(s *cardSet, white, blue, red int) []int {
	var pool []int
	costs := []string{"{W}", "{1}{W}", "{2}{W}", "{1}{W}{W}", "{3}{W}"}
	for i := 0; i < white; i++ {
		pool = append(pool, s.spell(nameOf("White", i), costs[i%len(costs)], "Creature - Bird", 1300+10*i, axisEmbedding(0, 1)))
	}
	costs = []string{"{U}", "{1}{U}", "{2}{U}", "{U}{U}", "{1}{W}{U}"}
	for i := 0; i < blue; i++ {
		pool = append(pool, s.spell(nameOf("Blue", i), costs[i%len(costs)], "Instant", 1250+10*i, axisEmbedding(1, 2)))
	}
	for i := 0; i < red; i++ {
		pool = append(pool, s.spell(nameOf("Red", i), "{R}{R}", "Sorcery", 1100, axisEmbedding(10)))
	}
	return pool
}

func nameOf(prefix string, i int) string {
	return prefix + " " + string(rune('A'+i/26)) + string(rune('a'+i%26))
}

func TestNameOfIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 60; i++ {
		n := nameOf("x", i)
		if seen[n] {
			t.Fatalf("duplicate name %q", n)
		}
		seen[n] = true
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}
