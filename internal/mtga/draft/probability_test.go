package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/probtable"
)

func landsOf(counts map[ColorCombination]int) *LandConfiguration {
	var l LandConfiguration
	for c, n := range counts {
		l[c.Index()] += n
	}
	return &l
}

func TestLandConfiguration(t *testing.T) {
	lands := landsOf(map[ColorCombination]int{White: 8, Blue: 6, White | Black: 2, Red: 1})

	assert.Equal(t, 17, lands.Total())
	assert.Equal(t, map[string]int{"W": 10, "U": 6, "B": 2, "R": 1}, lands.Sources())
	assert.Equal(t, White|Blue, lands.Colors())
}

func TestDecomposeCost(t *testing.T) {
	tests := []struct {
		name   string
		card   Card
		exempt bool
		groups []costGroup
	}{
		{
			name:   "land",
			card:   Card{TypeLine: "Land", ManaCost: []string{"w"}},
			exempt: true,
		},
		{
			name:   "scheme",
			card:   Card{TypeLine: "Ongoing Scheme"},
			exempt: true,
		},
		{
			name:   "generic",
			card:   Card{ManaCost: ParseManaCost("{3}"), CMC: 3},
			groups: []costGroup{},
		},
		{
			name:   "phyrexian and two hybrid are ignored",
			card:   Card{ManaCost: ParseManaCost("{1}{W/P}{2/G}"), CMC: 4},
			groups: []costGroup{},
		},
		{
			name: "groups sorted by pips",
			card: Card{ManaCost: ParseManaCost("{U}{W}{W}"), CMC: 3},
			groups: []costGroup{
				{colors: White, pips: 2},
				{colors: Blue, pips: 1},
			},
		},
		{
			name: "ties sorted by canonical index",
			card: Card{ManaCost: ParseManaCost("{G}{W/U}{B}"), CMC: 3},
			groups: []costGroup{
				{colors: Black, pips: 1},
				{colors: Green, pips: 1},
				{colors: White | Blue, pips: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decomposeCost(&tt.card)
			assert.Equal(t, tt.exempt, got.exempt)
			if !tt.exempt {
				assert.Equal(t, tt.card.CMC, got.cmc)
				assert.Equal(t, tt.groups, got.groups)
			}
		})
	}
}

func TestCastingProbability(t *testing.T) {
	e := newTestEngine(t, CardList{})
	table, err := probtable.Default()
	require.NoError(t, err)

	spell := func(cost string) *Card {
		symbols := ParseManaCost(cost)
		return &Card{ID: cost, ManaCost: symbols, CMC: ManaValue(symbols)}
	}

	t.Run("lands are always castable", func(t *testing.T) {
		land := &Card{ID: "dual", TypeLine: "Land"}
		assert.Equal(t, 1.0, e.CastingProbability(land, &LandConfiguration{}))
	})

	t.Run("no lands", func(t *testing.T) {
		assert.Zero(t, e.CastingProbability(spell("{W}"), &LandConfiguration{}))
	})

	t.Run("generic uses every land", func(t *testing.T) {
		lands := landsOf(map[ColorCombination]int{White: 9, Blue: 8})
		assert.Equal(t, table.Lookup(7, 0, 0, 17, 0, 0), e.CastingProbability(spell("{7}"), lands))
	})

	t.Run("hybrid counts either color", func(t *testing.T) {
		lands := landsOf(map[ColorCombination]int{White: 4, Blue: 4, Red: 9})
		assert.InDelta(t, 0.8195, e.CastingProbability(spell("{W/U}"), lands), 1e-3)
	})

	t.Run("two color groups", func(t *testing.T) {
		lands := landsOf(map[ColorCombination]int{White: 8, Blue: 8})
		assert.InDelta(t, 0.7422, e.CastingProbability(spell("{1}{W}{U}"), lands), 1e-3)
	})

	t.Run("dual lands count for both groups", func(t *testing.T) {
		lands := landsOf(map[ColorCombination]int{White: 6, Blue: 6, White | Blue: 5})
		want := table.Lookup(3, 1, 1, 6, 6, 5)
		assert.Equal(t, want, e.CastingProbability(spell("{1}{W}{U}"), lands))
	})

	t.Run("three groups multiply marginals", func(t *testing.T) {
		lands := landsOf(map[ColorCombination]int{White: 6, Blue: 6, Black: 5})
		want := table.Lookup(3, 1, 0, 6, 0, 0) * table.Lookup(3, 1, 0, 6, 0, 0) * table.Lookup(3, 1, 0, 5, 0, 0)
		assert.InDelta(t, want, e.CastingProbability(spell("{W}{U}{B}"), lands), 1e-9)
	})

	t.Run("more sources never hurt", func(t *testing.T) {
		card := spell("{2}{G}{G}")
		prev := 0.0
		for n := 0; n <= 17; n++ {
			lands := landsOf(map[ColorCombination]int{Green: n, Red: 17 - n})
			p := e.CastingProbability(card, lands)
			assert.GreaterOrEqual(t, p, prev, "%d sources", n)
			assert.LessOrEqual(t, p, 1.0)
			prev = p
		}
	})
}

func TestCostProfileIsMemoized(t *testing.T) {
	e := newTestEngine(t, CardList{})
	card := &Card{ID: "shock", ManaCost: []string{"r"}, CMC: 1}
	lands := landsOf(map[ColorCombination]int{Red: 17})

	e.CastingProbability(card, lands)
	e.CastingProbability(card, lands)

	costs, _ := e.CacheStats()
	assert.Equal(t, int64(1), costs.Hits)
	assert.Equal(t, int64(1), costs.Misses)
	assert.Equal(t, 1, costs.Size)
}
