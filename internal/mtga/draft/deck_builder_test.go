package draft

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtga-draftbots/internal/metrics"
)

func countLands(e *Engine, cards []int) (lands, nonlands int) {
	for _, i := range cards {
		if e.card(i).IsLand() {
			lands++
		} else {
			nonlands++
		}
	}
	return lands, nonlands
}

func TestBuildDeck(t *testing.T) {
	s := &cardSet{}
	basics := s.basics()
	pool := twoColorPool(s, 14, 12, 4)
	pool = append(pool,
		s.land("Hallowed Fountain", White|Blue),
		s.land("Sacred Foundry", Red|White),
		s.add(Card{Name: "Ongoing Plot", TypeLine: "Ongoing Scheme"}),
	)

	m := metrics.NewEngineMetrics()
	e := newTestEngine(t, s.cards, WithMetrics(m))

	deck, err := e.BuildDeck(context.Background(), pool, basics)
	require.NoError(t, err)

	main := deck.Mainboard.Cards()
	side := deck.Sideboard.Cards()

	lands, nonlands := countLands(e, main)
	assert.Equal(t, 23, nonlands)
	assert.Equal(t, 17, lands)
	assert.Equal(t, 23, deck.ManaCurve.TotalSpells)
	assert.Equal(t, deck.ManaCurve.Creatures+deck.ManaCurve.NonCreatures, deck.ManaCurve.TotalSpells)

	basicTotal := 0
	for _, n := range deck.BasicCounts {
		basicTotal += n
	}
	var nonbasic []int
	for _, i := range main {
		if !slices.Contains(basics, i) {
			nonbasic = append(nonbasic, i)
		}
	}
	assert.Equal(t, 40-basicTotal, len(nonbasic))

	for _, i := range side {
		assert.NotContains(t, nonbasic, i, "card %d in both boards", i)
		assert.NotContains(t, basics, i, "basic in sideboard")
	}
	assert.ElementsMatch(t, pool, append(nonbasic, side...))

	assert.Equal(t, uint64(1), m.Stats().DeckBuilds)
	assert.Zero(t, m.Stats().BuildFailures)
}

func TestBuildDeckSidesOffColorLands(t *testing.T) {
	s := &cardSet{}
	basics := s.basics()
	pool := twoColorPool(s, 14, 12, 0)
	var gates []int
	for i := 0; i < 10; i++ {
		gates = append(gates, s.add(Card{
			Name:         nameOf("Rakdos Guildgate", i),
			TypeLine:     "Land - Gate",
			ProducedMana: Black | Red,
		}))
	}
	pool = append(pool, gates...)

	e := newTestEngine(t, s.cards)
	deck, err := e.BuildDeck(context.Background(), pool, basics)
	require.NoError(t, err)

	assert.Equal(t, White|Blue, deck.Colors)
	main := deck.Mainboard.Cards()
	for _, g := range gates {
		assert.NotContains(t, main, g, "off-color gate %d in mainboard", g)
		assert.Contains(t, deck.Sideboard.Cards(), g)
	}
	lands, _ := countLands(e, main)
	assert.Equal(t, 17, lands)
}

func TestBuildDeckTooFewNonlands(t *testing.T) {
	s := &cardSet{}
	basics := s.basics()
	pool := []int{s.spell("Lonely", "{W}", "Creature", 1500, nil)}

	m := metrics.NewEngineMetrics()
	e := newTestEngine(t, s.cards, WithMetrics(m))

	_, err := e.BuildDeck(context.Background(), pool, basics)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuildInfeasible))

	var failure *BuildFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 22, failure.MissingNonlands)
	assert.Zero(t, failure.MissingLands)
	assert.Equal(t, uint64(1), m.Stats().BuildFailures)
}

func TestBuildDeckWithoutLands(t *testing.T) {
	s := &cardSet{}
	pool := twoColorPool(s, 12, 11, 0)
	e := newTestEngine(t, s.cards)

	_, err := e.BuildDeck(context.Background(), pool, nil)
	var failure *BuildFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Zero(t, failure.MissingNonlands)
	assert.Equal(t, 17, failure.MissingLands)
}

func TestBuildDeckPoolLandsOnly(t *testing.T) {
	s := &cardSet{}
	pool := twoColorPool(s, 12, 11, 0)
	pool = append(pool, s.land("Hallowed Fountain", White|Blue), s.land("Hallowed Fountain 2", White|Blue))
	e := newTestEngine(t, s.cards)

	deck, err := e.BuildDeck(context.Background(), pool, nil)
	require.NoError(t, err)

	lands, nonlands := countLands(e, deck.Mainboard.Cards())
	assert.Equal(t, 23, nonlands)
	assert.LessOrEqual(t, lands, 2)
	assert.Empty(t, deck.BasicCounts)
}

func TestGridAdd(t *testing.T) {
	var g Grid
	g.Add(&Card{Index: 1, TypeLine: "Creature - Bear", CMC: 2})
	g.Add(&Card{Index: 2, TypeLine: "Sorcery", CMC: 9})
	g.Add(&Card{Index: 3, TypeLine: "Basic Land - Forest"})
	g.Add(&Card{Index: 4, TypeLine: "Land"})

	assert.Equal(t, []int{1}, g[0][2])
	assert.Equal(t, []int{2}, g[1][7])
	assert.Equal(t, []int{3}, g[0][0])
	assert.Equal(t, []int{4}, g[1][0])
	assert.Equal(t, []int{3, 1, 4, 2}, g.Cards())
}

func TestIsPlayableLand(t *testing.T) {
	wu := White | Blue
	tests := []struct {
		name   string
		colors ColorCombination
		card   Card
		want   bool
	}{
		{"on color", wu, Card{ColorIdentity: White}, true},
		{"colorless", wu, Card{Name: "Wastes"}, true},
		{"one shared color", wu, Card{ColorIdentity: White | Black}, false},
		{"two shared colors", wu, Card{ColorIdentity: White | Blue | Black}, true},
		{"fetch finds a color", wu, Card{Name: "Arid Mesa", ColorIdentity: Red | White}, true},
		{"fetch off color", Black | Green, Card{Name: "Scalding Tarn", ColorIdentity: Blue | Red}, false},
		{"produces on color", wu, Card{Name: "Azorius Guildgate", ProducedMana: White | Blue}, true},
		{"produces off color", wu, Card{Name: "Izzet Guildgate", ProducedMana: Blue | Red}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPlayableLand(tt.colors, &tt.card))
		})
	}
}

func TestApportionBasics(t *testing.T) {
	s := &cardSet{}
	basics := s.basics()
	plains, island, swamp := basics[0], basics[1], basics[2]
	e := newTestEngine(t, s.cards)

	var lands LandConfiguration
	lands[White.Index()] = 10
	lands[Blue.Index()] = 7

	tests := []struct {
		name   string
		lands  LandConfiguration
		colors ColorCombination
		slots  int
		want   []basicCount
	}{
		{"exact", lands, White | Blue, 17, []basicCount{{plains, 10}, {island, 7}}},
		{"largest remainder", lands, White | Blue, 16, []basicCount{{plains, 9}, {island, 7}}},
		{"deck colors", LandConfiguration{}, White | Blue, 17, []basicCount{{plains, 9}, {island, 8}}},
		{"first basic", LandConfiguration{}, Colorless, 5, []basicCount{{plains, 5}}},
		{"no slots", lands, White, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.apportionBasics([]int{plains, island, swamp}, tt.lands, tt.colors, tt.slots)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortestKSpanningTree(t *testing.T) {
	// Two tight clusters far apart.
	const near, far = 0.1, 0.9
	d := make([][]float64, 6)
	for i := range d {
		d[i] = make([]float64, 6)
		for j := range d[i] {
			switch {
			case i == j:
			case i/3 == j/3:
				d[i][j] = near
			default:
				d[i][j] = far
			}
		}
	}

	assert.ElementsMatch(t, []int{0, 1, 2}, shortestKSpanningTree(d, 3))
	assert.Equal(t, []int{0}, shortestKSpanningTree(d, 1))
	assert.Nil(t, shortestKSpanningTree(d, 0))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, shortestKSpanningTree(d, 6))
	assert.Len(t, shortestKSpanningTree(d, 4), 4)
}

func TestAllPairsShortestPath(t *testing.T) {
	d := [][]float64{
		{0, 1, 5},
		{1, 0, 1},
		{5, 1, 0},
	}
	got := allPairsShortestPath(d)
	assert.Equal(t, 2.0, got[0][2])
	assert.Equal(t, 2.0, got[2][0])
	assert.Equal(t, 5.0, d[0][2], "input is not modified")
}
