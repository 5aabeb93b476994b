package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ramonehamilton/mtga-draftbots/internal/metrics"
)

// genericPack returns three colorless one-drops that differ only in elo.
func genericPack(s *cardSet) []int {
	return []int{
		s.spell("Middle", "{1}", "Artifact", 1500, nil),
		s.spell("Best", "{1}", "Artifact", 1800, nil),
		s.spell("Worst", "{1}", "Artifact", 1000, nil),
	}
}

func whiteState(s *cardSet) (*DrafterState, int) {
	var picked []int
	for i := 0; i < 5; i++ {
		picked = append(picked, s.spell(nameOf("Knight", i), "{1}{W}{W}", "Creature - Knight", 1400, nil))
	}
	candidate := s.spell("Candidate", "{1}{W}{W}", "Creature - Knight", 1500, nil)
	return &DrafterState{
		Picked:      picked,
		Seen:        append(append([]int(nil), picked...), candidate),
		CardsInPack: []int{candidate},
		PackNum:     1,
		PickNum:     5,
		NumPacks:    3,
		PackSize:    15,
	}, candidate
}

func TestNewEngineDefaults(t *testing.T) {
	e := newTestEngine(t, nil)
	cfg := e.Config()

	assert.Equal(t, uint64(1), cfg.Seed)
	assert.Equal(t, 17, cfg.LandBudget)
	assert.Equal(t, 100, cfg.MaxOptimizerSteps)
	assert.Positive(t, cfg.Concurrency)

	e = newTestEngine(t, nil, WithConfig(EngineConfig{Seed: 3}))
	assert.Equal(t, uint64(3), e.Config().Seed)
	assert.Equal(t, 17, e.Config().LandBudget)
}

func TestUnknownCardIsPlaceholder(t *testing.T) {
	e := newTestEngine(t, CardList{{Name: "Only"}})
	assert.Equal(t, "Only", e.card(0).Name)
	assert.Equal(t, "#7", e.card(7).Key())
	assert.False(t, e.card(7).IsLand())
}

func TestEvaluateCandidatesNilState(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.EvaluateCandidates(context.Background(), []int{0}, nil)
	assert.ErrorIs(t, err, ErrNilState)
}

func TestEvaluateCandidatesCanceled(t *testing.T) {
	s := &cardSet{}
	state, candidate := whiteState(s)
	e := newTestEngine(t, s.cards)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.EvaluateCandidates(ctx, []int{candidate}, state)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLandOptimizer(t *testing.T) {
	s := &cardSet{}
	state, candidate := whiteState(s)
	e := newTestEngine(t, s.cards)

	score, err := e.EvaluateCandidates(context.Background(), []int{candidate}, state)
	require.NoError(t, err)

	require.NotEmpty(t, score.Trace)
	assert.Equal(t, len(score.Trace)-1, score.Steps)
	assert.LessOrEqual(t, score.Steps, e.Config().MaxOptimizerSteps)
	for i := 1; i < len(score.Trace); i++ {
		assert.Greater(t, score.Trace[i], score.Trace[i-1], "trace step %d", i)
	}
	assert.Equal(t, score.Trace[len(score.Trace)-1], score.Score)

	assert.Equal(t, 17, score.Lands.Total())
	available := e.availableLands(state, []int{candidate})
	for i, n := range score.Lands {
		assert.LessOrEqual(t, n, available[i], "bucket %v", CombinationAt(i))
	}

	assert.GreaterOrEqual(t, score.Lands[White.Index()], 15)
	assert.Equal(t, White, score.Colors)
	assert.Len(t, score.Oracles, len(AllOracles))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	s := &cardSet{}
	state, candidate := whiteState(s)

	first, err := newTestEngine(t, s.cards).EvaluateCandidates(context.Background(), []int{candidate}, state)
	require.NoError(t, err)
	second, err := newTestEngine(t, s.cards).EvaluateCandidates(context.Background(), []int{candidate}, state)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("evaluations differ (-first +second):\n%s", diff)
	}
}

func TestPoolModeScore(t *testing.T) {
	s := &cardSet{}
	state, _ := whiteState(s)
	e := newTestEngine(t, s.cards)

	score, err := e.EvaluateCandidates(context.Background(), nil, state)
	require.NoError(t, err)

	total := 0.0
	for _, o := range score.Oracles {
		assert.False(t, o.Kind.PerCandidate(), "%s evaluated without candidates", o.Title)
		total += o.Weight * o.Value
	}
	assert.Len(t, score.Oracles, 2)
	assert.InDelta(t, score.NonlandProbability*total, score.Score, 1e-9)
	assert.Positive(t, score.NonlandProbability)
}

func TestAvailableLands(t *testing.T) {
	s := &cardSet{}
	basics := s.basics()
	dual := s.land("Hallowed Fountain", White|Blue)
	mountain := s.land("Red Land", Red)
	spell := s.spell("Opt", "{U}", "Instant", 0, nil)
	e := newTestEngine(t, s.cards)

	state := &DrafterState{Picked: []int{dual, spell}, Basics: basics[:2]}
	got := e.availableLands(state, []int{mountain})
	var want LandConfiguration
	want[White.Index()] = basicAvailability
	want[Blue.Index()] = basicAvailability
	want[(White | Blue).Index()] = 1
	want[Red.Index()] = 1
	assert.Equal(t, want, got)

	state.Basics = nil
	got = e.availableLands(state, nil)
	for _, c := range []ColorCombination{White, Blue, Black, Red, Green} {
		assert.Equal(t, basicAvailability, got[c.Index()], c.String())
	}
	assert.Equal(t, 1, got[(White | Blue).Index()])
	assert.Zero(t, got[Red.Index()]-basicAvailability)
}

func TestInitialLandsPrefersSupersets(t *testing.T) {
	var available LandConfiguration
	available[White.Index()] = basicAvailability
	available[Blue.Index()] = basicAvailability
	available[(White | Blue).Index()] = 2

	e := newTestEngine(t, nil)
	lands := initialLands(available, 17, e.newRand([]int{1, 2}))

	assert.Equal(t, 17, lands.Total())
	assert.Equal(t, 2, lands[(White | Blue).Index()])
	assert.Zero(t, lands[Black.Index()])
}

func TestNonDominated(t *testing.T) {
	set := map[ColorCombination]bool{White: true, Blue: true, White | Blue: true, Red: true}
	got := nonDominated(func(i int) bool { return set[CombinationAt(i)] })
	assert.Equal(t, []int{Red.Index(), (White | Blue).Index()}, got)
}

func TestBestIndex(t *testing.T) {
	tests := []struct {
		scores  []float64
		reverse bool
		want    int
	}{
		{[]float64{2, 5, 1}, false, 1},
		{[]float64{2, 5, 1}, true, 2},
		{[]float64{3, 3, 1}, false, 0},
		{[]float64{1, 3, 1}, true, 0},
		{[]float64{4}, false, 0},
	}
	for _, tt := range tests {
		if got := bestIndex(tt.scores, tt.reverse); got != tt.want {
			t.Errorf("bestIndex(%v, %v) = %d, want %d", tt.scores, tt.reverse, got, tt.want)
		}
	}
}

func TestPickFromPack(t *testing.T) {
	s := &cardSet{}
	pack := genericPack(s)

	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.NewEngineMetrics()
	e := newTestEngine(t, s.cards, WithLogger(zap.New(core)), WithMetrics(m))

	state := &DrafterState{CardsInPack: pack, NumPacks: 3, PackSize: 15}
	pick, err := e.PickFromPack(context.Background(), state, false)
	require.NoError(t, err)
	assert.Equal(t, 1, pick.Position)
	assert.Equal(t, pack[1], pick.Card)
	require.Len(t, pick.Scores, 3)
	assert.Equal(t, pick.Scores[1], pick.Score.Score)
	assert.Greater(t, pick.Scores[0], pick.Scores[2])

	worst, err := e.PickFromPack(context.Background(), state, true)
	require.NoError(t, err)
	assert.Equal(t, 2, worst.Position)

	stats := m.Stats()
	assert.Equal(t, uint64(2), stats.Picks)
	assert.Equal(t, uint64(6), stats.Evaluations)
	assert.Equal(t, 2, logs.FilterMessage("picked card").Len())
	assert.Equal(t, 6, logs.FilterMessage("evaluated candidates").Len())
}

func TestPickFromPackErrors(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.PickFromPack(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrNilState)

	_, err = e.PickFromPack(context.Background(), &DrafterState{}, false)
	assert.ErrorIs(t, err, ErrEmptyPack)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.PickFromPack(ctx, &DrafterState{CardsInPack: []int{0, 1}}, false)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPickFromOptions(t *testing.T) {
	s := &cardSet{}
	pack := genericPack(s)
	e := newTestEngine(t, s.cards)
	state := &DrafterState{CardsInPack: pack, NumPacks: 3, PackSize: 15}

	options := [][]int{
		{99},
		{pack[2]},
		{pack[0], pack[1]},
		{pack[1], 42},
	}
	got, err := e.PickFromOptions(context.Background(), options, state)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = e.PickFromOptions(context.Background(), [][]int{{99}, {}}, state)
	assert.ErrorIs(t, err, ErrNoOptions)

	_, err = e.PickFromOptions(context.Background(), options, nil)
	assert.ErrorIs(t, err, ErrNilState)
}

func TestPickFromOptionsRecordsCacheStats(t *testing.T) {
	s := &cardSet{}
	pack := genericPack(s)
	m := metrics.NewEngineMetrics()
	e := newTestEngine(t, s.cards, WithMetrics(m))
	state := &DrafterState{CardsInPack: pack, NumPacks: 3, PackSize: 15}

	_, err := e.PickFromOptions(context.Background(), [][]int{{pack[0]}, {pack[1], pack[2]}}, state)
	require.NoError(t, err)

	costs, synergies := e.CacheStats()
	assert.Equal(t, uint64(costs.Hits+synergies.Hits), m.CacheHits.Load())
	assert.Equal(t, uint64(costs.Misses+synergies.Misses), m.CacheMisses.Load())
	assert.Positive(t, m.CacheMisses.Load())
	assert.Equal(t, uint64(1), m.Stats().Picks)
}

func TestGridOptions(t *testing.T) {
	full := GridOptions([]int{0, 1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, [][]int{
		{0, 1, 2}, {0, 3, 6},
		{3, 4, 5}, {1, 4, 7},
		{6, 7, 8}, {2, 5, 8},
	}, full)

	partial := GridOptions([]int{0, 1, 2, 3, -1, 5, 6})
	assert.Equal(t, []int{3, 5}, partial[2])
	assert.Equal(t, []int{1}, partial[3])
	assert.Equal(t, []int{6}, partial[4])
}
