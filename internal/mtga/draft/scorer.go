package draft

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OracleResult is one oracle's contribution to a score.
type OracleResult struct {
	Kind   OracleKind `json:"-"`
	Title  string     `json:"title"`
	Weight float64    `json:"weight"`
	Value  float64    `json:"value"`
}

// BotScore is the outcome of evaluating candidates against a drafter state.
type BotScore struct {
	Score              float64           `json:"score"`
	Oracles            []OracleResult    `json:"oracles"`
	Colors             ColorCombination  `json:"colors"`
	Lands              LandConfiguration `json:"lands"`
	NonlandProbability float64           `json:"nonland_probability"`
	Probabilities      map[int]float64   `json:"probabilities"`
	// Trace holds the score of the initial land draw followed by the score
	// after each accepted optimizer step.
	Trace []float64 `json:"trace"`
	Steps int       `json:"steps"`
}

// evaluation is a scored land configuration.
type evaluation struct {
	lands         LandConfiguration
	score         float64
	oracles       []OracleResult
	probabilities map[int]float64
	nonland       float64
}

// scorer evaluates land configurations for a fixed state and candidate set.
type scorer struct {
	engine     *Engine
	state      *DrafterState
	candidates []int
	relevant   []int
	weights    map[OracleKind]float64
}

func (e *Engine) newScorer(candidates []int, state *DrafterState) *scorer {
	s := &scorer{
		engine:     e,
		state:      state,
		candidates: candidates,
		weights:    make(map[OracleKind]float64, len(AllOracles)),
	}
	for _, k := range AllOracles {
		s.weights[k] = k.Weight(state)
	}

	seen := make(map[int]struct{})
	for _, group := range [][]int{state.Picked, candidates, state.Basics, state.Seen} {
		for _, i := range group {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			s.relevant = append(s.relevant, i)
		}
	}
	return s
}

func (s *scorer) evaluate(lands LandConfiguration) *evaluation {
	probs := make(map[int]float64, len(s.relevant))
	for _, i := range s.relevant {
		probs[i] = s.engine.CastingProbability(s.engine.card(i), &lands)
	}
	sc := &scoringContext{
		engine:        s.engine,
		state:         s.state,
		candidates:    s.candidates,
		probabilities: probs,
	}

	ev := &evaluation{lands: lands, probabilities: probs}
	for _, i := range s.state.Picked {
		ev.nonland += s.nonlandProbability(i, probs)
	}
	for _, i := range s.candidates {
		ev.nonland += s.nonlandProbability(i, probs)
	}

	drafting := len(s.candidates) > 0
	total := 0.0
	for _, k := range AllOracles {
		if !drafting && k.PerCandidate() {
			continue
		}
		r := OracleResult{Kind: k, Title: k.String(), Weight: s.weights[k], Value: k.value(sc)}
		ev.oracles = append(ev.oracles, r)
		total += r.Weight * r.Value
	}
	if drafting {
		ev.score = total
	} else {
		ev.score = ev.nonland * total
	}
	return ev
}

func (s *scorer) nonlandProbability(index int, probs map[int]float64) float64 {
	c := s.engine.card(index)
	if c.IsLand() || c.IsSpecialZone() {
		return 0
	}
	return probs[index]
}

func (e *Engine) evaluate(ctx context.Context, candidates []int, state *DrafterState) (*BotScore, error) {
	start := time.Now()

	s := e.newScorer(candidates, state)
	available := e.availableLands(state, candidates)
	initial := initialLands(available, e.cfg.LandBudget, e.newRand(candidates))

	best, trace, err := e.optimizeLands(ctx, s, available, initial)
	if err != nil {
		return nil, err
	}

	score := &BotScore{
		Score:              best.score,
		Oracles:            best.oracles,
		Colors:             best.lands.Colors(),
		Lands:              best.lands,
		NonlandProbability: best.nonland,
		Probabilities:      best.probabilities,
		Trace:              trace,
		Steps:              len(trace) - 1,
	}

	e.metrics.RecordEvaluation(time.Since(start), score.Steps)
	e.logger.Debug("evaluated candidates",
		zap.Ints("candidates", candidates),
		zap.Float64("score", score.Score),
		zap.Stringer("colors", score.Colors),
		zap.Int("steps", score.Steps),
	)
	return score, nil
}
