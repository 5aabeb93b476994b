package draft

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pick is the result of a bot choosing a card from a pack.
type Pick struct {
	// Position is the chosen card's position in the pack.
	Position int
	// Card is the chosen card index.
	Card int
	// Score is the chosen card's evaluation.
	Score *BotScore
	// Scores holds every card's score in pack order.
	Scores []float64
}

// PickFromPack scores every card in the state's pack and returns the best
// one, or the worst when reverse is set. Ties go to the earliest card.
func (e *Engine) PickFromPack(ctx context.Context, state *DrafterState, reverse bool) (*Pick, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if len(state.CardsInPack) == 0 {
		return nil, ErrEmptyPack
	}
	start := time.Now()

	groups := make([][]int, len(state.CardsInPack))
	for i, c := range state.CardsInPack {
		groups[i] = []int{c}
	}
	results, err := e.evaluateAll(ctx, groups, state)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	best := bestIndex(scores, reverse)

	e.metrics.RecordPick(time.Since(start))
	e.recordCacheStats()
	e.logger.Debug("picked card",
		zap.Int("card", state.CardsInPack[best]),
		zap.Bool("reverse", reverse),
		zap.Float64s("scores", scores),
	)
	return &Pick{
		Position: best,
		Card:     state.CardsInPack[best],
		Score:    results[best],
		Scores:   scores,
	}, nil
}

// PickFromOptions scores each option as a unit and returns the index of the
// best one. Cards not in the current pack are dropped from an option, and
// options left empty are skipped.
func (e *Engine) PickFromOptions(ctx context.Context, options [][]int, state *DrafterState) (int, error) {
	if state == nil {
		return -1, ErrNilState
	}
	start := time.Now()

	var legal [][]int
	var positions []int
	for i, option := range options {
		cards := make([]int, 0, len(option))
		for _, c := range option {
			if slices.Contains(state.CardsInPack, c) {
				cards = append(cards, c)
			}
		}
		if len(cards) > 0 {
			legal = append(legal, cards)
			positions = append(positions, i)
		}
	}
	if len(legal) == 0 {
		return -1, ErrNoOptions
	}

	results, err := e.evaluateAll(ctx, legal, state)
	if err != nil {
		return -1, err
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	e.metrics.RecordPick(time.Since(start))
	e.recordCacheStats()
	return positions[bestIndex(scores, false)], nil
}

// evaluateAll scores each candidate group in parallel.
func (e *Engine) evaluateAll(ctx context.Context, groups [][]int, state *DrafterState) ([]*BotScore, error) {
	results := make([]*BotScore, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, group := range groups {
		g.Go(func() error {
			score, err := e.evaluate(ctx, group, state)
			if err != nil {
				return err
			}
			results[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// bestIndex returns the position of the highest score, or the lowest when
// reverse is set. The first occurrence wins ties.
func bestIndex(scores []float64, reverse bool) int {
	best := 0
	for i, s := range scores[1:] {
		if (!reverse && s > scores[best]) || (reverse && s < scores[best]) {
			best = i + 1
		}
	}
	return best
}

// GridOptions returns the three rows and three columns of a 3x3 grid pack
// laid out row-major. Empty slots hold -1 and are left out.
func GridOptions(grid []int) [][]int {
	at := func(row, col int) int {
		if i := row*3 + col; i < len(grid) {
			return grid[i]
		}
		return -1
	}
	options := make([][]int, 0, 6)
	for i := 0; i < 3; i++ {
		var row, col []int
		for j := 0; j < 3; j++ {
			if c := at(i, j); c >= 0 {
				row = append(row, c)
			}
			if c := at(j, i); c >= 0 {
				col = append(col, c)
			}
		}
		options = append(options, row, col)
	}
	return options
}
