// Package pickquality grades recorded picks against the bot's own ranking of
// the pack.
package pickquality

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
)

// maxAlternatives is how many better-ranked cards are reported per pick.
const maxAlternatives = 5

// ErrCardNotInPack is returned when the graded card is not in the pack.
var ErrCardNotInPack = errors.New("picked card not found in pack")

// Alternative represents another card in the pack with its bot score.
type Alternative struct {
	Card  int     `json:"card"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// PickQuality represents the quality analysis of one recorded pick.
type PickQuality struct {
	PickNumber   int           `json:"pick_number"`
	Card         int           `json:"card"`
	Name         string        `json:"name"`
	Grade        string        `json:"grade"` // A+, A, B, C, D, F
	Rank         int           `json:"rank"`  // Position in pack (1 = best)
	PackSize     int           `json:"pack_size"`
	BestScore    float64       `json:"best_score"`
	PickedScore  float64       `json:"picked_score"`
	BotPick      int           `json:"bot_pick"`
	Alternatives []Alternative `json:"alternatives"`
}

// Analyzer grades picks using an engine's pack scores.
type Analyzer struct {
	engine   *draft.Engine
	replayer *replay.Replayer
	logger   *zap.Logger
}

// NewAnalyzer creates a pick quality analyzer. A nil logger disables logging.
func NewAnalyzer(engine *draft.Engine, replayer *replay.Replayer, logger *zap.Logger) *Analyzer {
	if replayer == nil {
		replayer = replay.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{engine: engine, replayer: replayer, logger: logger}
}

// AnalyzePick grades picked against every card in the state's pack.
func (a *Analyzer) AnalyzePick(ctx context.Context, state *draft.DrafterState, picked int) (*PickQuality, error) {
	if state != nil && !slices.Contains(state.CardsInPack, picked) {
		return nil, fmt.Errorf("%w: card %d", ErrCardNotInPack, picked)
	}
	bot, err := a.engine.PickFromPack(ctx, state, false)
	if err != nil {
		return nil, err
	}

	type scored struct {
		card  int
		score float64
	}
	ranked := make([]scored, len(state.CardsInPack))
	for i, c := range state.CardsInPack {
		ranked[i] = scored{card: c, score: bot.Scores[i]}
	}
	slices.SortStableFunc(ranked, func(x, y scored) int {
		return cmp.Compare(y.score, x.score)
	})

	q := &PickQuality{
		PickNumber: state.PickNumber,
		Card:       picked,
		Name:       a.engine.Card(picked).Name,
		PackSize:   len(ranked),
		BestScore:  ranked[0].score,
		BotPick:    bot.Card,
	}
	for i, r := range ranked {
		if r.card == picked {
			q.Rank = i + 1
			q.PickedScore = r.score
			break
		}
	}
	q.Grade = calculateGrade(q.Rank)

	for i, r := range ranked {
		if i+1 >= q.Rank || len(q.Alternatives) >= maxAlternatives {
			break
		}
		q.Alternatives = append(q.Alternatives, Alternative{
			Card:  r.card,
			Name:  a.engine.Card(r.card).Name,
			Score: r.score,
			Rank:  i + 1,
		})
	}
	return q, nil
}

// AnalyzeSeat replays the draft for seat and grades each of its picks.
// Trash steps are skipped.
func (a *Analyzer) AnalyzeSeat(ctx context.Context, d *replay.Draft, seat int) ([]*PickQuality, error) {
	states, err := a.replayer.All(d, seat)
	if err != nil {
		return nil, err
	}
	order := d.Seats[seat].PickOrder

	var results []*PickQuality
	for _, state := range states {
		if !state.Step.Action.IsPick() || len(state.CardsInPack) == 0 || state.PickedNum >= len(order) {
			continue
		}
		q, err := a.AnalyzePick(ctx, state, order[state.PickedNum])
		if errors.Is(err, ErrCardNotInPack) {
			a.logger.Warn("skipping pick outside its pack",
				zap.Int("seat", seat),
				zap.Int("pick", state.PickNumber),
				zap.Int("card", order[state.PickedNum]),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("analyze pick %d: %w", state.PickNumber, err)
		}
		results = append(results, q)
	}
	return results, nil
}

// Summary averages the rank of a seat's picks and counts bot agreement.
type Summary struct {
	Picks       int     `json:"picks"`
	AverageRank float64 `json:"average_rank"`
	Agreement   int     `json:"agreement"`
	Grade       string  `json:"grade"`
}

// Summarize aggregates graded picks.
func Summarize(picks []*PickQuality) Summary {
	s := Summary{Picks: len(picks)}
	if len(picks) == 0 {
		return s
	}
	total := 0
	for _, p := range picks {
		total += p.Rank
		if p.Card == p.BotPick {
			s.Agreement++
		}
	}
	s.AverageRank = float64(total) / float64(len(picks))
	s.Grade = calculateGrade(int(s.AverageRank + 0.5))
	return s
}

// calculateGrade assigns a letter grade based on pick rank.
// Grading scale:
//   - A+: Rank 1 (best card in pack)
//   - A:  Rank 2-3 (top 3)
//   - B:  Rank 4-5 (top 5)
//   - C:  Rank 6-8 (top 8)
//   - D:  Rank 9-10
//   - F:  Rank 11+ (poor pick)
func calculateGrade(rank int) string {
	switch {
	case rank <= 1:
		return "A+"
	case rank <= 3:
		return "A"
	case rank <= 5:
		return "B"
	case rank <= 8:
		return "C"
	case rank <= 10:
		return "D"
	default:
		return "F"
	}
}

// SerializeAlternatives converts alternatives to JSON string for database storage.
func SerializeAlternatives(alternatives []Alternative) (string, error) {
	if alternatives == nil {
		alternatives = []Alternative{}
	}
	data, err := json.Marshal(alternatives)
	if err != nil {
		return "", fmt.Errorf("marshal alternatives: %w", err)
	}
	return string(data), nil
}

// DeserializeAlternatives converts JSON string back to alternatives slice.
func DeserializeAlternatives(jsonStr string) ([]Alternative, error) {
	var alternatives []Alternative
	if err := json.Unmarshal([]byte(jsonStr), &alternatives); err != nil {
		return nil, fmt.Errorf("unmarshal alternatives: %w", err)
	}
	return alternatives, nil
}
