// Package replay reconstructs what a seat could see at any point of a draft
// from every seat's recorded picks and trashes.
package replay

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/metrics"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
)

// ErrInvalidDraft is returned for drafts whose seats and packs do not line up.
var ErrInvalidDraft = errors.New("invalid draft")

// Pack is one pack as opened, with its optional step script.
type Pack struct {
	Cards []int        `yaml:"cards" json:"cards"`
	Steps []draft.Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Seat is one drafter's recorded history.
type Seat struct {
	Name       string `yaml:"name" json:"name"`
	Bot        bool   `yaml:"bot" json:"bot"`
	PickOrder  []int  `yaml:"pick_order" json:"pick_order"`
	TrashOrder []int  `yaml:"trash_order" json:"trash_order"`
}

// Draft is a completed or in-progress draft.
type Draft struct {
	ID     string         `yaml:"id" json:"id"`
	Cards  draft.CardList `yaml:"-" json:"cards"`
	Basics []int          `yaml:"basics" json:"basics"`
	// InitialState holds each seat's packs in opening order.
	InitialState [][]Pack `yaml:"initial_state" json:"initial_state"`
	Seats        []Seat   `yaml:"seats" json:"seats"`
}

// NumSeats returns the number of seats.
func (d *Draft) NumSeats() int {
	return len(d.InitialState)
}

// Validate checks that every seat has a history and the same number of packs.
func (d *Draft) Validate() error {
	if len(d.InitialState) == 0 {
		return fmt.Errorf("%w: no seats", ErrInvalidDraft)
	}
	if len(d.Seats) != len(d.InitialState) {
		return fmt.Errorf("%w: %d seats but %d initial states", ErrInvalidDraft, len(d.Seats), len(d.InitialState))
	}
	numPacks := len(d.InitialState[0])
	for i, packs := range d.InitialState {
		if len(packs) != numPacks {
			return fmt.Errorf("%w: seat %d has %d packs, want %d", ErrInvalidDraft, i, len(packs), numPacks)
		}
	}
	return nil
}

// Target selects where a replay stops.
type Target struct {
	kind targetKind
	n    int
}

type targetKind int

const (
	targetEnd targetKind = iota
	targetPick
	targetStep
)

// AtPick stops before the seat's n-th pick or trash (0-based).
func AtPick(n int) Target { return Target{kind: targetPick, n: n} }

// AtStep stops before the n-th step repetition (0-based).
func AtStep(n int) Target { return Target{kind: targetStep, n: n} }

// AtEnd replays the whole draft.
func AtEnd() Target { return Target{kind: targetEnd} }

// Replayer replays drafts. The zero value is not usable; use New.
type Replayer struct {
	logger  *zap.Logger
	metrics *metrics.EngineMetrics
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithLogger sets the logger used for consistency warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Replayer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics counts consistency warnings in m.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(r *Replayer) { r.metrics = m }
}

// New creates a Replayer.
func New(opts ...Option) *Replayer {
	r := &Replayer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultReplayer = New()

// Replay returns seat's view of the draft at target.
func Replay(d *Draft, seat int, target Target) (*draft.DrafterState, error) {
	return defaultReplayer.Replay(d, seat, target)
}

// All returns seat's view before each of its picks, followed by the final
// state.
func All(d *Draft, seat int) ([]*draft.DrafterState, error) {
	return defaultReplayer.All(d, seat)
}

// Replay returns seat's view of the draft at target.
func (r *Replayer) Replay(d *Draft, seat int, target Target) (*draft.DrafterState, error) {
	var result *draft.DrafterState
	end, err := r.walk(d, seat, func(w *walker, atPick bool) bool {
		switch {
		case target.kind == targetStep && !atPick && w.stepNumber >= target.n,
			target.kind == targetPick && atPick && w.pickNumber() >= target.n:
			result = w.snapshot()
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = end
	}
	return result, nil
}

// All returns seat's view before each of its picks, followed by the final
// state. Element k equals Replay(d, seat, AtPick(k)).
func (r *Replayer) All(d *Draft, seat int) ([]*draft.DrafterState, error) {
	var states []*draft.DrafterState
	end, err := r.walk(d, seat, func(w *walker, atPick bool) bool {
		if atPick {
			states = append(states, w.snapshot())
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return append(states, end), nil
}

// walker holds the lockstep simulation of every seat's packs.
type walker struct {
	d     *Draft
	seat  int
	seats int

	packs      [][]int
	offset     int
	packNum    int
	pickNum    int
	numPacks   int
	packSize   int
	pickedNum  int
	trashedNum int
	stepNumber int
	step       draft.Step
	completed  int

	seen     []int
	seenSet  map[int]struct{}
	lastSize int
}

func (w *walker) pickNumber() int {
	return w.pickedNum + w.trashedNum
}

func (w *walker) see(cards []int) {
	for _, c := range cards {
		if _, ok := w.seenSet[c]; !ok {
			w.seenSet[c] = struct{}{}
			w.seen = append(w.seen, c)
		}
	}
}

func (w *walker) currentPack() []int {
	return w.packs[(w.seat+w.offset)%w.seats]
}

func (w *walker) snapshot() *draft.DrafterState {
	own := w.d.Seats[w.seat]
	return &draft.DrafterState{
		Picked:          slices.Clone(own.PickOrder[:min(w.pickedNum, len(own.PickOrder))]),
		Trashed:         slices.Clone(own.TrashOrder[:min(w.trashedNum, len(own.TrashOrder))]),
		CardsInPack:     slices.Clone(w.currentPack()),
		Seen:            slices.Clone(w.seen),
		Basics:          slices.Clone(w.d.Basics),
		PackNum:         w.packNum,
		PickNum:         w.pickNum,
		NumPacks:        w.numPacks,
		PackSize:        w.packSize,
		PickedNum:       w.pickedNum,
		TrashedNum:      w.trashedNum,
		StepNumber:      w.stepNumber,
		PickNumber:      w.pickNumber(),
		Step:            w.step,
		CompletedAmount: w.completed,
	}
}

func (w *walker) endState() *draft.DrafterState {
	own := w.d.Seats[w.seat]
	return &draft.DrafterState{
		Picked:      slices.Clone(own.PickOrder),
		Trashed:     slices.Clone(own.TrashOrder),
		CardsInPack: []int{},
		Seen:        slices.Clone(w.seen),
		Basics:      slices.Clone(w.d.Basics),
		PackNum:     w.numPacks,
		PickNum:     w.lastSize,
		NumPacks:    w.numPacks,
		PackSize:    w.lastSize,
		PickedNum:   len(own.PickOrder),
		TrashedNum:  len(own.TrashOrder),
		StepNumber:  w.stepNumber,
		PickNumber:  w.pickNumber(),
		Step:        draft.Step{Action: draft.ActionPass, Amount: 1},
	}
}

// walk simulates the draft in lockstep, calling visit before each step
// repetition and again before each take. visit returns true to stop. walk
// returns the final state when the draft runs to completion.
func (r *Replayer) walk(d *Draft, seat int, visit func(w *walker, atPick bool) bool) (*draft.DrafterState, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil draft", ErrInvalidDraft)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if seat < 0 || seat >= d.NumSeats() {
		return nil, fmt.Errorf("%w: %d of %d", draft.ErrInvalidSeat, seat, d.NumSeats())
	}

	w := &walker{
		d:        d,
		seat:     seat,
		seats:    d.NumSeats(),
		numPacks: len(d.InitialState[seat]),
		seenSet:  make(map[int]struct{}),
	}
	for w.packNum = 0; w.packNum < w.numPacks; w.packNum++ {
		w.packs = make([][]int, w.seats)
		for s := range w.packs {
			w.packs[s] = slices.Clone(d.InitialState[s][w.packNum].Cards)
		}
		w.packSize = len(w.packs[seat])
		w.lastSize = w.packSize
		w.offset = 0
		w.pickNum = 0
		w.see(w.packs[seat])

		for _, step := range packSteps(d.InitialState[seat][w.packNum]) {
			w.step = step
			for w.completed = 0; w.completed < step.Count(); w.completed++ {
				if visit(w, false) {
					return nil, nil
				}
				switch {
				case step.Action == draft.ActionPass:
					passLeft := (w.packNum%2 == 0) != (step.Amount < 0)
					if passLeft {
						w.offset = (w.offset + 1) % w.seats
					} else {
						w.offset = (w.offset + w.seats - 1) % w.seats
					}
					w.see(w.currentPack())
				case step.Action.TakesCard():
					if visit(w, true) {
						return nil, nil
					}
					r.takeCards(w, step.Action)
				}
				w.stepNumber++
			}
		}
	}
	return w.endState(), nil
}

// takeCards removes every seat's recorded card for this take from the pack
// that seat holds.
func (r *Replayer) takeCards(w *walker, action draft.Action) {
	for s := 0; s < w.seats; s++ {
		order, n := w.d.Seats[s].PickOrder, w.pickedNum
		if action.IsTrash() {
			order, n = w.d.Seats[s].TrashOrder, w.trashedNum
		}
		holder := (s + w.offset) % w.seats
		if n >= len(order) {
			r.warn("recorded history is shorter than the draft", s, -1, w, holder)
			continue
		}
		card := order[n]
		idx := slices.Index(w.packs[holder], card)
		if idx < 0 {
			r.warn("recorded card not found in pack", s, card, w, holder)
			continue
		}
		w.packs[holder] = slices.Delete(w.packs[holder], idx, idx+1)
	}

	if action.IsPick() {
		w.pickedNum++
	} else {
		w.trashedNum++
	}
	w.pickNum++
}

func (r *Replayer) warn(msg string, seat, card int, w *walker, holder int) {
	r.metrics.RecordReplayWarning()
	r.logger.Warn(msg,
		zap.String("draft", w.d.ID),
		zap.Int("seat", seat),
		zap.Int("card", card),
		zap.Int("pick_number", w.pickNumber()),
		zap.Ints("pack", w.packs[holder]),
	)
}
