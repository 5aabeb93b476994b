package replay

import (
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
)

// DefaultSteps is the script for a pack of n cards: pick and pass n times,
// without the final pass.
func DefaultSteps(n int) []draft.Step {
	if n <= 0 {
		return nil
	}
	steps := make([]draft.Step, 0, 2*n-1)
	for i := 0; i < n; i++ {
		steps = append(steps, draft.Step{Action: draft.ActionPick, Amount: 1})
		if i < n-1 {
			steps = append(steps, draft.Step{Action: draft.ActionPass, Amount: 1})
		}
	}
	return steps
}

// FlatStep is one repetition of a step, annotated for display.
type FlatStep struct {
	// Pack is 1-based.
	Pack int `json:"pack"`
	// Pick counts the card-taking steps so far in the pack, 1-based.
	Pick   int          `json:"pick"`
	Action draft.Action `json:"action"`
	// CardsInPack is the pack size at this step.
	CardsInPack int `json:"cards_in_pack"`
	// Remaining is how many repetitions of a take step are left, counting
	// this one. Zero for passes.
	Remaining int `json:"remaining,omitempty"`
}

// FlattenSteps expands repeated steps into one entry per repetition.
func FlattenSteps(steps []draft.Step) []FlatStep {
	cards := 0
	for _, s := range steps {
		if s.Action.TakesCard() {
			cards += s.Count()
		}
	}

	var flat []FlatStep
	pick := 0
	for _, s := range steps {
		n := s.Count()
		for i := 0; i < n; i++ {
			if !s.Action.TakesCard() {
				flat = append(flat, FlatStep{Pick: pick, Action: s.Action, CardsInPack: cards})
				continue
			}
			pick++
			flat = append(flat, FlatStep{Pick: pick, Action: s.Action, CardsInPack: cards, Remaining: n - i})
			cards--
		}
	}
	return flat
}

// packSteps returns the script for a pack, falling back to DefaultSteps.
func packSteps(p Pack) []draft.Step {
	if len(p.Steps) > 0 {
		return p.Steps
	}
	return DefaultSteps(len(p.Cards))
}

// StepList flattens the scripts of every pack, using the first seat's packs.
func StepList(d *Draft) []FlatStep {
	if len(d.InitialState) == 0 {
		return nil
	}
	var list []FlatStep
	for i, p := range d.InitialState[0] {
		for _, s := range FlattenSteps(packSteps(p)) {
			s.Pack = i + 1
			list = append(list, s)
		}
	}
	return list
}

// NextAction returns the action a seat faces after taking picksMade cards.
// It returns false once the draft is over.
func NextAction(d *Draft, picksMade int) (draft.Action, bool) {
	picks := 0
	for _, s := range StepList(d) {
		if picks >= picksMade {
			return s.Action, true
		}
		if s.Action.TakesCard() {
			picks++
		}
	}
	return "", false
}
