package draft

import "slices"

// Action is a single step action in a pack's step script.
type Action string

const (
	ActionPick        Action = "pick"
	ActionTrash       Action = "trash"
	ActionPickRandom  Action = "pickrandom"
	ActionTrashRandom Action = "trashrandom"
	ActionPass        Action = "pass"
)

// IsPick reports whether the action takes a card into the pool.
func (a Action) IsPick() bool {
	return a == ActionPick || a == ActionPickRandom
}

// IsTrash reports whether the action removes a card without keeping it.
func (a Action) IsTrash() bool {
	return a == ActionTrash || a == ActionTrashRandom
}

// TakesCard reports whether the action removes a card from the pack.
func (a Action) TakesCard() bool {
	return a.IsPick() || a.IsTrash()
}

// Step is one entry of a pack's step script. A negative Amount on a pass
// reverses the pass direction for that step.
type Step struct {
	Action Action `yaml:"action" json:"action"`
	Amount int    `yaml:"amount" json:"amount"`
}

// Count returns how many times the step repeats. Zero means once.
func (s Step) Count() int {
	if s.Amount == 0 {
		return 1
	}
	if s.Amount < 0 {
		return -s.Amount
	}
	return s.Amount
}

// DrafterState is the snapshot of one seat's view of the draft used for a
// single scoring decision. Card references are indices into the catalog.
type DrafterState struct {
	Picked      []int `json:"picked"`
	Trashed     []int `json:"trashed"`
	CardsInPack []int `json:"cards_in_pack"`
	Seen        []int `json:"seen"`
	Basics      []int `json:"basics"`

	PackNum  int `json:"pack_num"`
	PickNum  int `json:"pick_num"`
	NumPacks int `json:"num_packs"`
	PackSize int `json:"pack_size"`

	PickedNum       int  `json:"picked_num"`
	TrashedNum      int  `json:"trashed_num"`
	StepNumber      int  `json:"step_number"`
	PickNumber      int  `json:"pick_number"`
	Step            Step `json:"step"`
	CompletedAmount int  `json:"completed_amount"`
}

// Clone returns a deep copy of the state.
func (s *DrafterState) Clone() *DrafterState {
	c := *s
	c.Picked = slices.Clone(s.Picked)
	c.Trashed = slices.Clone(s.Trashed)
	c.CardsInPack = slices.Clone(s.CardsInPack)
	c.Seen = slices.Clone(s.Seen)
	c.Basics = slices.Clone(s.Basics)
	return &c
}

// poolState returns a state positioned at the end of a draft, used when
// evaluating a finished pool.
func poolState(picked, basics []int) *DrafterState {
	return &DrafterState{
		Picked:   picked,
		Seen:     picked,
		Basics:   basics,
		PackNum:  3,
		PickNum:  15,
		NumPacks: 3,
		PackSize: 15,
	}
}
