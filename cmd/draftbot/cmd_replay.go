package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtga-draftbots/internal/display"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
)

// replayFlags selects a seat and a point in its draft.
type replayFlags struct {
	seat int
	pick int
	step int
}

func (f *replayFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.seat, "seat", 0, "Seat to replay")
	cmd.Flags().IntVar(&f.pick, "pick", -1, "Stop before this pick (0-based, across all packs)")
	cmd.Flags().IntVar(&f.step, "step", -1, "Stop before this step (0-based, across all packs)")
}

func (f *replayFlags) target() replay.Target {
	switch {
	case f.step >= 0:
		return replay.AtStep(f.step)
	case f.pick >= 0:
		return replay.AtPick(f.pick)
	default:
		return replay.AtEnd()
	}
}

func newReplayCommand(a *app) *cobra.Command {
	var flags replayFlags

	cmd := &cobra.Command{
		Use:   "replay <draft>",
		Short: "Show what a seat saw at a point of a draft",
		Long: `Replay a recorded draft from one seat's point of view.

<draft> is a draft file or the id of a stored draft. Without --pick or --step
the replay runs to the end of the draft.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state, err := a.newReplayer().Replay(d, flags.seat, flags.target())
			if err != nil {
				return err
			}
			display.NewDraftPicksDisplayer(cmd.OutOrStdout(), d.Cards).DisplayState(state)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newPickCommand(a *app) *cobra.Command {
	var (
		flags   replayFlags
		reverse bool
	)

	cmd := &cobra.Command{
		Use:   "pick <draft>",
		Short: "Ask the bot which card it would take",
		Long: `Replay a seat to a pick and score every card in its pack.

The bot's choice is marked and its score is broken down by oracle. With
--reverse the bot takes the worst card instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if flags.pick < 0 && flags.step < 0 {
				flags.pick = 0
			}
			state, err := a.newReplayer().Replay(d, flags.seat, flags.target())
			if err != nil {
				return err
			}
			if len(state.CardsInPack) == 0 {
				return fmt.Errorf("seat %d has no pack at that point of the draft", flags.seat)
			}

			engine, err := a.newEngine(d.Cards)
			if err != nil {
				return err
			}
			pick, err := engine.PickFromPack(cmd.Context(), state, reverse)
			if err != nil {
				return err
			}
			display.NewDraftPicksDisplayer(cmd.OutOrStdout(), d.Cards).DisplayPick(state, pick)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Take the worst card instead of the best")

	return cmd
}
