// Package display renders draft states, bot picks and pick grades for the
// terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ramonehamilton/mtga-draftbots/internal/metrics"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/pickquality"
)

var (
	header   = color.New(color.Bold)
	picked   = color.New(color.FgGreen, color.Bold)
	dim      = color.New(color.FgHiBlack)
	gradeFor = map[string]*color.Color{
		"A+": color.New(color.FgGreen, color.Bold),
		"A":  color.New(color.FgGreen),
		"B":  color.New(color.FgCyan),
		"C":  color.New(color.FgYellow),
		"D":  color.New(color.FgRed),
		"F":  color.New(color.FgRed, color.Bold),
	}
)

// Namer resolves card indices to names.
type Namer interface {
	Card(index int) *draft.Card
}

// DraftPicksDisplayer writes draft views to a writer.
type DraftPicksDisplayer struct {
	w     io.Writer
	namer Namer
}

// NewDraftPicksDisplayer creates a displayer writing to w. A nil namer shows
// card indices instead of names.
func NewDraftPicksDisplayer(w io.Writer, namer Namer) *DraftPicksDisplayer {
	return &DraftPicksDisplayer{w: w, namer: namer}
}

// DisplayState shows the pack a seat is looking at and its pool so far.
func (d *DraftPicksDisplayer) DisplayState(state *draft.DrafterState) {
	if state == nil {
		fmt.Fprintln(d.w, "No state.")
		return
	}

	header.Fprintf(d.w, "Pack %d, Pick %d", state.PackNum+1, state.PickNum+1)
	fmt.Fprintf(d.w, " (step %d, %s)\n", state.StepNumber, stepLabel(state.Step))
	fmt.Fprintf(d.w, "Picked: %d  Trashed: %d  Seen: %d\n\n", state.PickedNum, state.TrashedNum, len(state.Seen))

	if len(state.CardsInPack) == 0 {
		fmt.Fprintln(d.w, "Pack is empty.")
	} else {
		fmt.Fprintf(d.w, "Pack Contents (%d cards):\n", len(state.CardsInPack))
		d.tree(state.CardsInPack, -1, nil)
	}

	if len(state.Picked) > 0 {
		fmt.Fprintf(d.w, "\nPool (%d cards):\n", len(state.Picked))
		d.tree(state.Picked, -1, nil)
	}
}

// DisplayPick shows every card in the pack with its score, marks the bot's
// choice and breaks its score down by oracle.
func (d *DraftPicksDisplayer) DisplayPick(state *draft.DrafterState, pick *draft.Pick) {
	header.Fprintf(d.w, "Pack %d, Pick %d\n", state.PackNum+1, state.PickNum+1)
	fmt.Fprintf(d.w, "Pack Contents (%d cards):\n", len(state.CardsInPack))
	d.tree(state.CardsInPack, pick.Position, pick.Scores)

	s := pick.Score
	fmt.Fprintln(d.w)
	header.Fprintf(d.w, "Bot pick: %s\n", d.cardName(pick.Card))
	fmt.Fprintf(d.w, "├─ Score: %.3f\n", s.Score)
	fmt.Fprintf(d.w, "├─ Colors: %s\n", s.Colors.Name())
	fmt.Fprintf(d.w, "├─ Lands: %s\n", formatSources(s.Lands))
	fmt.Fprintf(d.w, "├─ Optimizer steps: %d\n", s.Steps)
	fmt.Fprintf(d.w, "└─ Oracles:\n")
	for i, o := range s.Oracles {
		prefix := "   ├─"
		if i == len(s.Oracles)-1 {
			prefix = "   └─"
		}
		fmt.Fprintf(d.w, "%s %-18s value %6.3f  weight %5.2f\n", prefix, o.Title, o.Value, o.Weight)
	}
}

// DisplayGrades shows one seat's graded picks and their summary.
func (d *DraftPicksDisplayer) DisplayGrades(grades []*pickquality.PickQuality) {
	if len(grades) == 0 {
		fmt.Fprintln(d.w, "No picks to grade.")
		return
	}

	fmt.Fprintf(d.w, "%-6s %-30s %-6s %-10s %-30s\n", "Pick", "Card Picked", "Grade", "Rank", "Bot Pick")
	fmt.Fprintf(d.w, "%s\n", strings.Repeat("─", 84))
	for _, g := range grades {
		c := gradeFor[g.Grade]
		if c == nil {
			c = dim
		}
		bot := ""
		if g.BotPick != g.Card {
			bot = truncateString(d.cardName(g.BotPick), 28)
		}
		fmt.Fprintf(d.w, "%-6d %-30s ", g.PickNumber+1, truncateString(g.Name, 28))
		c.Fprintf(d.w, "%-6s", g.Grade)
		fmt.Fprintf(d.w, " %-10s %-30s\n", fmt.Sprintf("%d/%d", g.Rank, g.PackSize), bot)
	}

	s := pickquality.Summarize(grades)
	fmt.Fprintf(d.w, "\nPicks: %d  Average rank: %.2f  Agreed with bot: %d  Overall: ",
		s.Picks, s.AverageRank, s.Agreement)
	if c := gradeFor[s.Grade]; c != nil {
		c.Fprintln(d.w, s.Grade)
	} else {
		fmt.Fprintln(d.w, s.Grade)
	}
}

// DisplayStats shows engine counters and latencies.
func (d *DraftPicksDisplayer) DisplayStats(stats *metrics.EngineStats) {
	header.Fprintln(d.w, "Engine Stats")
	fmt.Fprintf(d.w, "Evaluations: %d (%d optimizer steps)\n", stats.Evaluations, stats.OptimizerSteps)
	fmt.Fprintf(d.w, "Picks: %d  Deck builds: %d (%d failed)\n", stats.Picks, stats.DeckBuilds, stats.BuildFailures)
	fmt.Fprintf(d.w, "Replay warnings: %d\n", stats.ReplayWarnings)
	fmt.Fprintf(d.w, "Cache hit rate: %.1f%%\n", stats.CacheHitRate)
	if stats.EvaluationLatency.Count > 0 {
		fmt.Fprintf(d.w, "Evaluation latency: mean %.2fms p95 %.2fms\n",
			stats.EvaluationLatency.Mean, stats.EvaluationLatency.P95)
	}
}

func (d *DraftPicksDisplayer) tree(cards []int, selected int, scores []float64) {
	for i, card := range cards {
		isSelected := i == selected
		last := i == len(cards)-1
		var prefix string
		switch {
		case last && isSelected:
			prefix = "└─►"
		case last:
			prefix = "└─ "
		case isSelected:
			prefix = "├─►"
		default:
			prefix = "├─ "
		}

		name := truncateString(d.cardName(card), 32)
		score := ""
		if i < len(scores) {
			score = fmt.Sprintf("%8.3f", scores[i])
		}
		if isSelected {
			picked.Fprintf(d.w, "%s %-34s%s [PICKED]\n", prefix, name, score)
		} else {
			fmt.Fprintf(d.w, "%s %-34s%s\n", prefix, name, score)
		}
	}
}

// cardName returns the card's name, or its index when it cannot be found.
func (d *DraftPicksDisplayer) cardName(index int) string {
	if d.namer == nil {
		return fmt.Sprintf("Card #%d", index)
	}
	card := d.namer.Card(index)
	if card == nil || card.Name == "" {
		return fmt.Sprintf("Card #%d", index)
	}
	return card.Name
}

func stepLabel(s draft.Step) string {
	if s.Action == "" {
		return "done"
	}
	return fmt.Sprintf("%s %d", s.Action, s.Count())
}

// formatSources lists the sources per color, e.g. "W:9 U:8".
func formatSources(lands draft.LandConfiguration) string {
	sources := lands.Sources()
	var parts []string
	for _, letter := range draft.AllColors {
		if n := sources[letter]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", letter, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// truncateString truncates a string to the specified length, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
