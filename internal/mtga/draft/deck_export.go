package draft

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// ExportArena renders a deck in MTGA import format. Card counts are listed
// by name in alphabetical order.
func (e *Engine) ExportArena(deck *Deck) string {
	if deck == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Deck\n")
	e.writeCounts(&sb, deck.Mainboard.Cards())

	if side := deck.Sideboard.Cards(); len(side) > 0 {
		sb.WriteString("\nSideboard\n")
		e.writeCounts(&sb, side)
	}
	return sb.String()
}

func (e *Engine) writeCounts(sb *strings.Builder, cards []int) {
	counts := make(map[string]int)
	var names []string
	for _, i := range cards {
		name := e.card(i).Name
		if counts[name] == 0 {
			names = append(names, name)
		}
		counts[name]++
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(sb, "%d %s\n", counts[name], name)
	}
}

// ExportDeckToFile writes a deck to a file in MTGA format.
func (e *Engine) ExportDeckToFile(deck *Deck, filename string) error {
	deckString := e.ExportArena(deck)
	if deckString == "" {
		return fmt.Errorf("no deck data to export")
	}

	return os.WriteFile(filename, []byte(deckString), 0o644)
}

// FormatDeckSummary returns a human-readable summary of the deck.
func FormatDeckSummary(deck *Deck) string {
	if deck == nil {
		return "No deck"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "=== %s Deck ===\n", deck.Colors.Name())

	basics := 0
	for _, n := range deck.BasicCounts {
		basics += n
	}
	lands := len(deck.Mainboard.Cards()) - deck.ManaCurve.TotalSpells
	fmt.Fprintf(&sb, "Main Deck: %d spells + %d lands (%d basic)\n", deck.ManaCurve.TotalSpells, lands, basics)
	fmt.Fprintf(&sb, "Sideboard: %d cards\n\n", len(deck.Sideboard.Cards()))

	fmt.Fprintf(&sb, "Curve: %.1f avg CMC (%d creatures, %d non-creatures)\n",
		deck.ManaCurve.AvgCMC,
		deck.ManaCurve.Creatures,
		deck.ManaCurve.NonCreatures)
	for cmc := 0; cmc <= 7; cmc++ {
		if n := deck.ManaCurve.Distribution[cmc]; n > 0 {
			label := fmt.Sprint(cmc)
			if cmc == 7 {
				label = "7+"
			}
			fmt.Fprintf(&sb, "  %-2s %s\n", label, strings.Repeat("#", n))
		}
	}

	sb.WriteString("\nSources:\n")
	sources := deck.Lands.Sources()
	for _, letter := range AllColors {
		if n := sources[letter]; n > 0 {
			fmt.Fprintf(&sb, "  %s: %d\n", ParseColors(letter).Name(), n)
		}
	}

	return sb.String()
}
