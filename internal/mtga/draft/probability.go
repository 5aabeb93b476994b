package draft

import (
	"cmp"
	"slices"
	"strings"
)

// LandConfiguration holds a land count per color-combination bucket, indexed
// by canonical combination index.
type LandConfiguration [NumCombinations]int

// Total returns the number of lands in the configuration.
func (l *LandConfiguration) Total() int {
	total := 0
	for _, n := range l {
		total += n
	}
	return total
}

// Sources returns the number of lands producing each single color, keyed by
// color letter.
func (l *LandConfiguration) Sources() map[string]int {
	sources := make(map[string]int, len(AllColors))
	for i, n := range l {
		if n == 0 {
			continue
		}
		for _, letter := range CombinationAt(i).Letters() {
			sources[letter] += n
		}
	}
	return sources
}

// Colors returns the colors with at least three sources.
func (l *LandConfiguration) Colors() ColorCombination {
	var colors ColorCombination
	for letter, n := range l.Sources() {
		if n >= 3 {
			colors |= ParseColors(letter)
		}
	}
	return colors
}

// countWhere sums the buckets whose combination satisfies keep.
func (l *LandConfiguration) countWhere(keep func(ColorCombination) bool) int {
	total := 0
	for i, n := range l {
		if n > 0 && keep(CombinationAt(i)) {
			total += n
		}
	}
	return total
}

// costGroup is the number of pips that need one of a set of colors.
type costGroup struct {
	colors ColorCombination
	pips   int
}

// costProfile is the land-independent part of a casting-probability lookup.
type costProfile struct {
	exempt bool
	cmc    int
	groups []costGroup
}

// decomposeCost groups colored pips by the set of colors that can pay them.
// Phyrexian and two-generic hybrid symbols are ignored since they can always
// be paid without colored mana.
func decomposeCost(card *Card) costProfile {
	if card.IsLand() || card.IsSpecialZone() {
		return costProfile{exempt: true}
	}

	pips := make(map[ColorCombination]int)
	for _, symbol := range card.ManaCost {
		symbol = strings.ToLower(symbol)
		if strings.Contains(symbol, "p") || strings.Contains(symbol, "2") {
			continue
		}
		if colors := ParseColors(symbol); colors != Colorless {
			pips[colors]++
		}
	}

	groups := make([]costGroup, 0, len(pips))
	for colors, n := range pips {
		groups = append(groups, costGroup{colors: colors, pips: n})
	}
	slices.SortFunc(groups, func(a, b costGroup) int {
		if c := cmp.Compare(b.pips, a.pips); c != 0 {
			return c
		}
		return cmp.Compare(a.colors.Index(), b.colors.Index())
	})
	return costProfile{cmc: card.CMC, groups: groups}
}

// costProfile returns the memoized decomposition for card.
func (e *Engine) costProfile(card *Card) costProfile {
	return e.costs.GetOrCompute(card.Key(), func() costProfile {
		return decomposeCost(card)
	})
}

// CastingProbability returns the probability that card can be cast on curve
// with the given lands. Lands and special-zone cards always return 1.
func (e *Engine) CastingProbability(card *Card, lands *LandConfiguration) float64 {
	profile := e.costProfile(card)
	if profile.exempt {
		return 1
	}
	return profile.probability(e.table, lands)
}

// probabilityTable is the lookup the model reads from.
type probabilityTable interface {
	Lookup(cmc, devotionA, devotionB, landsA, landsB, landsAB int) float64
}

func (p costProfile) probability(table probabilityTable, lands *LandConfiguration) float64 {
	switch len(p.groups) {
	case 0:
		return table.Lookup(p.cmc, 0, 0, lands.Total(), 0, 0)
	case 1:
		return p.marginal(table, lands, p.groups[0])
	case 2:
		a, b := p.groups[0], p.groups[1]
		onlyA := lands.countWhere(func(c ColorCombination) bool {
			return c.Intersects(a.colors) && !c.Intersects(b.colors)
		})
		onlyB := lands.countWhere(func(c ColorCombination) bool {
			return c.Intersects(b.colors) && !c.Intersects(a.colors)
		})
		both := lands.countWhere(func(c ColorCombination) bool {
			return c.Intersects(a.colors) && c.Intersects(b.colors)
		})
		return clamp01(table.Lookup(p.cmc, a.pips, b.pips, onlyA, onlyB, both))
	default:
		// Approximation: treats the groups as independent.
		prob := 1.0
		for _, g := range p.groups {
			prob *= p.marginal(table, lands, g)
		}
		return prob
	}
}

func (p costProfile) marginal(table probabilityTable, lands *LandConfiguration, g costGroup) float64 {
	sources := lands.countWhere(func(c ColorCombination) bool {
		return c.Intersects(g.colors)
	})
	return clamp01(table.Lookup(p.cmc, g.pips, 0, sources, 0, 0))
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
