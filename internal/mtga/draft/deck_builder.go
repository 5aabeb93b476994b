package draft

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Grid is a board laid out by [row][mana value]. Row 0 holds creatures and
// basic lands, row 1 everything else. Mana values of 7 or more share the
// last column.
type Grid [2][8][]int

// Add places a card in the grid.
func (g *Grid) Add(card *Card) {
	row := 1
	if card.IsCreature() || card.IsBasic() {
		row = 0
	}
	col := min(max(card.CMC, 0), 7)
	g[row][col] = append(g[row][col], card.Index)
}

// Cards returns every card in the grid, row by row.
func (g *Grid) Cards() []int {
	var cards []int
	for _, row := range g {
		for _, col := range row {
			cards = append(cards, col...)
		}
	}
	return cards
}

// Deck is a built mainboard and sideboard.
type Deck struct {
	Mainboard Grid
	Sideboard Grid
	Colors    ColorCombination
	// Lands is the optimized land configuration the basics were drawn from.
	Lands LandConfiguration
	// BasicCounts is the number of each basic added, keyed by land name.
	BasicCounts map[string]int
	ManaCurve   ManaCurveAnalysis
}

// ManaCurveAnalysis shows the distribution of mainboard spells by mana value.
type ManaCurveAnalysis struct {
	Distribution map[int]int // mana value → count
	AvgCMC       float64
	TotalSpells  int
	Creatures    int
	NonCreatures int
}

// BuildFailure reports why a pool cannot fill the mandatory deck slots.
type BuildFailure struct {
	MissingNonlands int
	MissingLands    int
}

func (f *BuildFailure) Error() string {
	return fmt.Sprintf("deck build infeasible: missing %d nonlands and %d lands", f.MissingNonlands, f.MissingLands)
}

// Is makes every BuildFailure match ErrBuildInfeasible.
func (f *BuildFailure) Is(target error) bool {
	return target == ErrBuildInfeasible
}

// deckPool is a finished pool split by role.
type deckPool struct {
	nonlands    []int
	lands       []int
	specialZone []int
}

func (e *Engine) partitionPool(pool []int) deckPool {
	var p deckPool
	for _, i := range pool {
		c := e.card(i)
		switch {
		case c.IsSpecialZone():
			p.specialZone = append(p.specialZone, i)
		case c.IsLand():
			p.lands = append(p.lands, i)
		default:
			p.nonlands = append(p.nonlands, i)
		}
	}
	return p
}

// BuildDeck splits a finished pool into a mainboard of NonlandSlots spells
// plus up to LandSlots lands, and a sideboard. basics are the basic land
// cards that may be added freely.
func (e *Engine) BuildDeck(ctx context.Context, pool, basics []int) (*Deck, error) {
	start := time.Now()
	deck, err := e.buildDeck(ctx, pool, basics)
	e.metrics.RecordBuild(time.Since(start), err != nil)
	if err != nil {
		e.logger.Debug("deck build failed", zap.Error(err))
		return nil, err
	}
	return deck, nil
}

func (e *Engine) buildDeck(ctx context.Context, pool, basics []int) (*Deck, error) {
	cfg := e.deckCfg
	parts := e.partitionPool(pool)

	failure := &BuildFailure{MissingNonlands: max(0, cfg.NonlandSlots-len(parts.nonlands))}
	if len(basics) == 0 && len(parts.lands) == 0 {
		failure.MissingLands = cfg.LandSlots
	}
	if failure.MissingNonlands > 0 || failure.MissingLands > 0 {
		return nil, failure
	}

	picked := append(slices.Clone(parts.nonlands), parts.lands...)
	state := poolState(picked, basics)
	eval, err := e.evaluate(ctx, nil, state)
	if err != nil {
		return nil, fmt.Errorf("evaluate pool: %w", err)
	}
	sc := &scoringContext{engine: e, state: state, probabilities: eval.Probabilities}

	var inColor, outOfColor []int
	for _, i := range parts.nonlands {
		if sc.prob(i) >= cfg.InColorThreshold {
			inColor = append(inColor, i)
		} else {
			outOfColor = append(outOfColor, i)
		}
	}
	if short := cfg.NonlandSlots - len(inColor); short > 0 {
		slices.SortStableFunc(outOfColor, func(a, b int) int {
			return cmp.Compare(sc.rating(b), sc.rating(a))
		})
		inColor = append(inColor, outOfColor[:short]...)
		outOfColor = outOfColor[short:]
	}

	main, candidates := e.chooseNonlands(sc, inColor, cfg)
	lands, spareLands := e.chooseLands(parts.lands, eval.Colors, cfg.LandSlots)
	basicCounts := e.apportionBasics(basics, eval.Lands, eval.Colors, cfg.LandSlots-len(lands))

	deck := &Deck{
		Colors:      eval.Colors,
		Lands:       eval.Lands,
		BasicCounts: make(map[string]int),
	}
	for _, i := range append(main, lands...) {
		deck.Mainboard.Add(e.card(i))
	}
	for _, b := range basicCounts {
		c := e.card(b.card)
		deck.BasicCounts[c.Name] += b.count
		for n := 0; n < b.count; n++ {
			deck.Mainboard.Add(c)
		}
	}
	for _, group := range [][]int{outOfColor, candidates, spareLands, parts.specialZone} {
		for _, i := range group {
			deck.Sideboard.Add(e.card(i))
		}
	}
	deck.ManaCurve = e.analyzeManaCurve(main)

	e.logger.Debug("built deck",
		zap.Stringer("colors", deck.Colors),
		zap.Int("nonlands", len(main)),
		zap.Int("lands", len(lands)),
		zap.Any("basics", deck.BasicCounts),
	)
	return deck, nil
}

// chooseNonlands picks the mainboard spells: synergy kernels first, then a
// greedy fill. It returns the chosen cards and the leftovers.
func (e *Engine) chooseNonlands(sc *scoringContext, candidates []int, cfg DeckBuilderConfig) ([]int, []int) {
	candidates = slices.Clone(candidates)
	var main []int

	remaining := min(cfg.KernelBudget, len(candidates), cfg.NonlandSlots)
	for i := 0; i < cfg.KernelCount && len(candidates) > 0; i++ {
		size := remaining / (cfg.KernelCount - i)
		remaining -= size

		kernel := shortestKSpanningTree(e.synergyDistances(sc, candidates), size)
		picked := make([]int, 0, len(kernel))
		for _, pos := range kernel {
			picked = append(picked, candidates[pos])
		}
		main = append(main, picked...)
		candidates = slices.DeleteFunc(candidates, func(c int) bool {
			return slices.Contains(picked, c)
		})
	}

	for len(main) < cfg.NonlandSlots && len(candidates) > 0 {
		best, bestScore := 0, math.Inf(-1)
		for j, c := range candidates {
			score := sc.pickSynergy(c, main) + sc.rating(c)
			if score > bestScore {
				best, bestScore = j, score
			}
		}
		main = append(main, candidates[best])
		candidates = slices.Delete(candidates, best, best+1)
	}
	return main, candidates
}

// synergyDistances builds the kernel distance matrix for cards.
func (e *Engine) synergyDistances(sc *scoringContext, cards []int) [][]float64 {
	d := make([][]float64, len(cards))
	for i := range d {
		d[i] = make([]float64, len(cards))
	}
	for i := range cards {
		for j := 0; j < i; j++ {
			a, b := cards[i], cards[j]
			dist := 1 - sc.prob(a)*sc.prob(b)*e.Synergy(e.card(a), e.card(b))/MaxScore
			d[i][j], d[j][i] = dist, dist
		}
	}
	return d
}

// isPlayableLand reports whether a land supports a deck in colors.
func isPlayableLand(colors ColorCombination, card *Card) bool {
	produced := card.LandColors()
	if colors.Includes(produced) || (produced & colors).Count() > 1 {
		return true
	}
	_, fetch := FetchLands[card.Name]
	return fetch && produced.Intersects(colors)
}

// chooseLands takes playable non-basic pool lands up to slots.
func (e *Engine) chooseLands(lands []int, colors ColorCombination, slots int) (chosen, spare []int) {
	for _, i := range lands {
		if len(chosen) < slots && isPlayableLand(colors, e.card(i)) {
			chosen = append(chosen, i)
		} else {
			spare = append(spare, i)
		}
	}
	return chosen, spare
}

type basicCount struct {
	card  int
	count int
}

// apportionBasics splits slots among the basics by largest remainder, guided
// by the optimized land configuration.
func (e *Engine) apportionBasics(basics []int, lands LandConfiguration, colors ColorCombination, slots int) []basicCount {
	if slots <= 0 || len(basics) == 0 {
		return nil
	}

	byColor := make(map[ColorCombination]int)
	var order []ColorCombination
	for _, b := range basics {
		color := e.card(b).LandColors()
		if _, ok := byColor[color]; !ok {
			byColor[color] = b
			order = append(order, color)
		}
	}

	weights := make([]float64, len(order))
	total := 0.0
	for i, color := range order {
		weights[i] = float64(lands[color.Index()])
		total += weights[i]
	}
	if total == 0 {
		for i, color := range order {
			if color != Colorless && colors.Includes(color) {
				weights[i] = 1
				total++
			}
		}
	}
	if total == 0 {
		weights[0], total = 1, 1
	}

	counts := make([]basicCount, len(order))
	remainders := make([]float64, len(order))
	assigned := 0
	for i, color := range order {
		share := weights[i] * float64(slots) / total
		counts[i] = basicCount{card: byColor[color], count: int(share)}
		remainders[i] = share - math.Floor(share)
		assigned += counts[i].count
	}
	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(remainders[b], remainders[a])
	})
	for n := 0; assigned < slots; n++ {
		counts[idx[n%len(idx)]].count++
		assigned++
	}

	return slices.DeleteFunc(counts, func(b basicCount) bool { return b.count == 0 })
}

// analyzeManaCurve calculates the mana curve of the mainboard spells.
func (e *Engine) analyzeManaCurve(spells []int) ManaCurveAnalysis {
	curve := ManaCurveAnalysis{Distribution: make(map[int]int)}
	if len(spells) == 0 {
		return curve
	}

	totalCMC := 0
	for _, i := range spells {
		c := e.card(i)
		curve.Distribution[min(c.CMC, 7)]++
		totalCMC += c.CMC
		if c.IsCreature() {
			curve.Creatures++
		} else {
			curve.NonCreatures++
		}
	}
	curve.TotalSpells = len(spells)
	curve.AvgCMC = float64(totalCMC) / float64(len(spells))
	return curve
}
