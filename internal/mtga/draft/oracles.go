package draft

import (
	"fmt"
	"math"
)

// OracleKind identifies one of the scoring heuristics.
type OracleKind int

const (
	OracleRating OracleKind = iota
	OraclePickSynergy
	OracleInternalSynergy
	OracleColors
	OracleOpenness
)

// AllOracles lists every oracle in evaluation order.
var AllOracles = []OracleKind{OracleRating, OraclePickSynergy, OracleInternalSynergy, OracleColors, OracleOpenness}

// weightLattice is indexed by [pack phase][pick phase].
type weightLattice [3][15]float64

func flatLattice(early, mid, late float64) weightLattice {
	var w weightLattice
	for i := range w[0] {
		w[0][i], w[1][i], w[2][i] = early, mid, late
	}
	return w
}

var oracleWeights = map[OracleKind]weightLattice{
	OracleRating:          flatLattice(5, 4, 3),
	OraclePickSynergy:     flatLattice(3, 4, 5),
	OracleInternalSynergy: flatLattice(3, 4, 5),
	OracleColors:          flatLattice(20, 40, 60),
	OracleOpenness: {
		{4, 12, 12.3, 12.6, 13, 13.4, 13.7, 14, 15, 14.6, 14.2, 13.8, 13.4, 13, 12.6},
		{13, 12.6, 12.2, 11.8, 11.4, 11, 10.6, 10.2, 9.8, 9.4, 9, 8.6, 8.2, 7.8, 7},
		{8, 7.5, 7, 6.5, 6, 5.5, 5, 4.5, 4, 3.5, 3, 2.5, 2, 1.5, 1},
	},
}

// String returns the oracle's display title.
func (k OracleKind) String() string {
	switch k {
	case OracleRating:
		return "Rating"
	case OraclePickSynergy:
		return "Pick Synergy"
	case OracleInternalSynergy:
		return "Internal Synergy"
	case OracleColors:
		return "Colors"
	case OracleOpenness:
		return "Openness"
	default:
		return fmt.Sprintf("OracleKind(%d)", int(k))
	}
}

// Description explains what the oracle rewards.
func (k OracleKind) Description() string {
	switch k {
	case OracleRating:
		return "The rating based on the Elo and current color commitments."
	case OraclePickSynergy:
		return "How well this card synergizes with the current picks."
	case OracleInternalSynergy:
		return "How well current picks in these colors synergize with each other."
	case OracleColors:
		return "How well these colors fit in with the current picks."
	case OracleOpenness:
		return "How open these colors appear to be."
	default:
		return ""
	}
}

// PerCandidate reports whether the oracle is evaluated for each candidate
// rather than once for the pool.
func (k OracleKind) PerCandidate() bool {
	switch k {
	case OracleRating, OraclePickSynergy, OracleOpenness:
		return true
	default:
		return false
	}
}

// Weight returns the oracle's weight at the state's draft position.
func (k OracleKind) Weight(state *DrafterState) float64 {
	w := oracleWeights[k]
	row := interpolateIndex(len(w), state.PackNum, state.NumPacks)
	return row.blend(func(i int) float64 {
		col := interpolateIndex(len(w[i]), state.PickNum, state.PackSize)
		return col.blend(func(j int) float64 { return w[i][j] })
	})
}

// latticePoint is a position between two lattice indices.
type latticePoint struct {
	floor, ceil int
	frac        float64
}

// interpolateIndex maps coord/maxCoord onto a lattice of length n. Positions
// past the last point snap to it.
func interpolateIndex(n, coord, maxCoord int) latticePoint {
	if maxCoord <= 0 {
		return latticePoint{}
	}
	coord = min(max(coord, 0), maxCoord)
	index := float64(n) * float64(coord) / float64(maxCoord)
	floor := int(math.Floor(index))
	ceil := int(math.Ceil(index))
	if index == float64(floor) || ceil >= n {
		floor = min(floor, n-1)
		return latticePoint{floor: floor, ceil: floor}
	}
	return latticePoint{floor: floor, ceil: ceil, frac: index - float64(floor)}
}

func (p latticePoint) blend(at func(int) float64) float64 {
	if p.frac == 0 {
		return at(p.floor)
	}
	return p.frac*at(p.ceil) + (1-p.frac)*at(p.floor)
}

// scoringContext is everything an oracle value needs for one land
// configuration.
type scoringContext struct {
	engine        *Engine
	state         *DrafterState
	candidates    []int
	probabilities map[int]float64
}

func (sc *scoringContext) card(index int) *Card {
	return sc.engine.card(index)
}

func (sc *scoringContext) prob(index int) float64 {
	return sc.probabilities[index]
}

// value computes the oracle's value for the context.
func (k OracleKind) value(sc *scoringContext) float64 {
	switch k {
	case OracleRating:
		return sc.meanRating(sc.candidates)
	case OraclePickSynergy:
		if len(sc.candidates) == 0 {
			return 0
		}
		total := 0.0
		for _, c := range sc.candidates {
			total += sc.pickSynergy(c, sc.pool())
		}
		return total / float64(len(sc.candidates))
	case OracleInternalSynergy:
		return sc.internalSynergy(sc.state.Picked)
	case OracleColors:
		return sc.meanRating(sc.state.Picked)
	case OracleOpenness:
		return sc.meanRating(sc.openness())
	default:
		return 0
	}
}

// rating is the capped, probability-weighted power of a single card.
func (sc *scoringContext) rating(index int) float64 {
	strength := math.Pow(10, float64(sc.card(index).Rating()-DefaultElo)/1600)
	return min(MaxScore, sc.prob(index)*strength)
}

func (sc *scoringContext) meanRating(indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	total := 0.0
	for _, i := range indices {
		total += sc.rating(i)
	}
	return total / float64(len(indices))
}

// pool returns picked cards followed by basics.
func (sc *scoringContext) pool() []int {
	pool := make([]int, 0, len(sc.state.Picked)+len(sc.state.Basics))
	pool = append(pool, sc.state.Picked...)
	return append(pool, sc.state.Basics...)
}

func (sc *scoringContext) pickSynergy(candidate int, pool []int) float64 {
	if len(pool) == 0 {
		return 0
	}
	c := sc.card(candidate)
	total := 0.0
	for _, x := range pool {
		total += math.Sqrt(sc.prob(x)) * sc.engine.Synergy(c, sc.card(x))
	}
	return math.Sqrt(sc.prob(candidate)) * total / float64(len(pool))
}

func (sc *scoringContext) internalSynergy(picked []int) float64 {
	weighted, weights := 0.0, 0.0
	for i, a := range picked {
		for j, b := range picked {
			if i == j {
				continue
			}
			w := math.Sqrt(sc.prob(a) * sc.prob(b))
			weighted += w * sc.engine.Synergy(sc.card(a), sc.card(b))
			weights += w
		}
	}
	if weights == 0 {
		return 0
	}
	return weighted / weights
}

// openness returns seen cards that were not picked. It does not depend on
// the candidates.
func (sc *scoringContext) openness() []int {
	exclude := make(map[int]struct{}, len(sc.state.Picked))
	for _, i := range sc.state.Picked {
		exclude[i] = struct{}{}
	}
	seen := make([]int, 0, len(sc.state.Seen))
	for _, i := range sc.state.Seen {
		if _, ok := exclude[i]; !ok {
			seen = append(seen, i)
		}
	}
	return seen
}
