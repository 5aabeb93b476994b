package draft

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"

	"go.uber.org/zap"
)

// basicAvailability stands in for an unlimited supply of basics.
const basicAvailability = 1000

// availableLands counts the lands obtainable from the pool, the candidates
// and the basics.
func (e *Engine) availableLands(state *DrafterState, candidates []int) LandConfiguration {
	var available LandConfiguration
	for _, group := range [][]int{state.Picked, candidates} {
		for _, i := range group {
			if c := e.card(i); c.IsLand() {
				available[c.LandColors().Index()]++
			}
		}
	}

	if len(state.Basics) == 0 {
		for _, color := range []ColorCombination{White, Blue, Black, Red, Green} {
			available[color.Index()] += basicAvailability
		}
		return available
	}
	added := make(map[int]bool)
	for _, i := range state.Basics {
		bucket := e.card(i).LandColors().Index()
		if !added[bucket] {
			available[bucket] += basicAvailability
			added[bucket] = true
		}
	}
	return available
}

// newRand returns the generator for an evaluation's initial land draw.
func (e *Engine) newRand(candidates []int) *rand.Rand {
	seed := e.cfg.Seed
	if e.cfg.RandomizeSeed {
		seed = rand.Uint64()
	}
	h := fnv.New64a()
	var buf [8]byte
	for _, c := range candidates {
		binary.LittleEndian.PutUint64(buf[:], uint64(c))
		h.Write(buf[:])
	}
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

// initialLands randomly fills budget slots from the available buckets,
// skipping buckets that are a strict subset of another bucket that still has
// lands left.
func initialLands(available LandConfiguration, budget int, rng *rand.Rand) LandConfiguration {
	var lands LandConfiguration
	remaining := available
	for n := 0; n < budget; n++ {
		options := nonDominated(func(i int) bool { return remaining[i] > 0 })
		if len(options) == 0 {
			break
		}
		pick := options[rng.IntN(len(options))]
		lands[pick]++
		remaining[pick]--
	}
	return lands
}

// nonDominated returns, in index order, the buckets in the set that no other
// member of the set strictly includes.
func nonDominated(inSet func(int) bool) []int {
	var result []int
	for i := 0; i < NumCombinations; i++ {
		if !inSet(i) {
			continue
		}
		dominated := false
		for j := 0; j < NumCombinations; j++ {
			if j != i && inSet(j) && CombinationAt(j).StrictlyIncludes(CombinationAt(i)) {
				dominated = true
				break
			}
		}
		if !dominated {
			result = append(result, i)
		}
	}
	return result
}

// optimizeLands hill-climbs from initial by single-land swaps, accepting the
// first swap that strictly improves the score. It returns the final
// evaluation and the score trace.
func (e *Engine) optimizeLands(ctx context.Context, s *scorer, available, initial LandConfiguration) (*evaluation, []float64, error) {
	current := s.evaluate(initial)
	trace := []float64{current.score}

	for step := 0; step < e.cfg.MaxOptimizerSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		next := e.findBetterLands(s, current, available)
		if next == nil {
			break
		}
		current = next
		trace = append(trace, current.score)
	}
	return current, trace, nil
}

func (e *Engine) findBetterLands(s *scorer, current *evaluation, available LandConfiguration) *evaluation {
	lands := current.lands
	increase := nonDominated(func(i int) bool { return lands[i] < available[i] })
	decrease := nonDominated(func(i int) bool { return lands[i] > 0 })

	for _, inc := range increase {
		for _, dec := range decrease {
			if inc == dec {
				continue
			}
			candidate := lands
			candidate[inc]++
			candidate[dec]--
			if ev := s.evaluate(candidate); ev.score > current.score {
				e.logger.Debug("improved land base",
					zap.Stringer("increase", CombinationAt(inc)),
					zap.Stringer("decrease", CombinationAt(dec)),
					zap.Float64("score", ev.score),
				)
				return ev
			}
		}
	}
	return nil
}
