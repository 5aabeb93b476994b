package draft

import (
	"cmp"
	"math"
	"slices"
)

// allPairsShortestPath runs Floyd-Warshall over a dense distance matrix.
func allPairsShortestPath(distances [][]float64) [][]float64 {
	n := len(distances)
	result := make([][]float64, n)
	for i := range distances {
		result[i] = slices.Clone(distances[i])
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if via := result[i][k] + result[k][j]; result[i][j] > via {
					result[i][j] = via
				}
			}
		}
	}
	return result
}

type neighbor struct {
	dist float64
	node int
}

// growth walks outward from one end of a candidate center edge.
type growth struct {
	list []neighbor
	at   int
}

func (g *growth) radius() float64 {
	if g.at < 0 {
		return 0
	}
	return g.list[g.at].dist
}

func (g *growth) hasNext() bool {
	return g.at < len(g.list)-1
}

func (g *growth) next() int {
	g.at++
	return g.list[g.at].node
}

// shortestKSpanningTree approximates the k nodes of a graph with the smallest
// spanning radius. Every node and every edge midpoint is tried as a center
// and grown outward along shortest paths. It returns node positions.
func shortestKSpanningTree(distances [][]float64, k int) []int {
	n := len(distances)
	switch {
	case k <= 0:
		return nil
	case k >= n:
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	paths := allPairsShortestPath(distances)
	closest := make([][]neighbor, n)
	for i := range paths {
		for j, d := range paths[i] {
			if j != i {
				closest[i] = append(closest[i], neighbor{dist: d, node: j})
			}
		}
		slices.SortStableFunc(closest[i], func(a, b neighbor) int {
			return cmp.Compare(a.dist, b.dist)
		})
	}

	if k == 1 {
		best := 0
		for i := 1; i < n; i++ {
			if closest[i][0].dist < closest[best][0].dist {
				best = i
			}
		}
		return []int{best}
	}

	bestDistance := math.Inf(1)
	var bestNodes []int
	for i := 0; i < n; i++ {
		radius := closest[i][k-2].dist
		if k > 2 {
			radius += closest[i][k-3].dist
		}
		if radius < bestDistance {
			bestDistance = radius
			bestNodes = []int{i}
			for _, nb := range closest[i][:k-1] {
				bestNodes = append(bestNodes, nb.node)
			}
		}

		for j := 0; j < i; j++ {
			nodes, length, ok := growFromEdge(closest, paths[i][j], i, j, k)
			if ok && length < bestDistance {
				bestDistance = length
				bestNodes = nodes
			}
		}
	}
	return bestNodes
}

// growFromEdge collects k nodes around the edge (i, j), keeping the two
// sides' radii balanced.
func growFromEdge(closest [][]neighbor, edge float64, i, j, k int) ([]int, float64, bool) {
	without := func(list []neighbor, skip int) []neighbor {
		out := make([]neighbor, 0, len(list))
		for _, nb := range list {
			if nb.node != skip {
				out = append(out, nb)
			}
		}
		return out
	}
	gi := &growth{list: without(closest[i], j), at: -1}
	gj := &growth{list: without(closest[j], i), at: -1}

	seen := []int{i, j}
	add := func(node int) {
		if !slices.Contains(seen, node) {
			seen = append(seen, node)
		}
	}

	for len(seen) < k {
		ri, rj := gi.radius(), gj.radius()
		switch {
		case gi.hasNext() && ri+edge < rj:
			add(gi.next())
		case gj.hasNext() && rj+edge < ri:
			add(gj.next())
		case gi.hasNext() && gj.hasNext():
			if gj.list[gj.at+1].dist < gi.list[gi.at+1].dist {
				add(gj.next())
			} else {
				add(gi.next())
			}
		case gi.hasNext():
			add(gi.next())
		case gj.hasNext():
			add(gj.next())
		default:
			return nil, 0, false
		}
	}
	return seen, edge + gi.radius() + gj.radius(), true
}
