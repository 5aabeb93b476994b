package probtable

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// Params describes the deck model used to build the table.
type Params struct {
	DeckSize int
	Lands    int
	HandSize int
}

// DefaultParams is a 40-card limited deck with 17 lands, on the play.
var DefaultParams = Params{DeckSize: 40, Lands: 17, HandSize: 7}

// draws returns the number of cards seen by the turn a spell of cmc is cast.
func (p Params) draws(cmc int) int {
	return p.HandSize - 1 + max(cmc, 1)
}

// Generate computes a full table from a multivariate hypergeometric model.
// Each mana value is computed in its own goroutine.
func Generate(ctx context.Context, p Params) (*Table, error) {
	t := newTable(Dims)

	g, ctx := errgroup.WithContext(ctx)
	for cmc := 0; cmc < Dims[0]; cmc++ {
		g.Go(func() error {
			return p.fillCMC(ctx, t, cmc)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// Cell computes a single probability without building the full table.
func Cell(p Params, cmc, devotionA, devotionB, landsA, landsB, landsAB int) float64 {
	grid := p.successGrid(cmc, landsA, landsB, landsAB)
	if grid == nil {
		return 0
	}
	return grid[devotionA][devotionB]
}

func (p Params) fillCMC(ctx context.Context, t *Table, cmc int) error {
	for la := 0; la <= MaxLands; la++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for lb := 0; lb <= MaxLands; lb++ {
			for lab := 0; lab <= MaxLands; lab++ {
				grid := p.successGrid(cmc, la, lb, lab)
				if grid == nil {
					continue
				}
				for da := range grid {
					for db := range grid[da] {
						off := t.offset([Rank]int{cmc, da, db, la, lb, lab})
						t.cells[off] = toFixed(grid[da][db])
					}
				}
			}
		}
	}
	return nil
}

// successGrid returns P(castable) for every devotion pair given the land
// split. It returns nil when the split needs more lands than the deck has.
func (p Params) successGrid(cmc, la, lb, lab int) *[MaxDevotionA + 1][MaxDevotionB + 1]float64 {
	other := p.Lands - la - lb - lab
	if other < 0 {
		return nil
	}
	nonlands := p.DeckSize - p.Lands
	n := p.draws(cmc)
	total := binomial(p.DeckSize, n)

	var grid [MaxDevotionA + 1][MaxDevotionB + 1]float64
	for xa := 0; xa <= min(la, n); xa++ {
		for xb := 0; xb <= min(lb, n-xa); xb++ {
			for xab := 0; xab <= min(lab, n-xa-xb); xab++ {
				rest := n - xa - xb - xab
				need := max(0, cmc-(xa+xb+xab))

				ways := 0.0
				for xo := need; xo <= min(other, rest); xo++ {
					ways += binomial(other, xo) * binomial(nonlands, rest-xo)
				}
				if ways == 0 {
					continue
				}
				prob := binomial(la, xa) * binomial(lb, xb) * binomial(lab, xab) * ways / total

				for da := 0; da <= MaxDevotionA; da++ {
					shortA := max(0, da-xa)
					if shortA > xab {
						break
					}
					for db := 0; db <= MaxDevotionB; db++ {
						if shortA+max(0, db-xb) > xab {
							break
						}
						grid[da][db] += prob
					}
				}
			}
		}
	}
	return &grid
}

func toFixed(p float64) uint16 {
	p = math.Min(1, math.Max(0, p))
	return uint16(math.Round(p * fixedScale))
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 1; i <= k; i++ {
		result = result * float64(n-k+i) / float64(i)
	}
	return math.Round(result)
}
