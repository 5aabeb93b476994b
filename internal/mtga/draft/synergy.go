package draft

// MaxScore is the largest value any single oracle or synergy can produce.
const MaxScore = 10.0

// Synergy returns the pairwise synergy of two cards in [0, MaxScore].
// Cards without embeddings have no synergy. A card has maximal synergy with
// another copy of itself.
func (e *Engine) Synergy(a, b *Card) float64 {
	if !a.HasEmbedding() || !b.HasEmbedding() {
		return 0
	}
	ka, kb := a.Key(), b.Key()
	if ka == kb {
		return MaxScore
	}
	if ka > kb {
		ka, kb = kb, ka
	}
	return e.synergies.GetOrCompute([2]string{ka, kb}, func() float64 {
		return embeddingSynergy(a.Embedding, b.Embedding)
	})
}

func embeddingSynergy(x, y []float64) float64 {
	n := min(len(x), len(y))
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += x[i] * y[i]
	}
	return min(MaxScore, max(0, dot*MaxScore))
}
