package markov

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ModelStats holds summary statistics for a trained Model.
type ModelStats struct {
	AlphabetSize int     // The number of distinct chords
	Transitions  int     // The number of distinct chord->chord transitions with non-zero probability
	CachedPowers int     // The number of matrix powers currently memoized
	MeanEntropy  float64 // The mean entropy, in nats, of the next-chord distributions
	MaxEntropy   float64 // The largest entropy, in nats, of any next-chord distribution
}

// Stats returns a snapshot of statistics for the model.
func (m *Model[C]) Stats() ModelStats {
	n := m.Len()
	s := ModelStats{AlphabetSize: n, CachedPowers: m.CachedPowers()}
	if n == 0 {
		return s
	}

	column := make([]float64, n)
	var total float64
	for j := 0; j < n; j++ {
		mat.Col(column, j, m.transit)
		for _, p := range column {
			if p > 0 {
				s.Transitions++
			}
		}
		e := stat.Entropy(column)
		total += e
		if e > s.MaxEntropy {
			s.MaxEntropy = e
		}
	}
	s.MeanEntropy = total / float64(n)
	return s
}
