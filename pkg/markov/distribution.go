package markov

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Distribution returns the weight of every chord, indexed by chord id, for the
// position genIndex of a progression that has left at position 0 and right at
// position rightIndex:
//
//	P(x at g | left at 0, right at r) = P^g[x][left] * P^(r-g)[right][x] / P^r[right][left]
//
// It requires 0 < genIndex < rightIndex. The weights are non-negative but are
// only normalized up to floating point error.
func (m *Model[C]) Distribution(left, right C, rightIndex, genIndex int) ([]float64, error) {
	if genIndex <= 0 || rightIndex <= genIndex {
		return nil, fmt.Errorf("%w: position %d is not strictly between 0 and %d", ErrInvalidRange, genIndex, rightIndex)
	}
	l, err := m.alphabet.id(left)
	if err != nil {
		return nil, err
	}
	r, err := m.alphabet.id(right)
	if err != nil {
		return nil, err
	}
	return m.distribution(l, r, rightIndex, genIndex)
}

// distribution works on chord ids that are already known to be valid.
func (m *Model[C]) distribution(l, r, rightIndex, genIndex int) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	through := m.power(rightIndex).At(r, l)
	if through < m.zeroThreshold {
		return nil, fmt.Errorf("%w: %v cannot reach %v in %d steps (p=%g)",
			ErrZeroProbabilityPath, m.alphabet.forward[l], m.alphabet.forward[r], rightIndex, through)
	}

	weights := mat.Col(nil, l, m.power(genIndex))
	floats.Mul(weights, mat.Row(nil, r, m.power(rightIndex-genIndex)))
	floats.Scale(1/through, weights)
	return weights, nil
}
