package markov

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// Power returns the n-th power of the transition matrix, n >= 1. Entry (i, j)
// of the result is the probability of reaching chord i from chord j in exactly
// n steps.
//
// Powers are computed by binary exponentiation and every power above the first
// is cached, so repeated requests for the same exponent are free. The returned
// matrix is shared with the cache and must not be modified.
func (m *Model[C]) Power(n int) (mat.Matrix, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: exponent %d is not positive", ErrInvalidRange, n)
	}
	if m.Len() == 0 {
		return nil, ErrEmptyModel
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.power(n), nil
}

// power must be called with m.mu held.
func (m *Model[C]) power(n int) *mat.Dense {
	if n == 1 {
		return m.transit
	}
	if p, ok := m.powers[n]; ok {
		return p
	}

	half := m.power(n / 2)
	p := new(mat.Dense)
	p.Mul(half, half)
	if n%2 == 1 {
		odd := new(mat.Dense)
		odd.Mul(p, m.transit)
		p = odd
	}

	if m.powers == nil {
		m.powers = make(map[int]*mat.Dense)
	}
	m.powers[n] = p
	m.logger.Debug("Transition power cached",
		slog.Int("exponent", n),
		slog.Int("cached_powers", len(m.powers)),
	)
	return p
}

// CachedPowers returns the number of matrix powers currently memoized.
func (m *Model[C]) CachedPowers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.powers)
}

// ResetPowerCache drops every memoized matrix power. Long-lived models that
// interpolate over many different spans can call it to bound memory use.
func (m *Model[C]) ResetPowerCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.powers = make(map[int]*mat.Dense)
}
