package markov

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// GenerateLinear walks the chain forward from start and returns the next count
// chords. start itself is not part of the result.
func (m *Model[C]) GenerateLinear(start C, count int, src rand.Source, opts ...GenerateOption) ([]C, error) {
	if m.Len() == 0 {
		return nil, ErrEmptyModel
	}
	cur, err := m.alphabet.id(start)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: count %d is negative", ErrInvalidRange, count)
	}
	options := newGenerateOptions(opts)

	out := make([]C, 0, count)
	column := make([]float64, m.Len())
	for range count {
		mat.Col(column, cur, m.transit)
		next, err := sample(column, src, options.temperature)
		if err != nil {
			return nil, fmt.Errorf("sampling successor of %v: %w", m.alphabet.forward[cur], err)
		}
		out = append(out, m.alphabet.forward[next])
		cur = next
	}
	return out, nil
}

// GenerateInterpolated returns span chords that fit between left and right:
// left sits at position 0, right at position span+1 and the result fills
// positions 1..span. Every chord is sampled conditioned on the chords around it,
// so the whole result is one plausible path from left to right.
//
// Nothing is returned if any step fails; in particular ErrZeroProbabilityPath
// means the model cannot get from left to right in span+1 steps.
func (m *Model[C]) GenerateInterpolated(left, right C, span int, src rand.Source, opts ...GenerateOption) ([]C, error) {
	if m.Len() == 0 {
		return nil, ErrEmptyModel
	}
	l, err := m.alphabet.id(left)
	if err != nil {
		return nil, err
	}
	r, err := m.alphabet.id(right)
	if err != nil {
		return nil, err
	}
	if span < 0 {
		return nil, fmt.Errorf("%w: span %d is negative", ErrInvalidRange, span)
	}
	options := newGenerateOptions(opts)

	ids := make([]int, span)
	if err := m.fill(ids, l, r, src, options); err != nil {
		return nil, err
	}

	out := make([]C, span)
	for i, id := range ids {
		out[i] = m.alphabet.forward[id]
	}
	return out, nil
}

// GenerateLoop returns a progression of length chords that starts with anchor
// and whose last chord leads back to anchor, so it can be repeated seamlessly.
func (m *Model[C]) GenerateLoop(anchor C, length int, src rand.Source, opts ...GenerateOption) ([]C, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: loop length %d is not positive", ErrInvalidRange, length)
	}
	if length == 1 {
		// No interior to sample, but the anchor still has to be able to follow itself.
		if m.Len() == 0 {
			return nil, ErrEmptyModel
		}
		a, err := m.alphabet.id(anchor)
		if err != nil {
			return nil, err
		}
		if p := m.transit.At(a, a); p < m.zeroThreshold {
			return nil, fmt.Errorf("%w: %v cannot follow itself (p=%g)", ErrZeroProbabilityPath, anchor, p)
		}
		return []C{anchor}, nil
	}
	interior, err := m.GenerateInterpolated(anchor, anchor, length-1, src, opts...)
	if err != nil {
		return nil, err
	}
	return append([]C{anchor}, interior...), nil
}

// fill writes chord ids into out, where out sits strictly between the chords
// left and right. The middle slot is sampled first and then each half is
// filled independently with the sampled chord as its new boundary.
func (m *Model[C]) fill(out []int, left, right int, src rand.Source, options *generateOptions) error {
	if len(out) == 0 {
		return nil
	}
	mid := len(out) / 2

	weights, err := m.distribution(left, right, len(out)+1, mid+1)
	if err != nil {
		return err
	}
	x, err := sample(weights, src, options.temperature)
	if err != nil {
		return fmt.Errorf("sampling between %v and %v: %w", m.alphabet.forward[left], m.alphabet.forward[right], err)
	}
	out[mid] = x

	if err := m.fill(out[:mid], left, x, src, options); err != nil {
		return err
	}
	return m.fill(out[mid+1:], x, right, src, options)
}
