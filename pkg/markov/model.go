package markov

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultZeroThreshold is the probability below which a boundary-to-boundary
// path is treated as impossible by the conditional distribution.
const DefaultZeroThreshold = 1e-12

// options Is used by Build to configure a Model.
type options struct {
	logger        *slog.Logger
	zeroThreshold float64
}

// Option is a function that configures a Model. It's used as a variadic
// argument to Build.
type Option func(*options)

// WithLogger sets the logger used by the Model. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithZeroThreshold sets the probability below which a path between two
// boundary chords is reported as ErrZeroProbabilityPath.
// Default: DefaultZeroThreshold
func WithZeroThreshold(threshold float64) Option {
	return func(o *options) { o.zeroThreshold = threshold }
}

// Model is a first-order Markov model over chords of type C.
//
// The alphabet and transition matrix never change after Build. Matrix powers
// are computed on demand and cached for the lifetime of the Model; the cache is
// guarded by a mutex, so a Model may be shared between goroutines as long as
// each one samples with its own rand.Source.
type Model[C comparable] struct {
	alphabet      alphabet[C]
	transit       *mat.Dense
	zeroThreshold float64
	logger        *slog.Logger

	mu     sync.Mutex
	powers map[int]*mat.Dense
}

// Build trains a Model from seq. Distinct chords are numbered in order of first
// appearance. Every adjacent pair counts as one transition, and so does the
// pair (last, first): the sequence is treated as cyclic. Each column of the
// count matrix is then normalized to sum to one.
func Build[C comparable](seq []C, opts ...Option) (*Model[C], error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: training sequence is empty", ErrInvalidInput)
	}

	o := &options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		zeroThreshold: DefaultZeroThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}

	ab := newAlphabet(seq)
	n := ab.len()

	transit := mat.NewDense(n, n, nil)
	count := func(prev, cur C) {
		i, j := ab.backward[cur], ab.backward[prev]
		transit.Set(i, j, transit.At(i, j)+1)
	}
	for i := 1; i < len(seq); i++ {
		count(seq[i-1], seq[i])
	}
	count(seq[len(seq)-1], seq[0])

	// The wrap-around pair gives every chord an outgoing transition, so no column sums to zero.
	column := make([]float64, n)
	for j := 0; j < n; j++ {
		mat.Col(column, j, transit)
		floats.Scale(1/floats.Sum(column), column)
		transit.SetCol(j, column)
	}

	o.logger.Debug("Transition model built",
		slog.Int("sequence_length", len(seq)),
		slog.Int("alphabet_size", n),
	)

	return &Model[C]{
		alphabet:      ab,
		transit:       transit,
		zeroThreshold: o.zeroThreshold,
		logger:        o.logger,
		powers:        make(map[int]*mat.Dense),
	}, nil
}

// Len returns the number of distinct chords the model knows.
func (m *Model[C]) Len() int {
	return m.alphabet.len()
}

// Chords returns the alphabet of the model, indexed by chord id.
func (m *Model[C]) Chords() []C {
	return append([]C(nil), m.alphabet.forward...)
}

// ID returns the dense id of c. It fails with an UnknownChordError if c was
// not in the training sequence.
func (m *Model[C]) ID(c C) (int, error) {
	return m.alphabet.id(c)
}

// Chord returns the chord with the given id.
func (m *Model[C]) Chord(id int) (C, error) {
	if id < 0 || id >= m.alphabet.len() {
		var zero C
		return zero, fmt.Errorf("%w: chord id %d outside [0, %d)", ErrInvalidRange, id, m.alphabet.len())
	}
	return m.alphabet.forward[id], nil
}

// Probability returns P(next | current), the probability that next directly follows current.
func (m *Model[C]) Probability(next, current C) (float64, error) {
	i, err := m.alphabet.id(next)
	if err != nil {
		return 0, err
	}
	j, err := m.alphabet.id(current)
	if err != nil {
		return 0, err
	}
	return m.transit.At(i, j), nil
}

// Transition returns the column-stochastic transition matrix. The matrix is
// shared with the model and must not be modified.
func (m *Model[C]) Transition() mat.Matrix {
	return m.transit
}
