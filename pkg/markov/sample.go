package markov

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// generateOptions Is used by the generate functions to configure sampling.
type generateOptions struct {
	temperature float64
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in GenerateLinear, GenerateInterpolated and GenerateLoop.
type GenerateOption func(*generateOptions)

// WithTemperature adjusts the randomness of chord selection.
// A value of 1.0 samples each chord with its model probability.
// Values > 1.0 flatten the distribution (rare transitions become more likely).
// Values < 1.0 sharpen it (common transitions become even more likely).
// A value of 0 or less always picks the most probable chord, and +Inf picks
// uniformly among the reachable chords. NaN makes generation fail with
// ErrInvalidRange.
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	o := &generateOptions{temperature: 1.0}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// sample draws an index with probability proportional to weights. A nil src
// falls back to the global math/rand/v2 source.
func sample(weights []float64, src rand.Source, temperature float64) (int, error) {
	var total float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, fmt.Errorf("%w: weight %d is %g", ErrEmptyModel, i, w)
		}
		total += w
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: all %d weights are zero", ErrEmptyModel, len(weights))
	}

	switch {
	case math.IsNaN(temperature):
		return 0, fmt.Errorf("%w: temperature is NaN", ErrInvalidRange)
	case temperature <= 0: // Deterministic
		return floats.MaxIdx(weights), nil
	case math.IsInf(temperature, 1):
		weights = uniform(weights)
	case temperature != 1.0:
		tempered := temper(weights, temperature)
		if !usable(tempered) {
			// Every tempered weight underflowed; the limit is the argmax.
			return floats.MaxIdx(weights), nil
		}
		weights = tempered
	}
	return int(distuv.NewCategorical(weights, src).Rand()), nil
}

// uniform gives every positive weight the same mass.
func uniform(weights []float64) []float64 {
	flat := make([]float64, len(weights))
	for i, w := range weights {
		if w > 0 {
			flat[i] = 1
		}
	}
	return flat
}

// usable reports whether weights are finite, non-negative and not all zero.
func usable(weights []float64) bool {
	var total float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
		total += w
	}
	return total > 0
}

// temper raises every weight to the power 1/temperature, working in log space
// so that small weights do not underflow.
func temper(weights []float64, temperature float64) []float64 {
	tempered := make([]float64, len(weights))
	maxLog := math.Inf(-1)
	for i, w := range weights {
		lp := math.Log(w) / temperature
		tempered[i] = lp
		if lp > maxLog {
			maxLog = lp
		}
	}
	for i, lp := range tempered {
		tempered[i] = math.Exp(lp - maxLog)
	}
	return tempered
}
