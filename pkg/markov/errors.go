package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned by Build when the training sequence is empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownChord is matched by every UnknownChordError.
	ErrUnknownChord = errors.New("unknown chord")
	// ErrInvalidRange is returned when positions, counts or exponents are out of order or negative.
	ErrInvalidRange = errors.New("invalid range")
	// ErrZeroProbabilityPath is returned when the trained model gives (almost) no
	// probability of reaching the right boundary from the left one in the
	// requested number of steps, which leaves the conditional distribution undefined.
	ErrZeroProbabilityPath = errors.New("zero probability path")
	// ErrEmptyModel is returned when there is nothing to sample from: the model
	// has no chords or a weight vector has no positive, finite weight.
	ErrEmptyModel = errors.New("empty model")
)

// UnknownChordError reports a chord that did not appear in the training sequence.
type UnknownChordError struct {
	Chord any
}

func (e *UnknownChordError) Error() string {
	return fmt.Sprintf("chord %v not present in training data", e.Chord)
}

// Is makes errors.Is(err, ErrUnknownChord) report true.
func (e *UnknownChordError) Is(target error) bool {
	return target == ErrUnknownChord
}
