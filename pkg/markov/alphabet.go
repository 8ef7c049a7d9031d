package markov

// alphabet maps the distinct chords of a training sequence to dense ids,
// in order of first appearance.
type alphabet[C comparable] struct {
	forward  []C
	backward map[C]int
}

func newAlphabet[C comparable](seq []C) alphabet[C] {
	a := alphabet[C]{backward: make(map[C]int)}
	for _, c := range seq {
		if _, ok := a.backward[c]; !ok {
			a.backward[c] = len(a.forward)
			a.forward = append(a.forward, c)
		}
	}
	return a
}

func (a alphabet[C]) len() int {
	return len(a.forward)
}

func (a alphabet[C]) id(c C) (int, error) {
	id, ok := a.backward[c]
	if !ok {
		return 0, &UnknownChordError{Chord: c}
	}
	return id, nil
}
