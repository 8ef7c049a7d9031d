package templating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CTAG07/Cadenza/pkg/chord"
)

// join formats chords with sep between them. The separator comes first so
// that it can be used at the end of a pipeline.
func join(sep string, chords []chord.Chord) string {
	parts := make([]string, len(chords))
	for i, c := range chords {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}

// joinStrings is strings.Join with its arguments swapped for pipelines.
func joinStrings(sep string, s []string) string {
	return strings.Join(s, sep)
}

// names returns every enharmonic spelling of a chord.
func names(c chord.Chord) []string {
	return c.Names()
}

// notes returns the pitch classes of a chord.
func notes(c chord.Chord) []chord.Note {
	return c.Notes()
}

// noteName spells a pitch class.
func noteName(n chord.Note) string {
	return chord.Chord{Root: n % 12}.String()
}

func inc(i int) int {
	return i + 1
}

func dec(i int) int {
	return i - 1
}

func add(a, b int) int {
	return a + b
}

// mod returns a % b. Returns 0 if b is 0.
func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	return a % b
}

// repeat returns a slice of integers from 0 to count-1, capped at MaxRepeat.
func (tm *TemplateManager) repeat(count int) ([]int, error) {
	if count > tm.config.MaxRepeat {
		return nil, fmt.Errorf("repeat count %d exceeds the limit of %d", count, tm.config.MaxRepeat)
	}
	if count < 0 {
		return []int{}, nil
	}
	s := make([]int, count)
	for i := range s {
		s[i] = i
	}
	return s, nil
}

// corpusChords loads a stored progression by name.
func (tm *TemplateManager) corpusChords(name string) ([]chord.Chord, error) {
	if !tm.config.CorpusEnabled || tm.store == nil {
		return nil, errors.New("corpus access is disabled")
	}
	ctx := context.Background()
	info, err := tm.store.GetProgressionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("progression '%s': %w", name, err)
	}
	return tm.store.Chords(ctx, info)
}
