package chord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Note is a pitch class in the range 0..11, where 0 is the note A.
type Note uint8

// Quality is the harmonic quality of a chord.
type Quality uint8

const (
	Major Quality = iota
	Minor
	Dominant
	Augmented
	Diminished
	HalfDiminished
)

// maxExt is the largest number of tones a chord may add on top of its triad (a ninth chord).
const maxExt = 2

// intervals lists the chord tones of each quality relative to the root, triad first.
var intervals = [...][5]Note{
	Major:          {0, 4, 7, 11, 14},
	Minor:          {0, 3, 7, 10, 14},
	Dominant:       {0, 4, 7, 10, 14},
	Augmented:      {0, 4, 8, 12, 16},
	Diminished:     {0, 3, 6, 9, 12},
	HalfDiminished: {0, 3, 6, 10, 14},
}

var qualitySymbols = [...]string{
	Major:          "M",
	Minor:          "m",
	Dominant:       "dom",
	Augmented:      "aug",
	Diminished:     "dim",
	HalfDiminished: "ø",
}

// String returns the symbol used for the quality in chord names.
func (q Quality) String() string {
	if int(q) < len(qualitySymbols) {
		return qualitySymbols[q]
	}
	return "Quality(" + strconv.Itoa(int(q)) + ")"
}

// Chord is an immutable chord value. Chords are comparable and can be used as map keys.
//
// The zero value is an A major triad.
type Chord struct {
	Root    Note
	Quality Quality
	// Ext is the number of chord tones stacked on top of the triad:
	// 0 for a triad, 1 for a seventh chord, 2 for a ninth chord.
	Ext uint8
}

// Valid reports whether the chord has a known quality and extension.
// Every chord returned by Parse is valid.
func (c Chord) Valid() bool {
	return int(c.Quality) < len(intervals) && c.Ext <= maxExt
}

// Size returns the number of tones in the chord. Extensions beyond a ninth are ignored.
func (c Chord) Size() int {
	return 3 + int(min(c.Ext, maxExt))
}

// Notes returns the pitch classes of the chord, root first. It returns nil
// for a chord with an unknown quality.
func (c Chord) Notes() []Note {
	if int(c.Quality) >= len(intervals) {
		return nil
	}
	notes := make([]Note, 0, c.Size())
	for _, rel := range intervals[c.Quality][:c.Size()] {
		notes = append(notes, (c.Root+rel)%12)
	}
	return notes
}

// String returns the chord name using the first spelling of its root.
func (c Chord) String() string {
	return c.format(noteNames[c.Root%12][0])
}

// Names returns the chord name for every enharmonic spelling of its root.
func (c Chord) Names() []string {
	spellings := noteNames[c.Root%12]
	names := make([]string, len(spellings))
	for i, s := range spellings {
		names[i] = c.format(s)
	}
	return names
}

func (c Chord) format(root string) string {
	if c.Ext == 0 {
		switch c.Quality {
		case Major:
			return root
		case HalfDiminished:
			// A bare "ø" names the seventh chord.
			return root + c.Quality.String() + "5"
		}
		return root + c.Quality.String()
	}
	number := strconv.Itoa(c.Size()*2 - 1)
	if c.Quality == Dominant {
		return root + number
	}
	return root + c.Quality.String() + number
}

var noteNames = [12][]string{
	{"A"},
	{"A#", "Bb"},
	{"B"},
	{"C"},
	{"C#", "Db"},
	{"D"},
	{"D#", "Eb"},
	{"E"},
	{"F"},
	{"F#", "Gb"},
	{"G"},
	{"G#", "Ab"},
}

var rootNotes = map[rune]Note{
	'A': 0,
	'B': 2,
	'C': 3,
	'D': 5,
	'E': 7,
	'F': 8,
	'G': 10,
}

// ErrInvalidChord is wrapped by every error returned from Parse.
var ErrInvalidChord = errors.New("invalid chord")

// parseNote reads the root note and its accidental from the start of s and
// returns the note and the unread remainder.
func parseNote(s string) (Note, string, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 0, "", fmt.Errorf("%w: invalid note format", ErrInvalidChord)
	}
	note, ok := rootNotes[r]
	if !ok {
		return 0, "", fmt.Errorf("%w: invalid note character: %c", ErrInvalidChord, r)
	}
	s = s[size:]

	r, size = utf8.DecodeRuneInString(s)
	switch r {
	case '#', '♯':
		note = (note + 1) % 12
		s = s[size:]
	case 'b', '♭':
		note = (note + 11) % 12
		s = s[size:]
	case '♮':
		s = s[size:]
	}
	return note, s, nil
}

// Parse reads a chord name such as "C", "Dm", "G7", "A#dim", "AM7" or "Bø".
//
// The root is an upper case note letter with an optional accidental. It is
// followed by an optional quality (M, maj, m, min, dom, +, aug, o, dim, ø) and
// an optional odd extension number (5, 7 or 9). A number without a quality
// means a dominant chord.
func Parse(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	root, rest, err := parseNote(s)
	if err != nil {
		return Chord{}, err
	}

	split := strings.IndexFunc(rest, unicode.IsDigit)
	if split < 0 {
		split = len(rest)
	}

	var quality Quality
	hasQuality := true
	switch q := rest[:split]; q {
	case "M", "maj":
		quality = Major
	case "m", "min":
		quality = Minor
	case "dom":
		quality = Dominant
	case "+", "aug":
		quality = Augmented
	case "o", "dim":
		quality = Diminished
	case "ø":
		quality = HalfDiminished
	case "":
		hasQuality = false
	default:
		return Chord{}, fmt.Errorf("%w: invalid chord quality: %s", ErrInvalidChord, q)
	}

	if split == len(rest) {
		c := Chord{Root: root, Quality: quality}
		if quality == HalfDiminished {
			c.Ext = 1
		}
		return c, nil
	}

	number, err := strconv.Atoi(rest[split:])
	if err != nil {
		return Chord{}, fmt.Errorf("%w: invalid string format", ErrInvalidChord)
	}
	if number%2 == 0 || number < 5 || number > 5+2*maxExt {
		return Chord{}, fmt.Errorf("%w: invalid chord number: %d", ErrInvalidChord, number)
	}
	if !hasQuality {
		quality = Dominant
	}
	return Chord{Root: root, Quality: quality, Ext: uint8((number+1)/2 - 3)}, nil
}

// MustParse is like Parse but panics if the chord cannot be parsed.
// It is intended for tests and package-level variables.
func MustParse(s string) Chord {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}
