package chord

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Tokenizer splits progression text into chords and joins chords back into text.
// Its behavior can be customized with functional options.
type Tokenizer struct {
	separator    string
	splitRegex   *regexp.Regexp
	commentRegex *regexp.Regexp
}

// Option Is a function that configures a Tokenizer.
type Option func(*Tokenizer)

// WithSeparator Sets the string used when joining chords.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *Tokenizer) {
		t.separator = sep
	}
}

// WithSplitRegex sets the regex used to find chord names in a line of input.
// Default: `[^,|\s]+`
func WithSplitRegex(splitRegex string) Option {
	return func(t *Tokenizer) {
		t.splitRegex = regexp.MustCompile(splitRegex)
	}
}

// WithCommentRegex sets the regex deciding whether an input line is ignored.
// Default: `^\s*#`
func WithCommentRegex(commentRegex string) Option {
	return func(t *Tokenizer) {
		t.commentRegex = regexp.MustCompile(commentRegex)
	}
}

// NewTokenizer creates a tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		separator: " ",
		// Chord names are runs of anything that is not a comma, a bar line or whitespace.
		splitRegex:   regexp.MustCompile(`[^,|\s]+`),
		commentRegex: regexp.MustCompile(`^\s*#`),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Separator Returns the configured separator string.
func (t *Tokenizer) Separator() string {
	return t.separator
}

// Join formats chords into a single line using the configured separator.
func (t *Tokenizer) Join(chords []Chord) string {
	var sb strings.Builder
	for i, c := range chords {
		if i > 0 {
			sb.WriteString(t.separator)
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// NewStream Returns a stream processor reading chords from r.
func (t *Tokenizer) NewStream(r io.Reader) *StreamTokenizer {
	return &StreamTokenizer{
		scanner:      bufio.NewScanner(r),
		splitRegex:   t.splitRegex,
		commentRegex: t.commentRegex,
	}
}

// Parse reads every chord from r.
func (t *Tokenizer) Parse(r io.Reader) ([]Chord, error) {
	stream := t.NewStream(r)
	var chords []Chord
	for {
		c, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return chords, nil
		}
		if err != nil {
			return nil, err
		}
		chords = append(chords, c)
	}
}

// ParseProgression reads every chord from r using the default tokenizer.
func ParseProgression(r io.Reader) ([]Chord, error) {
	return NewTokenizer().Parse(r)
}

// StreamTokenizer reads chords from a stream one at a time.
type StreamTokenizer struct {
	scanner      *bufio.Scanner
	buffer       []string
	line         int
	splitRegex   *regexp.Regexp
	commentRegex *regexp.Regexp
}

// Next returns the next chord from the stream. When the stream is exhausted it
// returns io.EOF. A chord name that cannot be parsed is reported together with
// its line number.
func (s *StreamTokenizer) Next() (Chord, error) {
	for len(s.buffer) == 0 {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Chord{}, err
			}
			return Chord{}, io.EOF
		}
		s.line++
		text := s.scanner.Text()
		if s.commentRegex.MatchString(text) {
			continue
		}
		s.buffer = s.splitRegex.FindAllString(text, -1)
	}

	name := s.buffer[0]
	s.buffer = s.buffer[1:]

	c, err := Parse(name)
	if err != nil {
		return Chord{}, fmt.Errorf("line %d: %q: %w", s.line, name, err)
	}
	return c, nil
}
