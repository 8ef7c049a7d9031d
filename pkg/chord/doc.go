/*
Package chord implements the chord values used by the generator, together with
parsing and formatting of chord names and a tokenizer for progression text.

Chords are small comparable values, so they can be used directly as map keys
and as the symbol type of a markov.Model. The zero Chord is an A major triad.
*/
package chord
