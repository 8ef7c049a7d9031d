/*
Package markov builds a first-order Markov model of a chord progression and
samples new progressions from it.

A Model is trained once from an example sequence. Its transition matrix is
column-stochastic: entry (i, j) is the probability that chord i follows chord j.
The training sequence is treated as cyclic, so every chord has at least one
outgoing transition and generated progressions can loop back to their start.

Two kinds of generation are supported:

  - GenerateLinear walks the chain forward from a starting chord.
  - GenerateInterpolated fills the chords between two fixed boundary chords,
    conditioning every sampled chord on both boundaries. Interior chords are
    chosen midpoint first, so the number of distinct matrix powers needed grows
    linearly with the span and each power is computed once per Model.

All randomness comes from a caller supplied math/rand/v2 Source, so a fixed
seed reproduces a progression exactly.
*/
package markov
