package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CTAG07/Cadenza/pkg/chord"
	"github.com/CTAG07/Cadenza/pkg/markov"
)

// BuildModel loads a progression and trains a fresh Markov model on it. The
// model is not stored; every call rebuilds it from the progression's chords.
func (s *Store) BuildModel(ctx context.Context, info ProgressionInfo, opts ...markov.Option) (*markov.Model[chord.Chord], error) {
	chords, err := s.Chords(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("could not load progression '%s': %w", info.Name, err)
	}

	opts = append([]markov.Option{markov.WithLogger(s.logger)}, opts...)
	m, err := markov.Build(chords, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not build model from progression '%s': %w", info.Name, err)
	}

	s.logger.DebugContext(ctx, "Model built from progression",
		slog.String("progression_name", info.Name),
		slog.Int("progression_id", info.Id),
		slog.Int("progression_length", len(chords)),
		slog.Int("alphabet_size", m.Len()),
	)
	return m, nil
}
