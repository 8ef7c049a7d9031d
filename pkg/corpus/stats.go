package corpus

import (
	"context"
)

// DBStats holds aggregated statistics for the whole corpus, including a
// list of all progressions and their individual stats.
type DBStats struct {
	Progressions []ProgressionInfo        // Every progression in the corpus, in creation order
	Stats        map[int]ProgressionStats // A mapping of progression ids to their stats
	VocabSize    int                      // The number of distinct chords stored across all progressions
}

// ProgressionStats holds statistics for a single progression.
type ProgressionStats struct {
	Length         int // The number of chords in the progression.
	DistinctChords int // The number of distinct chords, i.e. the alphabet size of a model built from it.
}

// GetStats returns a snapshot of statistics for the entire corpus.
func (s *Store) GetStats(ctx context.Context) (*DBStats, error) {
	rows, err := s.stmtGetProgressions.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	var progressions []ProgressionInfo
	for rows.Next() {
		var info ProgressionInfo
		if err = rows.Scan(&info.Id, &info.Name); err != nil {
			_ = rows.Close()
			return nil, err
		}
		progressions = append(progressions, info)
	}
	_ = rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	var vocabLen int
	if err = s.stmtGetVocabLen.QueryRowContext(ctx).Scan(&vocabLen); err != nil {
		return nil, err
	}

	progressionStats := make(map[int]ProgressionStats, len(progressions))
	for _, p := range progressions {
		st, err := s.GetProgressionStats(ctx, p)
		if err != nil {
			return nil, err
		}
		progressionStats[p.Id] = st
	}

	return &DBStats{
		Progressions: progressions,
		Stats:        progressionStats,
		VocabSize:    vocabLen,
	}, nil
}

// GetProgressionStats returns the stats of a single progression.
func (s *Store) GetProgressionStats(ctx context.Context, info ProgressionInfo) (ProgressionStats, error) {
	var st ProgressionStats
	if err := s.stmtProgressionLength.QueryRowContext(ctx, info.Id).Scan(&st.Length); err != nil {
		return ProgressionStats{}, err
	}
	if err := s.stmtProgressionDistinct.QueryRowContext(ctx, info.Id).Scan(&st.DistinctChords); err != nil {
		return ProgressionStats{}, err
	}
	return st, nil
}
