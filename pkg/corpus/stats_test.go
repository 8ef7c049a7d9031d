package corpus

import (
	"strings"
	"testing"
)

func TestGetStats(t *testing.T) {
	ctx, s, info := setupTestDBWithTraining(t)

	other, _ := s.InsertProgression(ctx, "pop")
	_ = s.Train(ctx, other, strings.NewReader("C G Am F"))

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if len(stats.Progressions) != 2 || stats.Progressions[0] != info {
		t.Errorf("unexpected progressions: %+v", stats.Progressions)
	}
	if got := stats.Stats[info.Id]; got.Length != 8 || got.DistinctChords != 5 {
		t.Errorf("turnaround stats = %+v, want length 8 and 5 distinct chords", got)
	}
	if got := stats.Stats[other.Id]; got.Length != 4 || got.DistinctChords != 4 {
		t.Errorf("pop stats = %+v, want length 4 and 4 distinct chords", got)
	}
	// Dm7 G7 CM7 Am7 A7 C G Am F
	if stats.VocabSize != 9 {
		t.Errorf("VocabSize = %d, want 9", stats.VocabSize)
	}
}
