package corpus

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/CTAG07/Cadenza/pkg/chord"
)

func TestTrain(t *testing.T) {
	ctx, s, info := setupTestDBWithTraining(t)

	chords, err := s.Chords(ctx, info)
	if err != nil {
		t.Fatalf("Chords() failed: %v", err)
	}
	want := []string{"Dm7", "G7", "CM7", "Am7", "Dm7", "G7", "CM7", "A7"}
	if len(chords) != len(want) {
		t.Fatalf("got %d chords, want %d", len(chords), len(want))
	}
	for i, c := range chords {
		if c != chord.MustParse(want[i]) {
			t.Errorf("chord %d = %v, want %s", i, c, want[i])
		}
	}
}

func TestTrainAppends(t *testing.T) {
	ctx, s, info := setupTestDBWithTraining(t)

	if err := s.Train(ctx, info, strings.NewReader("C, F | G")); err != nil {
		t.Fatalf("Train() failed: %v", err)
	}
	chords, _ := s.Chords(ctx, info)
	if len(chords) != 11 {
		t.Fatalf("got %d chords, want 11", len(chords))
	}
	if chords[8].String() != "C" || chords[10].String() != "G" {
		t.Errorf("appended chords in wrong order: %v", chords[8:])
	}
}

func TestTrainIsAtomic(t *testing.T) {
	ctx, s, info := setupTestDBWithTraining(t)

	if err := s.Train(ctx, info, strings.NewReader("C F\nG X7")); err == nil {
		t.Fatal("expected an error for an invalid chord, got nil")
	}
	chords, _ := s.Chords(ctx, info)
	if len(chords) != 8 {
		t.Errorf("a failed Train changed the progression: %d chords, want 8", len(chords))
	}
}

func TestTrainLargeInput(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()
	info, _ := s.InsertProgression(ctx, "large")

	var sb strings.Builder
	for i := 0; i < entryBatchSize+250; i++ {
		_, _ = fmt.Fprintf(&sb, "%s ", []string{"C", "Am", "F", "G7"}[i%4])
	}
	if err := s.Train(ctx, info, strings.NewReader(sb.String())); err != nil {
		t.Fatalf("Train() failed: %v", err)
	}

	stats, err := s.GetProgressionStats(ctx, info)
	if err != nil {
		t.Fatalf("GetProgressionStats() failed: %v", err)
	}
	if stats.Length != entryBatchSize+250 || stats.DistinctChords != 4 {
		t.Errorf("got %+v, want length %d with 4 distinct chords", stats, entryBatchSize+250)
	}
}
