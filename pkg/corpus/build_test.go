package corpus

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/CTAG07/Cadenza/pkg/chord"
	"github.com/CTAG07/Cadenza/pkg/markov"
)

func TestBuildModel(t *testing.T) {
	ctx, s, info := setupTestDBWithTraining(t)

	m, err := s.BuildModel(ctx, info)
	if err != nil {
		t.Fatalf("BuildModel() failed: %v", err)
	}
	if m.Len() != 5 {
		t.Errorf("alphabet size = %d, want 5", m.Len())
	}

	// Dm7 is always followed by G7.
	p, err := m.Probability(chord.MustParse("G7"), chord.MustParse("Dm7"))
	if err != nil || p != 1 {
		t.Errorf("P(G7 | Dm7) = %v, %v; want 1", p, err)
	}
	// CM7 goes to Am7 and A7 once each.
	p, _ = m.Probability(chord.MustParse("Am7"), chord.MustParse("CM7"))
	if p != 0.5 {
		t.Errorf("P(Am7 | CM7) = %v, want 0.5", p)
	}
	// A7 wraps around to Dm7.
	p, _ = m.Probability(chord.MustParse("Dm7"), chord.MustParse("A7"))
	if p != 1 {
		t.Errorf("P(Dm7 | A7) = %v, want 1", p)
	}
}

func TestBuildModelGenerates(t *testing.T) {
	ctx, s, info := setupTestDBWithTraining(t)

	m, err := s.BuildModel(ctx, info)
	if err != nil {
		t.Fatalf("BuildModel() failed: %v", err)
	}
	loop, err := m.GenerateLoop(chord.MustParse("Dm7"), 4, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("GenerateLoop() failed: %v", err)
	}
	want := []string{"Dm7", "G7", "CM7"}
	for i, w := range want {
		if loop[i] != chord.MustParse(w) {
			t.Errorf("loop[%d] = %v, want %s", i, loop[i], w)
		}
	}
	if last := loop[3].String(); last != "Am7" && last != "A7" {
		t.Errorf("loop[3] = %s, want Am7 or A7", last)
	}
}

func TestBuildModelEmptyProgression(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()
	info, _ := s.InsertProgression(ctx, "empty")

	if _, err := s.BuildModel(ctx, info); !errors.Is(err, markov.ErrInvalidInput) {
		t.Errorf("expected markov.ErrInvalidInput, got %v", err)
	}
}
