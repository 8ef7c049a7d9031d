package corpus

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// jazzTurnaround is the training text shared by most tests.
const jazzTurnaround = `# ii V I with a minor turnaround
Dm7 G7 CM7 Am7
Dm7 G7 CM7 A7`

// setupTestDB creates a new SQLite database in a temp dir and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-4000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// setupTestDBWithTraining is a convenience helper that also trains a default progression.
func setupTestDBWithTraining(t *testing.T) (context.Context, *Store, ProgressionInfo) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	info, err := s.InsertProgression(ctx, "turnaround")
	if err != nil {
		t.Fatalf("setup: InsertProgression() failed: %v", err)
	}
	if err := s.Train(ctx, info, strings.NewReader(jazzTurnaround)); err != nil {
		t.Fatalf("setup: Train() failed: %v", err)
	}
	return ctx, s, info
}
