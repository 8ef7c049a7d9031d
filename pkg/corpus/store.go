package corpus

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/Cadenza/pkg/chord"
)

// SetupSchema initializes the tables used by the corpus in the provided
// database. This function should be called once on a new database before any
// other operations are performed. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS corpus_vocabulary (
    chord_id INTEGER PRIMARY KEY,
    chord_text TEXT NOT NULL UNIQUE
);
`
		schemaProgressions = `
CREATE TABLE IF NOT EXISTS corpus_progressions (
    progression_id INTEGER PRIMARY KEY,
    progression_name TEXT NOT NULL UNIQUE
);
`
		schemaEntries = `
CREATE TABLE IF NOT EXISTS corpus_entries (
    progression_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    chord_id INTEGER NOT NULL,
    PRIMARY KEY (progression_id, position)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaVocab); err != nil {
		return fmt.Errorf("could not create vocabulary schema: %w", err)
	}

	if _, err = tx.Exec(schemaProgressions); err != nil {
		return fmt.Errorf("could not create progressions schema: %w", err)
	}

	if _, err = tx.Exec(schemaEntries); err != nil {
		return fmt.Errorf("could not create entries schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Store is the main entry point for the chord corpus. It holds the database
// connection, a tokenizer for progression text, and prepared SQL statements
// for efficient database interaction.
type Store struct {
	db                      *sql.DB
	tokenizer               *chord.Tokenizer
	stmtGetProgressionInfo  *sql.Stmt
	stmtGetProgressions     *sql.Stmt
	stmtAddProgression      *sql.Stmt
	stmtProgressionLength   *sql.Stmt
	stmtProgressionDistinct *sql.Stmt
	stmtNextPosition        *sql.Stmt
	stmtInsertEntry         *sql.Stmt
	stmtInsertVocab         *sql.Stmt
	stmtGetChordID          *sql.Stmt
	stmtGetChords           *sql.Stmt
	stmtGetVocabLen         *sql.Stmt
	logger                  *slog.Logger
}

// NewStore creates and returns a new Store. It takes a database connection and
// the tokenizer used to read progression text. It pre-compiles all necessary
// SQL statements, returning an error if any preparation fails. A nil
// tokenizer is replaced by chord.NewTokenizer().
func NewStore(db *sql.DB, tokenizer *chord.Tokenizer) (*Store, error) {
	if tokenizer == nil {
		tokenizer = chord.NewTokenizer()
	}

	stmtGetProgressionInfo, err := db.Prepare(`SELECT progression_id FROM corpus_progressions WHERE progression_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetProgressions, err := db.Prepare(`SELECT progression_id, progression_name FROM corpus_progressions ORDER BY progression_id;`)
	if err != nil {
		return nil, err
	}

	stmtAddProgression, err := db.Prepare(`INSERT INTO corpus_progressions (progression_name) VALUES (?);`)
	if err != nil {
		return nil, err
	}

	stmtProgressionLength, err := db.Prepare(`SELECT COUNT(*) FROM corpus_entries WHERE progression_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtProgressionDistinct, err := db.Prepare(`SELECT COUNT(DISTINCT chord_id) FROM corpus_entries WHERE progression_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtNextPosition, err := db.Prepare(`SELECT coalesce(MAX(position) + 1, 0) FROM corpus_entries WHERE progression_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsertEntry, err := db.Prepare(`INSERT INTO corpus_entries (progression_id, position, chord_id) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInsertVocab, err := db.Prepare(`INSERT INTO corpus_vocabulary (chord_text) VALUES (?) ON CONFLICT(chord_text) DO UPDATE SET chord_text=excluded.chord_text RETURNING chord_id;`)
	if err != nil {
		return nil, err
	}

	stmtGetChordID, err := db.Prepare(`SELECT chord_id FROM corpus_vocabulary WHERE chord_text = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetChords, err := db.Prepare(`
SELECT v.chord_text FROM corpus_entries e
JOIN corpus_vocabulary v ON v.chord_id = e.chord_id
WHERE e.progression_id = ?
ORDER BY e.position;`)
	if err != nil {
		return nil, err
	}

	stmtGetVocabLen, err := db.Prepare(`SELECT COUNT(*) FROM corpus_vocabulary;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                      db,
		tokenizer:               tokenizer,
		stmtGetProgressionInfo:  stmtGetProgressionInfo,
		stmtGetProgressions:     stmtGetProgressions,
		stmtAddProgression:      stmtAddProgression,
		stmtProgressionLength:   stmtProgressionLength,
		stmtProgressionDistinct: stmtProgressionDistinct,
		stmtNextPosition:        stmtNextPosition,
		stmtInsertEntry:         stmtInsertEntry,
		stmtInsertVocab:         stmtInsertVocab,
		stmtGetChordID:          stmtGetChordID,
		stmtGetChords:           stmtGetChords,
		stmtGetVocabLen:         stmtGetVocabLen,
		logger:                  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It should be
// called when the Store is no longer needed to free up database resources.
func (s *Store) Close() {
	_ = s.stmtGetProgressionInfo.Close()
	_ = s.stmtGetProgressions.Close()
	_ = s.stmtAddProgression.Close()
	_ = s.stmtProgressionLength.Close()
	_ = s.stmtProgressionDistinct.Close()
	_ = s.stmtNextPosition.Close()
	_ = s.stmtInsertEntry.Close()
	_ = s.stmtInsertVocab.Close()
	_ = s.stmtGetChordID.Close()
	_ = s.stmtGetChords.Close()
	_ = s.stmtGetVocabLen.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Tokenizer returns the tokenizer the Store reads progression text with.
func (s *Store) Tokenizer() *chord.Tokenizer {
	return s.tokenizer
}
