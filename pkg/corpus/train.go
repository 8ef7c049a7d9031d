package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/Cadenza/pkg/chord"
)

// entryBatchSize determines how many chords are buffered in memory before being written to the database.
const entryBatchSize = 1000

// entry Is a struct used for batching chord inserts.
type entry struct {
	position int
	chordID  int
}

// entryWriter appends chords to the end of one progression inside a transaction.
type entryWriter struct {
	progression     ProgressionInfo
	next            int
	vocabCache      map[chord.Chord]int
	batch           []entry
	added           int
	stmtInsertVocab *sql.Stmt
	stmtInsertEntry *sql.Stmt
}

func (s *Store) newEntryWriter(ctx context.Context, tx *sql.Tx, info ProgressionInfo) (*entryWriter, error) {
	var next int
	if err := tx.StmtContext(ctx, s.stmtNextPosition).QueryRowContext(ctx, info.Id).Scan(&next); err != nil {
		return nil, fmt.Errorf("could not find the end of progression '%s': %w", info.Name, err)
	}
	return &entryWriter{
		progression:     info,
		next:            next,
		vocabCache:      make(map[chord.Chord]int),
		batch:           make([]entry, 0, entryBatchSize),
		stmtInsertVocab: tx.StmtContext(ctx, s.stmtInsertVocab),
		stmtInsertEntry: tx.StmtContext(ctx, s.stmtInsertEntry),
	}, nil
}

func (w *entryWriter) add(ctx context.Context, c chord.Chord) error {
	chordID, ok := w.vocabCache[c]
	if !ok {
		if err := w.stmtInsertVocab.QueryRowContext(ctx, c.String()).Scan(&chordID); err != nil {
			return fmt.Errorf("sql insert vocabulary error for chord '%s': %w", c, err)
		}
		w.vocabCache[c] = chordID
	}
	w.batch = append(w.batch, entry{position: w.next, chordID: chordID})
	w.next++
	if len(w.batch) >= entryBatchSize {
		return w.flush(ctx)
	}
	return nil
}

func (w *entryWriter) flush(ctx context.Context) error {
	for _, e := range w.batch {
		if _, err := w.stmtInsertEntry.ExecContext(ctx, w.progression.Id, e.position, e.chordID); err != nil {
			return fmt.Errorf("failed during batch insert of chord at position %d: %w", e.position, err)
		}
	}
	w.added += len(w.batch)
	w.batch = w.batch[:0]
	return nil
}

func (w *entryWriter) close() {
	_ = w.stmtInsertVocab.Close()
	_ = w.stmtInsertEntry.Close()
}

// Train reads progression text from an io.Reader, tokenizes it into chords,
// and appends them to the end of the given progression. The entire operation
// is performed within a single database transaction, so a chord name that
// cannot be parsed leaves the progression unchanged.
func (s *Store) Train(ctx context.Context, info ProgressionInfo, data io.Reader) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// All transaction-specific statements will also be closed with this or the .Commit()
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	w, err := s.newEntryWriter(ctx, tx, info)
	if err != nil {
		return err
	}
	defer w.close()

	stream := s.tokenizer.NewStream(data)
	for {
		c, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("tokenizer error: %w", err)
		}
		if err := w.add(ctx, c); err != nil {
			return err
		}
	}

	if err := w.flush(ctx); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Training completed",
		slog.String("progression_name", info.Name),
		slog.Int("progression_id", info.Id),
		slog.Int("chords_added", w.added),
		slog.Int("progression_length", w.next),
	)

	return tx.Commit()
}

// Chords returns the chords of a progression in order.
func (s *Store) Chords(ctx context.Context, info ProgressionInfo) ([]chord.Chord, error) {
	rows, err := s.stmtGetChords.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var chords []chord.Chord
	for rows.Next() {
		var text string
		if err = rows.Scan(&text); err != nil {
			return nil, err
		}
		c, err := chord.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("corrupt vocabulary entry '%s': %w", text, err)
		}
		chords = append(chords, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return chords, nil
}
