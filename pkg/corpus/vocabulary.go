package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CTAG07/Cadenza/pkg/chord"
)

// VocabID returns the vocabulary id a chord is stored under. It returns
// sql.ErrNoRows if no progression has ever contained the chord.
func (s *Store) VocabID(ctx context.Context, c chord.Chord) (int, error) {
	var id int
	if err := s.stmtGetChordID.QueryRowContext(ctx, c.String()).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// PruneVocabulary removes every vocabulary entry that no progression refers to
// anymore, which happens after RemoveProgression. It returns the number of
// chords removed.
func (s *Store) PruneVocabulary(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction for pruning: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	rows, err := tx.QueryContext(ctx,
		`SELECT chord_id FROM corpus_vocabulary WHERE chord_id NOT IN (SELECT DISTINCT chord_id FROM corpus_entries)`)
	if err != nil {
		return 0, fmt.Errorf("failed to query for unused chords: %w", err)
	}

	var unused []any
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan chord id: %w", err)
		}
		unused = append(unused, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error after iterating chord rows: %w", err)
	}

	if len(unused) == 0 {
		s.logger.InfoContext(ctx, "No vocabulary to prune")
		return 0, tx.Commit()
	}

	if err := batchDelete(ctx, tx, "corpus_vocabulary", "chord_id", unused); err != nil {
		return 0, fmt.Errorf("failed to prune unused chords from vocabulary: %w", err)
	}

	s.logger.InfoContext(ctx, "Vocabulary pruned successfully",
		slog.Int("chords_removed", len(unused)),
	)

	return len(unused), tx.Commit()
}

// batchDelete deletes rows whose column is in ids, splitting large lists to stay under SQLite's variable limit.
func batchDelete(ctx context.Context, tx *sql.Tx, table, column string, ids []any) error {
	const batchSize = 500

	for i := 0; i < len(ids); i += batchSize {
		batch := ids[i:min(i+batchSize, len(ids))]
		query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (?%s)", table, column, strings.Repeat(",?", len(batch)-1))
		if _, err := tx.ExecContext(ctx, query, batch...); err != nil {
			return err
		}
	}
	return nil
}
