package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/Cadenza/pkg/chord"
)

// ProgressionInfo holds the identity of a named training progression.
type ProgressionInfo struct {
	Id   int
	Name string
}

// ExportedProgression is the serializable representation of a progression,
// used for JSON-based import and export.
type ExportedProgression struct {
	Name   string   `json:"name"`
	Chords []string `json:"chords"`
}

// GetProgressionInfos retrieves every progression currently in the database,
// returning them in a map keyed by progression name.
func (s *Store) GetProgressionInfos(ctx context.Context) (map[string]ProgressionInfo, error) {
	rows, err := s.stmtGetProgressions.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	progressions := make(map[string]ProgressionInfo)
	for rows.Next() {
		var info ProgressionInfo
		if err = rows.Scan(&info.Id, &info.Name); err != nil {
			return nil, err
		}
		progressions[info.Name] = info
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return progressions, nil
}

// GetProgressionInfo retrieves a single progression by name. It returns
// sql.ErrNoRows if no progression has that name.
func (s *Store) GetProgressionInfo(ctx context.Context, name string) (ProgressionInfo, error) {
	var id int
	if err := s.stmtGetProgressionInfo.QueryRowContext(ctx, name).Scan(&id); err != nil {
		return ProgressionInfo{}, err
	}
	return ProgressionInfo{Id: id, Name: name}, nil
}

// InsertProgression creates a new, empty progression and returns it with its id filled in.
func (s *Store) InsertProgression(ctx context.Context, name string) (ProgressionInfo, error) {
	if name == "" {
		return ProgressionInfo{}, errors.New("progression name must not be empty")
	}
	res, err := s.stmtAddProgression.ExecContext(ctx, name)
	if err != nil {
		return ProgressionInfo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ProgressionInfo{}, err
	}
	return ProgressionInfo{Id: int(id), Name: name}, nil
}

// GetOrInsertProgression returns the progression with the given name, creating it if needed.
func (s *Store) GetOrInsertProgression(ctx context.Context, name string) (ProgressionInfo, error) {
	info, err := s.GetProgressionInfo(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return s.InsertProgression(ctx, name)
	}
	return info, err
}

// RemoveProgression deletes a progression and all of its chords from the
// database. The operation is performed within a transaction. Vocabulary
// entries are kept; see PruneVocabulary.
func (s *Store) RemoveProgression(ctx context.Context, info ProgressionInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM corpus_entries WHERE progression_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove chords for progression %d: %w", info.Id, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM corpus_progressions WHERE progression_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove progression %d: %w", info.Id, err)
	}

	s.logger.InfoContext(ctx, "Progression removed successfully",
		slog.String("progression_name", info.Name),
		slog.Int("progression_id", info.Id),
	)

	return tx.Commit()
}

// ExportProgression serializes a progression into JSON and writes it to the
// provided io.Writer. This is useful for backups or for sharing a corpus.
func (s *Store) ExportProgression(ctx context.Context, info ProgressionInfo, w io.Writer) error {
	chords, err := s.Chords(ctx, info)
	if err != nil {
		return fmt.Errorf("could not load chords for export: %w", err)
	}

	exported := ExportedProgression{
		Name:   info.Name,
		Chords: make([]string, len(chords)),
	}
	for i, c := range chords {
		exported.Chords[i] = c.String()
	}

	s.logger.InfoContext(ctx, "Progression exported",
		slog.String("progression_name", info.Name),
		slog.Int("progression_id", info.Id),
		slog.Int("chords_exported", len(chords)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// ImportProgression reads a JSON representation of a progression from an
// io.Reader and stores it. If a progression with the same name already exists
// the imported chords are appended to it, otherwise it is created. The entire
// operation is transactional: an invalid chord name imports nothing.
func (s *Store) ImportProgression(ctx context.Context, r io.Reader) (ProgressionInfo, error) {
	var imported ExportedProgression
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return ProgressionInfo{}, fmt.Errorf("failed to decode json progression: %w", err)
	}
	if imported.Name == "" {
		return ProgressionInfo{}, errors.New("imported progression has no name")
	}

	chords := make([]chord.Chord, len(imported.Chords))
	for i, text := range imported.Chords {
		c, err := chord.Parse(text)
		if err != nil {
			return ProgressionInfo{}, fmt.Errorf("chord %d of imported progression '%s': %w", i, imported.Name, err)
		}
		chords[i] = c
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ProgressionInfo{}, fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	info := ProgressionInfo{Name: imported.Name}
	err = tx.QueryRowContext(ctx, "SELECT progression_id FROM corpus_progressions WHERE progression_name = ?", imported.Name).Scan(&info.Id)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, "INSERT INTO corpus_progressions (progression_name) VALUES (?)", imported.Name)
		if err != nil {
			return ProgressionInfo{}, fmt.Errorf("failed to insert new progression '%s': %w", imported.Name, err)
		}
		newID, _ := res.LastInsertId()
		info.Id = int(newID)
	} else if err != nil {
		return ProgressionInfo{}, fmt.Errorf("failed to query for progression '%s': %w", imported.Name, err)
	}

	w, err := s.newEntryWriter(ctx, tx, info)
	if err != nil {
		return ProgressionInfo{}, err
	}
	defer w.close()

	for _, c := range chords {
		if err := w.add(ctx, c); err != nil {
			return ProgressionInfo{}, err
		}
	}
	if err := w.flush(ctx); err != nil {
		return ProgressionInfo{}, err
	}

	s.logger.InfoContext(ctx, "Progression imported successfully",
		slog.String("progression_name", info.Name),
		slog.Int("target_progression_id", info.Id),
		slog.Int("chords_merged", len(chords)),
	)

	return info, tx.Commit()
}
