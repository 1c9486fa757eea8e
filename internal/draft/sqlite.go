package draft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps drafts in a local SQLite file so an interrupted process
// (crash, reload, connectivity loss) resumes from the last persisted edit.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the draft database at dir/drafts.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating draft dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "drafts.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening draft db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS drafts (
		user_id    INTEGER PRIMARY KEY,
		blob       TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating drafts table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the stored draft blob, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, userID int) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM drafts WHERE user_id = ?`, userID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	return blob, nil
}

// Put stores the draft blob, replacing any previous value.
func (s *SQLiteStore) Put(ctx context.Context, userID int, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO drafts (user_id, blob) VALUES (?, ?)`,
		userID, blob,
	)
	if err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	return nil
}

// Delete removes the stored draft. Deleting an absent draft is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
