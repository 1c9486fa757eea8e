package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/ironlog/internal/draft"
	"github.com/claude/ironlog/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check: *DB serves as the draft manager's history.
var _ draft.History = (*DB)(nil)

// Append inserts a finalized session. The row id is generated here; the
// authoritative created_at is assigned by the database at insert time — the
// client clock is never trusted for history ordering. Returns the session
// as stored.
func (db *DB) Append(ctx context.Context, s workout.Session) (workout.Session, error) {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return workout.Session{}, fmt.Errorf("marshaling exercises: %w", err)
	}

	s.ID = uuid.New()
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO sessions (id, user_id, name, total_volume, exercises)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		s.ID, s.UserID, s.Name, s.TotalVolume, exercises,
	).Scan(&s.CreatedAt)
	if err != nil {
		return workout.Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return s, nil
}

// QuerySessions retrieves a user's history, newest first. A limit of 0
// means no limit.
func (db *DB) QuerySessions(ctx context.Context, userID, limit int) ([]workout.Session, error) {
	query := `SELECT id, user_id, name, created_at, total_volume, exercises
		 FROM sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []workout.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Latest returns the most recent session, or nil with no error when the
// history is empty.
func (db *DB) Latest(ctx context.Context, userID int) (*workout.Session, error) {
	rows, err := db.QuerySessions(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetSession retrieves a single session by id.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID, userID int) (*workout.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at, total_volume, exercises
		 FROM sessions
		 WHERE id = $1 AND user_id = $2`,
		id, userID)

	s, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session by id. This is a direct remote mutation
// outside the draft state machine: a draft mid-edit that was seeded from
// the deleted session is a free-standing copy and stays untouched. Returns
// true if a row was deleted.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID, userID int) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSession(row pgx.Row) (workout.Session, error) {
	var s workout.Session
	var exercises []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt, &s.TotalVolume, &exercises); err != nil {
		return workout.Session{}, fmt.Errorf("scanning session: %w", err)
	}
	if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
		return workout.Session{}, fmt.Errorf("decoding exercises: %w", err)
	}
	return s, nil
}
