package storage

import (
	"context"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/workout"
)

// Subscribe delivers full ordered snapshots of the user's history until ctx
// is cancelled. Each delivery is a complete, consistent replacement of the
// history view — never an incremental patch — so consumers can swap their
// state wholesale with no merge step. The first snapshot is sent
// immediately; afterwards the history is polled at the given interval and
// a snapshot is sent only when it changed.
func (db *DB) Subscribe(ctx context.Context, userID int, interval time.Duration) <-chan []workout.Session {
	return watchSessions(ctx, interval, func(ctx context.Context) ([]workout.Session, error) {
		return db.QuerySessions(ctx, userID, 0)
	})
}

func watchSessions(ctx context.Context, interval time.Duration, fetch func(context.Context) ([]workout.Session, error)) <-chan []workout.Session {
	ch := make(chan []workout.Session, 1)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sent := false
		last := ""
		emit := func() {
			snapshot, err := fetch(ctx)
			if err != nil {
				// Transient fetch failures keep the previous snapshot live.
				return
			}
			fp := snapshotFingerprint(snapshot)
			if sent && fp == last {
				return
			}
			sent = true
			last = fp
			select {
			case ch <- snapshot:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}()

	return ch
}

func snapshotFingerprint(sessions []workout.Session) string {
	var b strings.Builder
	for _, s := range sessions {
		b.WriteString(s.ID.String())
		b.WriteByte(';')
	}
	return b.String()
}
