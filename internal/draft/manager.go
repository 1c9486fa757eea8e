package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/ironlog/internal/workout"
)

// DefaultName is the session name a fresh draft opens with.
const DefaultName = "Evening Lift"

// ErrNoDraft is returned by Finish when there is no draft in progress.
var ErrNoDraft = errors.New("no draft in progress")

// ErrCommitFailed wraps a failed append to history. The draft is preserved;
// the user may retry the save, the engine never double-submits.
var ErrCommitFailed = errors.New("committing session to history")

// History is the remote append-only session log the manager hands finished
// drafts to. Timestamps are assigned by the store at append time.
type History interface {
	Append(ctx context.Context, s workout.Session) (workout.Session, error)
	Latest(ctx context.Context, userID int) (*workout.Session, error)
}

// State describes where a user's draft sits in its lifecycle.
type State string

const (
	// StateEmpty: no draft stored and nothing being edited.
	StateEmpty State = "empty"
	// StateEditing: a draft exists and accepts edits.
	StateEditing State = "editing"
	// StateCommitted: a stale draft duplicating the newest history entry
	// was found and discarded on load.
	StateCommitted State = "committed"
)

// Manager owns the per-user draft lifecycle: Empty → Editing → Finalizing →
// Committed. Every edit writes through to the store so a crash resumes from
// the last persisted state; a store failure degrades that user to
// memory-only editing instead of blocking the session.
type Manager struct {
	store   Store
	history History
	log     *slog.Logger

	mu     sync.Mutex
	drafts map[int]workout.Draft
}

// NewManager creates a Manager over the given store and history.
func NewManager(store Store, history History, log *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		history: history,
		log:     log,
		drafts:  make(map[int]workout.Draft),
	}
}

// Load restores the user's draft state. A stored draft whose content
// duplicates the most recent history entry is the residue of a commit that
// was interrupted between "append succeeded" and "clear draft succeeded";
// it is silently discarded rather than resurrected, which is what keeps a
// reconnecting client from double-submitting.
func (m *Manager) Load(ctx context.Context, userID int) (workout.Draft, State) {
	m.mu.Lock()
	if d, ok := m.drafts[userID]; ok {
		m.mu.Unlock()
		return d, StateEditing
	}
	m.mu.Unlock()

	blob, err := m.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return workout.Draft{}, StateEmpty
	}
	if err != nil {
		m.log.Warn("draft store unavailable, starting memory-only", "user", userID, "error", err)
		return workout.Draft{}, StateEmpty
	}

	var d workout.Draft
	if err := json.Unmarshal(blob, &d); err != nil {
		m.log.Warn("discarding unreadable draft", "user", userID, "error", err)
		m.deleteStored(ctx, userID)
		return workout.Draft{}, StateEmpty
	}

	latest, err := m.history.Latest(ctx, userID)
	if err != nil {
		m.log.Warn("history unavailable during draft load", "user", userID, "error", err)
	} else if latest != nil && workout.Matches(d, *latest) {
		m.deleteStored(ctx, userID)
		return workout.Draft{}, StateCommitted
	}

	m.mu.Lock()
	m.drafts[userID] = d
	m.mu.Unlock()
	return d, StateEditing
}

// Open returns the user's editing draft, seeding a fresh one if none is in
// progress.
func (m *Manager) Open(ctx context.Context, userID int) workout.Draft {
	if d, state := m.Load(ctx, userID); state == StateEditing {
		return d
	}
	return m.Replace(ctx, userID, workout.NewDraft(DefaultName))
}

// Repeat seeds a new draft from a finalized session: fresh identifiers
// throughout, completed flags reset, superset linkage preserved. The draft
// is a free-standing copy — deleting the origin session later does not
// touch it.
func (m *Manager) Repeat(ctx context.Context, userID int, s workout.Session) workout.Draft {
	return m.Replace(ctx, userID, workout.Repeat(s))
}

// Replace installs d as the user's editing draft and persists it.
func (m *Manager) Replace(ctx context.Context, userID int, d workout.Draft) workout.Draft {
	m.mu.Lock()
	m.drafts[userID] = d
	m.mu.Unlock()
	m.persist(ctx, userID, d)
	return d
}

// Update applies an edit to the current draft and writes the result
// through to the store. A cold cache consults the store first, so the
// first edit after a restart continues the persisted draft; only when
// nothing is stored does the edit start from a fresh one.
func (m *Manager) Update(ctx context.Context, userID int, edit func(workout.Draft) workout.Draft) workout.Draft {
	m.mu.Lock()
	d, ok := m.drafts[userID]
	m.mu.Unlock()
	if !ok {
		var state State
		if d, state = m.Load(ctx, userID); state != StateEditing {
			d = workout.NewDraft(DefaultName)
		}
	}

	m.mu.Lock()
	if cached, ok := m.drafts[userID]; ok {
		d = cached
	}
	d = edit(d)
	m.drafts[userID] = d
	m.mu.Unlock()

	m.persist(ctx, userID, d)
	return d
}

// Finish finalizes the draft and appends it to history. Only a successful
// append clears the draft: a validation failure or a failed remote commit
// leaves the user's in-progress work intact for retry. The append itself is
// issued exactly once per call.
func (m *Manager) Finish(ctx context.Context, userID int) (workout.Session, error) {
	m.mu.Lock()
	d, ok := m.drafts[userID]
	m.mu.Unlock()
	if !ok {
		var state State
		if d, state = m.Load(ctx, userID); state != StateEditing {
			return workout.Session{}, ErrNoDraft
		}
	}

	final, err := workout.Finalize(d)
	if err != nil {
		return workout.Session{}, err
	}
	final.UserID = userID

	committed, err := m.history.Append(ctx, final)
	if err != nil {
		return workout.Session{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	// Append succeeded; the draft is cleared even if the stored copy cannot
	// be deleted right now — the next Load reconciles it away.
	m.mu.Lock()
	delete(m.drafts, userID)
	m.mu.Unlock()
	m.deleteStored(ctx, userID)

	return committed, nil
}

// Discard drops the user's draft entirely.
func (m *Manager) Discard(ctx context.Context, userID int) {
	m.mu.Lock()
	delete(m.drafts, userID)
	m.mu.Unlock()
	m.deleteStored(ctx, userID)
}

func (m *Manager) persist(ctx context.Context, userID int, d workout.Draft) {
	blob, err := json.Marshal(d)
	if err != nil {
		m.log.Error("marshaling draft", "user", userID, "error", err)
		return
	}
	if err := m.store.Put(ctx, userID, blob); err != nil {
		m.log.Warn("draft persist failed, continuing memory-only", "user", userID, "error", err)
	}
}

func (m *Manager) deleteStored(ctx context.Context, userID int) {
	if err := m.store.Delete(ctx, userID); err != nil {
		m.log.Warn("clearing stored draft failed", "user", userID, "error", err)
	}
}
