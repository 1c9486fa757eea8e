package draft

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/workout"
	"github.com/google/uuid"
)

// fakeHistory is an in-memory History that can be told to fail appends.
type fakeHistory struct {
	sessions  []workout.Session
	appendErr error
	appends   int
}

func (h *fakeHistory) Append(_ context.Context, s workout.Session) (workout.Session, error) {
	h.appends++
	if h.appendErr != nil {
		return workout.Session{}, h.appendErr
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	h.sessions = append([]workout.Session{s}, h.sessions...)
	return s, nil
}

func (h *fakeHistory) Latest(_ context.Context, _ int) (*workout.Session, error) {
	if len(h.sessions) == 0 {
		return nil, nil
	}
	s := h.sessions[0]
	return &s, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(h History) (*Manager, *MemoryStore) {
	store := NewMemory()
	return NewManager(store, h, testLogger()), store
}

func benchDraft() workout.Draft {
	d := workout.NewDraft("Push Day")
	exID := d.Exercises[0].ID
	setID := d.Exercises[0].Sets[0].ID
	d = d.UpdateExercise(exID, "name", "Bench Press")
	d = d.UpdateSet(exID, setID, "kg", "100")
	d = d.UpdateSet(exID, setID, "reps", "5")
	return d
}

// TestOpenSeedsFreshDraft verifies Open with no stored state returns a draft
// with the default name and persists it.
func TestOpenSeedsFreshDraft(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(&fakeHistory{})

	d := m.Open(ctx, 1)
	if d.Name != DefaultName {
		t.Errorf("Name = %q, want %q", d.Name, DefaultName)
	}
	if len(d.Exercises) != 1 {
		t.Errorf("exercises = %d, want 1", len(d.Exercises))
	}
	if _, err := store.Get(ctx, 1); err != nil {
		t.Errorf("fresh draft not persisted: %v", err)
	}
}

// TestUpdateWritesThrough verifies every edit persists and a new Manager
// over the same store resumes from the last edit.
func TestUpdateWritesThrough(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	m, store := newTestManager(history)

	d := m.Open(ctx, 1)
	exID := d.Exercises[0].ID
	m.Update(ctx, 1, func(d workout.Draft) workout.Draft {
		return d.UpdateExercise(exID, "name", "Deadlift")
	})

	// Simulate a restart: fresh manager, same store.
	m2 := NewManager(store, history, testLogger())
	restored, state := m2.Load(ctx, 1)
	if state != StateEditing {
		t.Fatalf("state = %q, want %q", state, StateEditing)
	}
	if restored.Exercises[0].Name != "Deadlift" {
		t.Errorf("restored name = %q, want Deadlift", restored.Exercises[0].Name)
	}
}

// TestUpdateAfterRestartContinuesPersistedDraft verifies the first edit on
// a cold cache continues the stored draft instead of starting a blank one
// and overwriting it.
func TestUpdateAfterRestartContinuesPersistedDraft(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	m, store := newTestManager(history)

	m.Replace(ctx, 1, benchDraft())

	// Simulate a restart: fresh manager, same store, edit before any load.
	m2 := NewManager(store, history, testLogger())
	d := m2.Update(ctx, 1, func(d workout.Draft) workout.Draft {
		return d.WithName("Push Day II")
	})
	if len(d.Exercises) == 0 || d.Exercises[0].Name != "Bench Press" {
		t.Fatalf("updated draft lost stored content: %+v", d)
	}
	if d.Name != "Push Day II" {
		t.Errorf("updated name = %q, want Push Day II", d.Name)
	}

	m3 := NewManager(store, history, testLogger())
	restored, state := m3.Load(ctx, 1)
	if state != StateEditing {
		t.Fatalf("state = %q, want %q", state, StateEditing)
	}
	if restored.Exercises[0].Name != "Bench Press" {
		t.Errorf("restored name = %q, want Bench Press", restored.Exercises[0].Name)
	}
}

// TestUpdateEmptyStoreStartsFresh verifies an edit with nothing cached and
// nothing stored starts from the default draft.
func TestUpdateEmptyStoreStartsFresh(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(&fakeHistory{})

	d := m.Update(ctx, 1, func(d workout.Draft) workout.Draft {
		return d.WithName("Quick Session")
	})
	if d.Name != "Quick Session" || len(d.Exercises) != 1 {
		t.Fatalf("draft = %+v, want fresh draft with new name", d)
	}
	if _, err := store.Get(ctx, 1); err != nil {
		t.Errorf("edited draft not persisted: %v", err)
	}
}

// TestFinishCommitsAndClears verifies a successful finish appends exactly
// once, clears both cache and store, and the next Load is empty.
func TestFinishCommitsAndClears(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	m, store := newTestManager(history)

	m.Replace(ctx, 1, benchDraft())
	s, err := m.Finish(ctx, 1)
	if err != nil {
		t.Fatalf("finish error: %v", err)
	}
	if s.TotalVolume != 500 {
		t.Errorf("TotalVolume = %v, want 500", s.TotalVolume)
	}
	if s.ID == uuid.Nil {
		t.Error("committed session has no id")
	}
	if history.appends != 1 {
		t.Errorf("appends = %d, want 1", history.appends)
	}

	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("stored draft after finish: err = %v, want ErrNotFound", err)
	}
	if _, state := m.Load(ctx, 1); state != StateEmpty {
		t.Errorf("state after finish = %q, want %q", state, StateEmpty)
	}
}

// TestFinishEmptyDraftKeepsDraft verifies a validation failure surfaces
// ErrEmptyWorkout and leaves the draft editable.
func TestFinishEmptyDraftKeepsDraft(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(&fakeHistory{})

	m.Open(ctx, 1)
	_, err := m.Finish(ctx, 1)
	if !errors.Is(err, workout.ErrEmptyWorkout) {
		t.Fatalf("err = %v, want ErrEmptyWorkout", err)
	}
	if _, state := m.Load(ctx, 1); state != StateEditing {
		t.Errorf("state = %q, want %q", state, StateEditing)
	}
}

// TestFinishAppendFailureKeepsDraft verifies a failed remote commit returns
// ErrCommitFailed and preserves the draft for retry; the retry succeeds.
func TestFinishAppendFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{appendErr: errors.New("connection refused")}
	m, store := newTestManager(history)

	m.Replace(ctx, 1, benchDraft())
	_, err := m.Finish(ctx, 1)
	if !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("err = %v, want ErrCommitFailed", err)
	}
	if _, err := store.Get(ctx, 1); err != nil {
		t.Errorf("draft lost after failed commit: %v", err)
	}

	history.appendErr = nil
	if _, err := m.Finish(ctx, 1); err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if history.appends != 2 {
		t.Errorf("appends = %d, want 2", history.appends)
	}
}

// TestFinishNoDraft verifies Finish without a draft returns ErrNoDraft and
// never touches history.
func TestFinishNoDraft(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	m, _ := newTestManager(history)

	_, err := m.Finish(ctx, 1)
	if !errors.Is(err, ErrNoDraft) {
		t.Fatalf("err = %v, want ErrNoDraft", err)
	}
	if history.appends != 0 {
		t.Errorf("appends = %d, want 0", history.appends)
	}
}

// TestLoadReconcilesCommittedDraft verifies the interrupted-commit case: a
// stored draft whose content duplicates the newest history entry is
// discarded on load instead of resurrected.
func TestLoadReconcilesCommittedDraft(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	m, store := newTestManager(history)

	// Commit a draft, then put its stored copy back as if the clear step
	// never ran.
	d := benchDraft()
	m.Replace(ctx, 1, d)
	if _, err := m.Finish(ctx, 1); err != nil {
		t.Fatalf("finish error: %v", err)
	}
	m2 := NewManager(store, history, testLogger())
	m2.Replace(ctx, 1, d)

	m3 := NewManager(store, history, testLogger())
	_, state := m3.Load(ctx, 1)
	if state != StateCommitted {
		t.Fatalf("state = %q, want %q", state, StateCommitted)
	}
	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale draft not cleared: err = %v", err)
	}
	// The discard is one-shot: the next load is plain empty.
	if _, state := m3.Load(ctx, 1); state != StateEmpty {
		t.Errorf("second load state = %q, want %q", state, StateEmpty)
	}
}

// TestLoadKeepsDivergedDraft verifies a stored draft that differs from the
// newest history entry survives reconciliation.
func TestLoadKeepsDivergedDraft(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	m, store := newTestManager(history)

	m.Replace(ctx, 1, benchDraft())
	if _, err := m.Finish(ctx, 1); err != nil {
		t.Fatalf("finish error: %v", err)
	}

	edited := benchDraft()
	edited = edited.UpdateSet(edited.Exercises[0].ID, edited.Exercises[0].Sets[0].ID, "kg", "105")
	m2 := NewManager(store, history, testLogger())
	m2.Replace(ctx, 1, edited)

	m3 := NewManager(store, history, testLogger())
	restored, state := m3.Load(ctx, 1)
	if state != StateEditing {
		t.Fatalf("state = %q, want %q", state, StateEditing)
	}
	if restored.Exercises[0].Sets[0].Load != "105" {
		t.Errorf("restored load = %q, want 105", restored.Exercises[0].Sets[0].Load)
	}
}

// TestLoadDiscardsUnreadableDraft verifies a corrupt stored blob is dropped
// rather than wedging the user.
func TestLoadDiscardsUnreadableDraft(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	store := NewMemory()
	if err := store.Put(ctx, 1, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	m := NewManager(store, history, testLogger())
	_, state := m.Load(ctx, 1)
	if state != StateEmpty {
		t.Fatalf("state = %q, want %q", state, StateEmpty)
	}
	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("corrupt blob not cleared: err = %v", err)
	}
}

// TestRepeatInstallsFreshCopy verifies Repeat installs an editable copy with
// new identifiers and persists it.
func TestRepeatInstallsFreshCopy(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(&fakeHistory{})

	s := workout.Session{
		Name: "Pull Day",
		Exercises: []workout.LoggedExercise{
			{Name: "Row", Sets: []workout.LoggedSet{{Load: 60, Reps: 10}}},
		},
	}
	d := m.Repeat(ctx, 1, s)
	if d.Name != "Pull Day" || d.Exercises[0].Sets[0].Load != "60" {
		t.Errorf("draft = %+v", d)
	}
	if _, err := store.Get(ctx, 1); err != nil {
		t.Errorf("repeated draft not persisted: %v", err)
	}
}

// TestDiscard verifies Discard clears both cache and store.
func TestDiscard(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(&fakeHistory{})

	m.Open(ctx, 1)
	m.Discard(ctx, 1)
	if _, state := m.Load(ctx, 1); state != StateEmpty {
		t.Errorf("state = %q, want %q", state, StateEmpty)
	}
	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("stored draft after discard: err = %v", err)
	}
}

// TestManagerIsolatesUsers verifies drafts are scoped per user id.
func TestManagerIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(&fakeHistory{})

	m.Replace(ctx, 1, workout.NewDraft("Mine"))
	m.Replace(ctx, 2, workout.NewDraft("Yours"))

	d1, _ := m.Load(ctx, 1)
	d2, _ := m.Load(ctx, 2)
	if d1.Name != "Mine" || d2.Name != "Yours" {
		t.Errorf("drafts = %q, %q", d1.Name, d2.Name)
	}
}
