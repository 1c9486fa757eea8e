package mcp

import (
	"context"
	"testing"

	"github.com/claude/ironlog/internal/workout"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestRecordsFor verifies the record helper returns an empty slice
// for an empty history so tool output serializes as [] rather than null.
func TestRecordsFor(t *testing.T) {
	if r := recordsFor(nil); r == nil || len(r) != 0 {
		t.Errorf("recordsFor(nil) = %v, want empty slice", r)
	}

	history := []workout.Session{{
		Name: "Push",
		Exercises: []workout.LoggedExercise{
			{Name: "Bench Press", Sets: []workout.LoggedSet{{Load: 100, Reps: 5}}},
		},
	}}
	records := recordsFor(history)
	if len(records) != 1 || records[0].Load != 100 {
		t.Errorf("records = %+v", records)
	}
}

// TestResourceJSON verifies resource payloads are serialized as a single
// JSON text content carrying the request URI.
func TestResourceJSON(t *testing.T) {
	contents, err := resourceJSON("ironlog://personal_records", map[string]int{"n": 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
}
