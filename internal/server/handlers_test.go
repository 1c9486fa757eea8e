package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/draft"
	"github.com/claude/ironlog/internal/workout"
	"github.com/google/uuid"
)

const testAPIKey = "test-key"

// fakeHistory is an in-memory append log standing in for the session store.
type fakeHistory struct {
	sessions  []workout.Session
	appendErr error
}

func (h *fakeHistory) Append(_ context.Context, s workout.Session) (workout.Session, error) {
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

// newDraftTestServer builds a Server whose draft endpoints are fully
// functional over an in-memory store. The database-backed endpoints are not
// exercised here.
func newDraftTestServer(history *fakeHistory) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	drafts := draft.NewManager(draft.NewMemory(), history, log)
	return New(nil, drafts, nil, testAPIKey, log)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// draftResponse mirrors the {"draft", "groups"} envelope every draft
// endpoint responds with.
type draftResponse struct {
	Draft  workout.Draft        `json:"draft"`
	Groups [][]workout.Exercise `json:"groups"`
}

func decodeDraft(t *testing.T, rec *httptest.ResponseRecorder) draftResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp draftResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode draft response: %v", err)
	}
	return resp
}

// TestDraftEditingFlow walks the primary editing path over HTTP: open a
// fresh draft, name an exercise, fill a set, finish, and verify the commit
// cleared the draft.
func TestDraftEditingFlow(t *testing.T) {
	history := &fakeHistory{}
	srv := newDraftTestServer(history)

	resp := decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	if resp.Draft.Name != draft.DefaultName {
		t.Errorf("fresh draft name = %q, want %q", resp.Draft.Name, draft.DefaultName)
	}
	if len(resp.Draft.Exercises) != 1 {
		t.Fatalf("fresh draft exercises = %d, want 1", len(resp.Draft.Exercises))
	}
	exID := resp.Draft.Exercises[0].ID
	setID := resp.Draft.Exercises[0].Sets[0].ID

	resp = decodeDraft(t, doRequest(t, srv, http.MethodPut, "/api/v1/draft/name",
		`{"name":"Push Day"}`))
	if resp.Draft.Name != "Push Day" {
		t.Errorf("renamed draft = %q", resp.Draft.Name)
	}

	decodeDraft(t, doRequest(t, srv, http.MethodPatch, "/api/v1/draft/exercises/"+exID,
		`{"field":"name","value":"Bench Press"}`))
	decodeDraft(t, doRequest(t, srv, http.MethodPatch,
		"/api/v1/draft/exercises/"+exID+"/sets/"+setID, `{"field":"kg","value":"100"}`))
	resp = decodeDraft(t, doRequest(t, srv, http.MethodPatch,
		"/api/v1/draft/exercises/"+exID+"/sets/"+setID, `{"field":"reps","value":"5"}`))
	if resp.Draft.Exercises[0].Sets[0].Load != "100" {
		t.Errorf("set load = %q, want 100", resp.Draft.Exercises[0].Sets[0].Load)
	}

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/draft/finish", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("finish status = %d, body %s", rec.Code, rec.Body.String())
	}
	var committed workout.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &committed); err != nil {
		t.Fatal(err)
	}
	if committed.TotalVolume != 500 {
		t.Errorf("TotalVolume = %v, want 500", committed.TotalVolume)
	}
	if len(history.sessions) != 1 {
		t.Errorf("history = %d sessions, want 1", len(history.sessions))
	}

	// Finishing again with no draft in progress conflicts. The fresh
	// draft-free state is reported, not silently re-created.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/draft/finish", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("second finish status = %d, want 409", rec.Code)
	}
}

// TestFinishEmptyDraft verifies a draft with no named exercises finishes
// with 422 and stays editable.
func TestFinishEmptyDraft(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})

	decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/draft/finish", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	resp := decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	if resp.Draft.Name != draft.DefaultName {
		t.Errorf("draft after failed finish = %q", resp.Draft.Name)
	}
}

// TestFinishCommitFailure verifies a failed history append answers 502 and
// preserves the draft for retry.
func TestFinishCommitFailure(t *testing.T) {
	history := &fakeHistory{appendErr: errors.New("connection refused")}
	srv := newDraftTestServer(history)

	resp := decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	exID := resp.Draft.Exercises[0].ID
	decodeDraft(t, doRequest(t, srv, http.MethodPatch, "/api/v1/draft/exercises/"+exID,
		`{"field":"name","value":"Squat"}`))

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/draft/finish", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	history.appendErr = nil
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/draft/finish", "")
	if rec.Code != http.StatusCreated {
		t.Errorf("retry status = %d, want 201", rec.Code)
	}
}

// TestSupersetEndpointGroups verifies the superset endpoint links entries
// and the response's groups reflect the adjacency grouping.
func TestSupersetEndpointGroups(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})

	resp := decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	anchor := resp.Draft.Exercises[0].ID

	resp = decodeDraft(t, doRequest(t, srv, http.MethodPost,
		"/api/v1/draft/exercises/"+anchor+"/superset", ""))
	if len(resp.Draft.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(resp.Draft.Exercises))
	}
	if len(resp.Groups) != 1 || len(resp.Groups[0]) != 2 {
		t.Errorf("groups = %v, want one pair", resp.Groups)
	}
	if resp.Draft.Exercises[0].Superset == "" ||
		resp.Draft.Exercises[0].Superset != resp.Draft.Exercises[1].Superset {
		t.Errorf("superset ids = %q, %q",
			resp.Draft.Exercises[0].Superset, resp.Draft.Exercises[1].Superset)
	}
}

// TestAddAndRemoveSet verifies set endpoints, including prefill from the
// previous set.
func TestAddAndRemoveSet(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})

	resp := decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	exID := resp.Draft.Exercises[0].ID
	setID := resp.Draft.Exercises[0].Sets[0].ID

	decodeDraft(t, doRequest(t, srv, http.MethodPatch,
		"/api/v1/draft/exercises/"+exID+"/sets/"+setID, `{"field":"kg","value":"80"}`))
	resp = decodeDraft(t, doRequest(t, srv, http.MethodPost,
		"/api/v1/draft/exercises/"+exID+"/sets", ""))
	if len(resp.Draft.Exercises[0].Sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(resp.Draft.Exercises[0].Sets))
	}
	if resp.Draft.Exercises[0].Sets[1].Load != "80" {
		t.Errorf("prefilled load = %q, want 80", resp.Draft.Exercises[0].Sets[1].Load)
	}

	resp = decodeDraft(t, doRequest(t, srv, http.MethodDelete,
		"/api/v1/draft/exercises/"+exID+"/sets/"+setID, ""))
	if len(resp.Draft.Exercises[0].Sets) != 1 {
		t.Errorf("sets after delete = %d, want 1", len(resp.Draft.Exercises[0].Sets))
	}
}

// TestDiscardDraft verifies DELETE /draft clears the editing state.
func TestDiscardDraft(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})

	resp := decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	exID := resp.Draft.Exercises[0].ID
	decodeDraft(t, doRequest(t, srv, http.MethodPatch, "/api/v1/draft/exercises/"+exID,
		`{"field":"name","value":"Squat"}`))

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/draft", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("discard status = %d, want 204", rec.Code)
	}

	resp = decodeDraft(t, doRequest(t, srv, http.MethodGet, "/api/v1/draft", ""))
	if resp.Draft.Exercises[0].Name != "" {
		t.Errorf("draft after discard = %q, want fresh", resp.Draft.Exercises[0].Name)
	}
}

// TestBadJSONRejected verifies malformed bodies answer 400.
func TestBadJSONRejected(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})
	rec := doRequest(t, srv, http.MethodPut, "/api/v1/draft/name", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestCoachInsightFallback verifies the insight endpoint degrades to the
// static tip when no coach is configured.
func TestCoachInsightFallback(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/coach/insight", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Tip      string `json:"tip"`
		Fallback bool   `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Tip == "" || !body.Fallback {
		t.Errorf("body = %+v, want fallback tip", body)
	}
}

// TestCoachGenerateUnconfigured verifies plan generation without a coach
// answers 503 rather than pretending.
func TestCoachGenerateUnconfigured(t *testing.T) {
	srv := newDraftTestServer(&fakeHistory{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/coach/generate", `{"goal":"legs"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
