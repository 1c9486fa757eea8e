package mcp

import (
	"context"

	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/workout"
)

// DataSource abstracts the history layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface; the
// analytics themselves are recomputed here from the raw history, so both
// modes answer identically.
type DataSource interface {
	QuerySessions(ctx context.Context, userID, limit int) ([]workout.Session, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
