package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronLog workout history server. Query logged sessions, personal records, training volume/frequency series, and quick-start suggestions. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetTrainingSeries, Handler: h.getTrainingSeries},
		server.ServerTool{Tool: toolGetWeeklySessions, Handler: h.getWeeklySessions},
		server.ServerTool{Tool: toolGetQuickStarts, Handler: h.getQuickStarts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resPersonalRecords, Handler: h.personalRecords},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"ironlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The 10 most recently logged workout sessions with full exercise and set detail"),
	mcp.WithMIMEType("application/json"),
)

var resPersonalRecords = mcp.NewResource(
	"ironlog://personal_records",
	"Personal Records",
	mcp.WithResourceDescription("Best (load, reps) pair ever logged per exercise, sorted by load"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), 10)
	if err != nil {
		h.log.Error("mcp recent_sessions", "error", err)
		return nil, err
	}
	return resourceJSON(req.Params.URI, sessions)
}

func (h *handlers) personalRecords(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), 0)
	if err != nil {
		h.log.Error("mcp personal_records", "error", err)
		return nil, err
	}
	return resourceJSON(req.Params.URI, recordsFor(sessions))
}
