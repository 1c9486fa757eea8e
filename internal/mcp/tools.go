package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/ironlog/internal/analytics"
	"github.com/claude/ironlog/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Retrieve logged workout sessions, newest first, with full exercise and set detail including superset grouping and per-session total volume."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to all.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Best (load, reps) pair ever logged per exercise name, sorted by load descending. Unloaded sets (0 kg) never count as records."),
)

var toolGetTrainingSeries = mcp.NewTool("get_training_series",
	mcp.WithDescription("Per-session training trend over the last 7 sessions, oldest first. Metric 'volume' charts total kg lifted; 'sets' charts total set counts."),
	mcp.WithString("metric", mcp.Description("Metric to chart. Defaults to 'volume'."), mcp.Enum("volume", "sets")),
)

var toolGetWeeklySessions = mcp.NewTool("get_weekly_sessions",
	mcp.WithDescription("Number of sessions logged since Monday 00:00 of the current week."),
)

var toolGetQuickStarts = mcp.NewTool("get_quick_starts",
	mcp.WithDescription("Repeat-workout suggestions: the most recent session of each distinct routine name, most recent routine first, at most 4."),
)

// --- Tool handlers ---

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must be non-negative"), nil
	}

	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(sessions)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), 0)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(recordsFor(sessions))
}

func (h *handlers) getTrainingSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric := analytics.Metric(req.GetString("metric", string(analytics.MetricVolume)))

	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), 0)
	if err != nil {
		h.log.Error("mcp get_training_series", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(analytics.Series(sessions, metric))
}

func (h *handlers) getWeeklySessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), 0)
	if err != nil {
		h.log.Error("mcp get_weekly_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	now := time.Now()
	return toolJSON(map[string]any{
		"week_start": analytics.WeekStart(now),
		"count":      analytics.WeeklyCount(sessions, now),
	})
}

func (h *handlers) getQuickStarts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), 0)
	if err != nil {
		h.log.Error("mcp get_quick_starts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(analytics.QuickStarts(sessions))
}

// --- Helpers ---

func recordsFor(sessions []workout.Session) []analytics.Record {
	records := analytics.PersonalRecords(sessions)
	if records == nil {
		records = []analytics.Record{}
	}
	return records
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func resourceJSON(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
