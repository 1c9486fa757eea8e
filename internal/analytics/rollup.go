package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/workout"
)

// Metric selects what a series point measures.
type Metric string

const (
	// MetricVolume charts total volume load per session, in kg.
	MetricVolume Metric = "volume"
	// MetricSets charts the total set count per session.
	MetricSets Metric = "sets"
)

// seriesLength is the fixed number of trailing sessions charted.
const seriesLength = 7

// Point is one session's value in a metric series.
type Point struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Unit  string  `json:"unit"`
}

// Series maps the trailing sessions, oldest first, to chart points for the
// selected metric. At most the last 7 sessions are included. Fewer than 2
// points is a degenerate "insufficient data" state the caller renders as
// such; it is not an error.
func Series(history []workout.Session, metric Metric) []Point {
	sorted := append([]workout.Session(nil), history...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	if len(sorted) > seriesLength {
		sorted = sorted[len(sorted)-seriesLength:]
	}

	points := make([]Point, 0, len(sorted))
	for _, s := range sorted {
		p := Point{Label: s.CreatedAt.Format("Jan 2")}
		switch metric {
		case MetricSets:
			p.Value = float64(s.SetCount())
			p.Unit = "sets"
		default:
			p.Value = s.TotalVolume
			p.Unit = "kg"
		}
		points = append(points, p)
	}
	return points
}

// WeekStart returns Monday 00:00:00 of now's week, in now's location.
// Sunday maps to offset -6 so the week runs Monday through Sunday.
func WeekStart(now time.Time) time.Time {
	offset := 1 - int(now.Weekday())
	if now.Weekday() == time.Sunday {
		offset = -6
	}
	return time.Date(now.Year(), now.Month(), now.Day()+offset, 0, 0, 0, 0, now.Location())
}

// WeeklyCount counts sessions logged since the start of the current week.
func WeeklyCount(history []workout.Session, now time.Time) int {
	start := WeekStart(now)
	count := 0
	for _, s := range history {
		if !s.CreatedAt.Before(start) {
			count++
		}
	}
	return count
}

// quickStartLimit caps the number of repeat-workout suggestions.
const quickStartLimit = 4

// QuickStarts scans the history in its given (newest-first) order and keeps
// the first occurrence per trimmed session name: the most recent session of
// each distinct routine, most-recent-routine first, capped at 4.
func QuickStarts(history []workout.Session) []workout.Session {
	seen := make(map[string]bool)
	var out []workout.Session
	for _, s := range history {
		name := strings.TrimSpace(s.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, s)
		if len(out) == quickStartLimit {
			break
		}
	}
	return out
}
