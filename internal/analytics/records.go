// Package analytics derives personal records, rolling metric series, weekly
// counts, and quick-start suggestions from finalized session history. All
// functions are pure and total: they never mutate their input and never
// fail, so they are safe to recompute on every read.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/workout"
)

// Record is the best (load, reps) pair ever logged for an exercise name,
// ordered lexicographically: load first, reps breaking ties.
type Record struct {
	Name string    `json:"name"`
	Load float64   `json:"kg"`
	Reps float64   `json:"reps"`
	Date time.Time `json:"date"`
}

// PersonalRecords computes one record per distinct trimmed exercise name
// across the history, which is scanned in its given order (newest first).
// Within a session the best set is the lexicographic (load, reps) maximum;
// across sessions a record only moves on strict improvement, so ties keep
// the already-stored date. A best set with load <= 0 never records —
// bodyweight and unloaded work set no "max weight". Output is sorted by
// load descending, name ascending on equal loads.
func PersonalRecords(history []workout.Session) []Record {
	records := make(map[string]Record)

	for _, session := range history {
		for _, ex := range session.Exercises {
			name := strings.TrimSpace(ex.Name)
			if name == "" {
				continue
			}
			var best workout.LoggedSet
			for _, s := range ex.Sets {
				if s.Load > best.Load || (s.Load == best.Load && s.Reps > best.Reps) {
					best = s
				}
			}
			if best.Load <= 0 {
				continue
			}
			current, ok := records[name]
			if !ok || best.Load > current.Load ||
				(best.Load == current.Load && best.Reps > current.Reps) {
				records[name] = Record{Name: name, Load: best.Load, Reps: best.Reps, Date: session.CreatedAt}
			}
		}
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Load != out[j].Load {
			return out[i].Load > out[j].Load
		}
		return out[i].Name < out[j].Name
	})
	return out
}
