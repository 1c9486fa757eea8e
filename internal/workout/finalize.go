package workout

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyWorkout is returned by Finalize when no exercise survives the
// blank-name filter. The draft is left untouched so the user can correct
// and retry.
var ErrEmptyWorkout = errors.New("workout has no named exercises")

// Finalize converts a draft into an immutable session payload ready for
// append to history. Exercises whose name is blank (whitespace-only) are
// dropped; set load and reps are numerically coerced and persisted as
// numbers. TotalVolume is computed here, once — historical totals are never
// recomputed, even if the formula changes later.
func Finalize(d Draft) (Session, error) {
	var exercises []LoggedExercise
	var volume float64

	for _, ex := range d.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			continue
		}
		logged := LoggedExercise{
			Name:     ex.Name,
			Notes:    ex.Notes,
			Settings: ex.Settings,
			Superset: ex.Superset,
		}
		for _, s := range ex.Sets {
			ls := LoggedSet{Load: Num(s.Load), Reps: Num(s.Reps)}
			volume += ls.Load * ls.Reps
			logged.Sets = append(logged.Sets, ls)
		}
		exercises = append(exercises, logged)
	}

	if len(exercises) == 0 {
		return Session{}, ErrEmptyWorkout
	}

	return Session{
		Name:        d.Name,
		Exercises:   exercises,
		TotalVolume: volume,
	}, nil
}

// Repeat seeds a new draft from a finalized session. Every exercise and set
// gets a fresh identifier — historical ids never leak into a new draft —
// while superset group ids are kept as-is: grouping is adjacency-based, so
// the relative linkage survives the copy. All completed flags reset.
func Repeat(s Session) Draft {
	d := Draft{Name: s.Name}
	for _, ex := range s.Exercises {
		copied := Exercise{
			ID:       newID(),
			Name:     ex.Name,
			Notes:    ex.Notes,
			Settings: ex.Settings,
			Superset: ex.Superset,
		}
		for _, ls := range ex.Sets {
			copied.Sets = append(copied.Sets, Set{
				ID:   newID(),
				Load: formatNum(ls.Load),
				Reps: formatNum(ls.Reps),
			})
		}
		d.Exercises = append(d.Exercises, copied)
	}
	return d
}

// Matches reports whether the draft's content duplicates the session,
// comparing name and the exercise sequence after the same blank-name filter
// and numeric coercion Finalize applies. Identity is never compared: drafts
// carry no server id. Used by load-time reconciliation to detect a draft
// that was already committed before the clear step completed.
func Matches(d Draft, s Session) bool {
	if d.Name != s.Name {
		return false
	}
	final, err := Finalize(d)
	if err != nil {
		return false
	}
	if len(final.Exercises) != len(s.Exercises) {
		return false
	}
	for i, ex := range final.Exercises {
		other := s.Exercises[i]
		if ex.Name != other.Name || len(ex.Sets) != len(other.Sets) {
			return false
		}
		for j, set := range ex.Sets {
			if set.Load != other.Sets[j].Load || set.Reps != other.Sets[j].Reps {
				return false
			}
		}
	}
	return true
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
