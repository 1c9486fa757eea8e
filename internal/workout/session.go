package workout

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Settings holds free-text machine setup notes for an exercise.
type Settings struct {
	Seat    string `json:"seat"`
	Incline string `json:"incline"`
}

// Set is one load×reps attempt inside a draft. Load and Reps hold the raw
// user input exactly as typed; coercion to numbers happens at finalize time.
type Set struct {
	ID        string `json:"id"`
	Load      string `json:"kg"`
	Reps      string `json:"reps"`
	Completed bool   `json:"completed"`
}

// Exercise is one named movement within a draft, with its own notes,
// settings, ordered sets, and optional superset linkage. An empty Superset
// means the exercise is standalone.
type Exercise struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Notes    string   `json:"notes"`
	Settings Settings `json:"settings"`
	Superset string   `json:"superset,omitempty"`
	Sets     []Set    `json:"sets"`
}

// Draft is a workout being composed. It is a plain value: every edit
// operation returns a new Draft and leaves its input untouched.
type Draft struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// LoggedSet is a finalized set with numerically coerced load and reps.
type LoggedSet struct {
	Load float64 `json:"kg"`
	Reps float64 `json:"reps"`
}

// LoggedExercise is a finalized exercise entry as it appears in history.
type LoggedExercise struct {
	Name     string      `json:"name"`
	Notes    string      `json:"notes"`
	Settings Settings    `json:"settings"`
	Superset string      `json:"superset,omitempty"`
	Sets     []LoggedSet `json:"sets"`
}

// Session is one finalized workout as stored in history. ID and CreatedAt
// are assigned by the history store at append time.
type Session struct {
	ID          uuid.UUID        `json:"id"`
	UserID      int              `json:"-"`
	Name        string           `json:"name"`
	CreatedAt   time.Time        `json:"created_at"`
	TotalVolume float64          `json:"total_volume"`
	Exercises   []LoggedExercise `json:"exercises"`
}

// SetCount returns the total number of sets across all exercises.
func (s Session) SetCount() int {
	n := 0
	for _, ex := range s.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// Num coerces raw set input to a number the way the logger always has:
// blank or non-numeric input becomes 0. Zero-load sets are valid persisted
// data; records and volume already treat zero as contributing nothing.
func Num(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func newID() string {
	return uuid.NewString()
}

func blankSet() Set {
	return Set{ID: newID()}
}

func blankExercise() Exercise {
	return Exercise{ID: newID(), Sets: []Set{blankSet()}}
}

// NewDraft returns the logger's initial state: one blank exercise with a
// single blank set.
func NewDraft(name string) Draft {
	return Draft{Name: name, Exercises: []Exercise{blankExercise()}}
}
