package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/ironlog/internal/workout"
	"github.com/google/uuid"
)

// FallbackTip is shown when the insight call fails. Advice is a nicety;
// the dashboard always has something to say.
const FallbackTip = "Consistency is key! Keep pushing your limits."

// Insight asks the model for one short training tip based on the most
// recent sessions. The model is asked for {"tip": "..."} but a response
// that fails to parse as JSON is tolerated and used as free text.
func (c *Client) Insight(ctx context.Context, history []workout.Session) (string, error) {
	recent := history
	if len(recent) > 3 {
		recent = recent[:3]
	}
	summaries := make([]map[string]any, 0, len(recent))
	for _, s := range recent {
		names := make([]string, 0, len(s.Exercises))
		for _, ex := range s.Exercises {
			names = append(names, ex.Name)
		}
		summaries = append(summaries, map[string]any{
			"name":      s.Name,
			"date":      s.CreatedAt.Format("Mon Jan 2 2006"),
			"volume":    s.TotalVolume,
			"exercises": strings.Join(names, ", "),
		})
	}
	historyJSON, _ := json.Marshal(summaries)

	prompt := fmt.Sprintf(`Analyze these recent workouts: %s. Give me one short, specific, and motivating insight or tip (under 30 words) for my next session. Return valid JSON: { "tip": "string" }`, historyJSON)

	text, err := c.Generate(ctx, prompt, "You are an elite fitness coach.")
	if err != nil {
		return "", err
	}

	var structured struct {
		Tip string `json:"tip"`
	}
	if err := json.Unmarshal([]byte(text), &structured); err == nil && structured.Tip != "" {
		return structured.Tip, nil
	}
	return strings.TrimSpace(text), nil
}

// Plan is a generated workout the user can load into the draft.
type Plan struct {
	WorkoutName string         `json:"workoutName"`
	Exercises   []PlanExercise `json:"exercises"`
}

// PlanExercise is one generated exercise with target sets.
type PlanExercise struct {
	Name     string           `json:"name"`
	Notes    string           `json:"notes"`
	Settings workout.Settings `json:"settings"`
	Sets     []PlanSet        `json:"sets"`
}

// PlanSet is one generated target set.
type PlanSet struct {
	Load float64 `json:"kg"`
	Reps float64 `json:"reps"`
}

// GeneratePlan asks the model to design a workout for the given goal,
// feeding it the most recent sessions so it can vary muscle groups and
// apply progressive overload. Unlike Insight there is no free-text
// fallback: a plan that does not parse is unusable and reported as
// ErrUnavailable.
func (c *Client) GeneratePlan(ctx context.Context, goal string, history []workout.Session) (*Plan, error) {
	recent := history
	if len(recent) > 5 {
		recent = recent[:5]
	}
	summaries := make([]map[string]any, 0, len(recent))
	for _, s := range recent {
		parts := make([]string, 0, len(s.Exercises))
		for _, ex := range s.Exercises {
			parts = append(parts, fmt.Sprintf("%s (%d sets)", ex.Name, len(ex.Sets)))
		}
		summaries = append(summaries, map[string]any{
			"name":      s.Name,
			"date":      s.CreatedAt.Format("2006-01-02"),
			"exercises": strings.Join(parts, ", "),
		})
	}
	historyJSON, _ := json.Marshal(summaries)

	systemInstruction := fmt.Sprintf(`You are an expert fitness trainer.
USER HISTORY: %s
INSTRUCTIONS:
1. Look at history. Suggest different muscle or recovery if needed.
2. Apply progressive overload.
3. Create workout for request: %q
Return JSON: { "workoutName": "string", "exercises": [ { "name": "string", "notes": "string", "settings": { "seat": "", "incline": "" }, "sets": [ { "kg": number, "reps": number } ] } ] }`,
		historyJSON, goal)

	text, err := c.Generate(ctx, goal, systemInstruction)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil || len(plan.Exercises) == 0 {
		return nil, fmt.Errorf("%w: unparseable plan", ErrUnavailable)
	}
	if plan.WorkoutName == "" {
		plan.WorkoutName = "AI Generated Workout"
	}
	return &plan, nil
}

// Draft converts a plan into an editable draft: fresh identifiers
// throughout and every set starting uncompleted.
func (p *Plan) Draft() workout.Draft {
	d := workout.Draft{Name: p.WorkoutName}
	for _, pe := range p.Exercises {
		ex := workout.Exercise{
			ID:       uuid.NewString(),
			Name:     pe.Name,
			Notes:    pe.Notes,
			Settings: pe.Settings,
		}
		for _, ps := range pe.Sets {
			ex.Sets = append(ex.Sets, workout.Set{
				ID:   uuid.NewString(),
				Load: strconv.FormatFloat(ps.Load, 'f', -1, 64),
				Reps: strconv.FormatFloat(ps.Reps, 'f', -1, 64),
			})
		}
		d.Exercises = append(d.Exercises, ex)
	}
	return d
}
