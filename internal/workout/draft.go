package workout

// Edit operations on a Draft. Each returns a new Draft value; the receiver
// is never mutated, so callers can persist the result and discard it on
// failure without corrupting the in-memory state.

func (d Draft) cloneExercises() []Exercise {
	out := make([]Exercise, len(d.Exercises))
	for i, ex := range d.Exercises {
		out[i] = ex
		out[i].Sets = append([]Set(nil), ex.Sets...)
	}
	return out
}

// WithName replaces the draft's session name.
func (d Draft) WithName(name string) Draft {
	d.Name = name
	d.Exercises = d.cloneExercises()
	return d
}

// AddExercise appends a new blank exercise to the end of the sequence.
func (d Draft) AddExercise() Draft {
	d.Exercises = append(d.cloneExercises(), blankExercise())
	return d
}

// AddSupersetExercise inserts a new blank exercise immediately after the
// anchor entry and links the two into a superset. With an empty groupID a
// fresh group identifier is generated and assigned to both the anchor and
// the new entry; otherwise the new entry joins the existing group. Unknown
// anchor ids are a no-op.
func (d Draft) AddSupersetExercise(afterID, groupID string) Draft {
	exercises := d.cloneExercises()
	for i, ex := range exercises {
		if ex.ID != afterID {
			continue
		}
		if groupID == "" {
			groupID = newID()
			exercises[i].Superset = groupID
		}
		linked := blankExercise()
		linked.Superset = groupID
		exercises = append(exercises[:i+1], append([]Exercise{linked}, exercises[i+1:]...)...)
		break
	}
	d.Exercises = exercises
	return d
}

// RemoveExercise deletes the entry with the given id. A superset partner
// left behind keeps its group id; grouping tolerates the dangling tag.
func (d Draft) RemoveExercise(id string) Draft {
	exercises := make([]Exercise, 0, len(d.Exercises))
	for _, ex := range d.cloneExercises() {
		if ex.ID != id {
			exercises = append(exercises, ex)
		}
	}
	d.Exercises = exercises
	return d
}

// UpdateExercise replaces a single field ("name" or "notes") on the entry
// with the given id. No validation: empty names are permitted in a draft
// and filtered at finalize.
func (d Draft) UpdateExercise(id, field, value string) Draft {
	exercises := d.cloneExercises()
	for i := range exercises {
		if exercises[i].ID != id {
			continue
		}
		switch field {
		case "name":
			exercises[i].Name = value
		case "notes":
			exercises[i].Notes = value
		}
	}
	d.Exercises = exercises
	return d
}

// UpdateSettings replaces one settings key ("seat" or "incline").
func (d Draft) UpdateSettings(id, key, value string) Draft {
	exercises := d.cloneExercises()
	for i := range exercises {
		if exercises[i].ID != id {
			continue
		}
		switch key {
		case "seat":
			exercises[i].Settings.Seat = value
		case "incline":
			exercises[i].Settings.Incline = value
		}
	}
	d.Exercises = exercises
	return d
}

// AddSet appends a set to the exercise, pre-filled with the previous set's
// load and reps so progressive entry only needs the changed field.
func (d Draft) AddSet(exerciseID string) Draft {
	exercises := d.cloneExercises()
	for i := range exercises {
		if exercises[i].ID != exerciseID {
			continue
		}
		next := blankSet()
		if n := len(exercises[i].Sets); n > 0 {
			prev := exercises[i].Sets[n-1]
			next.Load = prev.Load
			next.Reps = prev.Reps
		}
		exercises[i].Sets = append(exercises[i].Sets, next)
	}
	d.Exercises = exercises
	return d
}

// UpdateSet replaces a single field ("kg", "reps", or "completed") on the
// identified set. The completed flag toggles on the literal values
// "true"/"false".
func (d Draft) UpdateSet(exerciseID, setID, field, value string) Draft {
	exercises := d.cloneExercises()
	for i := range exercises {
		if exercises[i].ID != exerciseID {
			continue
		}
		for j := range exercises[i].Sets {
			if exercises[i].Sets[j].ID != setID {
				continue
			}
			switch field {
			case "kg":
				exercises[i].Sets[j].Load = value
			case "reps":
				exercises[i].Sets[j].Reps = value
			case "completed":
				exercises[i].Sets[j].Completed = value == "true"
			}
		}
	}
	d.Exercises = exercises
	return d
}

// RemoveSet deletes a set by id. Removing the last set of an exercise is
// permitted; the zero-set entry survives until finalize filters it if its
// name is also blank.
func (d Draft) RemoveSet(exerciseID, setID string) Draft {
	exercises := d.cloneExercises()
	for i := range exercises {
		if exercises[i].ID != exerciseID {
			continue
		}
		sets := make([]Set, 0, len(exercises[i].Sets))
		for _, s := range exercises[i].Sets {
			if s.ID != setID {
				sets = append(sets, s)
			}
		}
		exercises[i].Sets = sets
	}
	d.Exercises = exercises
	return d
}
