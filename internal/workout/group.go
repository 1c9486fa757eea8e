package workout

// Group maps the flat exercise sequence into contiguous display groups.
// Walking the sequence once: an entry joins the current group only when
// both it and the immediately preceding entry carry the same non-empty
// superset id; anything else starts a new group. Two entries sharing a
// group id but separated by an unrelated entry therefore form two separate
// groups — supersets are only ever contiguous in the editing UI. A dangling
// id whose neighbors differ yields a singleton group, never an error.
func Group(exercises []Exercise) [][]Exercise {
	if len(exercises) == 0 {
		return nil
	}

	groups := [][]Exercise{{exercises[0]}}
	for _, ex := range exercises[1:] {
		last := groups[len(groups)-1]
		prev := last[len(last)-1]
		if ex.Superset != "" && ex.Superset == prev.Superset {
			groups[len(groups)-1] = append(last, ex)
		} else {
			groups = append(groups, []Exercise{ex})
		}
	}
	return groups
}

// IsSuperset reports whether a group renders as a superset. A group of
// size 1 is a valid degenerate group but not a superset.
func IsSuperset(group []Exercise) bool {
	return len(group) > 1
}
