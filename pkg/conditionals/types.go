package conditionals

// Requirement defines the conditions a player's progression must satisfy before
// a secret is revealed, a dialogue tier opens, or a use rule applies.
type Requirement struct {
	Items       []string `json:"items,omitempty"`        // All items must be in the inventory
	Knowledge   []string `json:"knowledge,omitempty"`    // All knowledge flags must be held
	Puzzles     []string `json:"puzzles,omitempty"`      // All puzzles must be solved
	Secrets     []string `json:"secrets,omitempty"`      // All secrets must be discovered
	Room        string   `json:"room,omitempty"`         // Player must be in this room
	MinProgress *int     `json:"min_progress,omitempty"` // Story progress >= this value
	MinFear     *int     `json:"min_fear,omitempty"`     // Fear >= this value
	MaxSanity   *int     `json:"max_sanity,omitempty"`   // Sanity <= this value
}

// StateView provides the minimal read-only view of a player's progression
// needed to evaluate requirements. It avoids an import cycle with the state package.
type StateView interface {
	HasItem(id string) bool
	HasKnowledge(tag string) bool
	HasSolved(puzzleID string) bool
	HasSecret(secretID string) bool
	GetCurrentRoom() string
	GetStoryProgress() int
	GetFear() int
	GetSanity() int
}

// IsEmpty reports whether no condition is specified.
func (r Requirement) IsEmpty() bool {
	return len(r.Items) == 0 &&
		len(r.Knowledge) == 0 &&
		len(r.Puzzles) == 0 &&
		len(r.Secrets) == 0 &&
		r.Room == "" &&
		r.MinProgress == nil &&
		r.MinFear == nil &&
		r.MaxSanity == nil
}

// Evaluate checks if all conditions in a requirement are met.
// An empty requirement never matches.
func Evaluate(r Requirement, view StateView) bool {
	if r.IsEmpty() || view == nil {
		return false
	}

	for _, id := range r.Items {
		if !view.HasItem(id) {
			return false
		}
	}

	for _, tag := range r.Knowledge {
		if !view.HasKnowledge(tag) {
			return false
		}
	}

	for _, id := range r.Puzzles {
		if !view.HasSolved(id) {
			return false
		}
	}

	for _, id := range r.Secrets {
		if !view.HasSecret(id) {
			return false
		}
	}

	if r.Room != "" && view.GetCurrentRoom() != r.Room {
		return false
	}

	if r.MinProgress != nil && view.GetStoryProgress() < *r.MinProgress {
		return false
	}

	if r.MinFear != nil && view.GetFear() < *r.MinFear {
		return false
	}

	if r.MaxSanity != nil && view.GetSanity() > *r.MaxSanity {
		return false
	}

	return true
}

// Satisfied is like Evaluate but treats a nil requirement as always met.
func Satisfied(r *Requirement, view StateView) bool {
	if r == nil {
		return true
	}
	return Evaluate(*r, view)
}
