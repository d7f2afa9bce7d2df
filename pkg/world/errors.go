package world

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when an unknown entity ID is looked up.
type NotFoundError struct {
	Kind string // room, puzzle, item, npc, secret, enemy
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError lists every structural problem found in a world.
type ValidationError struct {
	WorldID  string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("world %q is invalid:\n%s", e.WorldID, strings.Join(e.Problems, "\n"))
}
