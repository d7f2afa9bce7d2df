package engine

import (
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// Category is the kind of action a line of player input was classified as.
type Category string

const (
	CategoryMovement        Category = "movement"
	CategoryExamination     Category = "examination"
	CategoryItemInteraction Category = "item_interaction"
	CategoryDialogue        Category = "dialogue"
	CategoryPuzzleSolving   Category = "puzzle_solving"
	CategoryBookReading     Category = "book_reading"
	CategoryGeneric         Category = "generic"
)

var (
	movementVerbs    = []string{"go", "move", "enter", "walk", "head", "climb", "descend"}
	examineVerbs     = []string{"examine", "look", "inspect", "study", "check"}
	itemVerbs        = []string{"use", "take", "pick", "grab", "drink", "eat"}
	dialogueVerbs    = []string{"talk", "ask", "speak", "greet", "say"}
	puzzleWords      = []string{"solve", "puzzle", "clue", "hint"}
	readingVerbs     = []string{"read"}
	takeVerbs        = []string{"take", "pick", "grab"}
	consumeVerbs     = []string{"drink", "eat"}
	searchWords      = []string{"search", "hidden", "look for", "rummage"}
	restWords        = []string{"rest", "sleep", "sit down", "nap"}
	calmWords        = []string{"calm", "breathe", "meditate", "relax"}
	inventoryWords   = []string{"inventory", "items", "pockets"}
	helpWords        = []string{"help", "commands"}
	attackWords      = []string{"attack", "fight", "hit", "strike", "stab", "kill"}
	lookAroundInputs = []string{"look", "look around", "examine room", "look at room", "examine the room", "look at the room"}
)

// Classify maps normalized input to exactly one category. The rules are
// checked in order and Generic catches everything else, so it never fails.
//
// "study" is both an examine verb and a room name; "go to the study" is
// still movement because movement is checked first.
func Classify(input string, m *world.Model, ps *state.PlayerState) Category {
	switch {
	case world.ContainsAny(input, movementVerbs...):
		return CategoryMovement
	case world.ContainsAny(input, examineVerbs...) && !studyIsDestination(input):
		return CategoryExamination
	case world.ContainsAny(input, itemVerbs...):
		return CategoryItemInteraction
	case world.ContainsAny(input, dialogueVerbs...):
		return CategoryDialogue
	case world.ContainsAny(input, puzzleWords...) || mentionsPuzzle(input, m, ps):
		return CategoryPuzzleSolving
	case world.ContainsAny(input, readingVerbs...):
		return CategoryBookReading
	default:
		return CategoryGeneric
	}
}

// studyIsDestination catches "the study" used as a noun, e.g. "search the study".
func studyIsDestination(input string) bool {
	return world.ContainsPhrase(input, "the study") &&
		!world.ContainsAny(input, "examine", "look", "inspect", "check")
}

// mentionsPuzzle reports whether the input uses any solution phrase of a
// puzzle in the player's current room, solved or not.
func mentionsPuzzle(input string, m *world.Model, ps *state.PlayerState) bool {
	if m == nil || ps == nil {
		return false
	}
	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		return false
	}
	for _, id := range room.Puzzles {
		p, err := m.GetPuzzle(id)
		if err != nil {
			continue
		}
		if p.Solution.Mentions(input) {
			return true
		}
	}
	return false
}
