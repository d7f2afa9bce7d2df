package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite defines a complete integration playthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name     string     `json:"name"`
	Scenario string     `json:"scenario,omitempty"` // Used for regular tests
	Seed     *uint64    `json:"seed,omitempty"`     // Used for regular tests
	Steps    []TestStep `json:"steps,omitempty"`    // Used for regular tests
	Cases    []string   `json:"cases,omitempty"`    // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player action and its expected outcomes.
// Repeat sends the same input several times; expectations are checked
// against the last result only.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Input        string       `json:"input"`
	Repeat       int          `json:"repeat,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Player state as reported in the action result
	Room              *string  `json:"room,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Inventory         []string `json:"inventory,omitempty"`          // Full inventory contents (order independent)
	InventoryContains []string `json:"inventory_contains,omitempty"` // Items that must be carried
	Knowledge         []string `json:"knowledge,omitempty"`          // Tags that must be known
	Fear              *int     `json:"fear,omitempty"`
	Sanity            *int     `json:"sanity,omitempty"`
	Health            *int     `json:"health,omitempty"`
	StoryProgress     *int     `json:"story_progress,omitempty"`
	IsGameOver        *bool    `json:"is_game_over,omitempty"`
	EndingContains    string   `json:"ending_contains,omitempty"`

	// Room contents
	RoomItems []string `json:"room_items,omitempty"` // Items that must be visible in the room
	Threats   *int     `json:"threats,omitempty"`    // Number of living enemies

	// Narrative analysis
	NarrativeContains    []string `json:"narrative_contains,omitempty"`
	NarrativeNotContains []string `json:"narrative_not_contains,omitempty"`
	NarrativeRegex       string   `json:"narrative_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName  string
	StepName  string
	Success   bool
	Error     error
	Duration  time.Duration
	Narrative string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID // ID of the session used for this test
}
