package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays integration suites through a Player
type Runner struct {
	Player            Player
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	ScenarioOverride  string // If set, overrides the scenario for all test cases
}

// NewRunner creates a new test runner
func NewRunner(player Player) *Runner {
	return &Runner{
		Player:            player,
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite in a fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	scenario := suite.Scenario
	if r.ScenarioOverride != "" {
		scenario = r.ScenarioOverride
	}

	startCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	id, _, err := r.Player.Start(startCtx, scenario, suite.Seed)
	cancel()
	if err != nil {
		result.Error = fmt.Errorf("failed to start session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = id

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, result, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep sends the step input, Repeat times if set, and checks the last result
func (r *Runner) runStep(ctx context.Context, run TestRunResult, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		TestName: run.Job.Name,
		StepName: step.Name,
	}
	if result.StepName == "" {
		result.StepName = step.Input
	}

	times := max(step.Repeat, 1)
	var last *engine.ActionResult
	for range times {
		stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		res, err := r.Player.Act(stepCtx, run.SessionID, step.Input)
		cancel()
		if err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}
		last = res
	}
	result.Narrative = last.Narrative

	if err := CheckExpectations(step.Expectations, last); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// CheckExpectations validates the expectations against an action result
func CheckExpectations(exp Expectations, res *engine.ActionResult) error {
	if exp.Room != nil && res.RoomID != *exp.Room {
		return fmt.Errorf("expected room %s, got %s", *exp.Room, res.RoomID)
	}
	if exp.Category != nil && string(res.Category) != *exp.Category {
		return fmt.Errorf("expected category %s, got %s", *exp.Category, res.Category)
	}

	carried := make([]string, 0, len(res.Inventory))
	for _, it := range res.Inventory {
		carried = append(carried, it.ID)
	}

	// Full inventory check (order independent)
	if exp.Inventory != nil {
		want := slices.Sorted(slices.Values(exp.Inventory))
		got := slices.Sorted(slices.Values(carried))
		if !slices.Equal(want, got) {
			return fmt.Errorf("expected inventory %v, got %v", want, got)
		}
	}
	for _, id := range exp.InventoryContains {
		if !slices.Contains(carried, id) {
			return fmt.Errorf("expected inventory to contain '%s'. Actual inventory: %v", id, carried)
		}
	}
	for _, tag := range exp.Knowledge {
		if !slices.Contains(res.Knowledge, tag) {
			return fmt.Errorf("expected knowledge '%s'. Actual knowledge: %v", tag, res.Knowledge)
		}
	}

	if err := checkInt("fear", exp.Fear, res.Fear); err != nil {
		return err
	}
	if err := checkInt("sanity", exp.Sanity, res.Sanity); err != nil {
		return err
	}
	if err := checkInt("health", exp.Health, res.Health); err != nil {
		return err
	}
	if err := checkInt("story_progress", exp.StoryProgress, res.StoryProgress); err != nil {
		return err
	}
	if err := checkInt("threats", exp.Threats, len(res.Threats)); err != nil {
		return err
	}

	if exp.IsGameOver != nil && res.IsGameOver != *exp.IsGameOver {
		return fmt.Errorf("expected is_game_over to be %t, got %t", *exp.IsGameOver, res.IsGameOver)
	}
	if exp.EndingContains != "" && !strings.Contains(strings.ToLower(res.Ending), strings.ToLower(exp.EndingContains)) {
		return fmt.Errorf("expected ending to contain '%s', got '%s'", exp.EndingContains, res.Ending)
	}

	if len(exp.RoomItems) > 0 {
		visible := make([]string, 0, len(res.Items))
		for _, it := range res.Items {
			visible = append(visible, it.ID)
		}
		for _, id := range exp.RoomItems {
			if !slices.Contains(visible, id) {
				return fmt.Errorf("expected room to show '%s'. Visible items: %v", id, visible)
			}
		}
	}

	lowerNarrative := strings.ToLower(res.Narrative)
	for _, want := range exp.NarrativeContains {
		if !strings.Contains(lowerNarrative, strings.ToLower(want)) {
			return fmt.Errorf("expected narrative to contain '%s', got: %s", want, res.Narrative)
		}
	}
	for _, unwanted := range exp.NarrativeNotContains {
		if strings.Contains(lowerNarrative, strings.ToLower(unwanted)) {
			return fmt.Errorf("expected narrative to NOT contain '%s', but it did", unwanted)
		}
	}
	if exp.NarrativeRegex != "" {
		matched, err := regexp.MatchString(exp.NarrativeRegex, res.Narrative)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("narrative didn't match regex pattern: %s", exp.NarrativeRegex)
		}
	}

	return nil
}

func checkInt(name string, want *int, got int) error {
	if want != nil && got != *want {
		return fmt.Errorf("expected %s to be %d, got %d", name, *want, got)
	}
	return nil
}
