package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// handlePuzzle runs a solve attempt against the puzzles in the current room.
//
// A puzzle that has used up its attempts turns Hostile. Hostile puzzles stay
// solvable; each further failure drains sanity and raises fear instead.
func (e *Engine) handlePuzzle(input string, m *world.Model, ps *state.PlayerState) outcome {
	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		e.log.Error("puzzle attempt in unknown room", "error", err)
		return outcome{narrative: "There is nothing here to solve.", miss: true}
	}

	var puzzles []*world.Puzzle
	for _, id := range room.Puzzles {
		p, err := m.GetPuzzle(id)
		if err != nil {
			e.log.Error("room lists unknown puzzle", "room", room.ID, "error", err)
			continue
		}
		puzzles = append(puzzles, p)
	}

	for _, p := range puzzles {
		ok, method := p.Solution.Match(input, ps.HasKnowledge)
		if !ok {
			continue
		}
		if m.PuzzleStatus(p.ID) == world.PuzzleSolved {
			return outcome{narrative: fmt.Sprintf("You have already solved %s. Nothing more happens.", p.Name), actions: room.Actions, miss: true}
		}
		if missing := missingItems(p, m, ps); missing != "" {
			return outcome{narrative: fmt.Sprintf("You have the right idea, but you need the %s.", missing), miss: true}
		}
		return e.solve(p, method, m, ps)
	}

	if world.ContainsAny(input, "clue", "hint") {
		return e.hint(puzzles, m)
	}

	target := attemptTarget(input, puzzles, m)
	if target == nil {
		return outcome{narrative: "There is nothing here left to solve.", actions: room.Actions, miss: true}
	}
	if missing := missingItems(target, m, ps); missing != "" {
		return outcome{narrative: fmt.Sprintf("You can't make any progress on %s without the %s.", target.Name, missing), miss: true}
	}

	status := m.RecordAttempt(target.ID)
	narrative := target.FailureNarrative
	if narrative == "" {
		narrative = "Nothing happens."
	}
	if clue := clueFor(target, m.Attempts(target.ID)); clue != "" {
		narrative += " " + clue + "."
	}
	if status == world.PuzzleHostile {
		ps.DrainSanity(hostileSanity)
		ps.RaiseFear(1)
		narrative += " The room grows harsher around you, as if angered by your failures."
	}
	e.log.Debug("puzzle attempt failed", "puzzle", target.ID, "attempts", m.Attempts(target.ID), "status", status)
	return outcome{narrative: narrative, actions: target.Actions}
}

func (e *Engine) solve(p *world.Puzzle, method string, m *world.Model, ps *state.PlayerState) outcome {
	if err := m.MarkSolved(p.ID, ps); err != nil {
		e.log.Error("failed to mark puzzle solved", "puzzle", p.ID, "error", err)
		return outcome{narrative: fmt.Sprintf("You have already solved %s.", p.Name), miss: true}
	}
	if err := m.ApplyEffects(p.Consequences, ps); err != nil {
		e.log.Error("failed to apply puzzle consequences", "puzzle", p.ID, "error", err)
	}
	ps.LogEncounter("solve:" + p.ID)
	e.log.Info("puzzle solved", "puzzle", p.ID, "method", method)

	narrative := p.Narrative
	if narrative == "" {
		narrative = fmt.Sprintf("You solved %s.", p.Name)
	}
	if method != "" {
		narrative += fmt.Sprintf(" You solved the puzzle using %s!", method)
	}
	return outcome{narrative: narrative, actions: p.Actions}
}

func (e *Engine) hint(puzzles []*world.Puzzle, m *world.Model) outcome {
	for _, p := range puzzles {
		if m.PuzzleStatus(p.ID) == world.PuzzleSolved {
			continue
		}
		if clue := clueFor(p, m.Attempts(p.ID)); clue != "" {
			return outcome{narrative: fmt.Sprintf("You think about %s. %s.", p.Name, clue), actions: p.Actions}
		}
		return outcome{narrative: p.Description, actions: p.Actions}
	}
	return outcome{narrative: "Nothing here needs solving.", miss: true}
}

// attemptTarget is the first unsolved puzzle the input talks about, or the
// first unsolved puzzle in the room.
func attemptTarget(input string, puzzles []*world.Puzzle, m *world.Model) *world.Puzzle {
	var first *world.Puzzle
	for _, p := range puzzles {
		if m.PuzzleStatus(p.ID) == world.PuzzleSolved {
			continue
		}
		if p.Solution.Mentions(input) || world.MatchScore(input, p.Name, p.ID, nil) > 0 {
			return p
		}
		if first == nil {
			first = p
		}
	}
	return first
}

func missingItems(p *world.Puzzle, m *world.Model, ps *state.PlayerState) string {
	var missing []string
	for _, id := range p.RequiredItems {
		if ps.HasItem(id) {
			continue
		}
		name := id
		if it, err := m.GetItem(id); err == nil {
			name = it.Name
		}
		missing = append(missing, name)
	}
	return strings.Join(missing, " and the ")
}

// clueFor returns the clue matching how many attempts have been made.
func clueFor(p *world.Puzzle, attempts int) string {
	if len(p.Clues) == 0 {
		return ""
	}
	return p.Clues[min(max(attempts-1, 0), len(p.Clues)-1)]
}
