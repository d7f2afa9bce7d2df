package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

func (e *Engine) handleMovement(input string, m *world.Model, ps *state.PlayerState) outcome {
	current, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		e.log.Error("movement from unknown room", "error", err)
		return outcome{narrative: "You're not sure where you are, let alone where to go.", miss: true}
	}

	target := e.findRoom(input, current, m)
	if target == nil {
		return outcome{
			narrative: "You're not sure where to go. " + exitsLine(current, m),
			actions:   exitActions(current, m, ps),
			miss:      true,
		}
	}
	if target.ID == current.ID {
		return outcome{narrative: fmt.Sprintf("You are already in %s.", theName(target.Name)), actions: current.Actions, miss: true}
	}
	if !slices.Contains(current.Connections, target.ID) {
		return outcome{
			narrative: fmt.Sprintf("There is no way to reach %s from here. %s", theName(target.Name), exitsLine(current, m)),
			actions:   exitActions(current, m, ps),
			miss:      true,
		}
	}
	if !m.IsRoomAccessible(target.ID, ps) {
		narrative := fmt.Sprintf("The way to %s is blocked.", theName(target.Name))
		if len(target.RequiredItems) > 0 {
			narrative += " Something must be needed to get through."
		}
		return outcome{narrative: narrative, actions: exitActions(current, m, ps), miss: true}
	}

	ps.Visit(target.ID)
	ps.PassTime(moveMinutes)
	if target.HorrorLevel > ps.Fear {
		ps.RaiseFear(1)
	}
	e.log.Debug("player moved", "from", current.ID, "to", target.ID)
	return outcome{
		narrative: fmt.Sprintf("You enter %s. %s", theName(target.Name), target.LongDescription),
		actions:   target.Actions,
	}
}

// findRoom resolves the destination named in input. Rooms connected to the
// current room win ties against rooms elsewhere in the manor.
func (e *Engine) findRoom(input string, current *world.Room, m *world.Model) *world.Room {
	best, bestScore := (*world.Room)(nil), 0
	consider := func(id string) {
		r, err := m.GetRoom(id)
		if err != nil {
			e.log.Error("room connection is unknown", "room", current.ID, "error", err)
			return
		}
		if s := world.MatchScore(input, r.Name, r.ID, nil); s > bestScore {
			best, bestScore = r, s
		}
	}
	for _, id := range current.Connections {
		consider(id)
	}
	if best != nil {
		return best
	}
	ids := make([]string, 0, len(m.World().Rooms))
	for id := range m.World().Rooms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		consider(id)
	}
	return best
}

func exitsLine(current *world.Room, m *world.Model) string {
	var names []string
	for _, id := range current.Connections {
		if r, err := m.GetRoom(id); err == nil {
			names = append(names, theName(r.Name))
		}
	}
	if len(names) == 0 {
		return "There are no obvious exits."
	}
	return "From here you could try " + strings.Join(names, ", ") + "."
}

// exitActions suggests the connected rooms the player can enter now.
func exitActions(current *world.Room, m *world.Model, ps *state.PlayerState) []string {
	var out []string
	for _, id := range current.Connections {
		if r, err := m.GetRoom(id); err == nil && m.IsRoomAccessible(id, ps) {
			out = append(out, goTo(r))
		}
	}
	return out
}

func goTo(r *world.Room) string {
	return "go to " + strings.ToLower(strings.TrimPrefix(r.Name, "The "))
}

// theName puts a lowercase article in front of a display name.
func theName(name string) string {
	if rest, ok := strings.CutPrefix(name, "The "); ok {
		return "the " + rest
	}
	return "the " + name
}
