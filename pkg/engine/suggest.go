package engine

import (
	"maps"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// suggestions keeps the actions that would do something if played now. A
// "take" or "talk to" aimed at another room becomes the first step of the
// way there.
func (e *Engine) suggestions(actions []string, m *world.Model, ps *state.PlayerState) []string {
	if ps.IsGameOver() {
		return nil
	}
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		if e.playable(a, m, ps) {
			out = mergeActions(out, a)
			continue
		}
		if hop := routeTo(a, m, ps); hop != nil {
			out = mergeActions(out, goTo(hop))
		}
	}
	return out
}

// playable runs action on copies of the model and player state.
func (e *Engine) playable(action string, m *world.Model, ps *state.PlayerState) bool {
	input := world.Normalize(action)
	if input == "" {
		return false
	}
	mc := world.RestoreModel(m.World(), m.Overlay().Clone())
	pc := ps.Clone()
	return !e.dry.dispatch(Classify(input, mc, pc), action, input, mc, pc).miss
}

// routeTo is the next room on the way to whatever action names, or nil when
// it is nowhere else or out of reach.
func routeTo(action string, m *world.Model, ps *state.PlayerState) *world.Room {
	input := world.Normalize(action)
	byItem := strings.HasPrefix(input, "take ")
	byNPC := strings.HasPrefix(input, "talk to ") || strings.HasPrefix(input, "ask ")
	if !byItem && !byNPC {
		return nil
	}
	for _, id := range slices.Sorted(maps.Keys(m.World().Rooms)) {
		if id == ps.CurrentRoom {
			continue
		}
		room, err := m.GetRoom(id)
		if err != nil {
			continue
		}
		if byItem {
			if _, ok := m.FindItem(input, visibleIDs(id, m)); !ok {
				continue
			}
		} else if findNPC(input, room, m) == nil {
			continue
		}
		return nextHop(ps.CurrentRoom, id, m, ps)
	}
	return nil
}

// nextHop walks accessible connections breadth first and returns the first
// room on the shortest path from one room to another.
func nextHop(from, to string, m *world.Model, ps *state.PlayerState) *world.Room {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 && prev[to] == "" {
		room, err := m.GetRoom(queue[0])
		queue = queue[1:]
		if err != nil {
			continue
		}
		for _, next := range room.Connections {
			if _, seen := prev[next]; seen || !m.IsRoomAccessible(next, ps) {
				continue
			}
			prev[next] = room.ID
			queue = append(queue, next)
		}
	}
	if prev[to] == "" {
		return nil
	}
	for prev[to] != from {
		to = prev[to]
	}
	hop, err := m.GetRoom(to)
	if err != nil {
		return nil
	}
	return hop
}
