package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

var helpText = `You can try:
  go to <room>            move through the manor
  look / examine <thing>  study your surroundings
  search                  look for hidden things
  take <item>             pick something up
  use <item> on <thing>   put an item to work
  drink / eat <item>      consume something
  talk to <someone>       speak with the living, or the dead
  read <book>             learn what a book knows
  attack <enemy>          fight back
  rest / calm down        recover your nerves
  inventory               see what you carry`

// handleGeneric covers the explicit verbs that have no category of their
// own, then falls back to flavor text for anything else.
func (e *Engine) handleGeneric(raw, input string, m *world.Model, ps *state.PlayerState) outcome {
	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		e.log.Error("generic action in unknown room", "error", err)
		return outcome{narrative: "The darkness gives no answer.", miss: true}
	}

	switch {
	case world.ContainsAny(input, attackWords...):
		return e.handleCombat(input, room, m, ps)
	case world.ContainsAny(input, searchWords...):
		return e.search(room, m, ps)
	case world.ContainsAny(input, restWords...):
		return e.rest(room, m, ps)
	case world.ContainsAny(input, calmWords...):
		ps.Calm(1)
		ps.PassTime(calmMinutes)
		return outcome{narrative: "You close your eyes and steady your breathing. The fear loosens its grip, a little.", actions: room.Actions}
	case world.ContainsAny(input, helpWords...):
		return outcome{narrative: helpText, actions: room.Actions}
	case input == "i" || world.ContainsAny(input, inventoryWords...):
		return e.inventory(m, ps)
	}

	fl := e.flavor.Flavor(FlavorRequest{
		RoomTag:      room.ID,
		Fear:         ps.Fear,
		VisitedRooms: ps.VisitedRooms,
		ActionCount:  ps.ActionCount,
	})
	narrative := fmt.Sprintf("You %s. %s", e.filter.Clean(strings.TrimSpace(raw)), fl.Description)
	if fl.Atmosphere != "" {
		narrative += " " + fl.Atmosphere
	}
	for _, c := range fl.Consequences {
		narrative += " " + c
	}
	return outcome{narrative: narrative, actions: mergeActions(fl.Suggestions, room.Actions...)}
}

// search reveals every hidden item in the room.
func (e *Engine) search(room *world.Room, m *world.Model, ps *state.PlayerState) outcome {
	ps.PassTime(searchMinutes)
	hidden := m.HiddenItems(room.ID)
	if len(hidden) == 0 {
		return outcome{narrative: "You search carefully but find nothing new.", actions: room.Actions}
	}
	names := make([]string, 0, len(hidden))
	actions := make([]string, 0, len(hidden))
	for _, it := range hidden {
		if err := m.RevealItem(room.ID, it.ID); err != nil {
			e.log.Error("failed to reveal item", "item", it.ID, "error", err)
			continue
		}
		names = append(names, it.Name)
		actions = append(actions, "take "+strings.ToLower(it.Name))
	}
	e.log.Debug("items revealed", "room", room.ID, "count", len(names))
	return outcome{
		narrative: "Your search turns up something hidden: " + strings.Join(names, ", ") + ".",
		actions:   actions,
	}
}

func (e *Engine) rest(room *world.Room, m *world.Model, ps *state.PlayerState) outcome {
	if len(m.LivingEnemies(room.ID)) > 0 {
		return outcome{
			narrative: "You cannot rest with something hunting you in the dark.",
			actions:   append([]string{"attack"}, exitActions(room, m, ps)...),
			miss:      true,
		}
	}
	ps.Rest(restSanity)
	ps.PassTime(restMinutes)
	return outcome{narrative: "You rest against the wall for a while. Your thoughts grow clearer.", actions: room.Actions}
}

func (e *Engine) inventory(m *world.Model, ps *state.PlayerState) outcome {
	if len(ps.Inventory) == 0 {
		return outcome{narrative: "You are carrying nothing."}
	}
	names := make([]string, 0, len(ps.Inventory))
	for _, id := range ps.Inventory {
		it, err := m.GetItem(id)
		if err != nil {
			e.log.Error("inventory holds unknown item", "error", err)
			continue
		}
		names = append(names, it.Name)
	}
	return outcome{narrative: "You are carrying: " + strings.Join(names, ", ") + "."}
}
