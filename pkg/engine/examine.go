package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// handleExamination describes what the player looks at. Looking never
// counts as a puzzle attempt and never changes state, except that a search
// phrased as looking ("look for hidden things") runs a search.
func (e *Engine) handleExamination(input string, m *world.Model, ps *state.PlayerState) outcome {
	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		e.log.Error("examination in unknown room", "error", err)
		return outcome{narrative: "Everything is dark and indistinct.", miss: true}
	}

	if slices.Contains(lookAroundInputs, input) {
		return outcome{narrative: room.LongDescription + roomListing(room, m, ps), actions: room.Actions}
	}
	if world.ContainsAny(input, inventoryWords...) {
		return e.inventory(m, ps)
	}
	if world.ContainsAny(input, searchWords...) {
		return e.search(room, m, ps)
	}

	for _, f := range room.Features {
		if !world.ContainsAny(input, f.Keywords...) {
			continue
		}
		if f.SolvedBy != "" && ps.HasSolved(f.SolvedBy) && f.SolvedNarrative != "" {
			return outcome{narrative: f.SolvedNarrative, actions: room.Actions}
		}
		return outcome{narrative: f.Narrative, actions: mergeActions(f.Actions, room.Actions...)}
	}

	candidates := append(slices.DeleteFunc(m.RoomItems(room.ID), m.IsHidden), ps.Inventory...)
	if it, ok := m.FindItem(input, candidates); ok {
		return outcome{narrative: describeItem(it, ps), actions: itemActions(it, m, ps)}
	}

	if npc := findNPC(input, room, m); npc != nil {
		narrative := fmt.Sprintf("%s, %s. %s They seem %s.",
			npc.Name, strings.ToLower(npc.Role), npc.Personality+".", world.MoodFor(npc, ps))
		if npc.Ghost {
			narrative += " Their outline wavers like heat over a candle."
		}
		return outcome{narrative: narrative, actions: []string{"talk to " + strings.ToLower(npc.Name)}}
	}

	for _, en := range m.LivingEnemies(room.ID) {
		if world.MatchScore(input, en.Name, en.ID, en.Keywords) > 0 {
			return outcome{
				narrative: fmt.Sprintf("%s %s", en.Description, woundLine(m.EnemyHP(en.ID), en.MaxHP)),
				actions:   []string{"attack " + strings.ToLower(en.Name)},
			}
		}
	}

	for _, id := range room.Puzzles {
		p, err := m.GetPuzzle(id)
		if err != nil {
			continue
		}
		if world.MatchScore(input, p.Name, p.ID, nil) == 0 {
			continue
		}
		if m.PuzzleStatus(id) == world.PuzzleSolved {
			return outcome{narrative: p.Description + " You have already solved it.", actions: room.Actions}
		}
		narrative := p.Description
		if len(p.Clues) > 0 {
			narrative += " " + p.Clues[0] + "."
		}
		return outcome{narrative: narrative, actions: p.Actions}
	}

	if world.MatchScore(input, room.Name, room.ID, nil) > 0 {
		return outcome{narrative: room.LongDescription + roomListing(room, m, ps), actions: room.Actions}
	}
	return outcome{
		narrative: "You find nothing special about that.",
		actions:   mergeActions([]string{"look around"}, room.Actions...),
		miss:      true,
	}
}

func roomListing(room *world.Room, m *world.Model, ps *state.PlayerState) string {
	var b strings.Builder
	if items := m.VisibleItems(room.ID); len(items) > 0 {
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.Name)
		}
		b.WriteString("\n\nYou notice: " + strings.Join(names, ", ") + ".")
	}
	var people []string
	for _, id := range room.NPCs {
		if npc, err := m.GetNPC(id); err == nil {
			people = append(people, npc.Name)
		}
	}
	if len(people) > 0 {
		b.WriteString("\nPresent: " + strings.Join(people, ", ") + ".")
	}
	var threats []string
	for _, en := range m.LivingEnemies(room.ID) {
		threats = append(threats, en.Name)
	}
	if len(threats) > 0 {
		b.WriteString("\nDanger: " + strings.Join(threats, ", ") + ".")
	}
	var exits []string
	for _, id := range room.Connections {
		if r, err := m.GetRoom(id); err == nil {
			exits = append(exits, r.Name)
		}
	}
	if len(exits) > 0 {
		b.WriteString("\nExits: " + strings.Join(exits, ", ") + ".")
	}
	if len(room.VisualEffects) > 0 && ps.Awareness > 0 {
		b.WriteString("\n" + room.VisualEffects[ps.Awareness%len(room.VisualEffects)] + ".")
	}
	return b.String()
}

func describeItem(it *world.Item, ps *state.PlayerState) string {
	narrative := it.Description
	if it.Significance != "" {
		narrative += " " + it.Significance
	}
	if it.Cursed && ps.Awareness >= 2 {
		narrative += " A chill runs up your arm when you hold it near."
	}
	return narrative
}

// itemActions suggests what to do next with an item: pick it up, then
// whatever the use rules allow in this room.
func itemActions(it *world.Item, m *world.Model, ps *state.PlayerState) []string {
	name := strings.ToLower(it.Name)
	if !ps.HasItem(it.ID) {
		return []string{"take " + name}
	}
	var out []string
	for _, rule := range m.World().UseRules {
		if rule.Item == it.ID && len(rule.Targets) > 0 && (rule.Room == "" || rule.Room == ps.CurrentRoom) {
			out = mergeActions(out, "use "+name+" on "+rule.Targets[0])
		}
	}
	switch {
	case it.Category == world.ItemConsumable:
		out = append(out, "use "+name)
	case isBook(it.ID, m):
		out = append(out, "read "+name)
	}
	return out
}

func isBook(itemID string, m *world.Model) bool {
	for _, b := range m.World().Books {
		if b.Item == itemID {
			return true
		}
	}
	return false
}

func findNPC(input string, room *world.Room, m *world.Model) *world.NPC {
	var best *world.NPC
	bestScore := 0
	for _, id := range room.NPCs {
		npc, err := m.GetNPC(id)
		if err != nil {
			continue
		}
		if s := world.MatchScore(input, npc.Name, npc.ID, npc.Keywords); s > bestScore {
			best, bestScore = npc, s
		}
	}
	return best
}

func woundLine(hp, maxHP int) string {
	switch {
	case hp >= maxHP:
		return "It looks untouched."
	case hp*2 >= maxHP:
		return "It is wounded."
	default:
		return "It is badly hurt."
	}
}
