package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

const defaultTopic = "default"

func (e *Engine) handleDialogue(input string, m *world.Model, ps *state.PlayerState) outcome {
	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		e.log.Error("dialogue in unknown room", "error", err)
		return outcome{narrative: "There is no one here to talk to.", miss: true}
	}
	if len(room.NPCs) == 0 {
		return outcome{narrative: "There is no one here to talk to. Only the house listens.", actions: room.Actions, miss: true}
	}

	npc := findNPC(input, room, m)
	if npc == nil {
		npc, err = m.GetNPC(room.NPCs[0])
		if err != nil {
			e.log.Error("room lists unknown npc", "room", room.ID, "error", err)
			return outcome{narrative: "There is no one here to talk to.", miss: true}
		}
	}

	topic := topicFor(input, m.World().Topics)
	line := DialogueLine(npc, topic, ps)

	ps.AdjustRelationship(npc.ID, 1)
	if npc.FearFactor > ps.Fear {
		ps.RaiseFear(1)
	}
	ps.LogEncounter("talk:" + npc.ID + ":" + topic)
	ps.PassTime(2)

	actions := make([]string, 0, len(m.World().Topics))
	for _, t := range m.World().Topics {
		if t.Name != topic {
			actions = append(actions, fmt.Sprintf("ask %s about %s", npcHandle(npc), t.Name))
		}
	}
	return outcome{narrative: fmt.Sprintf("%s: %s", npc.Name, line), actions: actions}
}

// npcHandle is the short name a player would type for an NPC.
func npcHandle(npc *world.NPC) string {
	if len(npc.Keywords) > 0 {
		return "the " + npc.Keywords[0]
	}
	return strings.ToLower(npc.Name)
}

// topicFor returns the first topic whose keywords appear in input.
func topicFor(input string, topics []world.Topic) string {
	for _, t := range topics {
		if world.ContainsAny(input, t.Keywords...) {
			return t.Name
		}
	}
	return defaultTopic
}

// DialogueLine picks an NPC's line for a topic. It is a pure function of
// its arguments: the same NPC, topic and state always give the same line.
func DialogueLine(npc *world.NPC, topic string, ps *state.PlayerState) string {
	table := maps.Clone(npc.Dialogue)
	if table == nil {
		table = make(map[string][]string)
	}
	for _, tier := range npc.KnowledgeDialogue {
		if !ps.HasKnowledge(tier.Knowledge) {
			continue
		}
		for t, lines := range tier.Dialogue {
			table[t] = lines
		}
	}

	lines := table[topic]
	if len(lines) == 0 {
		lines = table[defaultTopic]
	}
	if len(lines) == 0 {
		lines = table["greeting"]
	}
	if len(lines) == 0 {
		keys := slices.Sorted(maps.Keys(table))
		for _, k := range keys {
			if len(table[k]) > 0 {
				lines = table[k]
				break
			}
		}
	}
	if len(lines) == 0 {
		return "..."
	}
	n := len(lines)
	i := ((ps.StoryProgress+ps.Relationship(npc.ID))%n + n) % n
	return lines[i]
}
