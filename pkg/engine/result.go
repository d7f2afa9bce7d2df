package engine

import (
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// ActionResult is the response envelope returned for every action.
type ActionResult struct {
	Narrative       string           `json:"narrative"`
	Category        Category         `json:"category"`
	RoomID          string           `json:"room_id"`
	RoomName        string           `json:"room_name"`
	RoomDescription string           `json:"room_description"`
	Actions         []string         `json:"actions"`
	Puzzles         []PuzzleView     `json:"puzzles"` // Unsolved puzzles in the room
	Items           []ItemView       `json:"items"`   // Visible items in the room
	NPCs            []NPCView        `json:"npcs"`
	Threats         []ThreatView     `json:"threats,omitempty"`
	Inventory       []ItemView       `json:"inventory"`
	Knowledge       []string         `json:"knowledge"`
	Atmosphere      world.Atmosphere `json:"atmosphere"`
	AmbientSounds   []string         `json:"ambient_sounds,omitempty"`
	VisualEffects   []string         `json:"visual_effects,omitempty"`
	Fear            int              `json:"fear"`
	Sanity          int              `json:"sanity"`
	Health          int              `json:"health"`
	Awareness       int              `json:"awareness"`
	StoryProgress   int              `json:"story_progress"`
	TimeInWorld     int              `json:"time_in_world"`
	IsGameOver      bool             `json:"is_game_over"`
	Ending          string           `json:"ending,omitempty"`
}

type PuzzleView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Status      world.PuzzleStatus `json:"status"`
	Attempts    int                `json:"attempts"`
	MaxAttempts int                `json:"max_attempts"`
}

type ItemView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    world.ItemCategory `json:"category"`
}

type NPCView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Role  string     `json:"role"`
	Mood  world.Mood `json:"mood"`
	Ghost bool       `json:"ghost,omitempty"`
}

type ThreatView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

// buildResult packages the envelope from the model and state as they are now.
func (e *Engine) buildResult(cat Category, narrative string, actions []string, m *world.Model, ps *state.PlayerState) *ActionResult {
	res := &ActionResult{
		Narrative:     narrative,
		Category:      cat,
		RoomID:        ps.CurrentRoom,
		Actions:       actions,
		Puzzles:       []PuzzleView{},
		Items:         []ItemView{},
		NPCs:          []NPCView{},
		Inventory:     []ItemView{},
		Knowledge:     append([]string{}, ps.Knowledge...),
		Fear:          ps.Fear,
		Sanity:        ps.Sanity,
		Health:        ps.Health,
		Awareness:     ps.Awareness,
		StoryProgress: ps.StoryProgress,
		TimeInWorld:   ps.TimeInWorld,
		IsGameOver:    ps.IsGameOver(),
	}
	if res.IsGameOver {
		res.Ending = endingFor(m.World(), ps)
	}

	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		e.log.Error("player is in an unknown room", "error", err)
		return res
	}
	res.RoomName = room.Name
	res.RoomDescription = room.Description
	res.Atmosphere = room.Atmosphere
	res.AmbientSounds = room.AmbientSounds
	res.VisualEffects = room.VisualEffects
	if len(res.Actions) == 0 {
		res.Actions = room.Actions
	}

	for _, p := range m.UnsolvedPuzzles(room.ID) {
		res.Puzzles = append(res.Puzzles, PuzzleView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Status:      m.PuzzleStatus(p.ID),
			Attempts:    m.Attempts(p.ID),
			MaxAttempts: p.MaxAttempts,
		})
	}
	for _, it := range m.VisibleItems(room.ID) {
		res.Items = append(res.Items, itemView(it))
	}
	for _, id := range room.NPCs {
		npc, err := m.GetNPC(id)
		if err != nil {
			continue
		}
		res.NPCs = append(res.NPCs, NPCView{
			ID:    npc.ID,
			Name:  npc.Name,
			Role:  npc.Role,
			Mood:  world.MoodFor(npc, ps),
			Ghost: npc.Ghost,
		})
	}
	for _, en := range m.LivingEnemies(room.ID) {
		res.Threats = append(res.Threats, ThreatView{
			ID:    en.ID,
			Name:  en.Name,
			HP:    m.EnemyHP(en.ID),
			MaxHP: en.MaxHP,
		})
	}
	for _, id := range ps.Inventory {
		if it, err := m.GetItem(id); err == nil {
			res.Inventory = append(res.Inventory, itemView(it))
		}
	}
	return res
}

func itemView(it *world.Item) ItemView {
	return ItemView{ID: it.ID, Name: it.Name, Description: it.Description, Category: it.Category}
}
