package state

import (
	"maps"
	"slices"
)

// Meter bounds. Every mutation clamps into these ranges.
const (
	MinFear         = 0
	MaxFear         = 10
	MinSanity       = 0
	MaxSanity       = 100
	MinHealth       = 0
	MaxHealth       = 100
	MaxAwareness    = 10
	MinRelationship = -100
	MaxRelationship = 100

	DefaultFear = 1
)

// PlayerState is the mutable progression record of a single adventure session.
// It is only ever mutated by the action interpreter.
type PlayerState struct {
	CurrentRoom       string         `json:"current_room"`
	Inventory         []string       `json:"inventory"`
	DiscoveredSecrets []string       `json:"discovered_secrets"`
	SolvedPuzzles     []string       `json:"solved_puzzles"`
	Fear              int            `json:"fear"`          // 0-10, only lowered by Calm
	Sanity            int            `json:"sanity"`        // 0-100, only raised by Rest
	Health            int            `json:"health"`        // 0-100
	TimeInWorld       int            `json:"time_in_world"` // minutes
	Encounters        []string       `json:"encounters,omitempty"`
	Relationships     map[string]int `json:"relationships,omitempty"` // NPC ID -> -100..100
	Knowledge         []string       `json:"knowledge"`               // Books read, abilities unlocked
	StoryProgress     int            `json:"story_progress"`
	Awareness         int            `json:"awareness"` // Supernatural awareness, 0-10
	VisitedRooms      []string       `json:"visited_rooms"`
	ActionCount       int            `json:"action_count"`
}

// NewPlayerState creates the starting progression for a new session.
func NewPlayerState(startRoom string) *PlayerState {
	return &PlayerState{
		CurrentRoom:       startRoom,
		Inventory:         make([]string, 0),
		DiscoveredSecrets: make([]string, 0),
		SolvedPuzzles:     make([]string, 0),
		Fear:              DefaultFear,
		Sanity:            MaxSanity,
		Health:            MaxHealth,
		Relationships:     make(map[string]int),
		Knowledge:         make([]string, 0),
		VisitedRooms:      []string{startRoom},
	}
}

// IsGameOver is derived, never stored.
func (ps *PlayerState) IsGameOver() bool {
	return ps.Sanity <= MinSanity || ps.Health <= MinHealth
}

// Clone returns a deep copy.
func (ps *PlayerState) Clone() *PlayerState {
	if ps == nil {
		return nil
	}
	c := *ps
	c.Inventory = slices.Clone(ps.Inventory)
	c.DiscoveredSecrets = slices.Clone(ps.DiscoveredSecrets)
	c.SolvedPuzzles = slices.Clone(ps.SolvedPuzzles)
	c.Encounters = slices.Clone(ps.Encounters)
	c.Relationships = maps.Clone(ps.Relationships)
	c.Knowledge = slices.Clone(ps.Knowledge)
	c.VisitedRooms = slices.Clone(ps.VisitedRooms)
	return &c
}

// Meters

// RaiseFear increases fear by n, clamped. Returns the change actually applied.
func (ps *PlayerState) RaiseFear(n int) int {
	if n <= 0 {
		return 0
	}
	before := ps.Fear
	ps.Fear = clamp(ps.Fear+n, MinFear, MaxFear)
	return ps.Fear - before
}

// Calm is the only way fear goes down.
func (ps *PlayerState) Calm(n int) int {
	if n <= 0 {
		return 0
	}
	before := ps.Fear
	ps.Fear = clamp(ps.Fear-n, MinFear, MaxFear)
	return before - ps.Fear
}

// DrainSanity lowers sanity by n, clamped at zero.
func (ps *PlayerState) DrainSanity(n int) int {
	if n <= 0 {
		return 0
	}
	before := ps.Sanity
	ps.Sanity = clamp(ps.Sanity-n, MinSanity, MaxSanity)
	return before - ps.Sanity
}

// Rest is the only way sanity goes up.
func (ps *PlayerState) Rest(n int) int {
	if n <= 0 {
		return 0
	}
	before := ps.Sanity
	ps.Sanity = clamp(ps.Sanity+n, MinSanity, MaxSanity)
	return ps.Sanity - before
}

func (ps *PlayerState) Damage(n int) int {
	if n <= 0 {
		return 0
	}
	before := ps.Health
	ps.Health = clamp(ps.Health-n, MinHealth, MaxHealth)
	return before - ps.Health
}

func (ps *PlayerState) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := ps.Health
	ps.Health = clamp(ps.Health+n, MinHealth, MaxHealth)
	return ps.Health - before
}

func (ps *PlayerState) AddAwareness(n int) {
	if n <= 0 {
		return
	}
	ps.Awareness = clamp(ps.Awareness+n, 0, MaxAwareness)
}

// AdvanceStory moves the story-progress counter forward. It never goes back.
func (ps *PlayerState) AdvanceStory(n int) {
	if n <= 0 {
		return
	}
	ps.StoryProgress += n
}

// PassTime adds minutes to the in-world clock.
func (ps *PlayerState) PassTime(minutes int) {
	if minutes <= 0 {
		return
	}
	ps.TimeInWorld += minutes
}

// AdjustRelationship shifts the player's standing with an NPC, clamped.
func (ps *PlayerState) AdjustRelationship(npcID string, delta int) int {
	if ps.Relationships == nil {
		ps.Relationships = make(map[string]int)
	}
	ps.Relationships[npcID] = clamp(ps.Relationships[npcID]+delta, MinRelationship, MaxRelationship)
	return ps.Relationships[npcID]
}

func (ps *PlayerState) Relationship(npcID string) int {
	return ps.Relationships[npcID]
}

// Inventory

// AddItem puts an item in the inventory. Returns false if it was already there.
func (ps *PlayerState) AddItem(id string) bool {
	if slices.Contains(ps.Inventory, id) {
		return false
	}
	ps.Inventory = append(ps.Inventory, id)
	return true
}

// RemoveItem takes an item out of the inventory. Returns false if it was not there.
func (ps *PlayerState) RemoveItem(id string) bool {
	i := slices.Index(ps.Inventory, id)
	if i < 0 {
		return false
	}
	ps.Inventory = slices.Delete(ps.Inventory, i, i+1)
	return true
}

// Progression sets

// AddKnowledge records a knowledge flag. Returns true only the first time.
func (ps *PlayerState) AddKnowledge(tag string) bool {
	if slices.Contains(ps.Knowledge, tag) {
		return false
	}
	ps.Knowledge = append(ps.Knowledge, tag)
	return true
}

// MarkSolved records a solved puzzle. Solving twice is an invalid transition.
func (ps *PlayerState) MarkSolved(puzzleID string) error {
	if slices.Contains(ps.SolvedPuzzles, puzzleID) {
		return &InvalidTransitionError{Op: "solve", Target: puzzleID, Reason: "puzzle already solved"}
	}
	ps.SolvedPuzzles = append(ps.SolvedPuzzles, puzzleID)
	return nil
}

// DiscoverSecret records a secret. Returns true only the first time.
func (ps *PlayerState) DiscoverSecret(id string) bool {
	if slices.Contains(ps.DiscoveredSecrets, id) {
		return false
	}
	ps.DiscoveredSecrets = append(ps.DiscoveredSecrets, id)
	return true
}

// Visit moves the player and records the room as visited.
func (ps *PlayerState) Visit(roomID string) {
	ps.CurrentRoom = roomID
	if !slices.Contains(ps.VisitedRooms, roomID) {
		ps.VisitedRooms = append(ps.VisitedRooms, roomID)
	}
}

func (ps *PlayerState) LogEncounter(entry string) {
	ps.Encounters = append(ps.Encounters, entry)
}

// conditionals.StateView

func (ps *PlayerState) HasItem(id string) bool         { return slices.Contains(ps.Inventory, id) }
func (ps *PlayerState) HasKnowledge(tag string) bool   { return slices.Contains(ps.Knowledge, tag) }
func (ps *PlayerState) HasSolved(puzzleID string) bool { return slices.Contains(ps.SolvedPuzzles, puzzleID) }
func (ps *PlayerState) HasSecret(id string) bool       { return slices.Contains(ps.DiscoveredSecrets, id) }
func (ps *PlayerState) GetCurrentRoom() string         { return ps.CurrentRoom }
func (ps *PlayerState) GetStoryProgress() int          { return ps.StoryProgress }
func (ps *PlayerState) GetFear() int                   { return ps.Fear }
func (ps *PlayerState) GetSanity() int                 { return ps.Sanity }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
