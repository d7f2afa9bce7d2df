package world

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// PuzzleStatus is the derived state of a puzzle within a session.
type PuzzleStatus string

const (
	PuzzleUnsolved PuzzleStatus = "unsolved"
	PuzzleHostile  PuzzleStatus = "hostile"
	PuzzleSolved   PuzzleStatus = "solved"
)

// PuzzleProgress is the per-session record of a puzzle.
type PuzzleProgress struct {
	Attempts int  `json:"attempts"`
	Solved   bool `json:"solved"`
}

// Overlay holds every world flag a session can change. The shared World
// template is never mutated.
type Overlay struct {
	UnlockedRooms  map[string]bool            `json:"unlocked_rooms"`
	RevealedItems  map[string]bool            `json:"revealed_items"`
	RoomItems      map[string][]string        `json:"room_items"` // Current contents per room
	Puzzles        map[string]*PuzzleProgress `json:"puzzles"`
	EnemyHP        map[string]int             `json:"enemy_hp"`
	AppliedUnlocks map[string]bool            `json:"applied_unlocks"` // Knowledge tags already unlocked
}

// NewOverlay creates the starting overlay for a world.
func NewOverlay(w *World) *Overlay {
	o := &Overlay{
		UnlockedRooms:  make(map[string]bool),
		RevealedItems:  make(map[string]bool),
		RoomItems:      make(map[string][]string, len(w.Rooms)),
		Puzzles:        make(map[string]*PuzzleProgress, len(w.Puzzles)),
		EnemyHP:        make(map[string]int, len(w.Enemies)),
		AppliedUnlocks: make(map[string]bool),
	}
	for id, r := range w.Rooms {
		o.RoomItems[id] = slices.Clone(r.Items)
	}
	for id := range w.Puzzles {
		o.Puzzles[id] = &PuzzleProgress{}
	}
	for id, e := range w.Enemies {
		o.EnemyHP[id] = e.MaxHP
	}
	return o
}

// Clone returns a deep copy.
func (o *Overlay) Clone() *Overlay {
	c := &Overlay{
		UnlockedRooms:  maps.Clone(o.UnlockedRooms),
		RevealedItems:  maps.Clone(o.RevealedItems),
		RoomItems:      make(map[string][]string, len(o.RoomItems)),
		Puzzles:        make(map[string]*PuzzleProgress, len(o.Puzzles)),
		EnemyHP:        maps.Clone(o.EnemyHP),
		AppliedUnlocks: maps.Clone(o.AppliedUnlocks),
	}
	for k, v := range o.RoomItems {
		c.RoomItems[k] = slices.Clone(v)
	}
	for k, v := range o.Puzzles {
		p := *v
		c.Puzzles[k] = &p
	}
	return c
}

// Model pairs a shared World template with one session's overlay.
type Model struct {
	world   *World
	overlay *Overlay
}

// NewModel creates a model with a fresh overlay.
func NewModel(w *World) *Model {
	return &Model{world: w, overlay: NewOverlay(w)}
}

// RestoreModel rebuilds a model from a stored overlay.
func RestoreModel(w *World, o *Overlay) *Model {
	if o == nil {
		return NewModel(w)
	}
	if o.Puzzles == nil {
		o.Puzzles = make(map[string]*PuzzleProgress)
	}
	if o.UnlockedRooms == nil {
		o.UnlockedRooms = make(map[string]bool)
	}
	if o.RevealedItems == nil {
		o.RevealedItems = make(map[string]bool)
	}
	if o.RoomItems == nil {
		o.RoomItems = make(map[string][]string)
	}
	if o.EnemyHP == nil {
		o.EnemyHP = make(map[string]int)
	}
	if o.AppliedUnlocks == nil {
		o.AppliedUnlocks = make(map[string]bool)
	}
	return &Model{world: w, overlay: o}
}

func (m *Model) World() *World     { return m.world }
func (m *Model) Overlay() *Overlay { return m.overlay }

// Lookups

func (m *Model) GetRoom(id string) (*Room, error) {
	r, ok := m.world.Rooms[id]
	if !ok {
		return nil, &NotFoundError{Kind: "room", ID: id}
	}
	return r, nil
}

func (m *Model) GetPuzzle(id string) (*Puzzle, error) {
	p, ok := m.world.Puzzles[id]
	if !ok {
		return nil, &NotFoundError{Kind: "puzzle", ID: id}
	}
	return p, nil
}

func (m *Model) GetItem(id string) (*Item, error) {
	it, ok := m.world.Items[id]
	if !ok {
		return nil, &NotFoundError{Kind: "item", ID: id}
	}
	return it, nil
}

func (m *Model) GetNPC(id string) (*NPC, error) {
	n, ok := m.world.NPCs[id]
	if !ok {
		return nil, &NotFoundError{Kind: "npc", ID: id}
	}
	return n, nil
}

func (m *Model) GetSecret(id string) (*Secret, error) {
	s, ok := m.world.Secrets[id]
	if !ok {
		return nil, &NotFoundError{Kind: "secret", ID: id}
	}
	return s, nil
}

func (m *Model) GetEnemy(id string) (*Enemy, error) {
	e, ok := m.world.Enemies[id]
	if !ok {
		return nil, &NotFoundError{Kind: "enemy", ID: id}
	}
	return e, nil
}

// Rooms

// IsRoomAccessible is true when the room is open, has been unlocked this
// session, or all of its required items are held. Unknown rooms are never
// accessible.
func (m *Model) IsRoomAccessible(id string, ps *state.PlayerState) bool {
	r, ok := m.world.Rooms[id]
	if !ok {
		return false
	}
	if r.Unlocked || m.overlay.UnlockedRooms[id] {
		return true
	}
	if len(r.RequiredItems) == 0 {
		return false
	}
	for _, item := range r.RequiredItems {
		if !ps.HasItem(item) {
			return false
		}
	}
	return true
}

// UnlockRoom is idempotent.
func (m *Model) UnlockRoom(id string) error {
	if _, ok := m.world.Rooms[id]; !ok {
		return &NotFoundError{Kind: "room", ID: id}
	}
	m.overlay.UnlockedRooms[id] = true
	return nil
}

// Items

// RevealItem clears an item's hidden flag for this session. Idempotent.
func (m *Model) RevealItem(roomID, itemID string) error {
	if _, ok := m.world.Rooms[roomID]; !ok {
		return &NotFoundError{Kind: "room", ID: roomID}
	}
	if _, ok := m.world.Items[itemID]; !ok {
		return &NotFoundError{Kind: "item", ID: itemID}
	}
	m.overlay.RevealedItems[itemID] = true
	return nil
}

// IsHidden reports whether an item still needs a search before it can be taken.
func (m *Model) IsHidden(itemID string) bool {
	it, ok := m.world.Items[itemID]
	if !ok {
		return false
	}
	return it.Hidden && !m.overlay.RevealedItems[itemID]
}

// RoomItems returns every item currently in a room, hidden or not.
func (m *Model) RoomItems(roomID string) []string {
	return slices.Clone(m.overlay.RoomItems[roomID])
}

// VisibleItems returns the items in a room the player can see.
func (m *Model) VisibleItems(roomID string) []*Item {
	var out []*Item
	for _, id := range m.overlay.RoomItems[roomID] {
		if m.IsHidden(id) {
			continue
		}
		if it, ok := m.world.Items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// HiddenItems returns the items in a room that have not been revealed.
func (m *Model) HiddenItems(roomID string) []*Item {
	var out []*Item
	for _, id := range m.overlay.RoomItems[roomID] {
		if m.IsHidden(id) {
			out = append(out, m.world.Items[id])
		}
	}
	return out
}

// TakeItem removes an item from a room and places it in the inventory.
// The transfer happens at most once.
func (m *Model) TakeItem(roomID, itemID string, ps *state.PlayerState) error {
	items, ok := m.overlay.RoomItems[roomID]
	if !ok {
		return &NotFoundError{Kind: "room", ID: roomID}
	}
	i := slices.Index(items, itemID)
	if i < 0 {
		return &NotFoundError{Kind: "item", ID: itemID}
	}
	if m.IsHidden(itemID) {
		return fmt.Errorf("item %s is hidden", itemID)
	}
	m.overlay.RoomItems[roomID] = slices.Delete(items, i, i+1)
	ps.AddItem(itemID)
	return nil
}

// PlaceItem adds an item to a room unless it already exists somewhere in
// the world or in the inventory.
func (m *Model) PlaceItem(roomID, itemID string, ps *state.PlayerState) (bool, error) {
	if _, ok := m.world.Rooms[roomID]; !ok {
		return false, &NotFoundError{Kind: "room", ID: roomID}
	}
	if _, ok := m.world.Items[itemID]; !ok {
		return false, &NotFoundError{Kind: "item", ID: itemID}
	}
	if ps != nil && ps.HasItem(itemID) {
		return false, nil
	}
	for _, items := range m.overlay.RoomItems {
		if slices.Contains(items, itemID) {
			return false, nil
		}
	}
	m.overlay.RoomItems[roomID] = append(m.overlay.RoomItems[roomID], itemID)
	return true, nil
}

// FindItem returns the best match for text among the given item IDs.
func (m *Model) FindItem(text string, ids []string) (*Item, bool) {
	var best *Item
	bestScore := 0
	for _, id := range ids {
		it, ok := m.world.Items[id]
		if !ok {
			continue
		}
		if s := MatchScore(text, it.Name, it.ID, it.Keywords); s > bestScore {
			best, bestScore = it, s
		}
	}
	return best, best != nil
}

// Puzzles

// PuzzleStatus derives Unsolved, Hostile or Solved.
func (m *Model) PuzzleStatus(id string) PuzzleStatus {
	p, ok := m.world.Puzzles[id]
	if !ok {
		return PuzzleUnsolved
	}
	prog := m.progress(id)
	switch {
	case prog.Solved:
		return PuzzleSolved
	case p.MaxAttempts > 0 && prog.Attempts >= p.MaxAttempts:
		return PuzzleHostile
	default:
		return PuzzleUnsolved
	}
}

// Attempts returns the number of failed attempts recorded for a puzzle.
func (m *Model) Attempts(id string) int {
	return m.progress(id).Attempts
}

// RecordAttempt counts one failed attempt and returns the new status.
func (m *Model) RecordAttempt(id string) PuzzleStatus {
	m.progress(id).Attempts++
	return m.PuzzleStatus(id)
}

// MarkSolved flags a puzzle solved on both the overlay and the player state.
// It fails with state.InvalidTransitionError if the puzzle was already solved.
func (m *Model) MarkSolved(id string, ps *state.PlayerState) error {
	if _, ok := m.world.Puzzles[id]; !ok {
		return &NotFoundError{Kind: "puzzle", ID: id}
	}
	if err := ps.MarkSolved(id); err != nil {
		return err
	}
	m.progress(id).Solved = true
	return nil
}

func (m *Model) progress(id string) *PuzzleProgress {
	p, ok := m.overlay.Puzzles[id]
	if !ok {
		p = &PuzzleProgress{}
		m.overlay.Puzzles[id] = p
	}
	return p
}

// UnsolvedPuzzles returns the room's puzzles that are not solved yet.
func (m *Model) UnsolvedPuzzles(roomID string) []*Puzzle {
	r, ok := m.world.Rooms[roomID]
	if !ok {
		return nil
	}
	var out []*Puzzle
	for _, id := range r.Puzzles {
		if m.PuzzleStatus(id) != PuzzleSolved {
			out = append(out, m.world.Puzzles[id])
		}
	}
	return out
}

// Enemies

func (m *Model) EnemyHP(id string) int {
	return m.overlay.EnemyHP[id]
}

// DamageEnemy lowers an enemy's hit points and returns what remains.
func (m *Model) DamageEnemy(id string, n int) int {
	hp := max(0, m.overlay.EnemyHP[id]-max(0, n))
	m.overlay.EnemyHP[id] = hp
	return hp
}

// LivingEnemies returns the enemies in a room that still have hit points.
func (m *Model) LivingEnemies(roomID string) []*Enemy {
	r, ok := m.world.Rooms[roomID]
	if !ok {
		return nil
	}
	var out []*Enemy
	for _, id := range r.Enemies {
		if m.overlay.EnemyHP[id] > 0 {
			out = append(out, m.world.Enemies[id])
		}
	}
	return out
}

// Content unlocks

// UnlockContent applies the world-side effects registered for a knowledge
// tag once per session. It returns the IDs of rooms and items touched.
func (m *Model) UnlockContent(tag string, ps *state.PlayerState) ([]string, error) {
	effects, ok := m.world.ContentUnlocks[tag]
	if !ok || m.overlay.AppliedUnlocks[tag] {
		return nil, nil
	}
	m.overlay.AppliedUnlocks[tag] = true

	var touched []string
	for _, e := range effects {
		switch e.Kind {
		case EffectUnlockRoom:
			if err := m.UnlockRoom(e.Room); err != nil {
				return touched, fmt.Errorf("unlock content %s: %w", tag, err)
			}
			touched = append(touched, e.Room)
		case EffectAddItem:
			added, err := m.addItem(e, ps)
			if err != nil {
				return touched, fmt.Errorf("unlock content %s: %w", tag, err)
			}
			if added {
				touched = append(touched, e.Item)
			}
		case EffectRevealItem:
			if err := m.RevealItem(e.Room, e.Item); err != nil {
				return touched, fmt.Errorf("unlock content %s: %w", tag, err)
			}
			touched = append(touched, e.Item)
		}
	}
	return touched, nil
}

// MoodFor derives an NPC's current mood from its base mood and the player's
// standing and fear.
func MoodFor(npc *NPC, ps *state.PlayerState) Mood {
	idx := slices.Index(moodScale, npc.Mood)
	if idx < 0 {
		idx = slices.Index(moodScale, MoodNeutral)
	}
	rel := ps.Relationship(npc.ID)
	switch {
	case rel >= 10:
		idx--
	case rel <= -10:
		idx++
	}
	if npc.Ghost && ps.Fear >= 8 {
		idx = len(moodScale) - 1
	}
	return moodScale[max(0, min(idx, len(moodScale)-1))]
}
