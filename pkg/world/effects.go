package world

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

type EffectKind string

const (
	EffectUnlockRoom  EffectKind = "unlock_room"
	EffectRevealItem  EffectKind = "reveal_item"
	EffectAddItem     EffectKind = "add_item" // To Room when set, otherwise to the inventory
	EffectRaiseFear   EffectKind = "raise_fear"
	EffectCalm        EffectKind = "calm"
	EffectDrainSanity EffectKind = "drain_sanity"
	EffectRest        EffectKind = "rest"
	EffectDamage      EffectKind = "damage"
	EffectHeal        EffectKind = "heal"
	EffectProgress    EffectKind = "progress"
	EffectAwareness   EffectKind = "awareness"
	EffectKnowledge   EffectKind = "knowledge"
	EffectSolvePuzzle EffectKind = "solve_puzzle"
)

var effectKinds = []EffectKind{
	EffectUnlockRoom, EffectRevealItem, EffectAddItem, EffectRaiseFear,
	EffectCalm, EffectDrainSanity, EffectRest, EffectDamage, EffectHeal,
	EffectProgress, EffectAwareness, EffectKnowledge, EffectSolvePuzzle,
}

// Effect is a single state change applied by a puzzle, secret, book, item
// or use rule. Handlers interpret it; it is data, not code.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	Room   string     `json:"room,omitempty"`
	Item   string     `json:"item,omitempty"`
	Target string     `json:"target,omitempty"` // Knowledge tag or puzzle ID
	Amount int        `json:"amount,omitempty"`
}

// ApplyEffects applies effects in order to the model and player state.
func (m *Model) ApplyEffects(effects []Effect, ps *state.PlayerState) error {
	for _, e := range effects {
		if err := m.applyEffect(e, ps); err != nil {
			return fmt.Errorf("failed to apply %s effect: %w", e.Kind, err)
		}
	}
	return nil
}

func (m *Model) applyEffect(e Effect, ps *state.PlayerState) error {
	switch e.Kind {
	case EffectUnlockRoom:
		return m.UnlockRoom(e.Room)
	case EffectRevealItem:
		return m.RevealItem(e.Room, e.Item)
	case EffectAddItem:
		_, err := m.addItem(e, ps)
		return err
	case EffectRaiseFear:
		ps.RaiseFear(e.Amount)
	case EffectCalm:
		ps.Calm(e.Amount)
	case EffectDrainSanity:
		ps.DrainSanity(e.Amount)
	case EffectRest:
		ps.Rest(e.Amount)
	case EffectDamage:
		ps.Damage(e.Amount)
	case EffectHeal:
		ps.Heal(e.Amount)
	case EffectProgress:
		ps.AdvanceStory(e.Amount)
	case EffectAwareness:
		ps.AddAwareness(e.Amount)
	case EffectKnowledge:
		ps.AddKnowledge(e.Target)
	case EffectSolvePuzzle:
		if m.PuzzleStatus(e.Target) == PuzzleSolved {
			return nil
		}
		return m.MarkSolved(e.Target, ps)
	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	return nil
}

func (m *Model) addItem(e Effect, ps *state.PlayerState) (bool, error) {
	if e.Room != "" {
		return m.PlaceItem(e.Room, e.Item, ps)
	}
	if _, ok := m.world.Items[e.Item]; !ok {
		return false, &NotFoundError{Kind: "item", ID: e.Item}
	}
	for _, items := range m.overlay.RoomItems {
		if slices.Contains(items, e.Item) {
			return false, nil
		}
	}
	return ps.AddItem(e.Item), nil
}
