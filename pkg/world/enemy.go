package world

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// Enemy is a hostile presence that can be fought with "attack".
// Its stat block is turned into a d20.Actor for combat rolls.
type Enemy struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords,omitempty"`
	Room            string   `json:"room"`
	AC              int      `json:"ac"`
	MaxHP           int      `json:"max_hp"`
	Attack          int      `json:"attack"` // Combat modifier on the enemy's strike roll
	Damage          string   `json:"damage"` // Dice notation, e.g. "1d4" or "2d6+1"
	FearFactor      int      `json:"fear_factor"`
	Loot            []string `json:"loot,omitempty"` // Items left in the room on defeat
	DefeatNarrative string   `json:"defeat_narrative,omitempty"`
}

// Actor builds the d20 stat block for this enemy at hp hit points. The
// enemy's attack bonus is carried as a combat modifier, so AttackRoll
// includes it.
func (e *Enemy) Actor(hp int) (*d20.Actor, error) {
	if _, err := d20.NewRoller(0).Roll(e.Damage); err != nil {
		return nil, fmt.Errorf("enemy %s has bad damage dice: %w", e.ID, err)
	}
	actor, err := d20.NewActor(e.ID).
		WithHP(e.MaxHP).
		WithAC(e.AC).
		WithCombatModifier("attack", e.Attack).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor for enemy %s: %w", e.ID, err)
	}
	if err := actor.SetHP(hp); err != nil {
		return nil, fmt.Errorf("enemy %s: %w", e.ID, err)
	}
	return actor, nil
}
