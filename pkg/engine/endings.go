package engine

import (
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// TerrorFear is the fear level at which a lost mind becomes a terror ending.
const TerrorFear = 8

const (
	defaultMadnessEnding = "You have gone mad from the horrors of this place."
	defaultDeathEnding   = "Your body gives out in the dark."
	defaultTerrorEnding  = "The horror consumes you. You become one with the house's dark legacy."
)

// endingFor picks the ending narration from the state alone, so two results
// built from the same state always agree.
func endingFor(w *world.World, ps *state.PlayerState) string {
	if !ps.IsGameOver() {
		return ""
	}
	var endings world.Endings
	if w != nil {
		endings = w.Endings
	}
	switch {
	case ps.Health <= state.MinHealth:
		return orDefault(endings.Death, defaultDeathEnding)
	case ps.Fear >= TerrorFear:
		return orDefault(endings.Terror, defaultTerrorEnding)
	default:
		return orDefault(endings.Madness, defaultMadnessEnding)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
