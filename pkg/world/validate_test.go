package world

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *World)
		problem string
	}{
		{
			name:    "unknown start room",
			mutate:  func(w *World) { w.StartRoom = "attic" },
			problem: `start_room "attic" does not exist`,
		},
		{
			name:    "dangling connection",
			mutate:  func(w *World) { w.Rooms["foyer"].Connections = append(w.Rooms["foyer"].Connections, "attic") },
			problem: `connection to unknown room "attic"`,
		},
		{
			name:    "horror level out of range",
			mutate:  func(w *World) { w.Rooms["library"].HorrorLevel = 11 },
			problem: "horror_level 11 out of range",
		},
		{
			name: "item placed twice",
			mutate: func(w *World) {
				w.Rooms["library"].Items = append(w.Rooms["library"].Items, "candle")
			},
			problem: "item candle is placed in both",
		},
		{
			name:    "dangling puzzle effect",
			mutate:  func(w *World) { w.Puzzles["portrait"].Consequences[0].Room = "attic" },
			problem: `unlock_room references unknown room "attic"`,
		},
		{
			name:    "unknown effect kind",
			mutate:  func(w *World) { w.Puzzles["portrait"].Consequences[1].Kind = "explode" },
			problem: `unknown effect kind "explode"`,
		},
		{
			name:    "empty solution",
			mutate:  func(w *World) { w.Puzzles["portrait"].Solution = Matcher{} },
			problem: "solution matcher is empty",
		},
		{
			name:    "book without item",
			mutate:  func(w *World) { w.Books["old_book"].Item = "missing" },
			problem: `book old_book: item "missing" does not exist`,
		},
		{
			name:    "loot already placed",
			mutate:  func(w *World) { w.Enemies["rat"].Loot = []string{"candle"} },
			problem: "loot item candle is already placed",
		},
		{
			name:    "bad damage dice",
			mutate:  func(w *World) { w.Enemies["rat"].Damage = "a handful" },
			problem: "enemy rat: enemy rat has bad damage dice",
		},
		{
			name:    "map key mismatch",
			mutate:  func(w *World) { w.Items["candle"].ID = "taper" },
			problem: `item key "candle" does not match id "taper"`,
		},
		{
			name: "room gated on an unobtainable item",
			mutate: func(w *World) {
				w.Rooms["cellar"].RequiredItems = []string{"crystal", "fang"}
			},
			problem: "room cellar is unreachable",
		},
		{
			name: "room never unlocked",
			mutate: func(w *World) {
				w.Puzzles["portrait"].Consequences = []Effect{{Kind: EffectRaiseFear, Amount: 1}}
			},
			problem: "room library is unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld()
			tt.mutate(w)

			err := w.Validate()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.True(t, containsProblem(ve.Problems, tt.problem), "problems %v missing %q", ve.Problems, tt.problem)
		})
	}
}

func TestValidate_ContentUnlockMakesRoomReachable(t *testing.T) {
	w := newTestWorld()
	w.Rooms["cellar"].RequiredItems = []string{"crystal"}
	require.NoError(t, w.Validate(), "crystal is spawned by reading the old book")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	w := newTestWorld()
	w.Rooms["foyer"].HorrorLevel = 0
	w.Rooms["library"].HorrorLevel = 12

	err := w.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.GreaterOrEqual(t, len(ve.Problems), 2)
	assert.Contains(t, err.Error(), "test_manor")
}

func containsProblem(problems []string, want string) bool {
	for _, p := range problems {
		if strings.Contains(p, want) {
			return true
		}
	}
	return false
}
