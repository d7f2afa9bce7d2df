package engine

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// newGame starts a fresh Blackwood Manor session with a fixed seed.
func newGame(t *testing.T, ambient float64) (*Engine, *world.Model, *state.PlayerState) {
	t.Helper()
	w, err := content.BlackwoodManor()
	require.NoError(t, err)
	e := New(Options{AmbientChance: ambient, Rand: rand.New(rand.NewPCG(1, 2))})
	return e, world.NewModel(w), state.NewPlayerState(w.StartRoom)
}

func play(t *testing.T, e *Engine, m *world.Model, ps *state.PlayerState, inputs ...string) *ActionResult {
	t.Helper()
	var res *ActionResult
	for _, in := range inputs {
		res = e.ProcessAction(in, m, ps)
		require.NotNil(t, res, "input %q", in)
	}
	return res
}

func TestProcessAction_ExaminePortraitIsNotAnAttempt(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("examine portrait", m, ps)

	assert.Equal(t, CategoryExamination, res.Category)
	assert.Contains(t, res.Narrative, "glowing symbols")
	assert.Equal(t, 0, m.Attempts("foyer_portrait"))
	assert.Equal(t, 1, ps.Fear)
}

func TestProcessAction_TouchSymbolsSolvesPortrait(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("touch symbols", m, ps)

	assert.Equal(t, CategoryPuzzleSolving, res.Category)
	assert.Equal(t, world.PuzzleSolved, m.PuzzleStatus("foyer_portrait"))
	assert.True(t, ps.HasSolved("foyer_portrait"))
	assert.True(t, m.IsRoomAccessible("library", ps))
	assert.Equal(t, 3, ps.Fear)
	assert.Equal(t, 3, res.Fear)
	assert.Empty(t, res.Puzzles, "solved puzzles are not listed")
}

func TestProcessAction_SolveIsIdempotent(t *testing.T) {
	e, m, ps := newGame(t, 0)

	play(t, e, m, ps, "touch symbols")
	after := ps.Clone()

	res := e.ProcessAction("touch symbols", m, ps)

	assert.Contains(t, res.Narrative, "already solved")
	assert.Equal(t, after.Fear, ps.Fear)
	assert.Equal(t, after.StoryProgress, ps.StoryProgress)
	assert.Equal(t, after.SolvedPuzzles, ps.SolvedPuzzles)
	assert.Equal(t, after.Sanity, ps.Sanity)
}

func TestProcessAction_BlockedMovement(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("go to library", m, ps)

	assert.Equal(t, CategoryMovement, res.Category)
	assert.Contains(t, res.Narrative, "blocked")
	assert.Equal(t, "foyer", ps.CurrentRoom)
	assert.Equal(t, 0, ps.TimeInWorld)
}

func TestProcessAction_MovementAfterSolve(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := play(t, e, m, ps, "touch symbols", "go to the library")

	assert.Equal(t, "library", ps.CurrentRoom)
	assert.Equal(t, "library", res.RoomID)
	assert.Equal(t, "Ancient Library", res.RoomName)
	assert.Equal(t, 5, ps.TimeInWorld)
	assert.Equal(t, 4, ps.Fear, "horror level above fear raises it by one")
	assert.Contains(t, ps.VisitedRooms, "library")
}

func TestProcessAction_MovementSoftFails(t *testing.T) {
	e, m, ps := newGame(t, 0)

	t.Run("unknown room", func(t *testing.T) {
		res := e.ProcessAction("go to the attic", m, ps)
		assert.Contains(t, res.Narrative, "not sure where to go")
		assert.Equal(t, "foyer", ps.CurrentRoom)
	})
	t.Run("not connected", func(t *testing.T) {
		res := e.ProcessAction("go to the basement", m, ps)
		assert.Contains(t, res.Narrative, "no way to reach")
		assert.Equal(t, "foyer", ps.CurrentRoom)
	})
	t.Run("already here", func(t *testing.T) {
		res := e.ProcessAction("go to the foyer", m, ps)
		assert.Contains(t, res.Narrative, "already in")
		assert.Equal(t, 0, ps.TimeInWorld)
	})
}

func TestProcessAction_ReadBookTwice(t *testing.T) {
	e, m, ps := newGame(t, 0)

	first := e.ProcessAction("read hill house", m, ps)
	require.Equal(t, CategoryBookReading, first.Category)
	assert.True(t, ps.HasKnowledge("hill_house"))
	assert.Equal(t, 1, ps.Awareness)
	assert.Contains(t, first.Narrative, "Hill House")
	after := ps.Clone()

	second := e.ProcessAction("read hill house", m, ps)

	assert.Contains(t, second.Narrative, "already know this")
	assert.Equal(t, after.Fear, ps.Fear)
	assert.Equal(t, after.Sanity, ps.Sanity)
	assert.Equal(t, after.Awareness, ps.Awareness)
	assert.Equal(t, after.StoryProgress, ps.StoryProgress)
	assert.Equal(t, after.Knowledge, ps.Knowledge)
}

func TestProcessAction_ReadingUnlocksContent(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("read the shining", m, ps)

	assert.True(t, ps.HasKnowledge("shining"))
	assert.Contains(t, m.RoomItems("foyer"), "psychic_crystal")
	var names []string
	for _, it := range res.Items {
		names = append(names, it.ID)
	}
	assert.Contains(t, names, "psychic_crystal")
}

func TestProcessAction_BookSecret(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("read hill house", m, ps)

	assert.True(t, ps.HasSecret("blackwood_family"))
	assert.Contains(t, res.Narrative, "Secret discovered: The Blackwood Family")
	assert.Equal(t, 2, ps.StoryProgress, "book progress plus secret consequence")

	res = e.ProcessAction("look around", m, ps)
	assert.NotContains(t, res.Narrative, "Secret discovered")
}

func TestProcessAction_TakeItem(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("take the candle", m, ps)
	assert.Equal(t, CategoryItemInteraction, res.Category)
	assert.Equal(t, []string{"old_candle"}, ps.Inventory)
	assert.NotContains(t, m.RoomItems("foyer"), "old_candle")

	res = e.ProcessAction("take the candle", m, ps)
	assert.Contains(t, res.Narrative, "already have")
	assert.Equal(t, []string{"old_candle"}, ps.Inventory)
}

func TestProcessAction_HiddenItemNeedsSearch(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("take the key", m, ps)
	assert.Contains(t, res.Narrative, "don't see")
	assert.Empty(t, ps.Inventory)

	res = e.ProcessAction("search the foyer", m, ps)
	assert.Contains(t, res.Narrative, "Ornate Key")
	assert.False(t, m.IsHidden("foyer_key"))

	play(t, e, m, ps, "take the key")
	assert.True(t, ps.HasItem("foyer_key"))

	res = e.ProcessAction("go to the library", m, ps)
	assert.Equal(t, "library", ps.CurrentRoom, res.Narrative)
}

func TestProcessAction_UseRule(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "take the candle")

	res := e.ProcessAction("use candle on chandelier", m, ps)
	assert.Contains(t, res.Narrative, "not sure how")
	assert.True(t, m.IsHidden("foyer_key"))

	res = e.ProcessAction("use candle on the portrait", m, ps)
	assert.Contains(t, res.Narrative, "ornate key")
	assert.False(t, m.IsHidden("foyer_key"))
	assert.True(t, ps.HasItem("old_candle"), "candle is not consumed")
}

func TestProcessAction_CursedConsumable(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "go to the dining room")
	require.Equal(t, "dining_room", ps.CurrentRoom)
	fear := ps.Fear

	res := e.ProcessAction("drink the laudanum", m, ps)

	assert.Contains(t, res.Narrative, "curse")
	assert.Equal(t, state.MaxHealth-10, ps.Health)
	assert.Equal(t, max(0, fear-3), ps.Fear)
	assert.NotContains(t, m.RoomItems("dining_room"), "laudanum")
	assert.False(t, ps.HasItem("laudanum"))
}

func TestProcessAction_Dialogue(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "go to the dining room")

	res := e.ProcessAction("talk to the butler about the family history", m, ps)

	assert.Equal(t, CategoryDialogue, res.Category)
	assert.True(t, strings.HasPrefix(res.Narrative, "Hargrove the Butler: "))
	assert.Contains(t, res.Narrative, "sat down to dine")
	assert.Equal(t, 1, ps.Relationship("butler_ghost"))
}

func TestProcessAction_DialogueIsDeterministic(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "go to the dining room")

	m2 := world.RestoreModel(m.World(), m.Overlay().Clone())
	ps2 := ps.Clone()

	a := e.ProcessAction("ask the butler for help", m, ps)
	b := e.ProcessAction("ask the butler for help", m2, ps2)

	assert.Equal(t, a.Narrative, b.Narrative)
	assert.Equal(t, ps.Relationships, ps2.Relationships)
}

func TestProcessAction_NoOneToTalkTo(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("talk to someone", m, ps)

	assert.Contains(t, res.Narrative, "no one here")
	assert.Empty(t, ps.Relationships)
}

func TestProcessAction_HostilePuzzleStaysSolvable(t *testing.T) {
	e, m, ps := newGame(t, 0)

	for i := 1; i < 5; i++ {
		e.ProcessAction("solve the portrait", m, ps)
		assert.Equal(t, i, m.Attempts("foyer_portrait"))
		assert.Equal(t, world.PuzzleUnsolved, m.PuzzleStatus("foyer_portrait"))
	}
	assert.Equal(t, state.MaxSanity, ps.Sanity)

	res := e.ProcessAction("solve the portrait", m, ps)
	assert.Equal(t, world.PuzzleHostile, m.PuzzleStatus("foyer_portrait"))
	assert.Contains(t, res.Narrative, "harsher")
	assert.Equal(t, state.MaxSanity-5, ps.Sanity)
	assert.Equal(t, 2, ps.Fear)

	e.ProcessAction("touch symbols", m, ps)
	assert.Equal(t, world.PuzzleSolved, m.PuzzleStatus("foyer_portrait"))
	assert.Equal(t, 4, ps.Fear)
}

func TestProcessAction_AlternateSolution(t *testing.T) {
	t.Run("with knowledge", func(t *testing.T) {
		e, m, ps := newGame(t, 0)
		ps.AddKnowledge("shining")

		res := e.ProcessAction("focus my psychic vision", m, ps)

		assert.Equal(t, CategoryPuzzleSolving, res.Category)
		assert.Contains(t, res.Narrative, "using psychic sight")
		assert.True(t, ps.HasSolved("foyer_portrait"))
	})
	t.Run("without knowledge", func(t *testing.T) {
		e, m, ps := newGame(t, 0)

		e.ProcessAction("focus my psychic vision", m, ps)

		assert.False(t, ps.HasSolved("foyer_portrait"))
		assert.Equal(t, 1, m.Attempts("foyer_portrait"))
	})
}

func TestProcessAction_Hint(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("hint", m, ps)

	assert.Contains(t, res.Narrative, "The portrait's eyes move")
	assert.Equal(t, 0, m.Attempts("foyer_portrait"))
}

func TestProcessAction_Combat(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "go to the dining room")
	require.Len(t, m.LivingEnemies("dining_room"), 1)

	res := e.ProcessAction("rest", m, ps)
	assert.Contains(t, res.Narrative, "cannot rest")
	assert.Equal(t, []string{"attack", "go to grand foyer"}, res.Actions)

	for i := 0; i < 50 && len(m.LivingEnemies("dining_room")) > 0; i++ {
		e.ProcessAction("attack the rats", m, ps)
		require.False(t, ps.IsGameOver())
	}

	assert.Empty(t, m.LivingEnemies("dining_room"))
	assert.Contains(t, m.RoomItems("dining_room"), "rusted_locket")
	assert.Equal(t, 1, ps.StoryProgress)
	assert.Contains(t, ps.Encounters, "defeat:rat_swarm")

	res = e.ProcessAction("attack", m, ps)
	assert.Contains(t, res.Narrative, "nothing here to fight")
}

func TestProcessAction_CombatReplaysWithSeed(t *testing.T) {
	fight := func() []string {
		e, m, ps := newGame(t, 0)
		play(t, e, m, ps, "go to the dining room")
		var out []string
		for range 4 {
			out = append(out, e.ProcessAction("attack the rats", m, ps).Narrative)
		}
		return out
	}

	first := fight()
	assert.Equal(t, first, fight())
	assert.True(t, strings.HasPrefix(first[0], "You "), first[0])
}

func TestProcessAction_CombatSuggestions(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "go to the dining room")

	res := e.ProcessAction("attack the rats", m, ps)

	assert.NotContains(t, res.Actions, "go back")
	assert.Contains(t, res.Actions, "go to grand foyer")
	if len(m.LivingEnemies("dining_room")) > 0 {
		assert.Equal(t, "attack rat swarm", res.Actions[0])
	}
}

func TestPlayerActor(t *testing.T) {
	ps := state.NewPlayerState("foyer")
	ps.Damage(30)
	weapon := &world.Item{ID: "fear_weapon", Category: world.ItemWeapon}

	armed, err := playerActor(ps, weapon)
	require.NoError(t, err)
	assert.Equal(t, state.MaxHealth-30, armed.HP())
	assert.Equal(t, playerAC, armed.AC())
	mods := armed.GetCombatModifiers()
	require.Len(t, mods, 1)
	assert.Equal(t, "fear_weapon", mods[0].Reason)
	assert.Equal(t, weaponBonus, mods[0].Value)
	assert.Equal(t, "1d6+2", playerDamage(weapon))

	unarmed, err := playerActor(ps, nil)
	require.NoError(t, err)
	assert.Empty(t, unarmed.GetCombatModifiers())
	assert.Equal(t, "1d6", playerDamage(nil))
}

// softFailures are the openings of narratives for actions that were
// understood but did nothing.
var softFailures = []string{
	"not sure where",
	"no way to reach",
	"is blocked",
	"You are already in",
	"You don't see",
	"You already have",
	"You don't have any",
	"not sure how to use",
	"You can't consume",
	"nothing here to fight",
	"anything like that to read",
	"no one here to talk to",
	"nothing here to solve",
	"nothing here left to solve",
	"You have already solved",
	"but you need the",
	"can't make any progress",
	"find nothing special",
	"Nothing here needs solving",
}

func TestProcessAction_SuggestedActionsDoSomething(t *testing.T) {
	e, m, ps := newGame(t, 0)
	walk := []string{
		"look around",
		"read the shining",
		"touch symbols",
		"search the foyer",
		"take the key",
		"go to the dining room",
		"attack the rats",
		"rest",
		"go to the foyer",
		"go to the library",
		"read the ancient tome",
		"talk to the librarian",
		"arrange the books",
		"take the library key",
		"go to the study",
		"read the christie mystery",
		"search the study",
		"take the clock key",
		"examine the clock key",
		"wind the clock",
		"go to the basement",
		"examine circle",
	}

	for _, in := range walk {
		res := e.ProcessAction(in, m, ps)
		for _, action := range res.Actions {
			mc := world.RestoreModel(m.World(), m.Overlay().Clone())
			pc := ps.Clone()
			got := New(Options{Rand: rand.New(rand.NewPCG(3, 4))}).ProcessAction(action, mc, pc)
			for _, marker := range softFailures {
				assert.NotContains(t, got.Narrative, marker, "after %q the suggestion %q did nothing", in, action)
			}
		}
	}
	assert.Equal(t, "basement", ps.CurrentRoom)
}

func TestProcessAction_SuggestionsLeadToDistantItems(t *testing.T) {
	e, m, ps := newGame(t, 0)
	play(t, e, m, ps, "touch symbols", "go to the library")

	res := e.ProcessAction("read the ancient tome", m, ps)

	require.Contains(t, m.RoomItems("foyer"), "reality_shard")
	assert.NotContains(t, res.Actions, "take the reality shard")
	assert.Contains(t, res.Actions, "go to grand foyer")
	assert.Contains(t, res.Actions, "go to the study")

	play(t, e, m, ps, "go to the study")
	res = e.ProcessAction("read the christie mystery", m, ps)

	assert.NotContains(t, res.Actions, "take the detective lens")
	assert.Contains(t, res.Actions, "go to ancient library", "the lens is two rooms away")
}

func TestProcessAction_HeldItemSuggestsItsUseRules(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("take the candle", m, ps)

	assert.Equal(t, []string{"use old candle on portrait"}, res.Actions)
	assert.NotContains(t, strings.Join(res.Actions, "|"), "something")
}

func TestProcessAction_ExamineHeldItemNeverSearchedFor(t *testing.T) {
	e, m, ps := newGame(t, 0)
	ps.AddItem("foyer_key")
	require.True(t, m.IsHidden("foyer_key"))
	key, err := m.GetItem("foyer_key")
	require.NoError(t, err)

	res := e.ProcessAction("examine the ornate key", m, ps)

	assert.Equal(t, CategoryExamination, res.Category)
	assert.Contains(t, res.Narrative, key.Description)
	assert.NotContains(t, res.Narrative, "nothing special")
}

func TestProcessAction_Ambient(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		e, m, ps := newGame(t, 0)
		for range 20 {
			e.ProcessAction("look around", m, ps)
		}
		assert.Equal(t, state.DefaultFear, ps.Fear)
	})
	t.Run("forced", func(t *testing.T) {
		e, m, ps := newGame(t, 1)
		w := m.World()
		pool := append(slices.Clone(w.Rooms["foyer"].AmbientEvents), w.AmbientEvents...)

		res := e.ProcessAction("look around", m, ps)

		assert.Equal(t, state.DefaultFear+1, ps.Fear)
		found := false
		for _, line := range pool {
			if strings.Contains(res.Narrative, line) {
				found = true
			}
		}
		assert.True(t, found, "narrative should end with an ambient event: %s", res.Narrative)
	})
}

func TestProcessAction_GameOver(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(ps *state.PlayerState)
		ending string
	}{
		{"madness", func(ps *state.PlayerState) { ps.Sanity = 0 }, "gone mad"},
		{"terror", func(ps *state.PlayerState) { ps.Sanity = 0; ps.Fear = 9 }, "horror consumes you"},
		{"death", func(ps *state.PlayerState) { ps.Health = 0 }, "body fails"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m, ps := newGame(t, 1)
			tt.setup(ps)
			before := ps.Clone()

			res := e.ProcessAction("go to the dining room", m, ps)

			assert.True(t, res.IsGameOver)
			assert.Contains(t, res.Ending, tt.ending)
			assert.Equal(t, before, ps, "no action is taken once the game is over")
		})
	}
}

func TestProcessAction_EmptyInput(t *testing.T) {
	e, m, ps := newGame(t, 1)

	res := e.ProcessAction("  ?! ", m, ps)

	assert.Contains(t, res.Narrative, "hesitate")
	assert.Equal(t, 0, ps.ActionCount)
	assert.Equal(t, state.DefaultFear, ps.Fear)
}

func TestProcessAction_GenericFlavor(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("dance wildly", m, ps)

	assert.Equal(t, CategoryGeneric, res.Category)
	assert.True(t, strings.HasPrefix(res.Narrative, "You dance wildly."), res.Narrative)
	assert.Contains(t, res.Narrative, "eerie silence")
	assert.Contains(t, res.Actions, "look around")
}

func TestProcessAction_FilterEchoedText(t *testing.T) {
	w, err := content.BlackwoodManor()
	require.NoError(t, err)
	e := New(Options{Filter: textfilter.New(textfilter.RatingPG)})
	m, ps := world.NewModel(w), state.NewPlayerState(w.StartRoom)

	res := e.ProcessAction("shit myself", m, ps)

	assert.True(t, strings.HasPrefix(res.Narrative, "You shoot myself."), res.Narrative)

	res = e.ProcessAction("take the cock", m, ps)

	assert.True(t, strings.HasPrefix(res.Narrative, "You don't see any [censored] here."), res.Narrative)
	assert.NotContains(t, res.Narrative, "[Censored]")
}

func TestProcessAction_HelpAndInventory(t *testing.T) {
	e, m, ps := newGame(t, 0)

	res := e.ProcessAction("help", m, ps)
	assert.Contains(t, res.Narrative, "go to <room>")

	res = e.ProcessAction("i", m, ps)
	assert.Contains(t, res.Narrative, "carrying nothing")

	play(t, e, m, ps, "take candle")
	res = e.ProcessAction("inventory", m, ps)
	assert.Contains(t, res.Narrative, "Old Candle")
	require.Len(t, res.Inventory, 1)
	assert.Equal(t, "old_candle", res.Inventory[0].ID)
}

func TestDescribe_DoesNotMutate(t *testing.T) {
	e, m, ps := newGame(t, 1)
	before := ps.Clone()

	res := e.Describe(m, ps)

	assert.Equal(t, before, ps)
	assert.Equal(t, "Grand Foyer", res.RoomName)
	assert.Equal(t, world.AtmosphereMysterious, res.Atmosphere)
	require.Len(t, res.Puzzles, 1)
	assert.Equal(t, "foyer_portrait", res.Puzzles[0].ID)
	assert.False(t, res.IsGameOver)
	assert.Empty(t, res.Ending)
}

func TestDialogueLine(t *testing.T) {
	npc := &world.NPC{
		ID: "maid",
		Dialogue: map[string][]string{
			"greeting": {"one", "two", "three"},
			"history":  {"old"},
		},
		KnowledgeDialogue: []world.DialogueTier{
			{Knowledge: "diary", Dialogue: map[string][]string{"history": {"new"}}},
		},
	}
	ps := state.NewPlayerState("hall")

	assert.Equal(t, "one", DialogueLine(npc, "greeting", ps))
	ps.StoryProgress = 4
	assert.Equal(t, "two", DialogueLine(npc, "greeting", ps))
	ps.AdjustRelationship("maid", -2)
	assert.Equal(t, "three", DialogueLine(npc, "greeting", ps))

	assert.Equal(t, "old", DialogueLine(npc, "history", ps))
	ps.AddKnowledge("diary")
	assert.Equal(t, "new", DialogueLine(npc, "history", ps))

	assert.Equal(t, "three", DialogueLine(npc, "weather", ps), "unknown topics fall back to the greeting")
}
