// Package engine interprets free-text player actions against a world model
// and a player state, and returns a narrative response envelope.
package engine

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/conditionals"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// Time costs, in in-world minutes.
const (
	moveMinutes   = 5
	searchMinutes = 5
	calmMinutes   = 10
	restMinutes   = 30

	restSanity     = 10
	hostileSanity  = 5
	defaultAmbient = 0.1
)

// Combat numbers for the player's side of a fight.
const (
	playerAC      = 10
	weaponBonus   = 2
	unarmedDamage = "1d6"
)

var builtinAmbientEvents = []string{
	"A cold draft passes through the room, carrying whispers from the past.",
	"You hear footsteps echoing from somewhere above you.",
	"The shadows seem to move independently of the light.",
	"A distant clock chimes, though there are no clocks nearby.",
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// AmbientChance is the probability of an ambient event per action.
	// 0 disables ambient events, 1 forces one on every action.
	AmbientChance float64
	// Rand drives ambient events and combat rolls. Defaults to a randomly
	// seeded source.
	Rand *rand.Rand
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
	// Flavor supplies text for actions without a rule. Defaults to StaticFlavor.
	Flavor FlavorProvider
	// Filter cleans player text echoed back in narratives. Nil echoes as-is.
	Filter *textfilter.Filter
}

// DefaultOptions returns options with the standard ambient chance.
func DefaultOptions() Options {
	return Options{AmbientChance: defaultAmbient}
}

// Engine processes actions for one session. It keeps no game state of its
// own; everything lives on the model overlay and the player state passed in.
// An Engine is not safe for concurrent use because it owns its RNG.
type Engine struct {
	ambientChance float64
	rng           *rand.Rand
	log           *slog.Logger
	flavor        FlavorProvider
	filter        *textfilter.Filter

	// dry plays suggested actions against cloned state to see whether they
	// would do anything. It never touches the session RNG.
	dry *Engine
}

// New creates an engine from options, filling defaults.
func New(opts Options) *Engine {
	e := &Engine{
		ambientChance: min(max(opts.AmbientChance, 0), 1),
		rng:           opts.Rand,
		log:           opts.Logger,
		flavor:        opts.Flavor,
		filter:        opts.Filter,
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.log == nil {
		e.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.flavor == nil {
		e.flavor = StaticFlavor{}
	}
	e.dry = &Engine{
		rng:    rand.New(rand.NewPCG(0, 0)),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		flavor: StaticFlavor{},
		filter: e.filter,
	}
	return e
}

// outcome is what a handler produces. miss marks a soft failure: the
// action was understood but did nothing.
type outcome struct {
	narrative string
	actions   []string
	miss      bool
}

// ProcessAction runs one free-text action to completion. User-facing
// failures come back as narrative; it never returns an error.
func (e *Engine) ProcessAction(raw string, m *world.Model, ps *state.PlayerState) *ActionResult {
	input := world.Normalize(raw)

	if ps.IsGameOver() {
		return e.buildResult(CategoryGeneric, "The manor has already claimed you. "+endingFor(m.World(), ps), nil, m, ps)
	}
	if input == "" {
		return e.buildResult(CategoryGeneric, "You hesitate, unsure what to do.", []string{"look around", "help"}, m, ps)
	}

	ps.ActionCount++
	cat := Classify(input, m, ps)
	out := e.dispatch(cat, raw, input, m, ps)

	narrative := out.narrative
	if found := e.revealSecrets(m, ps); found != "" {
		narrative += "\n\n" + found
	}
	if !ps.IsGameOver() {
		if event := e.ambientEvent(m, ps); event != "" {
			narrative += "\n\n" + event
		}
	}

	res := e.buildResult(cat, narrative, e.suggestions(out.actions, m, ps), m, ps)
	e.log.Debug("action processed",
		"input", input,
		"category", cat,
		"room", ps.CurrentRoom,
		"fear", ps.Fear,
		"sanity", ps.Sanity,
		"game_over", res.IsGameOver)
	return res
}

func (e *Engine) dispatch(cat Category, raw, input string, m *world.Model, ps *state.PlayerState) outcome {
	switch cat {
	case CategoryMovement:
		return e.handleMovement(input, m, ps)
	case CategoryExamination:
		return e.handleExamination(input, m, ps)
	case CategoryItemInteraction:
		return e.handleItem(input, m, ps)
	case CategoryDialogue:
		return e.handleDialogue(input, m, ps)
	case CategoryPuzzleSolving:
		return e.handlePuzzle(input, m, ps)
	case CategoryBookReading:
		return e.handleBook(input, m, ps)
	default:
		return e.handleGeneric(raw, input, m, ps)
	}
}

// Describe builds the envelope for the current state without acting.
func (e *Engine) Describe(m *world.Model, ps *state.PlayerState) *ActionResult {
	narrative := ""
	if room, err := m.GetRoom(ps.CurrentRoom); err == nil {
		narrative = room.LongDescription
	}
	if ps.IsGameOver() {
		narrative = endingFor(m.World(), ps)
	}
	return e.buildResult(CategoryExamination, narrative, nil, m, ps)
}

// Intro is the opening narration for a new session.
func (e *Engine) Intro(m *world.Model, ps *state.PlayerState) *ActionResult {
	res := e.Describe(m, ps)
	if intro := m.World().Intro; intro != "" {
		res.Narrative = intro + "\n\n" + res.Narrative
	}
	return res
}

// revealSecrets discovers every secret in the current room whose
// requirements are now met. Consequences apply once, on discovery.
func (e *Engine) revealSecrets(m *world.Model, ps *state.PlayerState) string {
	room, err := m.GetRoom(ps.CurrentRoom)
	if err != nil {
		return ""
	}
	var lines []string
	for _, id := range room.Secrets {
		if ps.HasSecret(id) {
			continue
		}
		sec, err := m.GetSecret(id)
		if err != nil {
			e.log.Error("room lists unknown secret", "room", room.ID, "error", err)
			continue
		}
		if !conditionals.Evaluate(sec.Requirements, ps) {
			continue
		}
		ps.DiscoverSecret(id)
		if err := m.ApplyEffects(sec.Consequences, ps); err != nil {
			e.log.Error("failed to apply secret consequences", "secret", id, "error", err)
		}
		ps.LogEncounter("secret:" + id)
		lines = append(lines, "Secret discovered: "+sec.Name+". "+sec.Description)
	}
	return strings.Join(lines, "\n")
}

// ambientEvent rolls for an ambient horror line. With a zero chance the RNG
// is never consumed.
func (e *Engine) ambientEvent(m *world.Model, ps *state.PlayerState) string {
	if e.ambientChance <= 0 {
		return ""
	}
	if e.ambientChance < 1 && e.rng.Float64() >= e.ambientChance {
		return ""
	}
	var pool []string
	if room, err := m.GetRoom(ps.CurrentRoom); err == nil {
		pool = append(pool, room.AmbientEvents...)
	}
	pool = append(pool, m.World().AmbientEvents...)
	if len(pool) == 0 {
		pool = builtinAmbientEvents
	}
	ps.RaiseFear(1)
	return pool[e.rng.IntN(len(pool))]
}

// mergeActions appends suggestions without duplicates.
func mergeActions(base []string, more ...string) []string {
	out := slices.Clone(base)
	for _, a := range more {
		if a != "" && !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
