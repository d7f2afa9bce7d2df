package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// FlavorRequest is what a flavor provider knows about the moment.
type FlavorRequest struct {
	RoomTag      string
	Fear         int
	VisitedRooms []string
	ActionCount  int
}

// Flavor is atmosphere text for actions the engine has no rule for.
type Flavor struct {
	Description  string
	Atmosphere   string
	Suggestions  []string
	Consequences []string
}

// FlavorProvider supplies flavor text. Implementations must be pure with
// respect to the game: they never see or change the player's state.
type FlavorProvider interface {
	Flavor(req FlavorRequest) Flavor
}

// StaticFlavor is the built-in provider. It always returns the same text.
type StaticFlavor struct{}

func (StaticFlavor) Flavor(req FlavorRequest) Flavor {
	return Flavor{
		Description: "The manor responds with an eerie silence that somehow feels more threatening than any sound.",
		Atmosphere:  fmt.Sprintf("The atmosphere is %s.", intensity(req.Fear)),
		Suggestions: []string{"look around", "search for hidden items", "examine something"},
	}
}

func intensity(fear int) string {
	switch {
	case fear >= 7:
		return "overwhelming"
	case fear >= 4:
		return "growing"
	default:
		return "subtle"
	}
}

type flavorBook struct {
	title      string
	themes     []string
	atmosphere []string
	characters []string
	locations  []string
	objects    []string
	events     []string
}

var flavorBooks = []flavorBook{
	{
		title:      "The Haunting of Hill House",
		themes:     []string{"psychological horror", "isolation", "family secrets"},
		atmosphere: []string{"creepy", "ominous", "eerie", "foreboding"},
		characters: []string{"ghostly figure", "whispering voice", "shadowy presence"},
		locations:  []string{"dark corridor", "abandoned nursery", "creaking stairwell"},
		objects:    []string{"An old portrait", "A faded letter", "A broken mirror"},
		events:     []string{"doors slamming", "a cold draft", "whispers in the dark"},
	},
	{
		title:      "The Fall of the House of Usher",
		themes:     []string{"decay", "madness", "family curse"},
		atmosphere: []string{"melancholic", "decaying", "oppressive"},
		characters: []string{"pale sister", "ancient servant", "mad aristocrat"},
		locations:  []string{"crumbling hall", "family crypt", "tarnished gallery"},
		objects:    []string{"A tarnished candlestick", "A dusty curtain", "A cracked family crest"},
		events:     []string{"the walls groaning", "a crack running up the plaster", "a distant scream"},
	},
	{
		title:      "The Tell-Tale Heart",
		themes:     []string{"guilt", "paranoia", "confession"},
		atmosphere: []string{"tense", "paranoid", "claustrophobic"},
		characters: []string{"old man", "watcher in the dark", "narrator's shadow"},
		locations:  []string{"small room", "dark passage", "room under the floorboards"},
		objects:    []string{"A loose floorboard", "A shuttered lantern", "A pale blue eye"},
		events:     []string{"a heartbeat under the floor", "a lantern creaking open", "footsteps stopping outside"},
	},
	{
		title:      "The Shining",
		themes:     []string{"isolation", "hotel haunting", "family breakdown"},
		atmosphere: []string{"isolated", "menacing", "supernatural"},
		characters: []string{"hotel ghost", "caretaker", "pair of twins"},
		locations:  []string{"ballroom", "endless hallway", "hedge maze"},
		objects:    []string{"A typewriter", "A room key marked 237", "A bloodstained carpet"},
		events:     []string{"music from an empty ballroom", "a ball rolling toward you", "an elevator opening"},
	},
	{
		title:      "The Dunwich Horror",
		themes:     []string{"cosmic horror", "ancient evil", "otherworldly"},
		atmosphere: []string{"otherworldly", "ancient", "corrupting"},
		characters: []string{"eldritch shape", "corrupted scholar", "ancient entity"},
		locations:  []string{"forbidden chamber", "ancient ruin", "stone circle"},
		objects:    []string{"An ancient text", "A strange artifact", "A stone that is warm to the touch"},
		events:     []string{"the ground shuddering", "a smell like a struck match", "reality folding"},
	},
}

// BookFlavor draws atmosphere from a small corpus of horror classics. It is
// seeded, so the same seed gives the same sequence.
type BookFlavor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewBookFlavor(rng *rand.Rand) *BookFlavor {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &BookFlavor{rng: rng}
}

func (b *BookFlavor) Flavor(req FlavorRequest) Flavor {
	b.mu.Lock()
	defer b.mu.Unlock()

	book := flavorBooks[b.rng.IntN(len(flavorBooks))]
	pick := func(s []string) string { return s[b.rng.IntN(len(s))] }

	desc := fmt.Sprintf("The %s air of this place turns it into a %s. %s catches your attention.",
		pick(book.atmosphere), pick(book.locations), pick(book.objects))
	switch {
	case req.Fear >= 7:
		desc += " You feel an overwhelming sense of dread."
	case req.Fear >= 4:
		desc += " Something doesn't feel right here."
	}

	suggestions := []string{
		"look around",
		"search for hidden items",
		fmt.Sprintf("search for %s clues", pick(book.themes)),
	}
	switch {
	case req.Fear >= 7:
		suggestions = append(suggestions, "try to calm down")
	case req.ActionCount >= 10:
		suggestions = append(suggestions, "ask for help")
	}

	consequences := []string{fmt.Sprintf("You notice %s.", pick(book.events))}
	if len(req.VisitedRooms) >= 4 {
		consequences = append(consequences, fmt.Sprintf("A %s seems to follow you from room to room.", pick(book.characters)))
	}

	return Flavor{
		Description:  desc,
		Atmosphere:   fmt.Sprintf("The %s atmosphere is %s.", pick(book.atmosphere), intensity(req.Fear)),
		Suggestions:  suggestions,
		Consequences: consequences,
	}
}
