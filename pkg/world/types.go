package world

import "github.com/jwebster45206/adventure-engine/pkg/conditionals"

// Atmosphere is the mood tag of a room.
type Atmosphere string

const (
	AtmosphereMysterious  Atmosphere = "mysterious"
	AtmosphereEerie       Atmosphere = "eerie"
	AtmosphereTerrifying  Atmosphere = "terrifying"
	AtmosphereNightmarish Atmosphere = "nightmarish"
)

type PuzzleType string

const (
	PuzzleLogic         PuzzleType = "logic"
	PuzzleEnvironmental PuzzleType = "environmental"
	PuzzleAudio         PuzzleType = "audio"
	PuzzleVisual        PuzzleType = "visual"
	PuzzleNarrative     PuzzleType = "narrative"
	PuzzleSurvival      PuzzleType = "survival"
)

type ItemCategory string

const (
	ItemKey        ItemCategory = "key"
	ItemTool       ItemCategory = "tool"
	ItemClue       ItemCategory = "clue"
	ItemWeapon     ItemCategory = "weapon"
	ItemArtifact   ItemCategory = "artifact"
	ItemConsumable ItemCategory = "consumable"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Mood values are ordered from friendliest to most threatening.
type Mood string

const (
	MoodFriendly   Mood = "friendly"
	MoodNeutral    Mood = "neutral"
	MoodSuspicious Mood = "suspicious"
	MoodHostile    Mood = "hostile"
	MoodTerrifying Mood = "terrifying"
)

var moodScale = []Mood{MoodFriendly, MoodNeutral, MoodSuspicious, MoodHostile, MoodTerrifying}

type SecretCategory string

const (
	SecretLore     SecretCategory = "lore"
	SecretPuzzle   SecretCategory = "puzzle"
	SecretTreasure SecretCategory = "treasure"
	SecretHorror   SecretCategory = "horror"
	SecretEscape   SecretCategory = "escape"
)

// World is the immutable template of an adventure. It is shared read-only
// across sessions once Validate has passed. Map keys are the entity IDs.
type World struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Intro          string              `json:"intro,omitempty"`
	StartRoom      string              `json:"start_room"`
	Rooms          map[string]*Room    `json:"rooms"`
	Puzzles        map[string]*Puzzle  `json:"puzzles,omitempty"`
	Items          map[string]*Item    `json:"items,omitempty"`
	NPCs           map[string]*NPC     `json:"npcs,omitempty"`
	Secrets        map[string]*Secret  `json:"secrets,omitempty"`
	Enemies        map[string]*Enemy   `json:"enemies,omitempty"`
	Books          map[string]*Book    `json:"books,omitempty"`           // Knowledge tag -> book
	UseRules       []UseRule           `json:"use_rules,omitempty"`       // Finite item compatibility table
	ContentUnlocks map[string][]Effect `json:"content_unlocks,omitempty"` // Knowledge tag -> world-side effects
	Topics         []Topic             `json:"topics,omitempty"`          // Dialogue keyword table, checked in order
	AmbientEvents  []string            `json:"ambient_events,omitempty"`  // Built-in horror pool
	Endings        Endings             `json:"endings,omitempty"`
}

// Room is a node in the location graph.
type Room struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	LongDescription string     `json:"long_description,omitempty"`
	Unlocked        bool       `json:"unlocked,omitempty"`       // Always open
	RequiredItems   []string   `json:"required_items,omitempty"` // Opens when all are held
	HorrorLevel     int        `json:"horror_level"`             // 1-10
	AmbientSounds   []string   `json:"ambient_sounds,omitempty"`
	VisualEffects   []string   `json:"visual_effects,omitempty"`
	AmbientEvents   []string   `json:"ambient_events,omitempty"`
	Atmosphere      Atmosphere `json:"atmosphere"`
	TimeOfDay       string     `json:"time_of_day,omitempty"`
	Puzzles         []string   `json:"puzzles,omitempty"`
	Items           []string   `json:"items,omitempty"`
	NPCs            []string   `json:"npcs,omitempty"`
	Secrets         []string   `json:"secrets,omitempty"`
	Enemies         []string   `json:"enemies,omitempty"`
	Connections     []string   `json:"connections,omitempty"`
	Features        []Feature  `json:"features,omitempty"`
	Actions         []string   `json:"actions,omitempty"`
}

// Feature is examinable scenery.
type Feature struct {
	Keywords        []string `json:"keywords"`
	Narrative       string   `json:"narrative"`
	SolvedBy        string   `json:"solved_by,omitempty"`        // Puzzle ID
	SolvedNarrative string   `json:"solved_narrative,omitempty"` // Shown once SolvedBy is solved
	Actions         []string `json:"actions,omitempty"`
}

type Puzzle struct {
	ID               string     `json:"id"`
	Room             string     `json:"room"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Type             PuzzleType `json:"type"`
	Difficulty       int        `json:"difficulty"`
	RequiredItems    []string   `json:"required_items,omitempty"`
	Clues            []string   `json:"clues,omitempty"`
	Solution         Matcher    `json:"solution"`
	Consequences     []Effect   `json:"consequences,omitempty"`
	MaxAttempts      int        `json:"max_attempts"`
	Narrative        string     `json:"narrative"`                   // Shown on solve
	FailureNarrative string     `json:"failure_narrative,omitempty"` // Shown on a failed attempt
	Actions          []string   `json:"actions,omitempty"`
}

type Item struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Category     ItemCategory `json:"category"`
	Rarity       Rarity       `json:"rarity"`
	Effects      []string     `json:"effects,omitempty"`  // Semantic tags
	Keywords     []string     `json:"keywords,omitempty"` // Extra names the player may use
	Room         string       `json:"room,omitempty"`     // Empty for spawned items
	Hidden       bool         `json:"hidden,omitempty"`
	Cursed       bool         `json:"cursed,omitempty"`
	Curse        []Effect     `json:"curse,omitempty"`
	OnConsume    []Effect     `json:"on_consume,omitempty"`
	Significance string       `json:"significance,omitempty"`
}

type NPC struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Role              string              `json:"role"`
	Personality       string              `json:"personality"`
	Mood              Mood                `json:"mood"`
	Keywords          []string            `json:"keywords,omitempty"`
	Knowledge         []string            `json:"knowledge,omitempty"`
	Secrets           []string            `json:"secrets,omitempty"`
	Dialogue          map[string][]string `json:"dialogue"` // Topic -> lines
	KnowledgeDialogue []DialogueTier      `json:"knowledge_dialogue,omitempty"`
	Alive             bool                `json:"alive"`
	Ghost             bool                `json:"ghost,omitempty"`
	FearFactor        int                 `json:"fear_factor"`
}

// DialogueTier overrides topics for players holding a knowledge flag.
type DialogueTier struct {
	Knowledge string              `json:"knowledge"`
	Dialogue  map[string][]string `json:"dialogue"`
}

type Secret struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Category     SecretCategory           `json:"category"`
	Requirements conditionals.Requirement `json:"requirements"`
	Consequences []Effect                 `json:"consequences,omitempty"`
	Severity     int                      `json:"severity"`
}

// Book maps a readable item to the knowledge it grants.
type Book struct {
	Item            string   `json:"item"`
	Title           string   `json:"title"`
	Keywords        []string `json:"keywords,omitempty"`
	Awareness       int      `json:"awareness,omitempty"`
	Progress        int      `json:"progress,omitempty"`
	SanityLoss      int      `json:"sanity_loss,omitempty"`
	Fear            int      `json:"fear,omitempty"`
	Narrative       string   `json:"narrative"`
	RereadNarrative string   `json:"reread_narrative,omitempty"`
	Actions         []string `json:"actions,omitempty"`
}

// UseRule is one entry of the item compatibility table.
type UseRule struct {
	Item      string                    `json:"item"`
	Targets   []string                  `json:"targets"` // Keywords naming what the item is used on
	Room      string                    `json:"room,omitempty"`
	Requires  *conditionals.Requirement `json:"requires,omitempty"`
	Effects   []Effect                  `json:"effects,omitempty"`
	Narrative string                    `json:"narrative"`
	Consume   bool                      `json:"consume,omitempty"`
}

// Topic routes player phrasing to a dialogue topic.
type Topic struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Endings are narrated when the game is over.
type Endings struct {
	Madness string `json:"madness,omitempty"`
	Death   string `json:"death,omitempty"`
	Terror  string `json:"terror,omitempty"`
}
