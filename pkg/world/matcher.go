package world

// Matcher is a solution predicate over free text.
type Matcher struct {
	AnyOf             []string    `json:"any_of,omitempty"`             // At least one phrase must appear
	AllOf             []string    `json:"all_of,omitempty"`             // Every phrase must appear
	RequiresKnowledge []string    `json:"requires_knowledge,omitempty"` // Player must hold all flags
	Alternates        []Alternate `json:"alternates,omitempty"`
}

// Alternate is an extra solve path open to players holding a knowledge flag.
type Alternate struct {
	Knowledge string   `json:"knowledge"`
	Phrases   []string `json:"phrases"`
	Method    string   `json:"method"` // e.g. "psychic sight"
}

// Match reports whether text solves the puzzle. method names the alternate
// used, and is empty for the canonical solution.
func (m Matcher) Match(text string, knows func(tag string) bool) (ok bool, method string) {
	if m.matchCanonical(text, knows) {
		return true, ""
	}
	for _, alt := range m.Alternates {
		if knows != nil && knows(alt.Knowledge) && ContainsAny(text, alt.Phrases...) {
			return true, alt.Method
		}
	}
	return false, ""
}

func (m Matcher) matchCanonical(text string, knows func(tag string) bool) bool {
	if len(m.AnyOf) == 0 && len(m.AllOf) == 0 {
		return false
	}
	for _, tag := range m.RequiresKnowledge {
		if knows == nil || !knows(tag) {
			return false
		}
	}
	if len(m.AnyOf) > 0 && !ContainsAny(text, m.AnyOf...) {
		return false
	}
	for _, p := range m.AllOf {
		if !ContainsPhrase(text, p) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the matcher can never match.
func (m Matcher) IsEmpty() bool {
	return len(m.AnyOf) == 0 && len(m.AllOf) == 0 && len(m.Alternates) == 0
}

// Mentions reports whether text uses any phrase of the matcher, ignoring
// knowledge gates. It tells a solve attempt apart from unrelated input.
func (m Matcher) Mentions(text string) bool {
	if ContainsAny(text, m.AnyOf...) || ContainsAny(text, m.AllOf...) {
		return true
	}
	for _, alt := range m.Alternates {
		if ContainsAny(text, alt.Phrases...) {
			return true
		}
	}
	return false
}
