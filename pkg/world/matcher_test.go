package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Touch   the SYMBOLS! ", "touch the symbols"},
		{"go to the library.", "go to the library"},
		{"what's this?", "what's this"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("go to the library", "go"))
	assert.False(t, ContainsPhrase("talk to the ghost", "go"))
	assert.True(t, ContainsPhrase("Go to the Dining Room", "dining room"))
	assert.False(t, ContainsPhrase("dining", "dining room"))
	assert.False(t, ContainsPhrase("anything", ""))
}

func TestMatcher(t *testing.T) {
	m := Matcher{
		AnyOf: []string{"touch", "press"},
		AllOf: []string{"symbols"},
		Alternates: []Alternate{
			{Knowledge: "shining", Phrases: []string{"psychic"}, Method: "psychic sight"},
		},
	}
	knows := func(tags ...string) func(string) bool {
		return func(tag string) bool {
			for _, t := range tags {
				if t == tag {
					return true
				}
			}
			return false
		}
	}

	tests := []struct {
		name       string
		input      string
		knowledge  []string
		wantOK     bool
		wantMethod string
	}{
		{name: "canonical", input: "touch symbols", wantOK: true},
		{name: "missing all_of", input: "touch portrait", wantOK: false},
		{name: "missing any_of", input: "look at symbols", wantOK: false},
		{name: "alternate without knowledge", input: "use psychic sight", wantOK: false},
		{name: "alternate with knowledge", input: "use psychic sight", knowledge: []string{"shining"}, wantOK: true, wantMethod: "psychic sight"},
		{name: "substring is not a word", input: "retouched symbols", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, method := m.Match(tt.input, knows(tt.knowledge...))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMethod, method)
		})
	}
}

func TestMatcher_RequiresKnowledge(t *testing.T) {
	m := Matcher{AnyOf: []string{"ritual"}, RequiresKnowledge: []string{"ancient_tome"}}

	ok, _ := m.Match("perform the ritual", func(string) bool { return false })
	assert.False(t, ok)

	ok, _ = m.Match("perform the ritual", func(tag string) bool { return tag == "ancient_tome" })
	assert.True(t, ok)

	assert.True(t, Matcher{}.IsEmpty())
}
