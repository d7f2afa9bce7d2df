package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want Rating
	}{
		{"G", RatingG},
		{"pg", RatingPG},
		{"PG-13", RatingPG13},
		{" pg13 ", RatingPG13},
		{"R", RatingR},
		{"nc-17", RatingR},
		{"", RatingPG13},
		{"whatever", RatingPG13},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRating(tt.in))
		})
	}
}

func TestClean(t *testing.T) {
	f := New(RatingPG13)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "open the shit door", want: "open the shoot door"},
		{name: "uppercase", in: "FUCK this", want: "FUDGE this"},
		{name: "title case", in: "Shit happens", want: "Shoot happens"},
		{name: "longest match wins", in: "what bullshit", want: "what baloney"},
		{name: "word boundaries", in: "read the christie mystery in the class", want: "read the christie mystery in the class"},
		{name: "horror words kept", in: "what the hell is this damn thing", want: "what the hell is this damn thing"},
		{name: "clean text untouched", in: "touch the symbols", want: "touch the symbols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Clean(tt.in))
		})
	}
}

func TestClean_RatingR(t *testing.T) {
	f := New(RatingR)
	assert.Equal(t, "open the shit door", f.Clean("open the shit door"))
	assert.True(t, f.ContainsProfanity("open the shit door"))
}

func TestClean_NilFilter(t *testing.T) {
	var f *Filter
	assert.Equal(t, "shit", f.Clean("shit"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Dining Room", Title("dining_room"))
	assert.Equal(t, "Secret Chamber", Title("SECRET CHAMBER"))
}
