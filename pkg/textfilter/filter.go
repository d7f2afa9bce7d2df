// Package textfilter cleans player text before the engine echoes it back.
package textfilter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rating is a content rating such as "PG13" or "R".
type Rating string

const (
	RatingG    Rating = "G"
	RatingPG   Rating = "PG"
	RatingPG13 Rating = "PG13"
	RatingR    Rating = "R"
)

// ParseRating normalizes a rating string. Unknown values map to PG13.
func ParseRating(s string) Rating {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "") {
	case "G":
		return RatingG
	case "PG":
		return RatingPG
	case "R", "NC17":
		return RatingR
	default:
		return RatingPG13
	}
}

// Filtered reports whether text at this rating gets cleaned.
func (r Rating) Filtered() bool {
	return r != RatingR
}

// Words are replaced with gentler alternatives. A horror game keeps "hell"
// and "damn" since its own narration uses them.
var replacements = map[string]string{
	"fuck":         "fudge",
	"fucking":      "fudging",
	"motherfucker": "mother-trucker",
	"shit":         "shoot",
	"bullshit":     "baloney",
	"shithead":     "jerk",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"asshole":      "jerk",
	"ass":          "butt",
	"dick":         "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douchebag":    "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"goddamn":      "gosh-dang",
	"cock":         "[censored]",
	"pussy":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
}

// Filter replaces profanity according to a content rating.
// The zero value is not usable; use New.
type Filter struct {
	rating Rating
	re     *regexp.Regexp
}

// New builds a filter for the given rating.
func New(rating Rating) *Filter {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, regexp.QuoteMeta(w))
	}
	// Longest first so "bullshit" wins over "shit".
	slices.SortFunc(words, func(a, b string) int { return len(b) - len(a) })

	return &Filter{
		rating: rating,
		re:     regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`),
	}
}

func (f *Filter) Rating() Rating { return f.rating }

// Clean returns text with profanity replaced, or text unchanged when the
// rating allows it.
func (f *Filter) Clean(text string) string {
	if f == nil || !f.rating.Filtered() {
		return text
	}
	return f.re.ReplaceAllStringFunc(text, func(match string) string {
		return preserveCase(match, replacements[strings.ToLower(match)])
	})
}

// ContainsProfanity reports whether text has any filtered word, regardless of rating.
func (f *Filter) ContainsProfanity(text string) bool {
	return f.re.MatchString(text)
}

// Title renders s in English title case, e.g. for names built from IDs.
// A Caser holds state, so one is created per call.
func Title(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

func preserveCase(original, replacement string) string {
	title := cases.Title(language.English)
	switch {
	case original == "":
		return replacement
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case title.String(strings.ToLower(original)) == original:
		return title.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
