package compose

import (
	"strings"
	"unicode"

	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// Keywords is the static vocabulary used by the matcher and scorer. It is
// injected into a Resolver and treated as read-only.
type Keywords struct {
	// Templates maps a template type to words that make an asset
	// thematically usable for it.
	Templates map[string][]string `yaml:"templates"`
	// Purposes maps a slot purpose to words that make an asset usable for it.
	Purposes map[template.Purpose][]string `yaml:"purposes"`
	// PurposeTheme maps a slot purpose to words whose presence in an asset's
	// theme earns the purpose bonus.
	PurposeTheme map[template.Purpose][]string `yaml:"purpose_theme"`
	// Mood is the generic mood vocabulary.
	Mood []string `yaml:"mood"`
	// PrecisePurposes are purposes filtered by purpose keywords. Other
	// purposes rely on template usability and safe-zone match alone.
	PrecisePurposes []template.Purpose `yaml:"precise_purposes"`
}

// DefaultKeywords returns the built-in vocabulary.
func DefaultKeywords() Keywords {
	return Keywords{
		Templates: map[string][]string{
			safezone.TemplateLullaby:      {"lullaby", "bedtime", "sleep", "sleepy", "calm", "peaceful", "moon", "stars", "night", "dream", "gentle", "soft"},
			safezone.TemplateNameVideo:    {"name", "letter", "letters", "alphabet", "abc", "colorful", "playful", "bright", "happy", "fun"},
			safezone.TemplateBedtimeStory: {"story", "bedtime", "book", "fairy", "tale", "adventure", "dream", "night", "cozy"},
		},
		Purposes: map[template.Purpose][]string{
			template.PurposeBackgroundMusic: {"music", "melody", "song", "lullaby", "calm", "peaceful", "instrumental"},
		},
		PurposeTheme: map[template.Purpose][]string{
			template.PurposeBackgroundMusic: {"lullaby", "music", "melody"},
			template.PurposeLetterVisual:    {"letter", "alphabet"},
			template.PurposeIntroBackground: {"intro", "title"},
			template.PurposeOutroBackground: {"outro", "goodnight"},
			template.PurposeSlideshowImage:  {"scene", "story"},
		},
		Mood:            []string{"calm", "peaceful", "gentle", "soft", "happy", "cheerful", "dreamy", "cozy", "playful", "bright", "warm"},
		PrecisePurposes: []template.Purpose{template.PurposeBackgroundMusic},
	}
}

// Merge returns k with any empty section filled from base.
func (k Keywords) Merge(base Keywords) Keywords {
	if len(k.Templates) == 0 {
		k.Templates = base.Templates
	}
	if len(k.Purposes) == 0 {
		k.Purposes = base.Purposes
	}
	if len(k.PurposeTheme) == 0 {
		k.PurposeTheme = base.PurposeTheme
	}
	if len(k.Mood) == 0 {
		k.Mood = base.Mood
	}
	if len(k.PrecisePurposes) == 0 {
		k.PrecisePurposes = base.PrecisePurposes
	}
	return k
}

// wordSet is a lowercase keyword set.
type wordSet map[string]struct{}

func newWordSet(words []string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// themeTokens splits a free-text theme into lowercase words.
func themeTokens(theme string) []string {
	return strings.FieldsFunc(strings.ToLower(theme), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalizedTags lowercases and trims tags, dropping empties.
func normalizedTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// countHits counts words present in set. Duplicate words count once.
func countHits(words []string, set wordSet) int {
	seen := make(map[string]bool, len(words))
	n := 0
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set.has(w) {
			n++
		}
	}
	return n
}
