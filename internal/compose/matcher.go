package compose

import (
	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/template"
)

// Strategy names.
const (
	StrategyCurated        = "curated"
	StrategyKeywordOverlap = "keyword_overlap"
)

// Strategy is one usability predicate. Target is a template type or a slot
// purpose depending on which chain the strategy belongs to.
type Strategy struct {
	Name  string
	Match func(a catalog.Asset, target string) bool
}

// Matcher decides whether an asset is usable for a template and for a slot
// purpose. Each decision walks an ordered strategy chain and stops at the
// first match, so explicit curation always wins over keyword overlap.
type Matcher struct {
	templateChain []Strategy
	purposeChain  []Strategy
	precise       map[template.Purpose]bool
}

// NewMatcher builds the default strategy chains over kw.
func NewMatcher(kw Keywords) *Matcher {
	purposeWords := make(map[string][]string, len(kw.Purposes))
	for p, words := range kw.Purposes {
		purposeWords[string(p)] = words
	}
	precise := make(map[template.Purpose]bool, len(kw.PrecisePurposes))
	for _, p := range kw.PrecisePurposes {
		precise[p] = true
	}

	return &Matcher{
		templateChain: []Strategy{
			{Name: StrategyCurated, Match: CuratedFor},
			{Name: StrategyKeywordOverlap, Match: KeywordOverlap(kw.Templates)},
		},
		purposeChain: []Strategy{
			{Name: StrategyCurated, Match: CuratedFor},
			{Name: StrategyKeywordOverlap, Match: KeywordOverlap(purposeWords)},
		},
		precise: precise,
	}
}

// CuratedFor reports whether the asset was explicitly curated for target.
func CuratedFor(a catalog.Asset, target string) bool {
	return a.PurposeHint != "" && a.PurposeHint == target
}

// KeywordOverlap returns a strategy that matches when any word of the
// asset's theme or tags appears in the keyword set registered for target.
func KeywordOverlap(keywords map[string][]string) func(catalog.Asset, string) bool {
	sets := make(map[string]wordSet, len(keywords))
	for target, words := range keywords {
		sets[target] = newWordSet(words)
	}
	return func(a catalog.Asset, target string) bool {
		set, ok := sets[target]
		if !ok || len(set) == 0 {
			return false
		}
		if countHits(themeTokens(a.Theme), set) > 0 {
			return true
		}
		return countHits(normalizedTags(a.Tags), set) > 0
	}
}

// UsableForTemplate reports whether the asset may appear in a template of
// the given type.
func (m *Matcher) UsableForTemplate(a catalog.Asset, templateType string) bool {
	_, ok := firstMatch(m.templateChain, a, templateType)
	return ok
}

// UsableForPurpose reports whether the asset may fill a slot with the given
// purpose. Purposes outside the precise set always pass.
func (m *Matcher) UsableForPurpose(a catalog.Asset, purpose template.Purpose) bool {
	if !m.precise[purpose] {
		return true
	}
	_, ok := firstMatch(m.purposeChain, a, string(purpose))
	return ok
}

// MatchSlot decides whether the asset may fill a slot with the given purpose
// in a template of the given type, and names the strategy that admitted it.
// An asset curated for either the template type or the purpose is admitted
// without any keyword check.
func (m *Matcher) MatchSlot(a catalog.Asset, templateType string, purpose template.Purpose) (string, bool) {
	if CuratedFor(a, templateType) || CuratedFor(a, string(purpose)) {
		return StrategyCurated, true
	}
	name, ok := firstMatch(m.templateChain, a, templateType)
	if !ok {
		return "", false
	}
	if m.precise[purpose] {
		if name, ok = firstMatch(m.purposeChain, a, string(purpose)); !ok {
			return "", false
		}
	}
	return name, true
}

func firstMatch(chain []Strategy, a catalog.Asset, target string) (string, bool) {
	for _, s := range chain {
		if s.Match(a, target) {
			return s.Name, true
		}
	}
	return "", false
}
