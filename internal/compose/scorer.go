package compose

import (
	"sort"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// Score weights.
const (
	PurposeThemeBonus = 10
	ExactZoneBonus    = 5
	ReviewZoneBonus   = 3
	MoodThemeHitBonus = 2
	MoodTagHitBonus   = 1
)

// SlotContext is what the scorer knows about the slot being filled.
type SlotContext struct {
	TemplateType     string
	Purpose          template.Purpose
	AllowedSafeZones []safezone.ID
	// Theme is the personalization theme; its words extend the mood set.
	Theme string
}

// ScoredAsset is a candidate with its relevance score and its position in
// the catalog snapshot.
type ScoredAsset struct {
	Asset catalog.Asset
	Score int
	Order int
}

// Scorer ranks candidates. It never excludes.
type Scorer struct {
	purposeTheme map[template.Purpose]wordSet
	mood         []string
}

// NewScorer builds a scorer over kw.
func NewScorer(kw Keywords) *Scorer {
	pt := make(map[template.Purpose]wordSet, len(kw.PurposeTheme))
	for p, words := range kw.PurposeTheme {
		pt[p] = newWordSet(words)
	}
	return &Scorer{purposeTheme: pt, mood: append([]string(nil), kw.Mood...)}
}

type scoreFactor func(s *Scorer, a catalog.Asset, sc SlotContext, mood wordSet) int

var scoreFactors = []scoreFactor{
	scorePurposeTheme,
	scoreSafeZone,
	scoreMoodTheme,
	scoreMoodTags,
}

// Score sums every factor for a.
func (s *Scorer) Score(a catalog.Asset, sc SlotContext) int {
	return s.score(a, sc, s.moodSet(sc.Theme))
}

func (s *Scorer) score(a catalog.Asset, sc SlotContext, mood wordSet) int {
	total := 0
	for _, f := range scoreFactors {
		total += f(s, a, sc, mood)
	}
	return total
}

// Rank scores candidates and sorts them by score descending. Ties keep the
// order candidates were given in.
func (s *Scorer) Rank(candidates []ScoredAsset, sc SlotContext) []ScoredAsset {
	mood := s.moodSet(sc.Theme)
	ranked := make([]ScoredAsset, len(candidates))
	for i, c := range candidates {
		c.Score = s.score(c.Asset, sc, mood)
		ranked[i] = c
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func (s *Scorer) moodSet(theme string) wordSet {
	set := newWordSet(s.mood)
	for _, w := range themeTokens(theme) {
		// Short words ("a", "of", "in") are noise.
		if len(w) >= 3 {
			set[w] = struct{}{}
		}
	}
	return set
}

func scorePurposeTheme(s *Scorer, a catalog.Asset, sc SlotContext, _ wordSet) int {
	set, ok := s.purposeTheme[sc.Purpose]
	if !ok {
		return 0
	}
	if countHits(themeTokens(a.Theme), set) > 0 {
		return PurposeThemeBonus
	}
	return 0
}

func scoreSafeZone(_ *Scorer, a catalog.Asset, sc SlotContext, _ wordSet) int {
	for _, z := range sc.AllowedSafeZones {
		if a.HasZone(z) {
			return ExactZoneBonus
		}
	}
	for _, rz := range a.ReviewSafeZones() {
		for _, z := range sc.AllowedSafeZones {
			if rz == z {
				return ReviewZoneBonus
			}
		}
	}
	return 0
}

func scoreMoodTheme(_ *Scorer, a catalog.Asset, _ SlotContext, mood wordSet) int {
	return MoodThemeHitBonus * countHits(themeTokens(a.Theme), mood)
}

func scoreMoodTags(_ *Scorer, a catalog.Asset, _ SlotContext, mood wordSet) int {
	return MoodTagHitBonus * countHits(normalizedTags(a.Tags), mood)
}
