package compose

import (
	"testing"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

func TestScore_Factors(t *testing.T) {
	s := NewScorer(DefaultKeywords())

	tests := []struct {
		name     string
		asset    catalog.Asset
		ctx      SlotContext
		expected int
	}{
		{
			name:     "nothing matches",
			asset:    catalog.Asset{Theme: "Trains"},
			ctx:      SlotContext{Purpose: template.PurposeSlideshowImage},
			expected: 0,
		},
		{
			name:     "purpose theme bonus",
			asset:    catalog.Asset{Theme: "Lullaby"},
			ctx:      SlotContext{Purpose: template.PurposeBackgroundMusic},
			expected: PurposeThemeBonus,
		},
		{
			name:     "exact zone beats review zone",
			asset:    catalog.Asset{Theme: "Trains", SafeZones: []safezone.ID{safezone.Intro}, Metadata: map[string]string{catalog.MetaReviewSafeZones: "intro"}},
			ctx:      SlotContext{Purpose: template.PurposeIntroBackground, AllowedSafeZones: []safezone.ID{safezone.Intro}},
			expected: ExactZoneBonus,
		},
		{
			name:     "review zone",
			asset:    catalog.Asset{Theme: "Trains", Metadata: map[string]string{catalog.MetaReviewSafeZones: "center, intro"}},
			ctx:      SlotContext{Purpose: template.PurposeIntroBackground, AllowedSafeZones: []safezone.ID{safezone.Intro}},
			expected: ReviewZoneBonus,
		},
		{
			name:     "mood words in theme and tags",
			asset:    catalog.Asset{Theme: "Calm Cozy Trains", Tags: []string{"gentle", "Gentle"}},
			ctx:      SlotContext{Purpose: template.PurposeSlideshowImage},
			expected: 2*MoodThemeHitBonus + MoodTagHitBonus,
		},
		{
			name:     "personalization theme extends mood",
			asset:    catalog.Asset{Theme: "Dinosaur Parade"},
			ctx:      SlotContext{Purpose: template.PurposeSlideshowImage, Theme: "dinosaur of the sea"},
			expected: MoodThemeHitBonus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.asset, tt.ctx); got != tt.expected {
				t.Errorf("Score() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestRank_StableDescending(t *testing.T) {
	s := NewScorer(DefaultKeywords())
	ctx := SlotContext{Purpose: template.PurposeBackgroundMusic}

	candidates := []ScoredAsset{
		{Asset: catalog.Asset{ID: "plain-a", Theme: "Piano"}, Order: 0},
		{Asset: catalog.Asset{ID: "best", Theme: "Calm Lullaby"}, Order: 1},
		{Asset: catalog.Asset{ID: "plain-b", Theme: "Strings"}, Order: 2},
		{Asset: catalog.Asset{ID: "mid", Theme: "Melody"}, Order: 3},
	}

	ranked := s.Rank(candidates, ctx)
	want := []string{"best", "mid", "plain-a", "plain-b"}
	for i, id := range want {
		if ranked[i].Asset.ID != id {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].Asset.ID, id)
		}
	}
	if candidates[0].Score != 0 {
		t.Error("Rank must not modify its input")
	}
}
