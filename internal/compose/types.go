package compose

import (
	"bytes"
	"encoding/json"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// Personalization is the per-child input to one resolution call.
type Personalization struct {
	ChildName string `json:"childName,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Theme     string `json:"theme"`
	// Overrides pins a slot to a specific catalog asset ID.
	Overrides map[string]string `json:"overrides,omitempty"`
}

// Options tune one resolution call.
type Options struct {
	PreferHighestScore bool `json:"preferHighestScore,omitempty"`
	// RandomSeed makes selection reproducible, for tests and debugging.
	RandomSeed *int64 `json:"randomSeed,omitempty"`
	// SafeZoneOverrides replaces a slot's allowed zones for this call.
	SafeZoneOverrides map[string][]safezone.ID `json:"safeZoneOverrides,omitempty"`
}

// ResolveRequest is the engine's input.
type ResolveRequest struct {
	Template        template.Definition `json:"template"`
	Catalog         []catalog.Asset     `json:"catalog"`
	Personalization Personalization     `json:"personalization"`
	Options         Options             `json:"options,omitempty"`
}

// SlotResolution is either a single reference or, for per-letter slots, one
// reference per letter (nil where the letter could not be covered). It
// marshals to a JSON object or array accordingly.
type SlotResolution struct {
	PerLetter bool
	Asset     *catalog.AssetReference
	Letters   []*catalog.AssetReference
}

func (s SlotResolution) MarshalJSON() ([]byte, error) {
	if s.PerLetter {
		letters := s.Letters
		if letters == nil {
			letters = []*catalog.AssetReference{}
		}
		return json.Marshal(letters)
	}
	return json.Marshal(s.Asset)
}

func (s *SlotResolution) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		s.PerLetter = true
		return json.Unmarshal(trimmed, &s.Letters)
	}
	s.PerLetter = false
	return json.Unmarshal(trimmed, &s.Asset)
}

// LetterEntry is one letter of the child's name with its zone and pick.
type LetterEntry struct {
	Letter   string                  `json:"letter"`
	SafeZone safezone.ID             `json:"safeZone"`
	Asset    *catalog.AssetReference `json:"asset"`
}

// ResolvedComposition is the engine's output for one call.
type ResolvedComposition struct {
	ResolutionID string                    `json:"resolutionId"`
	TemplateID   string                    `json:"templateId"`
	TemplateType string                    `json:"templateType"`
	Slots        map[string]SlotResolution `json:"slots"`
	LetterPlan   []LetterEntry             `json:"letterPlan,omitempty"`
	Missing      []string                  `json:"missing"`
}

// Slot returns the resolution for slotID.
func (c *ResolvedComposition) Slot(slotID string) (SlotResolution, bool) {
	s, ok := c.Slots[slotID]
	return s, ok
}

// Complete reports whether nothing required is missing.
func (c *ResolvedComposition) Complete() bool {
	return len(c.Missing) == 0
}

// MissingLetters counts missing entries that refer to letter positions.
// Slot IDs may not contain brackets, so only letter keys end in ']'.
func (c *ResolvedComposition) MissingLetters() int {
	n := 0
	for _, m := range c.Missing {
		if len(m) > 0 && m[len(m)-1] == ']' {
			n++
		}
	}
	return n
}
