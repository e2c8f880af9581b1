// Package template describes video templates: ordered segments, each
// declaring the media slots it needs filled.
package template

import (
	"fmt"
	"strings"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/safezone"
)

// Purpose names what a slot is for.
type Purpose string

const (
	PurposeBackgroundMusic Purpose = "background_music"
	PurposeIntroBackground Purpose = "intro_background"
	PurposeOutroBackground Purpose = "outro_background"
	PurposeLetterVisual    Purpose = "letter_visual"
	PurposeSlideshowImage  Purpose = "slideshow_image"
)

// Cardinality says how many assets a slot resolves to.
type Cardinality string

const (
	// One resolves to exactly one asset.
	One Cardinality = "one"
	// PerLetter resolves to one asset per character of the child's name.
	PerLetter Cardinality = "per_letter"
)

// Slot is a media requirement within a segment.
type Slot struct {
	ID               string            `json:"id" yaml:"id"`
	Purpose          Purpose           `json:"purpose" yaml:"purpose"`
	MediaType        catalog.MediaType `json:"mediaType" yaml:"media_type"`
	AllowedSafeZones []safezone.ID     `json:"allowedSafeZones,omitempty" yaml:"allowed_safe_zones"`
	Required         bool              `json:"required" yaml:"required"`
	Cardinality      Cardinality       `json:"cardinality,omitempty" yaml:"cardinality"`
}

// PerLetter reports whether the slot is apportioned across name letters.
func (s Slot) PerLetter() bool {
	return s.Cardinality == PerLetter
}

// Segment is one timed section of a template.
type Segment struct {
	ID              string  `json:"id" yaml:"id"`
	DurationSeconds float64 `json:"durationSeconds" yaml:"duration_s"`
	Slots           []Slot  `json:"slots" yaml:"slots"`
}

// Definition is a complete template.
type Definition struct {
	ID       string    `json:"id" yaml:"id"`
	Type     string    `json:"type" yaml:"type"`
	Title    string    `json:"title,omitempty" yaml:"title"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// SlotRef is a slot together with the segment that declares it.
type SlotRef struct {
	SegmentID string
	Slot      Slot
}

// Slots flattens the template's slots in segment order.
func (d Definition) Slots() []SlotRef {
	var out []SlotRef
	for _, seg := range d.Segments {
		for _, slot := range seg.Slots {
			out = append(out, SlotRef{SegmentID: seg.ID, Slot: slot})
		}
	}
	return out
}

// TotalDurationSeconds sums segment durations.
func (d Definition) TotalDurationSeconds() float64 {
	var total float64
	for _, seg := range d.Segments {
		total += seg.DurationSeconds
	}
	return total
}

// Validate checks the definition against rules. It returns the first
// configuration defect found.
func (d Definition) Validate(rules *safezone.Rules) error {
	if !rules.KnownTemplate(d.Type) {
		return &safezone.UnknownTemplateError{Template: d.Type}
	}
	seen := make(map[string]bool)
	for _, ref := range d.Slots() {
		slot := ref.Slot
		if slot.ID == "" {
			return &InvalidSlotConfigurationError{TemplateID: d.ID, SlotID: slot.ID, Reason: "slot id is empty"}
		}
		if strings.ContainsAny(slot.ID, "[]") {
			return &InvalidSlotConfigurationError{TemplateID: d.ID, SlotID: slot.ID, Reason: "slot id must not contain '[' or ']'"}
		}
		if seen[slot.ID] {
			return &InvalidSlotConfigurationError{TemplateID: d.ID, SlotID: slot.ID, Reason: "duplicate slot id"}
		}
		seen[slot.ID] = true
		if err := ValidateSlotZones(d, slot, slot.AllowedSafeZones, rules); err != nil {
			return err
		}
		if err := validateCardinality(d, slot); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSlotZones checks that every zone is known and sanctioned for the
// template's type. It is also used for per-call zone overrides.
func ValidateSlotZones(d Definition, slot Slot, zones []safezone.ID, rules *safezone.Rules) error {
	for _, z := range zones {
		ok, err := rules.IsZoneValidForTemplate(z, d.Type)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidSlotConfigurationError{
				TemplateID: d.ID,
				SlotID:     slot.ID,
				Reason:     fmt.Sprintf("safe zone %q is not sanctioned for template type %q", z, d.Type),
			}
		}
	}
	if slot.PerLetter() && !(containsZone(zones, safezone.Left) && containsZone(zones, safezone.Right)) {
		return &InvalidSlotConfigurationError{
			TemplateID: d.ID,
			SlotID:     slot.ID,
			Reason:     "per-letter slots must allow both left_safe and right_safe",
		}
	}
	return nil
}

func validateCardinality(d Definition, slot Slot) error {
	switch slot.Cardinality {
	case "", One:
	case PerLetter:
		if slot.MediaType != catalog.MediaImage {
			return &InvalidSlotConfigurationError{TemplateID: d.ID, SlotID: slot.ID, Reason: "per-letter slots must be image slots"}
		}
	default:
		return &InvalidSlotConfigurationError{
			TemplateID: d.ID,
			SlotID:     slot.ID,
			Reason:     fmt.Sprintf("unknown cardinality %q", slot.Cardinality),
		}
	}
	switch slot.MediaType {
	case catalog.MediaImage, catalog.MediaAudio:
	default:
		return &InvalidSlotConfigurationError{
			TemplateID: d.ID,
			SlotID:     slot.ID,
			Reason:     fmt.Sprintf("unknown media type %q", slot.MediaType),
		}
	}
	return nil
}

func containsZone(zones []safezone.ID, z safezone.ID) bool {
	for _, candidate := range zones {
		if candidate == z {
			return true
		}
	}
	return false
}

// InvalidSlotConfigurationError is a template authoring defect in one slot.
type InvalidSlotConfigurationError struct {
	TemplateID string
	SlotID     string
	Reason     string
}

func (e *InvalidSlotConfigurationError) Error() string {
	return fmt.Sprintf("template %q slot %q: %s", e.TemplateID, e.SlotID, e.Reason)
}
