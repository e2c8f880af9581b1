// Package safezone holds the safe-zone compatibility rules: which screen
// region each zone keeps clear for overlaid text, and which template types
// may use it.
//
// A zone's meaning is fixed and template-independent. Whether a zone is valid
// for a template type is declared once in a Rules table and never inferred.
package safezone

import (
	"fmt"
	"sort"
	"strings"
)

// ID names a composition region.
type ID string

const (
	Left      ID = "left_safe"
	Right     ID = "right_safe"
	Center    ID = "center_safe"
	Intro     ID = "intro_safe"
	Outro     ID = "outro_safe"
	Slideshow ID = "slideshow"
	AllOK     ID = "all_ok"
)

// Built-in template types.
const (
	TemplateLullaby      = "lullaby"
	TemplateNameVideo    = "name-video"
	TemplateBedtimeStory = "bedtime-story"
)

// Rule describes one safe zone.
type Rule struct {
	Zone            ID       `json:"zone" yaml:"zone"`
	CompositionHint string   `json:"compositionHint" yaml:"composition_hint"`
	NegativeHint    string   `json:"negativeHint" yaml:"negative_hint"`
	Templates       []string `json:"templates" yaml:"templates"`
}

// Rules is an immutable lookup table built by NewRules. It is safe for
// concurrent use.
type Rules struct {
	byZone    map[ID]Rule
	templates map[string]map[ID]bool
}

// NewRules builds a Rules table. Later rules for the same zone replace
// earlier ones. Input slices are copied.
func NewRules(rules []Rule) *Rules {
	r := &Rules{
		byZone:    make(map[ID]Rule, len(rules)),
		templates: make(map[string]map[ID]bool),
	}
	for _, rule := range rules {
		rule.Templates = append([]string(nil), rule.Templates...)
		r.byZone[rule.Zone] = rule
	}
	for zone, rule := range r.byZone {
		for _, tt := range rule.Templates {
			if r.templates[tt] == nil {
				r.templates[tt] = make(map[ID]bool)
			}
			r.templates[tt][zone] = true
		}
	}
	return r
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *Rules {
	return NewRules(DefaultRuleList())
}

// DefaultRuleList returns a fresh copy of the built-in rules, for callers
// that want to extend them.
func DefaultRuleList() []Rule {
	all := []string{TemplateLullaby, TemplateNameVideo, TemplateBedtimeStory}
	return []Rule{
		{
			Zone:            Left,
			CompositionHint: "Place the subject in the right two-thirds of the frame; keep the left third calm and uncluttered for text.",
			NegativeHint:    "no characters, faces or detailed objects in the left third of the image",
			Templates:       []string{TemplateNameVideo, TemplateLullaby},
		},
		{
			Zone:            Right,
			CompositionHint: "Place the subject in the left two-thirds of the frame; keep the right third calm and uncluttered for text.",
			NegativeHint:    "no characters, faces or detailed objects in the right third of the image",
			Templates:       []string{TemplateNameVideo, TemplateLullaby},
		},
		{
			Zone:            Center,
			CompositionHint: "Frame the subject around the edges; keep the center of the frame open for a title.",
			NegativeHint:    "no subject matter in the center of the image",
			Templates:       all,
		},
		{
			Zone:            Intro,
			CompositionHint: "Wide establishing scene with open sky or background in the upper half for the intro title.",
			NegativeHint:    "no busy detail in the upper half of the image",
			Templates:       all,
		},
		{
			Zone:            Outro,
			CompositionHint: "Quiet closing scene with open space in the lower half for credits.",
			NegativeHint:    "no busy detail in the lower half of the image",
			Templates:       all,
		},
		{
			Zone:            Slideshow,
			CompositionHint: "Full-bleed illustration; captions are drawn on a band, no clear region needed.",
			NegativeHint:    "no embedded text or letters",
			Templates:       []string{TemplateLullaby, TemplateBedtimeStory},
		},
		{
			Zone:            AllOK,
			CompositionHint: "Any composition; the asset carries no text overlay.",
			NegativeHint:    "",
			Templates:       all,
		},
	}
}

// ParseID normalises s and checks it against the rule table.
func (r *Rules) ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if !r.Known(id) {
		return "", &UnknownSafeZoneError{Zone: id}
	}
	return id, nil
}

// Known reports whether zone has a rule.
func (r *Rules) Known(zone ID) bool {
	_, ok := r.byZone[zone]
	return ok
}

// KnownTemplate reports whether any rule sanctions the template type.
func (r *Rules) KnownTemplate(templateType string) bool {
	_, ok := r.templates[templateType]
	return ok
}

// IsZoneValidForTemplate reports whether zone may be used by templates of
// the given type.
func (r *Rules) IsZoneValidForTemplate(zone ID, templateType string) (bool, error) {
	if !r.Known(zone) {
		return false, &UnknownSafeZoneError{Zone: zone}
	}
	zones, ok := r.templates[templateType]
	if !ok {
		return false, &UnknownTemplateError{Template: templateType}
	}
	return zones[zone], nil
}

// RulesFor returns the composition and negative hints for zone.
func (r *Rules) RulesFor(zone ID) (Rule, error) {
	rule, ok := r.byZone[zone]
	if !ok {
		return Rule{}, &UnknownSafeZoneError{Zone: zone}
	}
	rule.Templates = append([]string(nil), rule.Templates...)
	return rule, nil
}

// ZonesFor lists the zones sanctioned for a template type, sorted.
func (r *Rules) ZonesFor(templateType string) ([]ID, error) {
	zones, ok := r.templates[templateType]
	if !ok {
		return nil, &UnknownTemplateError{Template: templateType}
	}
	out := make([]ID, 0, len(zones))
	for z := range zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// TemplateTypes lists every template type any rule mentions, sorted.
func (r *Rules) TemplateTypes() []string {
	out := make([]string, 0, len(r.templates))
	for tt := range r.templates {
		out = append(out, tt)
	}
	sort.Strings(out)
	return out
}

// Zones lists every zone with a rule, sorted.
func (r *Rules) Zones() []ID {
	out := make([]ID, 0, len(r.byZone))
	for z := range r.byZone {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnknownSafeZoneError is a configuration defect: a zone with no rule.
type UnknownSafeZoneError struct {
	Zone ID
}

func (e *UnknownSafeZoneError) Error() string {
	return fmt.Sprintf("unknown safe zone %q", string(e.Zone))
}

// UnknownTemplateError is a configuration defect: a template id or template
// type the engine has no definition or rules for.
type UnknownTemplateError struct {
	Template string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Template)
}
