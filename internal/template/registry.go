package template

import (
	"fmt"
	"sort"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/safezone"
)

// Built-in template IDs.
const (
	LullabyClassic    = "lullaby-classic"
	NameSpelling      = "name-spelling"
	BedtimeStoryBasic = "bedtime-story-basic"
)

// Registry is an immutable set of template definitions keyed by ID.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry builds a registry. Duplicate IDs are rejected.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("template with type %q has no id", d.Type)
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", d.ID)
		}
		r.defs[d.ID] = d
	}
	return r, nil
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return Definition{}, &safezone.UnknownTemplateError{Template: id}
	}
	return d, nil
}

// IDs lists registered template IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks every definition against rules.
func (r *Registry) Validate(rules *safezone.Rules) error {
	for _, id := range r.IDs() {
		if err := r.defs[id].Validate(rules); err != nil {
			return fmt.Errorf("template %s: %w", id, err)
		}
	}
	return nil
}

// Builtin returns the registry of built-in templates.
func Builtin() *Registry {
	r, err := NewRegistry(BuiltinDefinitions()...)
	if err != nil {
		panic(err)
	}
	return r
}

// BuiltinDefinitions returns fresh copies of the built-in templates.
func BuiltinDefinitions() []Definition {
	music := Slot{
		ID:        "background_music",
		Purpose:   PurposeBackgroundMusic,
		MediaType: catalog.MediaAudio,
		Required:  true,
	}
	return []Definition{
		{
			ID:    LullabyClassic,
			Type:  safezone.TemplateLullaby,
			Title: "Classic lullaby",
			Segments: []Segment{
				{ID: "intro", DurationSeconds: 6, Slots: []Slot{
					{ID: "intro_background", Purpose: PurposeIntroBackground, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Intro, safezone.Center}, Required: true},
				}},
				{ID: "song", DurationSeconds: 120, Slots: []Slot{
					music,
					{ID: "slideshow_image", Purpose: PurposeSlideshowImage, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Slideshow, safezone.AllOK}, Required: true},
				}},
				{ID: "outro", DurationSeconds: 6, Slots: []Slot{
					{ID: "outro_background", Purpose: PurposeOutroBackground, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Outro}, Required: false},
				}},
			},
		},
		{
			ID:    NameSpelling,
			Type:  safezone.TemplateNameVideo,
			Title: "Spell my name",
			Segments: []Segment{
				{ID: "intro", DurationSeconds: 5, Slots: []Slot{
					{ID: "intro_background", Purpose: PurposeIntroBackground, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Intro}, Required: true},
					music,
				}},
				{ID: "letters", DurationSeconds: 3, Slots: []Slot{
					{ID: "letter_visual", Purpose: PurposeLetterVisual, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Left, safezone.Right}, Required: true, Cardinality: PerLetter},
				}},
				{ID: "outro", DurationSeconds: 5, Slots: []Slot{
					{ID: "outro_background", Purpose: PurposeOutroBackground, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Outro, safezone.Center}, Required: true},
				}},
			},
		},
		{
			ID:    BedtimeStoryBasic,
			Type:  safezone.TemplateBedtimeStory,
			Title: "Bedtime story",
			Segments: []Segment{
				{ID: "title", DurationSeconds: 4, Slots: []Slot{
					{ID: "intro_background", Purpose: PurposeIntroBackground, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Center, safezone.Intro}, Required: true},
				}},
				{ID: "story", DurationSeconds: 90, Slots: []Slot{
					music,
					{ID: "slideshow_image", Purpose: PurposeSlideshowImage, MediaType: catalog.MediaImage,
						AllowedSafeZones: []safezone.ID{safezone.Slideshow}, Required: true},
				}},
			},
		},
	}
}
