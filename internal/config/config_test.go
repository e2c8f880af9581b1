package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Templates) != len(template.BuiltinDefinitions()) {
		t.Errorf("expected builtin templates, got %d", len(cfg.Templates))
	}
	if _, err := cfg.Engine(); err != nil {
		t.Fatalf("default engine should build: %v", err)
	}
}

func TestParse_PartialFallsBack(t *testing.T) {
	doc := `
keywords:
  mood: [sparkly, calm]
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if strings.Join(cfg.Keywords.Mood, ",") != "sparkly,calm" {
		t.Errorf("mood = %v", cfg.Keywords.Mood)
	}
	if len(cfg.Keywords.Templates) == 0 {
		t.Error("template keywords should fall back to defaults")
	}
	if len(cfg.SafeZones) != len(safezone.DefaultRuleList()) {
		t.Errorf("safe zones should fall back to defaults, got %d", len(cfg.SafeZones))
	}
	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
}

func TestParse_CustomTemplate(t *testing.T) {
	doc := `
templates:
  - id: quick-lullaby
    type: lullaby
    segments:
      - id: main
        duration_s: 30
        slots:
          - id: background_music
            purpose: background_music
            media_type: audio
            required: true
          - id: slideshow_image
            purpose: slideshow_image
            media_type: image
            allowed_safe_zones: [slideshow]
            required: true
            cardinality: one
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	eng, err := cfg.Engine()
	if err != nil {
		t.Fatalf("Engine() error: %v", err)
	}
	def, err := eng.Registry.Get("quick-lullaby")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if def.TotalDurationSeconds() != 30 {
		t.Errorf("duration = %v, want 30", def.TotalDurationSeconds())
	}
	if got := def.Slots()[1].Slot.AllowedSafeZones; len(got) != 1 || got[0] != safezone.Slideshow {
		t.Errorf("allowed zones = %v", got)
	}
	if eng.Resolver() == nil {
		t.Error("expected a resolver")
	}
}

func TestEngine_RejectsUnknownZone(t *testing.T) {
	cfg := Default()
	cfg.Templates[0].Segments[0].Slots[0].AllowedSafeZones = []safezone.ID{"bottom_safe"}

	_, err := cfg.Engine()
	var zoneErr *safezone.UnknownSafeZoneError
	if !errors.As(err, &zoneErr) {
		t.Fatalf("expected UnknownSafeZoneError, got %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("templates: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for invalid YAML")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	out, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	cfg, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, err := cfg.Engine(); err != nil {
		t.Fatalf("round-tripped config should build: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if results := Default().Validate(); HasErrors(results) {
		t.Errorf("default config should have no errors: %+v", results)
	}

	cfg := Default()
	cfg.SafeZones = append(cfg.SafeZones, safezone.Rule{Zone: safezone.Left, Templates: []string{"lullaby"}})
	cfg.Templates = append(cfg.Templates, template.Definition{ID: "karaoke-1", Type: "karaoke"})
	results := cfg.Validate()
	if !HasErrors(results) {
		t.Fatal("expected errors")
	}

	var msgs []string
	for _, r := range results {
		msgs = append(msgs, r.Level+": "+r.Message)
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		`error: safe zone "left_safe" declared twice`,
		`error: template "karaoke-1"`,
		`warning: template type "karaoke" has no keywords`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("results missing %q:\n%s", want, joined)
		}
	}
}
