package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/kidvid-composer/internal/compose"
	"github.com/fpang/kidvid-composer/internal/template"
)

const testCatalog = `[
  {"id": "intro-1", "mediaType": "image", "theme": "bright moon letters", "safeZones": ["intro_safe"]},
  {"id": "music-1", "mediaType": "audio", "theme": "soft fun lullaby music"},
  {"id": "slide-1", "mediaType": "image", "theme": "stars", "safeZones": ["slideshow"]},
  {"id": "outro-1", "mediaType": "image", "theme": "happy night goodnight", "safeZones": ["outro_safe"]},
  {"id": "left-1", "mediaType": "image", "theme": "letters", "safeZones": ["left_safe"]},
  {"id": "right-1", "mediaType": "image", "theme": "letters", "safeZones": ["right_safe"]}
]`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunResolveJSON(t *testing.T) {
	var buf bytes.Buffer
	err := runResolve(context.Background(), &buf, resolveOptions{
		TemplateID:  template.NameSpelling,
		CatalogPath: writeCatalog(t),
		Name:        "Bo",
		Theme:       "sleepy moon",
		Seed:        7,
		HasSeed:     true,
		Format:      "json",
	})
	if err != nil {
		t.Fatalf("runResolve() error: %v", err)
	}

	var comp compose.ResolvedComposition
	if err := json.Unmarshal(buf.Bytes(), &comp); err != nil {
		t.Fatalf("output is not a composition: %v\n%s", err, buf.String())
	}
	if comp.TemplateID != template.NameSpelling {
		t.Errorf("TemplateID = %q", comp.TemplateID)
	}
	letters := comp.Slots["letter_visual"]
	if !letters.PerLetter || len(letters.Letters) != 2 {
		t.Fatalf("letter_visual = %+v", letters)
	}
	if letters.Letters[0].AssetID != "left-1" || letters.Letters[1].AssetID != "right-1" {
		t.Errorf("letters = %s, %s", letters.Letters[0].AssetID, letters.Letters[1].AssetID)
	}
	if len(comp.Missing) != 0 {
		t.Errorf("Missing = %v", comp.Missing)
	}
}

func TestRunResolveText(t *testing.T) {
	var buf bytes.Buffer
	err := runResolve(context.Background(), &buf, resolveOptions{
		TemplateID:  template.LullabyClassic,
		CatalogPath: writeCatalog(t),
		Overrides:   []string{"slideshow_image=slide-1"},
		Format:      "text",
	})
	if err != nil {
		t.Fatalf("runResolve() error: %v", err)
	}
	if !strings.Contains(buf.String(), "slide-1") || !strings.Contains(buf.String(), "Missing: none") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}

func TestRunResolveZoneCaseInsensitive(t *testing.T) {
	var buf bytes.Buffer
	err := runResolve(context.Background(), &buf, resolveOptions{
		TemplateID:  template.LullabyClassic,
		CatalogPath: writeCatalog(t),
		Zones:       []string{"slideshow_image= SLIDESHOW "},
		Format:      "json",
	})
	if err != nil {
		t.Fatalf("runResolve() error: %v", err)
	}
	if !strings.Contains(buf.String(), "slide-1") {
		t.Errorf("slideshow_image not resolved:\n%s", buf.String())
	}
}

func TestRunResolveErrors(t *testing.T) {
	catalogPath := writeCatalog(t)
	tests := []struct {
		name string
		opts resolveOptions
	}{
		{"bad format", resolveOptions{TemplateID: template.LullabyClassic, CatalogPath: catalogPath, Format: "xml"}},
		{"missing catalog", resolveOptions{TemplateID: template.LullabyClassic, CatalogPath: "absent.json", Format: "json"}},
		{"unknown template", resolveOptions{TemplateID: "nope", CatalogPath: catalogPath, Format: "json"}},
		{"bad override", resolveOptions{TemplateID: template.LullabyClassic, CatalogPath: catalogPath, Overrides: []string{"x"}, Format: "json"}},
		{"unknown zone", resolveOptions{TemplateID: template.LullabyClassic, CatalogPath: catalogPath, Zones: []string{"slideshow_image=nowhere"}, Format: "json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runResolve(context.Background(), &bytes.Buffer{}, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunValidateDefaults(t *testing.T) {
	var buf bytes.Buffer
	ok, err := runValidate(&buf, "")
	if err != nil {
		t.Fatalf("runValidate() error: %v", err)
	}
	if !ok {
		t.Errorf("built-in config reported errors:\n%s", buf.String())
	}
}

func TestRunValidateBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	broken := `templates:
  - id: broken
    type: lullaby
    segments:
      - id: s
        duration_s: 1
        slots:
          - id: letters
            purpose: letter_visual
            media_type: image
            allowed_safe_zones: [left_safe]
            required: true
            cardinality: per_letter
`
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	ok, err := runValidate(&buf, path)
	if err != nil {
		t.Fatalf("runValidate() error: %v", err)
	}
	if ok {
		t.Errorf("expected errors, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "error") {
		t.Errorf("no error line in output:\n%s", buf.String())
	}
}
