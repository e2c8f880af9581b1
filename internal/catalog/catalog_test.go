package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/kidvid-composer/internal/safezone"
)

func TestReviewSafeZones(t *testing.T) {
	a := Asset{Metadata: map[string]string{MetaReviewSafeZones: " Left_Safe, ,center_safe"}}
	zones := a.ReviewSafeZones()
	if len(zones) != 2 || zones[0] != safezone.Left || zones[1] != safezone.Center {
		t.Errorf("unexpected review zones: %v", zones)
	}
	if (Asset{}).ReviewSafeZones() != nil {
		t.Error("expected nil zones without metadata")
	}
}

func TestAgeRange(t *testing.T) {
	a := Asset{Metadata: map[string]string{MetaMinAge: "3", MetaMaxAge: "bad"}}
	minAge, hasMin, _, hasMax := a.AgeRange()
	if !hasMin || minAge != 3 {
		t.Errorf("expected min age 3, got %d (%v)", minAge, hasMin)
	}
	if hasMax {
		t.Error("expected unparsable max age to be ignored")
	}
}

func TestReference(t *testing.T) {
	a := Asset{ID: "a1", MediaType: MediaAudio, URL: "https://cdn/a1.mp3", Theme: "calm"}
	ref := a.Reference()
	if ref.AssetID != "a1" || ref.URL != "https://cdn/a1.mp3" || ref.MediaType != MediaAudio {
		t.Errorf("unexpected reference: %+v", ref)
	}
}

func TestFileReader_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `[{"id":"a1","mediaType":"image","theme":"moon","safeZones":["left_safe"]}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	assets, err := (&FileReader{Path: path}).ListApprovedAssets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 1 || !assets[0].HasZone(safezone.Left) {
		t.Errorf("unexpected assets: %+v", assets)
	}
}

func TestFileReader_Zstd(t *testing.T) {
	var buf bytes.Buffer
	in := []Asset{{ID: "a1", MediaType: MediaImage}, {ID: "a2", MediaType: MediaAudio}}
	if err := WriteCompressed(&buf, in); err != nil {
		t.Fatalf("WriteCompressed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "catalog.json.zst")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	assets, err := (&FileReader{Path: path}).ListApprovedAssets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 || assets[1].ID != "a2" {
		t.Errorf("unexpected assets: %+v", assets)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestIndex_FirstWins(t *testing.T) {
	idx := Index([]Asset{{ID: "x"}, {ID: "y"}, {ID: "x"}})
	if idx["x"] != 0 || idx["y"] != 1 {
		t.Errorf("unexpected index: %v", idx)
	}
}
