package safezone

import (
	"errors"
	"testing"
)

func TestIsZoneValidForTemplate(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		zone     ID
		template string
		expected bool
	}{
		{Left, TemplateNameVideo, true},
		{Right, TemplateNameVideo, true},
		{Slideshow, TemplateNameVideo, false},
		{Slideshow, TemplateLullaby, true},
		{Left, TemplateBedtimeStory, false},
		{AllOK, TemplateBedtimeStory, true},
		{Intro, TemplateLullaby, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.zone)+"/"+tt.template, func(t *testing.T) {
			got, err := rules.IsZoneValidForTemplate(tt.zone, tt.template)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("IsZoneValidForTemplate(%q, %q) = %v, want %v", tt.zone, tt.template, got, tt.expected)
			}
		})
	}
}

func TestIsZoneValidForTemplate_UnknownZone(t *testing.T) {
	_, err := DefaultRules().IsZoneValidForTemplate("bottom_safe", TemplateLullaby)
	var zoneErr *UnknownSafeZoneError
	if !errors.As(err, &zoneErr) {
		t.Fatalf("expected UnknownSafeZoneError, got %v", err)
	}
	if zoneErr.Zone != "bottom_safe" {
		t.Errorf("expected zone bottom_safe, got %q", zoneErr.Zone)
	}
}

func TestIsZoneValidForTemplate_UnknownTemplate(t *testing.T) {
	_, err := DefaultRules().IsZoneValidForTemplate(Left, "karaoke")
	var tmplErr *UnknownTemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("expected UnknownTemplateError, got %v", err)
	}
}

func TestRulesFor(t *testing.T) {
	rules := DefaultRules()

	rule, err := rules.RulesFor(Left)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.CompositionHint == "" || rule.NegativeHint == "" {
		t.Errorf("expected hints for left_safe, got %+v", rule)
	}

	// Mutating the returned copy must not leak into the table.
	rule.Templates[0] = "mutated"
	again, _ := rules.RulesFor(Left)
	if again.Templates[0] == "mutated" {
		t.Error("RulesFor returned a shared Templates slice")
	}

	if _, err := rules.RulesFor("nowhere"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestNewRules_Isolated(t *testing.T) {
	custom := NewRules([]Rule{{Zone: Center, Templates: []string{"karaoke"}}})

	if custom.Known(Left) {
		t.Error("custom rules should not know left_safe")
	}
	ok, err := custom.IsZoneValidForTemplate(Center, "karaoke")
	if err != nil || !ok {
		t.Errorf("expected center_safe valid for karaoke, got %v, %v", ok, err)
	}
	if DefaultRules().KnownTemplate("karaoke") {
		t.Error("custom rules leaked into defaults")
	}
}

func TestParseID(t *testing.T) {
	rules := DefaultRules()

	id, err := rules.ParseID("  LEFT_SAFE ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != Left {
		t.Errorf("expected left_safe, got %q", id)
	}
	if _, err := rules.ParseID("bottom_safe"); err == nil {
		t.Error("expected error for bottom_safe")
	}
}

func TestZonesFor(t *testing.T) {
	zones, err := DefaultRules().ZonesFor(TemplateBedtimeStory)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, z := range zones {
		if z == Left || z == Right {
			t.Errorf("bedtime-story should not sanction %q", z)
		}
	}
	if len(zones) != 5 {
		t.Errorf("expected 5 zones for bedtime-story, got %d: %v", len(zones), zones)
	}
}
