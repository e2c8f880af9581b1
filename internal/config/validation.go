package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate runs every check against the config. Errors make the engine
// unusable; warnings flag vocabulary gaps that only starve matching.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateRules()...)
	results = append(results, c.validateTemplates()...)
	results = append(results, c.validateVocabulary()...)
	return results
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func (c Config) validateRules() []ValidationResult {
	var results []ValidationResult
	seen := make(map[safezone.ID]bool)
	for _, r := range c.SafeZones {
		if r.Zone == "" {
			results = append(results, ValidationResult{Level: "error", Message: "safe-zone rule with empty zone"})
			continue
		}
		if seen[r.Zone] {
			results = append(results, ValidationResult{Level: "error", Message: fmt.Sprintf("safe zone %q declared twice", r.Zone)})
		}
		seen[r.Zone] = true
		if len(r.Templates) == 0 {
			results = append(results, ValidationResult{Level: "warning", Message: fmt.Sprintf("safe zone %q is valid for no template type", r.Zone)})
		}
	}
	return results
}

func (c Config) validateTemplates() []ValidationResult {
	var results []ValidationResult
	rules := safezone.NewRules(c.SafeZones)
	ids := make(map[string]bool)
	for _, def := range c.Templates {
		if ids[def.ID] {
			results = append(results, ValidationResult{Level: "error", Message: fmt.Sprintf("template %q declared twice", def.ID)})
			continue
		}
		ids[def.ID] = true
		if err := def.Validate(rules); err != nil {
			results = append(results, ValidationResult{Level: "error", Message: describe(def.ID, err)})
		}
	}
	return results
}

func (c Config) validateVocabulary() []ValidationResult {
	var results []ValidationResult
	types := make(map[string]bool)
	for _, def := range c.Templates {
		types[def.Type] = true
	}
	sorted := make([]string, 0, len(types))
	for t := range types {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	for _, t := range sorted {
		if len(c.Keywords.Templates[t]) == 0 {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("template type %q has no keywords; only curated assets will match", t),
			})
		}
	}
	for _, p := range c.Keywords.PrecisePurposes {
		if len(c.Keywords.Purposes[p]) == 0 {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("precise purpose %q has no keywords; only curated assets will match", p),
			})
		}
	}
	return results
}

func describe(templateID string, err error) string {
	var zoneErr *safezone.UnknownSafeZoneError
	var slotErr *template.InvalidSlotConfigurationError
	switch {
	case errors.As(err, &zoneErr):
		return fmt.Sprintf("template %q uses unknown safe zone %q", templateID, zoneErr.Zone)
	case errors.As(err, &slotErr):
		return fmt.Sprintf("template %q slot %q: %s", templateID, slotErr.SlotID, slotErr.Reason)
	}
	return fmt.Sprintf("template %q: %v", templateID, err)
}
