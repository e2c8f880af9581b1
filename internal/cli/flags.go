package cli

import (
	"fmt"
	"strings"

	"github.com/fpang/kidvid-composer/internal/safezone"
)

// ParseAssignments parses repeated slot=value flags.
func ParseAssignments(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		slot, value, ok := strings.Cut(p, "=")
		slot, value = strings.TrimSpace(slot), strings.TrimSpace(value)
		if !ok || slot == "" || value == "" {
			return nil, fmt.Errorf("expected slot=value, got %q", p)
		}
		out[slot] = value
	}
	return out, nil
}

// ParseZoneOverrides parses repeated slot=zone1,zone2 flags. Zone names are
// normalised and checked against rules.
func ParseZoneOverrides(pairs []string, rules *safezone.Rules) (map[string][]safezone.ID, error) {
	assignments, err := ParseAssignments(pairs)
	if err != nil || assignments == nil {
		return nil, err
	}
	out := make(map[string][]safezone.ID, len(assignments))
	for slot, raw := range assignments {
		var zones []safezone.ID
		for _, z := range strings.Split(raw, ",") {
			if strings.TrimSpace(z) == "" {
				continue
			}
			id, err := rules.ParseID(z)
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", slot, err)
			}
			zones = append(zones, id)
		}
		if len(zones) == 0 {
			return nil, fmt.Errorf("no zones given for slot %q", slot)
		}
		out[slot] = zones
	}
	return out, nil
}
