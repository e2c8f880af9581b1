package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fpang/kidvid-composer/internal/compose"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// WriteComposition prints a human-readable report of a composition.
func WriteComposition(w io.Writer, c *compose.ResolvedComposition) {
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, "Composition %s\n", c.ResolutionID)
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, "Template: %s (%s)\n", c.TemplateID, c.TemplateType)
	fmt.Fprintln(w, "--------------------------------------------")

	ids := make([]string, 0, len(c.Slots))
	for id := range c.Slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, id := range ids {
		s := c.Slots[id]
		if s.PerLetter {
			fmt.Fprintf(tw, "%s\t%d letters\n", id, len(s.Letters))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, s.Asset.AssetID, s.Asset.MediaType)
	}
	tw.Flush()

	if len(c.LetterPlan) > 0 {
		fmt.Fprintln(w, "--------------------------------------------")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, e := range c.LetterPlan {
			asset := "(missing)"
			if e.Asset != nil {
				asset = e.Asset.AssetID
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, e.Letter, e.SafeZone, asset)
		}
		tw.Flush()
	}

	fmt.Fprintln(w, "--------------------------------------------")
	if len(c.Missing) == 0 {
		fmt.Fprintln(w, "Missing: none")
		return
	}
	fmt.Fprintf(w, "Missing (%d): %s\n", len(c.Missing), strings.Join(c.Missing, ", "))
}

// WriteTemplates lists registered templates with their slots.
func WriteTemplates(w io.Writer, registry *template.Registry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tDURATION\tSLOTS")
	for _, id := range registry.IDs() {
		def, _ := registry.Get(id)
		var slots []string
		for _, ref := range def.Slots() {
			label := ref.Slot.ID
			if ref.Slot.PerLetter() {
				label += "[]"
			}
			if !ref.Slot.Required {
				label += "?"
			}
			slots = append(slots, label)
		}
		d := time.Duration(def.TotalDurationSeconds() * float64(time.Second))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.ID, def.Type, FormatDurationShort(d), strings.Join(slots, " "))
	}
	tw.Flush()
}

// WriteRules prints the safe-zone table.
func WriteRules(w io.Writer, rules *safezone.Rules) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ZONE\tTEMPLATES\tCOMPOSITION HINT")
	for _, z := range rules.Zones() {
		r, _ := rules.RulesFor(z)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", z, strings.Join(r.Templates, ","), r.CompositionHint)
	}
	tw.Flush()
}
