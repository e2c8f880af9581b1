package metrics

import (
	"time"

	"github.com/fpang/kidvid-composer/internal/compose"
)

// RecordResolution emits the per-call metrics for one composition.
func RecordResolution(r *Recorder, c *compose.ResolvedComposition, elapsed time.Duration) {
	letters := c.MissingLetters()
	r.Dimension("TemplateType", c.TemplateType).
		Metric("ResolveLatencyMs", float64(elapsed.Milliseconds()), UnitMilliseconds).
		Metric("SlotsResolved", float64(resolvedSlots(c)), UnitCount).
		Metric("SlotsMissing", float64(len(c.Missing)-letters), UnitCount).
		Metric("LettersMissing", float64(letters), UnitCount).
		Property("resolutionId", c.ResolutionID).
		Property("templateId", c.TemplateID).
		Flush()
}

func resolvedSlots(c *compose.ResolvedComposition) int {
	n := 0
	for _, s := range c.Slots {
		if s.PerLetter {
			for _, ref := range s.Letters {
				if ref != nil {
					n++
				}
			}
			continue
		}
		if s.Asset != nil {
			n++
		}
	}
	return n
}
