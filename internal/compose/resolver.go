// Package compose resolves a video template against an approved asset
// catalog into a render-ready composition.
//
// A resolution call is pure computation over its inputs: it matches
// candidates per slot, ranks them, apportions letter slots across the child's
// name, makes one frozen pick per slot or letter, and assembles the result.
// Missing content never fails a call; configuration defects always do.
package compose

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// Phase is a step of a resolution call.
type Phase string

const (
	PhaseStart            Phase = "START"
	PhaseMatchSlots       Phase = "MATCH_SLOTS"
	PhaseScoreCandidates  Phase = "SCORE_CANDIDATES"
	PhaseApportionLetters Phase = "APPORTION_LETTERS"
	PhaseSelect           Phase = "SELECT"
	PhaseAssemble         Phase = "ASSEMBLE"
	PhaseDone             Phase = "DONE"
)

// Resolver turns templates and catalog snapshots into compositions. It holds
// only immutable configuration and is safe for concurrent use.
type Resolver struct {
	rules    *safezone.Rules
	registry *template.Registry
	matcher  *Matcher
	scorer   *Scorer
	newID    func() string
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithIDFunc replaces the resolution ID generator.
func WithIDFunc(fn func() string) Option {
	return func(r *Resolver) { r.newID = fn }
}

// NewResolver builds a resolver. registry may be nil when callers only use
// Resolve with inline definitions.
func NewResolver(rules *safezone.Rules, kw Keywords, registry *template.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		rules:    rules,
		registry: registry,
		matcher:  NewMatcher(kw),
		scorer:   NewScorer(kw),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rules returns the resolver's safe-zone rules.
func (r *Resolver) Rules() *safezone.Rules { return r.rules }

// Registry returns the resolver's template registry, possibly nil.
func (r *Resolver) Registry() *template.Registry { return r.registry }

// ResolveByID resolves the registered template with the given ID.
func (r *Resolver) ResolveByID(templateID string, assets []catalog.Asset, p Personalization, opts Options) (*ResolvedComposition, error) {
	if r.registry == nil {
		return nil, &safezone.UnknownTemplateError{Template: templateID}
	}
	def, err := r.registry.Get(templateID)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ResolveRequest{Template: def, Catalog: assets, Personalization: p, Options: opts})
}

// slotState is the working state of one slot during a call.
type slotState struct {
	ref        template.SlotRef
	zones      []safezone.ID
	candidates []ScoredAsset
	pools      LetterPools
	override   *catalog.AssetReference
}

// run is the state of a single resolution call.
type run struct {
	r        *Resolver
	req      ResolveRequest
	id       string
	logger   zerolog.Logger
	phase    Phase
	slots    []*slotState
	plan     []LetterAssignment
	selector *Selector
}

// Resolve runs one resolution call. It returns an error only for
// configuration defects; unavailable content is reported in Missing.
func (r *Resolver) Resolve(req ResolveRequest) (*ResolvedComposition, error) {
	id := r.newID()
	st := &run{
		r:   r,
		req: req,
		id:  id,
		logger: log.With().
			Str("resolutionId", id).
			Str("templateId", req.Template.ID).
			Logger(),
		phase: PhaseStart,
	}

	if err := st.validate(); err != nil {
		st.logger.Debug().Err(err).Msg("Template configuration rejected")
		return nil, err
	}

	st.enter(PhaseMatchSlots)
	st.matchSlots()

	st.enter(PhaseScoreCandidates)
	st.scoreCandidates()

	if st.hasLetterSlots() {
		st.enter(PhaseApportionLetters)
		st.apportionLetters()
	}

	st.enter(PhaseSelect)
	st.selector = NewSelector(req.Options.RandomSeed, req.Options.PreferHighestScore)
	st.selectAll()

	st.enter(PhaseAssemble)
	out := st.assemble()

	st.enter(PhaseDone)
	st.logger.Debug().
		Int("slots", len(out.Slots)).
		Int("missing", len(out.Missing)).
		Msg("Resolution complete")
	return out, nil
}

func (st *run) enter(p Phase) {
	st.logger.Debug().Str("from", string(st.phase)).Str("to", string(p)).Msg("Resolution phase")
	st.phase = p
}

// validate rejects configuration defects before any matching happens.
func (st *run) validate() error {
	def := st.req.Template
	if err := def.Validate(st.r.rules); err != nil {
		return err
	}

	bySlot := make(map[string]template.Slot)
	for _, ref := range def.Slots() {
		bySlot[ref.Slot.ID] = ref.Slot
	}
	overrides := st.req.Options.SafeZoneOverrides
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, slotID := range keys {
		slot, ok := bySlot[slotID]
		if !ok {
			return &template.InvalidSlotConfigurationError{
				TemplateID: def.ID,
				SlotID:     slotID,
				Reason:     "safe-zone override names a slot the template does not declare",
			}
		}
		if err := template.ValidateSlotZones(def, slot, overrides[slotID], st.r.rules); err != nil {
			return err
		}
	}

	for _, ref := range def.Slots() {
		zones := ref.Slot.AllowedSafeZones
		if o, ok := overrides[ref.Slot.ID]; ok {
			zones = o
		}
		st.slots = append(st.slots, &slotState{ref: ref, zones: zones})
	}
	return nil
}

func (st *run) matchSlots() {
	def := st.req.Template
	p := st.req.Personalization
	index := catalog.Index(st.req.Catalog)

	for _, ss := range st.slots {
		slot := ss.ref.Slot
		curated := 0
		for i, a := range st.req.Catalog {
			if a.MediaType != slot.MediaType {
				continue
			}
			if !ageAllows(a, p.Age) {
				continue
			}
			if !zoneCompatible(a, ss.zones) {
				continue
			}
			reason, ok := st.r.matcher.MatchSlot(a, def.Type, slot.Purpose)
			if !ok {
				continue
			}
			if reason == StrategyCurated {
				curated++
			}
			ss.candidates = append(ss.candidates, ScoredAsset{Asset: a, Order: i})
		}

		if assetID, ok := p.Overrides[slot.ID]; ok {
			ss.override = st.lookupOverride(index, slot, assetID)
		}

		st.logger.Debug().
			Str("slot", slot.ID).
			Str("purpose", string(slot.Purpose)).
			Int("candidates", len(ss.candidates)).
			Int("curated", curated).
			Bool("override", ss.override != nil).
			Msg("Slot matched")
	}
}

func (st *run) lookupOverride(index map[string]int, slot template.Slot, assetID string) *catalog.AssetReference {
	if slot.PerLetter() {
		st.logger.Warn().Str("slot", slot.ID).Str("assetId", assetID).Msg("Asset override ignored for per-letter slot")
		return nil
	}
	i, ok := index[assetID]
	if !ok {
		st.logger.Warn().Str("slot", slot.ID).Str("assetId", assetID).Msg("Asset override not found in catalog, selecting normally")
		return nil
	}
	a := st.req.Catalog[i]
	if a.MediaType != slot.MediaType {
		st.logger.Warn().
			Str("slot", slot.ID).
			Str("assetId", assetID).
			Str("assetMediaType", string(a.MediaType)).
			Str("slotMediaType", string(slot.MediaType)).
			Msg("Asset override has wrong media type, selecting normally")
		return nil
	}
	ref := a.Reference()
	return &ref
}

func (st *run) scoreCandidates() {
	for _, ss := range st.slots {
		if len(ss.candidates) == 0 {
			continue
		}
		ss.candidates = st.r.scorer.Rank(ss.candidates, SlotContext{
			TemplateType:     st.req.Template.Type,
			Purpose:          ss.ref.Slot.Purpose,
			AllowedSafeZones: ss.zones,
			Theme:            st.req.Personalization.Theme,
		})
	}
}

func (st *run) hasLetterSlots() bool {
	for _, ss := range st.slots {
		if ss.ref.Slot.PerLetter() {
			return true
		}
	}
	return false
}

func (st *run) apportionLetters() {
	st.plan = PlanLetters(st.req.Personalization.ChildName)
	for _, ss := range st.slots {
		if !ss.ref.Slot.PerLetter() {
			continue
		}
		ss.pools = PartitionLetterPools(ss.candidates)
		st.logger.Debug().
			Str("slot", ss.ref.Slot.ID).
			Int("letters", len(st.plan)).
			Int("leftPool", len(ss.pools.Left)).
			Int("rightPool", len(ss.pools.Right)).
			Ints("shortfalls", ss.pools.Shortfalls(st.plan)).
			Msg("Letters apportioned")
	}
}

func (st *run) selectAll() {
	for _, ss := range st.slots {
		slot := ss.ref.Slot
		switch {
		case slot.PerLetter():
			for _, la := range st.plan {
				st.selector.SelectOnce(LetterSlotKey(slot.ID, la.Index), ss.pools.PoolFor(la.SafeZone))
			}
		case ss.override != nil:
			st.selector.Freeze(slot.ID, *ss.override)
		default:
			st.selector.SelectOnce(slot.ID, ss.candidates)
		}
	}
}

func (st *run) assemble() *ResolvedComposition {
	frozen := st.selector.Frozen()
	out := &ResolvedComposition{
		ResolutionID: st.id,
		TemplateID:   st.req.Template.ID,
		TemplateType: st.req.Template.Type,
		Slots:        make(map[string]SlotResolution),
		Missing:      []string{},
	}

	letterPlanDone := false
	for _, ss := range st.slots {
		slot := ss.ref.Slot
		if !slot.PerLetter() {
			ref, ok := frozen[slot.ID]
			if ok {
				out.Slots[slot.ID] = SlotResolution{Asset: &ref}
			} else if slot.Required {
				out.Missing = append(out.Missing, slot.ID)
			}
			continue
		}

		res := SlotResolution{PerLetter: true, Letters: make([]*catalog.AssetReference, len(st.plan))}
		if len(st.plan) == 0 && slot.Required {
			out.Missing = append(out.Missing, slot.ID)
		}
		for _, la := range st.plan {
			key := LetterSlotKey(slot.ID, la.Index)
			if ref, ok := frozen[key]; ok {
				res.Letters[la.Index] = &ref
			} else if slot.Required {
				out.Missing = append(out.Missing, key)
			}
		}
		out.Slots[slot.ID] = res

		if !letterPlanDone && len(st.plan) > 0 {
			out.LetterPlan = make([]LetterEntry, len(st.plan))
			for _, la := range st.plan {
				out.LetterPlan[la.Index] = LetterEntry{
					Letter:   la.Letter,
					SafeZone: la.SafeZone,
					Asset:    res.Letters[la.Index],
				}
			}
			letterPlanDone = true
		}
	}
	return out
}

// zoneCompatible admits zone-agnostic assets, slots without zone
// constraints, and assets whose declared or reviewer-assigned zones
// intersect the slot's.
func zoneCompatible(a catalog.Asset, zones []safezone.ID) bool {
	if len(zones) == 0 || a.ZoneAgnostic() {
		return true
	}
	for _, z := range zones {
		if a.HasZone(z) {
			return true
		}
	}
	for _, rz := range a.ReviewSafeZones() {
		for _, z := range zones {
			if rz == z {
				return true
			}
		}
	}
	return false
}

func ageAllows(a catalog.Asset, age *int) bool {
	if age == nil {
		return true
	}
	minAge, hasMin, maxAge, hasMax := a.AgeRange()
	if hasMin && *age < minAge {
		return false
	}
	if hasMax && *age > maxAge {
		return false
	}
	return true
}

// String renders a short summary for logs and CLI output.
func (c *ResolvedComposition) String() string {
	return fmt.Sprintf("composition %s (template %s): %d slots, %d missing",
		c.ResolutionID, c.TemplateID, len(c.Slots), len(c.Missing))
}
