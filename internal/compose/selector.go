package compose

import (
	"math/rand/v2"

	"github.com/fpang/kidvid-composer/internal/catalog"
)

// Selector makes one pick per key and freezes it for the rest of a
// resolution call. A Selector belongs to a single call and is not safe for
// concurrent use.
type Selector struct {
	rng           *rand.Rand
	preferHighest bool
	frozen        map[string]catalog.AssetReference
}

// NewSelector returns a selector. A nil seed draws a fresh seed from the
// process-wide source.
func NewSelector(seed *int64, preferHighest bool) *Selector {
	var src *rand.PCG
	if seed != nil {
		src = rand.NewPCG(uint64(*seed), uint64(*seed)^0x9e3779b97f4a7c15)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{
		rng:           rand.New(src),
		preferHighest: preferHighest,
		frozen:        make(map[string]catalog.AssetReference),
	}
}

// SelectOnce returns the frozen pick for key, picking from pool on first
// use. It returns false when key has no pick and pool is empty. Picks are
// with replacement; the pool is never modified.
func (s *Selector) SelectOnce(key string, pool []ScoredAsset) (catalog.AssetReference, bool) {
	if ref, ok := s.frozen[key]; ok {
		return ref, true
	}
	if len(pool) == 0 {
		return catalog.AssetReference{}, false
	}
	var pick ScoredAsset
	if s.preferHighest {
		pick = highest(pool)
	} else {
		pick = pool[s.rng.IntN(len(pool))]
	}
	ref := pick.Asset.Reference()
	s.frozen[key] = ref
	return ref, true
}

// Freeze records ref as the pick for key, replacing nothing already frozen.
// It reports whether ref was stored.
func (s *Selector) Freeze(key string, ref catalog.AssetReference) bool {
	if _, ok := s.frozen[key]; ok {
		return false
	}
	s.frozen[key] = ref
	return true
}

// Frozen returns a copy of every pick made so far.
func (s *Selector) Frozen() map[string]catalog.AssetReference {
	out := make(map[string]catalog.AssetReference, len(s.frozen))
	for k, v := range s.frozen {
		out[k] = v
	}
	return out
}

// highest returns the top-scored candidate; ties go to the earlier catalog
// position.
func highest(pool []ScoredAsset) ScoredAsset {
	best := pool[0]
	for _, c := range pool[1:] {
		if c.Score > best.Score || (c.Score == best.Score && c.Order < best.Order) {
			best = c
		}
	}
	return best
}
