package compose

import (
	"fmt"
	"strings"

	"github.com/fpang/kidvid-composer/internal/safezone"
)

// LetterAssignment binds one character of the child's name to a safe zone.
type LetterAssignment struct {
	Index    int
	Letter   string
	SafeZone safezone.ID
}

// PlanLetters uppercases name and assigns zones by index parity: even
// indexes get left_safe, odd indexes right_safe. Duplicate letters are kept.
// The plan depends only on the name.
func PlanLetters(name string) []LetterAssignment {
	runes := []rune(strings.ToUpper(strings.TrimSpace(name)))
	plan := make([]LetterAssignment, len(runes))
	for i, r := range runes {
		plan[i] = LetterAssignment{Index: i, Letter: string(r), SafeZone: ZoneForLetterIndex(i)}
	}
	return plan
}

// ZoneForLetterIndex is the alternation rule.
func ZoneForLetterIndex(i int) safezone.ID {
	if i%2 == 0 {
		return safezone.Left
	}
	return safezone.Right
}

// LetterSlotKey names letter i of a per-letter slot in selection keys and in
// the missing report.
func LetterSlotKey(slotID string, i int) string {
	return fmt.Sprintf("%s[%d]", slotID, i)
}

// LetterPools are the candidates for left and right letter positions.
type LetterPools struct {
	Left  []ScoredAsset
	Right []ScoredAsset
}

// PartitionLetterPools splits candidates by declared zone. Zone-agnostic
// assets are left out; an asset declaring both zones enters both pools.
// Order is preserved.
func PartitionLetterPools(candidates []ScoredAsset) LetterPools {
	var pools LetterPools
	for _, c := range candidates {
		if c.Asset.HasZone(safezone.Left) {
			pools.Left = append(pools.Left, c)
		}
		if c.Asset.HasZone(safezone.Right) {
			pools.Right = append(pools.Right, c)
		}
	}
	return pools
}

// PoolFor returns the pool serving zone. There is no fallback to the
// opposite pool.
func (p LetterPools) PoolFor(zone safezone.ID) []ScoredAsset {
	switch zone {
	case safezone.Left:
		return p.Left
	case safezone.Right:
		return p.Right
	}
	return nil
}

// Shortfalls lists the plan indexes whose pool is empty.
func (p LetterPools) Shortfalls(plan []LetterAssignment) []int {
	var out []int
	for _, la := range plan {
		if len(p.PoolFor(la.SafeZone)) == 0 {
			out = append(out, la.Index)
		}
	}
	return out
}
