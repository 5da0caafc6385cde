// ═══════════════════════════════════════════════════════════════════════════════
// POSITIONAL PREDICATES: phrase and proximity
// ═══════════════════════════════════════════════════════════════════════════════
// Both predicates work on a single document's per-term position lists,
// already gathered by the caller in one pass over the index (collectPostings
// in query.go). positions[i] holds the sorted position list for the i-th
// slot: for phrase matching every query token is a slot, repeats included;
// for proximity matching each distinct query term is one slot.
//
// Phrase matching here requires one coherent alignment across every term,
// not an independent check of each adjacent pair — the original source's
// pairwise check over-accepts three-or-more-term queries (e.g. "a b a" can
// satisfy every adjacent pair without any single run of consecutive
// positions existing). This implementation anchors on the first term's
// positions and verifies p+1, p+2, ... exist in each following term in turn.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

// phraseMatch reports whether there is a position p for positions[0] such
// that p+i is present in positions[i] for every term index i.
func phraseMatch(positions [][]int) bool {
	if len(positions) == 0 {
		return false
	}
	if len(positions) == 1 {
		return len(positions[0]) > 0
	}
	for _, p := range positions[0] {
		if alignmentHolds(positions, p) {
			return true
		}
	}
	return false
}

func alignmentHolds(positions [][]int, start int) bool {
	for i := 1; i < len(positions); i++ {
		if !contains(positions[i], start+i) {
			return false
		}
	}
	return true
}

func contains(sorted []int, target int) bool {
	lo, hi := 0, len(sorted)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case sorted[mid] == target:
			return true
		case sorted[mid] < target:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return false
}

// proximityMatch reports whether some two distinct query terms have
// positions within maxDistance of each other.
func proximityMatch(positions [][]int, maxDistance int) bool {
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if anyWithinDistance(positions[i], positions[j], maxDistance) {
				return true
			}
		}
	}
	return false
}

func anyWithinDistance(a, b []int, maxDistance int) bool {
	for _, pa := range a {
		for _, pb := range b {
			d := pa - pb
			if d < 0 {
				d = -d
			}
			if d <= maxDistance {
				return true
			}
		}
	}
	return false
}
