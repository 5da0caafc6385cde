// ═══════════════════════════════════════════════════════════════════════════════
// CANDIDATE-SET INTERSECTION
// ═══════════════════════════════════════════════════════════════════════════════
// Phrase and proximity queries only need to look at documents containing
// every query term at all. Rather than compute that intersection with
// plain maps, we reuse the same roaring-bitmap doc-id sets the boolean
// query builder in the corpus this design is grounded on already relies on
// for AND/OR composition — it is simply a faster set representation.
//
// This is strictly an in-memory, query-time performance device. Nothing
// here is ever written to disk: the on-disk index format is the flat text
// format in SPEC_FULL.md §4.D regardless of how a query evaluator chooses
// to intersect candidates at read time.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import "github.com/RoaringBitmap/roaring"

// candidateSet tracks, per query term, which doc_ids contain it, so the
// positional predicates can intersect before doing any position-level work.
type candidateSet struct {
	bitmaps map[string]*roaring.Bitmap
}

func newCandidateSet() *candidateSet {
	return &candidateSet{bitmaps: make(map[string]*roaring.Bitmap)}
}

func (c *candidateSet) add(term string, docID int) {
	bm, ok := c.bitmaps[term]
	if !ok {
		bm = roaring.New()
		c.bitmaps[term] = bm
	}
	bm.Add(uint32(docID))
}

// intersection returns the doc_ids present for every term in terms, or an
// empty (non-nil) bitmap if any term was never observed.
func (c *candidateSet) intersection(terms []string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.New()
	}
	seen := make(map[string]bool, len(terms))
	var result *roaring.Bitmap
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		bm, ok := c.bitmaps[t]
		if !ok {
			return roaring.New()
		}
		if result == nil {
			result = bm.Clone()
			continue
		}
		result.And(bm)
	}
	if result == nil {
		return roaring.New()
	}
	return result
}
