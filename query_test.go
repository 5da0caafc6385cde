package spimi

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POSTING PARSING AND RANKING
// ═══════════════════════════════════════════════════════════════════════════════

func TestParsePosting_FrequencyForm(t *testing.T) {
	p, err := parsePosting("2,3")
	if err != nil {
		t.Fatalf("parsePosting: %v", err)
	}
	if p.DocID != 2 || p.TF != 3 || p.Positions != nil {
		t.Errorf("parsePosting(\"2,3\") = %+v, want {DocID:2 TF:3 Positions:nil}", p)
	}
}

func TestParsePosting_PositionalForm(t *testing.T) {
	p, err := parsePosting("2:0,5,9")
	if err != nil {
		t.Fatalf("parsePosting: %v", err)
	}
	if p.DocID != 2 || p.TF != 3 || len(p.Positions) != 3 || p.Positions[2] != 9 {
		t.Errorf("parsePosting(\"2:0,5,9\") = %+v", p)
	}
}

func TestParsePosting_Malformed(t *testing.T) {
	if _, err := parsePosting("not-a-posting"); err == nil {
		t.Error("parsePosting() on malformed input succeeded, want error")
	}
}

func writeIndexFixture(t *testing.T, dir string, lines []string, mapping []int, lengths []int) {
	t.Helper()
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "index.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write index.txt: %v", err)
	}
	if err := WriteStats(dir, len(mapping), sum(lengths)); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	if err := WriteDocMapping(dir, mapping); err != nil {
		t.Fatalf("WriteDocMapping: %v", err)
	}
	f, err := os.Create(filepath.Join(dir, "docs_len.txt"))
	if err != nil {
		t.Fatalf("create docs_len.txt: %v", err)
	}
	defer f.Close()
	for docID, length := range lengths {
		if _, err := fmt.Fprintf(f, "%d:%d\n", docID, length); err != nil {
			t.Fatalf("write docs_len.txt: %v", err)
		}
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestOpenIndex_LoadsArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeIndexFixture(t, dir, []string{"cat;0,1;1,1", "dog;0,1"}, []int{100, 200}, []int{3, 4})

	idx, err := OpenIndex(dir, nil)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	if idx.Stats.TotalDocs != 2 {
		t.Errorf("TotalDocs = %d, want 2", idx.Stats.TotalDocs)
	}
	if idx.PMID(0) != 100 || idx.PMID(1) != 200 {
		t.Errorf("PMID mapping wrong: %v", idx.DocMapping)
	}
	if idx.DocLength(0) != 3 || idx.DocLength(1) != 4 {
		t.Errorf("DocLengths wrong: %v", idx.DocLengths)
	}
	if idx.PMID(99) != 0 {
		t.Error("PMID() out of range should return 0, not panic")
	}
}

func TestCollectPostings_OnlyWantedTerms(t *testing.T) {
	dir := t.TempDir()
	writeIndexFixture(t, dir, []string{"cat;0,2;1,1", "dog;0,1", "fox;1,1"}, []int{1, 2}, []int{3, 3})
	idx, err := OpenIndex(dir, nil)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}

	postings, collFreq, err := collectPostings(idx, []string{"cat", "fox"})
	if err != nil {
		t.Fatalf("collectPostings: %v", err)
	}
	if _, ok := postings["dog"]; ok {
		t.Error("collectPostings returned an unrequested term")
	}
	if len(postings["cat"]) != 2 {
		t.Errorf("cat postings = %v, want 2 entries", postings["cat"])
	}
	if collFreq["cat"] != 3 {
		t.Errorf("collFreq[cat] = %d, want 3 (2+1)", collFreq["cat"])
	}
	if collFreq["fox"] != 1 {
		t.Errorf("collFreq[fox] = %d, want 1", collFreq["fox"])
	}
}

func TestCollectPostings_UnknownTermOmitted(t *testing.T) {
	dir := t.TempDir()
	writeIndexFixture(t, dir, []string{"cat;0,1"}, []int{1}, []int{1})
	idx, err := OpenIndex(dir, nil)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	postings, _, err := collectPostings(idx, []string{"ghost"})
	if err != nil {
		t.Fatalf("collectPostings: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("postings = %v, want empty for a term absent from the index", postings)
	}
}

func TestTopK_OrdersDescendingAndBreaksTiesByDocID(t *testing.T) {
	idx := &Index{DocMapping: []int{10, 20, 30}}
	scores := map[int]float64{0: 1.0, 1: 2.0, 2: 1.0}
	results := topK(scores, idx, 10)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].DocID != 1 {
		t.Errorf("results[0].DocID = %d, want 1 (highest score)", results[0].DocID)
	}
	if results[1].DocID != 0 || results[2].DocID != 2 {
		t.Errorf("tie between doc0 and doc2 not broken by ascending doc_id: %v", results)
	}
}

func TestTopK_ExcludesNonPositiveScores(t *testing.T) {
	idx := &Index{DocMapping: []int{10}}
	scores := map[int]float64{0: 0}
	if results := topK(scores, idx, 10); len(results) != 0 {
		t.Errorf("topK with a zero score returned %d results, want 0", len(results))
	}
}

func TestTopK_Limit(t *testing.T) {
	idx := &Index{DocMapping: []int{0, 1, 2, 3}}
	scores := map[int]float64{0: 4, 1: 3, 2: 2, 3: 1}
	results := topK(scores, idx, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DocID != 0 || results[1].DocID != 1 {
		t.Errorf("top-2 = %v, want doc0 then doc1", results)
	}
}

func TestUniqueTerms(t *testing.T) {
	set := uniqueTerms([]string{"a", "b", "a"})
	if len(set) != 2 || !set["a"] || !set["b"] {
		t.Errorf("uniqueTerms() = %v, want {a, b}", set)
	}
}

func TestPositionsByDoc(t *testing.T) {
	ps := []Posting{{DocID: 0, Positions: []int{1, 2}}, {DocID: 3, Positions: []int{9}}}
	m := positionsByDoc(ps)
	if len(m[0]) != 2 || m[0][1] != 2 {
		t.Errorf("positionsByDoc()[0] = %v", m[0])
	}
	if len(m[3]) != 1 || m[3][0] != 9 {
		t.Errorf("positionsByDoc()[3] = %v", m[3])
	}
}
