package spimi

import (
	"math"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BM25 AND SMART TF-IDF SCORING
// ═══════════════════════════════════════════════════════════════════════════════

const epsilon = 1e-9

func TestScoreBM25_TwoDocuments(t *testing.T) {
	// doc0: "cat cat dog" (len 3), doc1: "cat bird bird bird" (len 4).
	// avgdl = floor((3+4)/2) = 3, N = 2, df(cat) = 2.
	idx := &Index{
		Stats:      Stats{TotalDocs: 2, AvgDL: 3},
		DocLengths: []int{3, 4},
	}
	postings := map[string][]Posting{
		"cat": {{DocID: 0, TF: 2}, {DocID: 1, TF: 1}},
	}
	params := BM25Params{K1: 1.2, B: 0.75}

	scores := scoreBM25(postings, idx, params)

	idf := math.Log((2.0-2.0+0.5)/(2.0+0.5) + 1)
	norm0 := 2.0 + params.K1*(1-params.B+params.B*(3.0/3.0))
	want0 := idf * (2.0 * (params.K1 + 1)) / norm0
	norm1 := 1.0 + params.K1*(1-params.B+params.B*(4.0/3.0))
	want1 := idf * (1.0 * (params.K1 + 1)) / norm1

	if math.Abs(scores[0]-want0) > epsilon {
		t.Errorf("scores[0] = %.12f, want %.12f", scores[0], want0)
	}
	if math.Abs(scores[1]-want1) > epsilon {
		t.Errorf("scores[1] = %.12f, want %.12f", scores[1], want1)
	}
	if scores[0] <= scores[1] {
		t.Error("doc0 (tf=2, shorter) should outscore doc1 (tf=1, longer) for a single repeated term")
	}
}

func TestScoreBM25_DefaultsAppliedWhenZero(t *testing.T) {
	idx := &Index{Stats: Stats{TotalDocs: 1, AvgDL: 1}, DocLengths: []int{1}}
	postings := map[string][]Posting{"cat": {{DocID: 0, TF: 1}}}
	scores := scoreBM25(postings, idx, BM25Params{})
	if len(scores) != 1 || scores[0] <= 0 {
		t.Errorf("scoreBM25 with zero params did not fall back to defaults: %v", scores)
	}
}

func TestScoreBM25_ZeroAvgdlGuarded(t *testing.T) {
	idx := &Index{Stats: Stats{TotalDocs: 1, AvgDL: 0}, DocLengths: []int{0}}
	postings := map[string][]Posting{"cat": {{DocID: 0, TF: 1}}}
	scores := scoreBM25(postings, idx, DefaultBM25Params())
	if math.IsNaN(scores[0]) || math.IsInf(scores[0], 0) {
		t.Errorf("scoreBM25 with avgdl=0 produced %v, want a finite number", scores[0])
	}
}

func TestScoreLncLtc_FavorsRarerTerm(t *testing.T) {
	// "cat" occurs once in the corpus, "dog" occurs in every document —
	// lnc.ltc's query-side weight should favor the rarer term.
	idx := &Index{
		Stats:      Stats{TotalDocs: 3},
		DocLengths: []int{4, 4, 4},
	}
	postings := map[string][]Posting{
		"cat": {{DocID: 0, TF: 1}},
		"dog": {{DocID: 0, TF: 1}, {DocID: 1, TF: 1}, {DocID: 2, TF: 1}},
	}
	collFreq := map[string]int{"cat": 1, "dog": 3}

	catOnly := scoreLncLtc([]string{"cat"}, postings, collFreq, idx)
	dogOnly := scoreLncLtc([]string{"dog"}, postings, collFreq, idx)
	if catOnly[0] <= 0 {
		t.Fatalf("catOnly[0] = %v, want positive", catOnly[0])
	}
	if dogOnly[0] >= catOnly[0] {
		t.Fatalf("dogOnly[0] = %v, want below catOnly[0] = %v: the rarer term should weigh more", dogOnly[0], catOnly[0])
	}
}

func TestScoreLncLtc_UnknownTermYieldsNil(t *testing.T) {
	idx := &Index{Stats: Stats{TotalDocs: 1}, DocLengths: []int{1}}
	scores := scoreLncLtc([]string{"ghost"}, map[string][]Posting{}, map[string]int{}, idx)
	if scores != nil {
		t.Errorf("scoreLncLtc() = %v, want nil when no query term has a collection frequency", scores)
	}
}

func TestScoreBnnBnc_BinaryWeights(t *testing.T) {
	idx := &Index{
		Stats:      Stats{TotalDocs: 2},
		DocLengths: []int{4, 16},
	}
	postings := map[string][]Posting{
		"cat": {{DocID: 0, TF: 5}, {DocID: 1, TF: 1}},
	}
	scores := scoreBnnBnc([]string{"cat"}, postings, idx)

	queryNorm := math.Sqrt(1)
	want0 := 1 / (math.Sqrt(4) * queryNorm)
	want1 := 1 / (math.Sqrt(16) * queryNorm)
	if math.Abs(scores[0]-want0) > epsilon {
		t.Errorf("scores[0] = %v, want %v", scores[0], want0)
	}
	if math.Abs(scores[1]-want1) > epsilon {
		t.Errorf("scores[1] = %v, want %v", scores[1], want1)
	}
	// bnn.bnc is binary: tf=5 and tf=1 contribute identically once present.
	if scores[0] <= scores[1] {
		t.Error("want doc0 to outscore doc1 purely on shorter length, not term frequency")
	}
}

func TestScoreBnnBnc_DeduplicatesRepeatedQueryTerms(t *testing.T) {
	idx := &Index{Stats: Stats{TotalDocs: 1}, DocLengths: []int{4}}
	postings := map[string][]Posting{"cat": {{DocID: 0, TF: 1}}}
	once := scoreBnnBnc([]string{"cat"}, postings, idx)
	twice := scoreBnnBnc([]string{"cat", "cat"}, postings, idx)
	if math.Abs(once[0]-twice[0]) > epsilon {
		t.Errorf("repeating a query term changed the score: once=%v twice=%v", once[0], twice[0])
	}
}
