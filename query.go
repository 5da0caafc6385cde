// ═══════════════════════════════════════════════════════════════════════════════
// QUERY EVALUATION
// ═══════════════════════════════════════════════════════════════════════════════
// An Index is the read-only view of one build's artifacts: docs_info.txt,
// docs_len.txt, and doc_mapping.txt loaded eagerly (they are small), plus a
// handle onto index.txt which is only ever streamed, never loaded whole.
//
// Every query — standard, phrase, or proximity — makes exactly one pass over
// index.txt via collectPostings, gathering both the postings and the
// collection frequency for every query term together. The original source
// this design is grounded on instead rescans the index file once per
// candidate document for phrase queries; collecting everything up front
// avoids that quadratic behavior without changing any result.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Posting is one document's entry in a term's postings list: always a
// doc_id and a term frequency; Positions is non-nil only for a positional
// index.
type Posting struct {
	DocID     int
	TF        int
	Positions []int
}

// parsePosting parses one ";"-delimited segment of an index.txt line:
// "<doc_id>,<tf>" for a frequency-only index, or "<doc_id>:<pos>,<pos>,..."
// for a positional one.
func parsePosting(raw string) (Posting, error) {
	if colon := strings.IndexByte(raw, ':'); colon >= 0 {
		docID, err := strconv.Atoi(raw[:colon])
		if err != nil {
			return Posting{}, fmt.Errorf("malformed posting %q: %w", raw, err)
		}
		fields := strings.Split(raw[colon+1:], ",")
		positions := make([]int, len(fields))
		for i, f := range fields {
			pos, err := strconv.Atoi(f)
			if err != nil {
				return Posting{}, fmt.Errorf("malformed posting %q: %w", raw, err)
			}
			positions[i] = pos
		}
		return Posting{DocID: docID, TF: len(positions), Positions: positions}, nil
	}

	comma := strings.IndexByte(raw, ',')
	if comma < 0 {
		return Posting{}, fmt.Errorf("malformed posting %q", raw)
	}
	docID, err := strconv.Atoi(raw[:comma])
	if err != nil {
		return Posting{}, fmt.Errorf("malformed posting %q: %w", raw, err)
	}
	tf, err := strconv.Atoi(raw[comma+1:])
	if err != nil {
		return Posting{}, fmt.Errorf("malformed posting %q: %w", raw, err)
	}
	return Posting{DocID: docID, TF: tf}, nil
}

// Index is an opened, query-ready view of one build's output directory.
type Index struct {
	Dir        string
	Stats      Stats
	DocLengths []int // by doc_id
	DocMapping []int // by doc_id, external pmid

	log *slog.Logger
}

// OpenIndex loads docs_info.txt, docs_len.txt, and doc_mapping.txt. index.txt
// is left on disk and streamed per query; term_frequencies.txt is not read,
// since collectPostings sums each query term's collection frequency from its
// postings.
func OpenIndex(dir string, log *slog.Logger) (*Index, error) {
	if log == nil {
		log = slog.Default()
	}
	stats, err := ReadStats(dir)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	lengths, err := ReadDocLengths(dir)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	mapping, err := ReadDocMapping(dir)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{Dir: dir, Stats: stats, DocLengths: lengths, DocMapping: mapping, log: log}, nil
}

// PMID returns the external document id for an internal doc_id.
func (idx *Index) PMID(docID int) int {
	if docID < 0 || docID >= len(idx.DocMapping) {
		return 0
	}
	return idx.DocMapping[docID]
}

// DocLength returns the token count of an internal doc_id.
func (idx *Index) DocLength(docID int) int {
	if docID < 0 || docID >= len(idx.DocLengths) {
		return 0
	}
	return idx.DocLengths[docID]
}

// collectPostings streams index.txt once, returning the postings list and
// collection frequency (sum of tf, equal to term_frequencies.txt's value)
// for every term in terms that occurs in the index.
func collectPostings(idx *Index, terms []string) (map[string][]Posting, map[string]int, error) {
	want := uniqueTerms(terms)
	postings := make(map[string][]Posting, len(want))
	collFreq := make(map[string]int, len(want))
	if len(want) == 0 {
		return postings, collFreq, nil
	}

	f, err := os.Open(filepath.Join(idx.Dir, "index.txt"))
	if err != nil {
		return nil, nil, fmt.Errorf("collect postings: %w", err)
	}
	defer f.Close()

	remaining := len(want)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for remaining > 0 && scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, ';')
		if sep < 0 {
			continue
		}
		term := line[:sep]
		if !want[term] {
			continue
		}

		segments := strings.Split(line[sep+1:], ";")
		ps := make([]Posting, 0, len(segments))
		sum := 0
		for _, seg := range segments {
			if seg == "" {
				continue
			}
			p, err := parsePosting(seg)
			if err != nil {
				return nil, nil, fmt.Errorf("collect postings: %w", err)
			}
			ps = append(ps, p)
			sum += p.TF
		}
		postings[term] = ps
		collFreq[term] = sum
		remaining--
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("collect postings: %w", err)
	}
	return postings, collFreq, nil
}

// uniqueTerms collapses a term list (which may hold query-text duplicates,
// e.g. "a b a") into the set of distinct terms.
func uniqueTerms(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	return set
}

// positionsByDoc indexes a term's postings by doc_id for O(1) position
// lookup while checking phrase/proximity candidates.
func positionsByDoc(ps []Posting) map[int][]int {
	m := make(map[int][]int, len(ps))
	for _, p := range ps {
		m[p.DocID] = p.Positions
	}
	return m
}

// RankingMethod selects between BM25 and the SMART TF-IDF family.
type RankingMethod string

const (
	RankBM25  RankingMethod = "bm25"
	RankTFIDF RankingMethod = "tfidf"
)

// SMARTNotation selects which SMART scoring scheme to use when Method is
// RankTFIDF.
type SMARTNotation string

const (
	SMARTLncLtc SMARTNotation = "lnc.ltc"
	SMARTBnnBnc SMARTNotation = "bnn.bnc"
)

// SearchType selects the query predicate applied before ranking.
type SearchType string

const (
	SearchStandard  SearchType = "standard"
	SearchPhrase    SearchType = "phrase"
	SearchProximity SearchType = "proximity"
)

// QueryOptions configures one Search call.
type QueryOptions struct {
	Method      RankingMethod
	SMART       SMARTNotation
	BM25        BM25Params
	SearchType  SearchType
	MaxDistance int
	TopK        int
}

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	DocID int
	PMID  int
	Score float64
}

// Search tokenizes query with tok, applies opts.SearchType as a filter, and
// ranks the surviving documents with opts.Method.
func (idx *Index) Search(query string, tok *Tokenizer, opts QueryOptions) ([]ScoredDoc, error) {
	terms := tok.Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	distinct := make([]string, 0, len(uniqueTerms(terms)))
	for t := range uniqueTerms(terms) {
		distinct = append(distinct, t)
	}

	postings, collFreq, err := collectPostings(idx, distinct)
	if err != nil {
		return nil, err
	}

	// Ranking always runs over the unfiltered postings so that df/idf reflect
	// true corpus statistics; the phrase/proximity predicate, if any, is
	// applied to the resulting score map afterward (rank then filter), never
	// to the postings scoreBM25/scoreLncLtc/scoreBnnBnc read df from.
	var allowed map[int]bool
	if opts.SearchType == SearchPhrase || opts.SearchType == SearchProximity {
		allowed = filterByPosition(terms, distinct, postings, opts)
	}

	k := opts.TopK
	if k <= 0 {
		k = 10
	}

	var scores map[int]float64
	switch opts.Method {
	case RankTFIDF:
		switch opts.SMART {
		case SMARTBnnBnc:
			scores = scoreBnnBnc(terms, postings, idx)
		case SMARTLncLtc, "":
			scores = scoreLncLtc(terms, postings, collFreq, idx)
		default:
			idx.log.Warn("unknown SMART notation, returning no results", "smart", string(opts.SMART))
			return nil, nil
		}
	default:
		scores = scoreBM25(postings, idx, opts.BM25)
	}

	if allowed != nil {
		for docID := range scores {
			if !allowed[docID] {
				delete(scores, docID)
			}
		}
	}

	return topK(scores, idx, k), nil
}

// filterByPosition returns the set of doc_ids whose per-term positions
// satisfy the phrase or proximity predicate, via a roaring-bitmap
// intersection of per-term candidate doc_ids followed by a position check
// on each surviving document. It never touches postings' document frequency:
// callers apply the returned set as a post-scoring filter, not a pre-scoring
// one, so df/idf stay computed against the true, unrestricted posting lists.
func filterByPosition(terms, distinct []string, postings map[string][]Posting, opts QueryOptions) map[int]bool {
	cs := newCandidateSet()
	byTerm := make(map[string]map[int][]int, len(distinct))
	for _, t := range distinct {
		ps := postings[t]
		for _, p := range ps {
			cs.add(t, p.DocID)
		}
		byTerm[t] = positionsByDoc(ps)
	}

	// Phrase matching needs one slot per query token, repeats included;
	// proximity compares distinct terms, so each term gets a single slot.
	slots := terms
	if opts.SearchType == SearchProximity {
		slots = distinct
	}

	candidates := cs.intersection(distinct)
	matched := make(map[int]bool)
	it := candidates.Iterator()
	for it.HasNext() {
		docID := int(it.Next())
		positions := make([][]int, len(slots))
		for i, t := range slots {
			positions[i] = byTerm[t][docID]
		}
		var ok bool
		if opts.SearchType == SearchPhrase {
			ok = phraseMatch(positions)
		} else {
			ok = proximityMatch(positions, opts.MaxDistance)
		}
		if ok {
			matched[docID] = true
		}
	}

	return matched
}

// topK sorts scores descending (ties broken by ascending doc_id for
// reproducible output) and returns at most k results.
func topK(scores map[int]float64, idx *Index, k int) []ScoredDoc {
	docs := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		docs = append(docs, ScoredDoc{DocID: docID, PMID: idx.PMID(docID), Score: score})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].DocID < docs[j].DocID
	})
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs
}
