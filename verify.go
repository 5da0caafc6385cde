// ═══════════════════════════════════════════════════════════════════════════════
// INDEX VERIFIER
// ═══════════════════════════════════════════════════════════════════════════════
// A read-only pass that re-checks the quantified invariants a build is
// supposed to satisfy, without re-indexing. Useful after a hand-edited or
// suspect index, or as a smoke test after a build completes.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// VerifyReport is the outcome of Verify: either OK, or the first violation
// found, with enough context to locate it.
type VerifyReport struct {
	OK        bool
	Violation string
}

// Verify checks dir against the invariants in SPEC_FULL.md §8:
//   - posting-list doc_ids strictly ascending per term
//   - positional postings strictly ascending, non-empty
//   - doc_mapping and docs_len each hold total_docs entries (checked by
//     count; a repeated doc_id or pmid is not detected)
//   - docs_len's lengths, summed, divided by total_docs and floored, equal
//     docs_info's avgdl
//   - term_frequencies has exactly one entry per distinct term in index.txt,
//     and the stored value matches the sum of tf across that term's postings
func Verify(dir string) (VerifyReport, error) {
	stats, err := ReadStats(dir)
	if err != nil {
		return VerifyReport{}, err
	}
	mapping, err := ReadDocMapping(dir)
	if err != nil {
		return VerifyReport{}, err
	}
	if len(mapping) != stats.TotalDocs {
		return VerifyReport{Violation: fmt.Sprintf(
			"doc_mapping has %d entries, docs_info says total_docs=%d", len(mapping), stats.TotalDocs)}, nil
	}

	lengths, err := ReadDocLengths(dir)
	if err != nil {
		return VerifyReport{}, err
	}
	if len(lengths) != stats.TotalDocs {
		return VerifyReport{Violation: fmt.Sprintf(
			"docs_len has %d entries, docs_info says total_docs=%d", len(lengths), stats.TotalDocs)}, nil
	}
	totalLength := 0
	for _, l := range lengths {
		totalLength += l
	}
	if stats.TotalDocs > 0 && float64(totalLength/stats.TotalDocs) != stats.AvgDL {
		return VerifyReport{Violation: fmt.Sprintf(
			"docs_len sums to %d over %d docs, but docs_info says avgdl=%v",
			totalLength, stats.TotalDocs, stats.AvgDL)}, nil
	}

	termFreqs, err := ReadTermFrequencies(dir)
	if err != nil {
		return VerifyReport{}, err
	}

	f, err := os.Open(filepath.Join(dir, "index.txt"))
	if err != nil {
		return VerifyReport{}, fmt.Errorf("verify: %w", err)
	}
	defer f.Close()

	seenTerms := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		sepIdx := strings.IndexByte(line, ';')
		if sepIdx < 0 {
			return VerifyReport{Violation: fmt.Sprintf("malformed index line: %q", line)}, nil
		}
		term := line[:sepIdx]
		if seenTerms[term] {
			return VerifyReport{Violation: fmt.Sprintf("term %q appears more than once in index.txt", term)}, nil
		}
		seenTerms[term] = true

		lastDocID := -1
		sumTF := 0
		for _, raw := range strings.Split(line[sepIdx+1:], ";") {
			if raw == "" {
				continue
			}
			p, err := parsePosting(raw)
			if err != nil {
				return VerifyReport{Violation: err.Error()}, nil
			}
			if p.DocID <= lastDocID {
				return VerifyReport{Violation: fmt.Sprintf(
					"term %q: doc_id %d is not strictly ascending after %d", term, p.DocID, lastDocID)}, nil
			}
			lastDocID = p.DocID
			if p.Positions != nil {
				if len(p.Positions) == 0 {
					return VerifyReport{Violation: fmt.Sprintf("term %q, doc %d: empty positions", term, p.DocID)}, nil
				}
				last := -1
				for _, pos := range p.Positions {
					if pos <= last {
						return VerifyReport{Violation: fmt.Sprintf(
							"term %q, doc %d: positions not strictly ascending", term, p.DocID)}, nil
					}
					last = pos
				}
			}
			sumTF += p.TF
		}

		want, ok := termFreqs[term]
		if !ok {
			return VerifyReport{Violation: fmt.Sprintf("term %q missing from term_frequencies.txt", term)}, nil
		}
		if want != sumTF {
			return VerifyReport{Violation: fmt.Sprintf(
				"term %q: term_frequencies.txt says %d, postings sum to %d", term, want, sumTF)}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return VerifyReport{}, fmt.Errorf("verify: %w", err)
	}

	for term := range termFreqs {
		if !seenTerms[term] {
			return VerifyReport{Violation: fmt.Sprintf("term %q in term_frequencies.txt but not in index.txt", term)}, nil
		}
	}

	return VerifyReport{OK: true}, nil
}
