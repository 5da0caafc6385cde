// ═══════════════════════════════════════════════════════════════════════════════
// INDEX ARTIFACTS
// ═══════════════════════════════════════════════════════════════════════════════
// Everything a build produces besides index.txt and term_frequencies.txt
// (which the merger owns): per-document lengths, corpus-wide statistics, the
// external-to-internal id mapping, and a human-readable stats report. These
// are small enough to load eagerly at query time.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Stats holds the two numbers in docs_info.txt.
type Stats struct {
	TotalDocs int
	AvgDL     float64
}

// WriteDocLength appends one docs_len.txt line. Called once per document as
// the corpus streams by, so the file grows incrementally rather than being
// held in memory for the whole build.
func WriteDocLength(w *bufio.Writer, docID, length int) error {
	_, err := fmt.Fprintf(w, "%d:%d\n", docID, length)
	return err
}

// WriteStats writes docs_info.txt: total_docs and the floored average
// document length. The floor is intentional (SPEC_FULL.md §3) even though
// readers treat the value as a float64 thereafter.
func WriteStats(dir string, totalDocs int, totalLength int) error {
	avgdl := 0
	if totalDocs > 0 {
		avgdl = totalLength / totalDocs
	}
	f, err := os.Create(filepath.Join(dir, "docs_info.txt"))
	if err != nil {
		return fmt.Errorf("write docs_info: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "total_docs:%d\navgdl:%d\n", totalDocs, avgdl)
	if err != nil {
		return fmt.Errorf("write docs_info: %w", err)
	}
	return nil
}

// ReadStats loads docs_info.txt.
func ReadStats(dir string) (Stats, error) {
	lines, err := readLines(filepath.Join(dir, "docs_info.txt"))
	if err != nil {
		return Stats{}, fmt.Errorf("read docs_info: %w", err)
	}
	if len(lines) < 2 {
		return Stats{}, fmt.Errorf("read docs_info: expected 2 lines, got %d", len(lines))
	}
	total, err := parseKV(lines[0], "total_docs")
	if err != nil {
		return Stats{}, fmt.Errorf("read docs_info: %w", err)
	}
	avg, err := parseKV(lines[1], "avgdl")
	if err != nil {
		return Stats{}, fmt.Errorf("read docs_info: %w", err)
	}
	return Stats{TotalDocs: total, AvgDL: float64(avg)}, nil
}

func parseKV(line, wantKey string) (int, error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 || parts[0] != wantKey {
		return 0, fmt.Errorf("malformed line %q, want key %q", line, wantKey)
	}
	return strconv.Atoi(parts[1])
}

// ReadDocLengths loads docs_len.txt into a doc_id-indexed slice.
func ReadDocLengths(dir string) ([]int, error) {
	lines, err := readLines(filepath.Join(dir, "docs_len.txt"))
	if err != nil {
		return nil, fmt.Errorf("read docs_len: %w", err)
	}
	lengths := make([]int, len(lines))
	for _, line := range lines {
		docID, length, err := splitIntPair(line, ':')
		if err != nil {
			return nil, fmt.Errorf("read docs_len: %w", err)
		}
		if docID >= len(lengths) {
			grown := make([]int, docID+1)
			copy(grown, lengths)
			lengths = grown
		}
		lengths[docID] = length
	}
	return lengths, nil
}

// WriteDocMapping writes doc_mapping.txt: pmid:doc_id per line, in the
// insertion order mapping was built in (ascending doc_id).
func WriteDocMapping(dir string, mapping []int) error {
	f, err := os.Create(filepath.Join(dir, "doc_mapping.txt"))
	if err != nil {
		return fmt.Errorf("write doc_mapping: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for docID, pmid := range mapping {
		if _, err := fmt.Fprintf(w, "%d:%d\n", pmid, docID); err != nil {
			return fmt.Errorf("write doc_mapping: %w", err)
		}
	}
	return w.Flush()
}

// ReadDocMapping loads doc_mapping.txt into a doc_id → pmid slice.
func ReadDocMapping(dir string) ([]int, error) {
	lines, err := readLines(filepath.Join(dir, "doc_mapping.txt"))
	if err != nil {
		return nil, fmt.Errorf("read doc_mapping: %w", err)
	}
	mapping := make([]int, len(lines))
	for _, line := range lines {
		pmid, docID, err := splitIntPair(line, ':')
		if err != nil {
			return nil, fmt.Errorf("read doc_mapping: %w", err)
		}
		if docID >= len(mapping) {
			grown := make([]int, docID+1)
			copy(grown, mapping)
			mapping = grown
		}
		mapping[docID] = pmid
	}
	return mapping, nil
}

// ReadTermFrequencies loads term_frequencies.txt into a term → collection
// frequency map.
func ReadTermFrequencies(dir string) (map[string]int, error) {
	lines, err := readLines(filepath.Join(dir, "term_frequencies.txt"))
	if err != nil {
		return nil, fmt.Errorf("read term_frequencies: %w", err)
	}
	freqs := make(map[string]int, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("read term_frequencies: malformed line %q", line)
		}
		freq, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("read term_frequencies: %w", err)
		}
		freqs[parts[0]] = freq
	}
	return freqs, nil
}

// BuildReport summarizes one build, written to index_stats.txt.
type BuildReport struct {
	IndexSizeMB  float64
	IndexTime    time.Duration
	BlockCount   int
	MergeTime    time.Duration
	TotalTime    time.Duration
}

// WriteBuildReport writes the free-form, human-readable index_stats.txt.
func WriteBuildReport(dir string, r BuildReport) error {
	indexPath := filepath.Join(dir, "index.txt")
	size := float64(0)
	if info, err := os.Stat(indexPath); err == nil {
		size = math.Round(float64(info.Size())/1024/1024*100) / 100
	}
	f, err := os.Create(filepath.Join(dir, "index_stats.txt"))
	if err != nil {
		return fmt.Errorf("write index_stats: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f,
		"INDEX STATISTICS\n\n"+
			"Total index size on disk : %.2f MB\n"+
			"Total Indexing time : %s\n"+
			"Number of blocks written to disk (before merging) : %d\n"+
			"Merging time (last SPIMI step) : %s\n"+
			"Total time : %s\n",
		size, r.IndexTime, r.BlockCount, r.MergeTime, r.TotalTime)
	if err != nil {
		return fmt.Errorf("write index_stats: %w", err)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func splitIntPair(line string, sep byte) (a, b int, err error) {
	idx := strings.IndexByte(line, sep)
	if idx < 0 {
		return 0, 0, fmt.Errorf("malformed line %q", line)
	}
	a, err = strconv.Atoi(line[:idx])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed line %q: %w", line, err)
	}
	b, err = strconv.Atoi(line[idx+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed line %q: %w", line, err)
	}
	return a, b, nil
}
