// ═══════════════════════════════════════════════════════════════════════════════
// CORPUS SOURCE
// ═══════════════════════════════════════════════════════════════════════════════
// The corpus is a file of line-delimited JSON records, one document per line:
//
//	{"pmid": 1, "title": "...", "abstract": "..."}
//
// A malformed line is logged and skipped rather than aborting the whole
// build — a single bad record in a million-line corpus shouldn't cost the
// rest of the index.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Document is one corpus record, ready for tokenization.
type Document struct {
	PMID int
	Text string
}

type corpusRecord struct {
	PMID     int    `json:"pmid"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// CorpusReader pulls Documents off a line-delimited JSON file, one per call
// to Next.
type CorpusReader struct {
	file    *os.File
	scanner *bufio.Scanner
	log     *slog.Logger
	lineNo  int
}

// OpenCorpus opens path for reading. The caller must Close the reader when
// done, or let Next exhaust it (which closes the underlying file for you).
func OpenCorpus(path string, log *slog.Logger) (*CorpusReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &CorpusReader{file: f, scanner: scanner, log: log}, nil
}

// Next returns the next document in the corpus. ok is false once the file is
// exhausted, at which point the underlying file has already been closed.
// Malformed lines are skipped internally; Next never returns a parse error.
func (r *CorpusReader) Next() (doc Document, ok bool) {
	for r.scanner.Scan() {
		r.lineNo++
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec corpusRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			r.log.Warn("skipping malformed corpus line", "line", r.lineNo, "error", err)
			continue
		}
		return Document{PMID: rec.PMID, Text: rec.Title + " " + rec.Abstract}, true
	}
	if err := r.scanner.Err(); err != nil && err != io.EOF {
		r.log.Error("corpus scan error", "error", err)
	}
	r.Close()
	return Document{}, false
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *CorpusReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
