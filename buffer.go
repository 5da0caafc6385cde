// ═══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY POSTING BUFFER
// ═══════════════════════════════════════════════════════════════════════════════
// During a single SPIMI block, every term seen accumulates its postings here:
// term → doc_id → positions (positional mode) or term → doc_id → tf
// (frequency mode). Exactly one mode is fixed for the lifetime of a Buffer —
// SPEC_FULL.md §3 invariant 3 forbids mixing the two forms within one index.
//
// A document's occurrences of a term are merged into a single call to Add
// before this buffer ever sees them (see the builder's per-document loop),
// so Add always receives the complete position list for one (term, doc)
// pair in one shot.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// postingEntry is one document's contribution to a term's posting list
// while it lives in memory, ahead of having been sorted into a block.
type postingEntry struct {
	docID     int
	positions []int // nil in frequency mode
	tf        int   // only meaningful in frequency mode
}

// Buffer accumulates postings for the block currently being built.
type Buffer struct {
	positional bool
	postings   map[string][]postingEntry
	blockNo    int
}

// NewBuffer returns an empty Buffer. positional selects which posting form
// every subsequent Add call will store.
func NewBuffer(positional bool) *Buffer {
	return &Buffer{positional: positional, postings: make(map[string][]postingEntry)}
}

// Add records that term occurred in docID at the given positions (already
// sorted ascending by the caller). Postings for a term are appended in
// docID order: the builder calls Add with strictly increasing docIDs within
// a block, so the resulting slice is already sorted and needs no re-sort at
// flush time.
func (b *Buffer) Add(term string, docID int, positions []int) {
	e := postingEntry{docID: docID}
	if b.positional {
		e.positions = positions
	} else {
		e.tf = len(positions)
	}
	b.postings[term] = append(b.postings[term], e)
}

// Len reports the number of distinct terms currently buffered.
func (b *Buffer) Len() int { return len(b.postings) }

// Reset clears the buffer without writing anything to disk.
func (b *Buffer) Reset() {
	b.postings = make(map[string][]postingEntry)
}

// Flush writes the buffer's current contents, sorted by term, to a new
// block_<n>.txt file under dir, then resets the buffer. It returns the path
// written. An empty buffer still produces an (empty) block file, keeping
// the merger's accounting simple.
func (b *Buffer) Flush(dir string) (string, error) {
	terms := make([]string, 0, len(b.postings))
	for t := range b.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	path := fmt.Sprintf("%s/block_%d.txt", dir, b.blockNo)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("flush block: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, term := range terms {
		sb.Reset()
		sb.WriteString(term)
		for _, e := range b.postings[term] {
			sb.WriteByte(';')
			if b.positional {
				sb.WriteString(strconv.Itoa(e.docID))
				sb.WriteByte(':')
				for i, p := range e.positions {
					if i > 0 {
						sb.WriteByte(',')
					}
					sb.WriteString(strconv.Itoa(p))
				}
			} else {
				sb.WriteString(strconv.Itoa(e.docID))
				sb.WriteByte(',')
				sb.WriteString(strconv.Itoa(e.tf))
			}
		}
		sb.WriteByte('\n')
		if _, err := f.WriteString(sb.String()); err != nil {
			return "", fmt.Errorf("flush block: %w", err)
		}
	}

	b.blockNo++
	b.Reset()
	return path, nil
}

// BlockCount reports how many blocks have been flushed so far.
func (b *Buffer) BlockCount() int { return b.blockNo }
