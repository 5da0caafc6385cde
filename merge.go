// ═══════════════════════════════════════════════════════════════════════════════
// EXTERNAL MERGER
// ═══════════════════════════════════════════════════════════════════════════════
// Once every block has been flushed, the blocks must be combined into one
// globally term-sorted index. Each block is already internally sorted by
// term, so this is a classic k-way merge: open every block file, repeatedly
// pick the lexicographically smallest current term across all of them, and
// emit it.
//
// The original implementation this is grounded on picked the "smallest"
// line by comparing only the first character of the term — a bug that
// silently misorders any two terms sharing a first letter ("cat" vs.
// "car"). This merger compares the full term prefix (everything before the
// first ';') instead, which is both correct and still a single string
// comparison per candidate, so it costs nothing extra.
//
// Because doc_ids are assigned globally and in strictly increasing order
// during the build, the same term can appear in more than one block but
// never with overlapping doc_ids — so merging two blocks' postings for a
// term is just concatenation, never a need to re-sort.
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

// blockCursor is one block file's current unconsumed line.
type blockCursor struct {
	f       *os.File
	scanner *bufio.Scanner
	line    string
	done    bool
}

func (c *blockCursor) advance() {
	if c.scanner.Scan() {
		c.line = c.scanner.Text()
		return
	}
	c.done = true
	c.f.Close()
}

func (c *blockCursor) term() string {
	if idx := strings.IndexByte(c.line, ';'); idx >= 0 {
		return c.line[:idx]
	}
	return c.line
}

// Merger performs the k-way block merge and produces index.txt and
// term_frequencies.txt in dir.
type Merger struct {
	Monitor *Monitor
	log     *slog.Logger
}

// NewMerger returns a Merger that spills to disk when monitor reports
// pressure. A nil monitor never spills mid-merge.
func NewMerger(monitor *Monitor, log *slog.Logger) *Merger {
	if log == nil {
		log = slog.Default()
	}
	return &Merger{Monitor: monitor, log: log}
}

// Merge merges every block_*.txt file in dir into index.txt and
// term_frequencies.txt, then deletes the block files. It returns the number
// of distinct terms written.
func (m *Merger) Merge(dir string) (termCount int, err error) {
	blockPaths, err := filepath.Glob(filepath.Join(dir, "block_*.txt"))
	if err != nil {
		return 0, fmt.Errorf("merge: %w", err)
	}
	// Merge blocks in the order they were written (block_2 before block_10),
	// so a term's postings concatenate in ascending doc_id order.
	blockNumber := func(path string) int {
		n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "block_"), ".txt"))
		return n
	}
	sort.Slice(blockPaths, func(i, j int) bool {
		return blockNumber(blockPaths[i]) < blockNumber(blockPaths[j])
	})

	cursors := make([]*blockCursor, 0, len(blockPaths))
	for _, p := range blockPaths {
		f, ferr := os.Open(p)
		if ferr != nil {
			for _, c := range cursors {
				c.f.Close()
			}
			return 0, fmt.Errorf("merge: open block %s: %w", p, ferr)
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		c := &blockCursor{f: f, scanner: sc}
		c.advance()
		cursors = append(cursors, c)
	}
	defer func() {
		for _, c := range cursors {
			if !c.done {
				c.f.Close()
			}
		}
	}()

	tfPath := filepath.Join(dir, "term_frequencies.txt")
	tfFile, err := os.Create(tfPath)
	if err != nil {
		return 0, fmt.Errorf("merge: %w", err)
	}
	defer tfFile.Close()
	tfWriter := bufio.NewWriter(tfFile)
	defer tfWriter.Flush()

	spillCounter := 0
	spillBuf := make(map[string]string)
	spillOrder := make([]string, 0, 1024)

	flushSpill := func() error {
		if len(spillBuf) == 0 {
			return nil
		}
		path := filepath.Join(dir, fmt.Sprintf("index%d.txt", spillCounter))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("merge: spill: %w", err)
		}
		w := bufio.NewWriter(f)
		for _, term := range spillOrder {
			if _, err := w.WriteString(term); err != nil {
				f.Close()
				return fmt.Errorf("merge: spill: %w", err)
			}
			if err := w.WriteByte(';'); err != nil {
				f.Close()
				return err
			}
			if _, err := w.WriteString(spillBuf[term]); err != nil {
				f.Close()
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				f.Close()
				return err
			}
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return fmt.Errorf("merge: spill: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("merge: spill: %w", err)
		}
		spillCounter++
		spillBuf = make(map[string]string)
		spillOrder = spillOrder[:0]
		return nil
	}

	active := len(cursors)
	var pendingTerm string
	var pendingSegments []string
	pendingFreq := 0
	havePending := false

	emitPending := func() error {
		if !havePending {
			return nil
		}
		segment := strings.Join(pendingSegments, ";")
		spillBuf[pendingTerm] = segment
		spillOrder = append(spillOrder, pendingTerm)
		termCount++
		if _, err := fmt.Fprintf(tfWriter, "%s:%d\n", pendingTerm, pendingFreq); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
		pendingSegments = nil
		pendingFreq = 0
		havePending = false
		return nil
	}

	for active > 0 {
		minIdx := -1
		var minTerm string
		for i, c := range cursors {
			if c.done {
				continue
			}
			t := c.term()
			if minIdx == -1 || t < minTerm {
				minIdx = i
				minTerm = t
			}
		}
		if minIdx == -1 {
			break
		}

		c := cursors[minIdx]
		line := c.line
		segment := ""
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			segment = line[idx+1:]
		}

		if havePending && minTerm != pendingTerm {
			if err := emitPending(); err != nil {
				return 0, err
			}
		}
		if !havePending {
			pendingTerm = minTerm
			havePending = true
		}
		pendingSegments = append(pendingSegments, segment)
		pendingFreq += collectionFrequency(segment)

		c.advance()
		if c.done {
			active--
		}

		// A term is only "done" once every cursor has moved past it, so we
		// can only spill once the current pending term is no longer the
		// minimum across remaining cursors.
		stillMinimum := false
		for _, rc := range cursors {
			if !rc.done && rc.term() == pendingTerm {
				stillMinimum = true
				break
			}
		}
		if !stillMinimum {
			if err := emitPending(); err != nil {
				return 0, err
			}
			if m.Monitor.Trigger() {
				m.log.Info("memory pressure exceeded threshold during merge, spilling", "spill", spillCounter)
				if err := flushSpill(); err != nil {
					return 0, err
				}
			}
		}
	}
	if err := emitPending(); err != nil {
		return 0, err
	}

	if err := flushSpill(); err != nil {
		return 0, err
	}
	if err := tfWriter.Flush(); err != nil {
		return 0, fmt.Errorf("merge: %w", err)
	}

	for _, p := range blockPaths {
		if err := os.Remove(p); err != nil {
			m.log.Warn("failed to remove block file", "path", p, "error", err)
		}
	}

	if err := concatenateSpills(dir); err != nil {
		return 0, err
	}

	return termCount, nil
}

// collectionFrequency sums tf across a raw postings segment (everything
// after the term's ';'), handling both posting forms.
func collectionFrequency(segment string) int {
	freq := 0
	for _, posting := range strings.Split(segment, ";") {
		if posting == "" {
			continue
		}
		if idx := strings.IndexByte(posting, ':'); idx >= 0 {
			positions := posting[idx+1:]
			freq += strings.Count(positions, ",") + 1
		} else if idx := strings.IndexByte(posting, ','); idx >= 0 {
			tf, err := strconv.Atoi(posting[idx+1:])
			if err == nil {
				freq += tf
			}
		}
	}
	return freq
}

// concatenateSpills combines every index<k>.txt file in dir into a single
// index.txt, in spill order, and removes the spill files. A single spill is
// simply renamed.
func concatenateSpills(dir string) error {
	spills, err := filepath.Glob(filepath.Join(dir, "index[0-9]*.txt"))
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	sort.Slice(spills, func(i, j int) bool {
		return spillIndex(spills[i]) < spillIndex(spills[j])
	})

	indexPath := filepath.Join(dir, "index.txt")
	switch len(spills) {
	case 0:
		f, err := os.Create(indexPath)
		if err != nil {
			return fmt.Errorf("merge: %w", err)
		}
		return f.Close()
	case 1:
		return os.Rename(spills[0], indexPath)
	default:
		out, err := os.Create(indexPath)
		if err != nil {
			return fmt.Errorf("merge: %w", err)
		}
		defer out.Close()
		w := bufio.NewWriter(out)
		for _, p := range spills {
			if err := appendFile(w, p); err != nil {
				return fmt.Errorf("merge: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
		for _, p := range spills {
			os.Remove(p)
		}
		return nil
	}
}

func appendFile(w *bufio.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = w.ReadFrom(in)
	return err
}

func spillIndex(path string) int {
	base := filepath.Base(path)
	base = strings.TrimPrefix(base, "index")
	base = strings.TrimSuffix(base, ".txt")
	n, _ := strconv.Atoi(base)
	return n
}
