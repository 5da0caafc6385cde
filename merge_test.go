package spimi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// K-WAY MERGE
// ═══════════════════════════════════════════════════════════════════════════════

func writeBlock(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestMerger_Merge_TermSpreadAcrossBlocks(t *testing.T) {
	dir := t.TempDir()
	// "cat" appears in both blocks, at disjoint doc_ids, as the build
	// guarantees; the merger must accumulate both occurrences into one
	// index.txt line and one term_frequencies.txt entry.
	writeBlock(t, dir, "block_0.txt", "cat;0,1\ndog;0,1\n")
	writeBlock(t, dir, "block_1.txt", "cat;2,2\n")

	m := NewMerger(nil, nil)
	count, err := m.Merge(dir)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if count != 2 {
		t.Errorf("term count = %d, want 2", count)
	}

	data, err := os.ReadFile(filepath.Join(dir, "index.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("index.txt has %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "cat;0,1;2,2" {
		t.Errorf("cat line = %q, want \"cat;0,1;2,2\"", lines[0])
	}
	if lines[1] != "dog;0,1" {
		t.Errorf("dog line = %q, want \"dog;0,1\"", lines[1])
	}

	tf, err := ReadTermFrequencies(dir)
	if err != nil {
		t.Fatalf("ReadTermFrequencies: %v", err)
	}
	if tf["cat"] != 3 {
		t.Errorf("term_frequencies[cat] = %d, want 3 (1+2)", tf["cat"])
	}
	if tf["dog"] != 1 {
		t.Errorf("term_frequencies[dog] = %d, want 1", tf["dog"])
	}

	if _, err := os.Stat(filepath.Join(dir, "block_0.txt")); !os.IsNotExist(err) {
		t.Error("block_0.txt was not deleted")
	}
}

func TestMerger_Merge_FullLexicographicOrder(t *testing.T) {
	// "car" and "cat" share a first character; a first-character-only
	// comparison (the bug this merger fixes) would misorder them whenever
	// they come from different blocks in the wrong arrival order.
	dir := t.TempDir()
	writeBlock(t, dir, "block_0.txt", "cat;0,1\n")
	writeBlock(t, dir, "block_1.txt", "car;1,1\n")

	m := NewMerger(nil, nil)
	if _, err := m.Merge(dir); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "index.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "car;1,1" || lines[1] != "cat;0,1" {
		t.Errorf("lines = %v, want [car;1,1 cat;0,1] (lexicographic order)", lines)
	}
}

func TestMerger_Merge_PositionalCollectionFrequency(t *testing.T) {
	dir := t.TempDir()
	writeBlock(t, dir, "block_0.txt", "cat;0:0,3,7\n")

	m := NewMerger(nil, nil)
	if _, err := m.Merge(dir); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	tf, err := ReadTermFrequencies(dir)
	if err != nil {
		t.Fatalf("ReadTermFrequencies: %v", err)
	}
	if tf["cat"] != 3 {
		t.Errorf("term_frequencies[cat] = %d, want 3 (len(positions))", tf["cat"])
	}
}

func TestMerger_Merge_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	m := NewMerger(nil, nil)
	count, err := m.Merge(dir)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if count != 0 {
		t.Errorf("term count = %d, want 0", count)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.txt")); err != nil {
		t.Errorf("index.txt was not created: %v", err)
	}
}

func TestMerger_Merge_SpillsAndConcatenates(t *testing.T) {
	dir := t.TempDir()
	writeBlock(t, dir, "block_0.txt", "ant;0,1\nbee;0,1\ncat;0,1\n")

	triggered := 0
	monitor := &Monitor{
		Threshold: 0.5,
		Source: func() float64 {
			triggered++
			// pressure high on every check after the first term, forcing a
			// spill after each completed term.
			if triggered > 1 {
				return 0.9
			}
			return 0.1
		},
	}
	m := NewMerger(monitor, nil)
	count, err := m.Merge(dir)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if count != 3 {
		t.Errorf("term count = %d, want 3", count)
	}

	data, err := os.ReadFile(filepath.Join(dir, "index.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %v", len(lines), lines)
	}
	if lines[0] != "ant;0,1" || lines[1] != "bee;0,1" || lines[2] != "cat;0,1" {
		t.Errorf("lines = %v", lines)
	}
}
