// ═══════════════════════════════════════════════════════════════════════════════
// SPIMI BUILDER
// ═══════════════════════════════════════════════════════════════════════════════
// Ties the pieces above into the actual indexing run: stream the corpus,
// tokenize each document, accumulate postings, flush a block whenever
// memory pressure crosses the threshold, and merge everything at the end.
//
// The output directory is owned exclusively by one builder at a time and is
// wiped at the start of every run — a half-finished build is never resumed,
// only replaced (SPEC_FULL.md §5).
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// BuildOptions configures one indexing run.
type BuildOptions struct {
	CorpusPath string
	OutputDir  string
	Positional bool
	Monitor    *Monitor // nil disables mid-build flushing
	Tokenizer  *Tokenizer
	Log        *slog.Logger
}

// Builder runs the SPIMI pipeline described in SPEC_FULL.md §4.
type Builder struct {
	opts BuildOptions
	log  *slog.Logger
}

// NewBuilder validates opts and returns a ready Builder.
func NewBuilder(opts BuildOptions) (*Builder, error) {
	if opts.Tokenizer == nil {
		return nil, fmt.Errorf("build: tokenizer is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("build: output directory is required")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Builder{opts: opts, log: log}, nil
}

// Result summarizes a completed build.
type Result struct {
	TotalDocs  int
	TotalTerms int
	Stats      Stats
	Report     BuildReport
}

// Build runs the full index → merge pipeline. It is not safe to call
// concurrently with another Build targeting the same directory.
func (b *Builder) Build(ctx context.Context) (Result, error) {
	start := time.Now()

	if err := resetDir(b.opts.OutputDir); err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}

	reader, err := OpenCorpus(b.opts.CorpusPath, b.log)
	if err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}
	defer reader.Close()

	lenFile, err := os.Create(filepath.Join(b.opts.OutputDir, "docs_len.txt"))
	if err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}
	defer lenFile.Close()
	lenWriter := bufio.NewWriter(lenFile)

	buf := NewBuffer(b.opts.Positional)
	seen := make(map[int]bool)
	var mapping []int
	totalLength := 0

	indexStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("build: %w", ctx.Err())
		default:
		}

		doc, ok := reader.Next()
		if !ok {
			break
		}
		if seen[doc.PMID] {
			continue
		}
		seen[doc.PMID] = true
		docID := len(mapping)
		mapping = append(mapping, doc.PMID)

		terms := b.opts.Tokenizer.Tokenize(doc.Text)
		totalLength += len(terms)
		if err := WriteDocLength(lenWriter, docID, len(terms)); err != nil {
			return Result{}, fmt.Errorf("build: %w", err)
		}

		positions := make(map[string][]int)
		for i, term := range terms {
			positions[term] = append(positions[term], i)
		}
		for term, pos := range positions {
			buf.Add(term, docID, pos)
		}

		if b.opts.Monitor.Trigger() {
			b.log.Info("memory pressure exceeded threshold, flushing block",
				"block", buf.BlockCount(), "terms", buf.Len())
			if _, err := buf.Flush(b.opts.OutputDir); err != nil {
				return Result{}, fmt.Errorf("build: %w", err)
			}
		}
	}

	if buf.Len() > 0 || buf.BlockCount() == 0 {
		if _, err := buf.Flush(b.opts.OutputDir); err != nil {
			return Result{}, fmt.Errorf("build: %w", err)
		}
	}
	if err := lenWriter.Flush(); err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}
	indexElapsed := time.Since(indexStart)

	if err := WriteStats(b.opts.OutputDir, len(mapping), totalLength); err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}
	if err := WriteDocMapping(b.opts.OutputDir, mapping); err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}

	mergeStart := time.Now()
	merger := NewMerger(b.opts.Monitor, b.log)
	termCount, err := merger.Merge(b.opts.OutputDir)
	if err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}
	mergeElapsed := time.Since(mergeStart)

	report := BuildReport{
		IndexTime:  indexElapsed,
		BlockCount: buf.BlockCount(),
		MergeTime:  mergeElapsed,
		TotalTime:  time.Since(start),
	}
	if err := WriteBuildReport(b.opts.OutputDir, report); err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}

	stats, err := ReadStats(b.opts.OutputDir)
	if err != nil {
		return Result{}, fmt.Errorf("build: %w", err)
	}

	b.log.Info("build complete", "docs", len(mapping), "terms", termCount, "elapsed", report.TotalTime)

	return Result{
		TotalDocs:  len(mapping),
		TotalTerms: termCount,
		Stats:      stats,
		Report:     report,
	}, nil
}

// resetDir empties dir of any prior build artifacts, creating it if absent.
func resetDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o755)
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
