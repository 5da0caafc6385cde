package spimi

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// StopSet is a lowercase set of stopwords, length-filtered the same way the
// tokenizer filters ordinary tokens so a stopword can never survive the
// length filter only to silently fail the stopword filter.
type StopSet struct {
	words map[string]struct{}
}

// Contains reports whether word (expected already-lowercased) is a stopword.
func (s *StopSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Len reports the number of distinct stopwords loaded.
func (s *StopSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// LoadStopwords reads one stopword per line from path, lowercases it, and
// drops entries shorter than minLength. An empty path is not an error: it
// yields an empty set, matching the tokenizer's "no stopwords configured"
// case exactly.
func LoadStopwords(path string, minLength int) (*StopSet, error) {
	if path == "" {
		return &StopSet{words: map[string]struct{}{}}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" || len(w) < minLength {
			continue
		}
		words[w] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	return &StopSet{words: words}, nil
}
