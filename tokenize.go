// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZATION PIPELINE
// ═══════════════════════════════════════════════════════════════════════════════
// Every document, and every query, goes through the same five-stage pipeline
// before it is indexed or matched:
//
//  1. Extraction  → pull candidate words out with a regular expression
//  2. Lowercasing → normalize case (optional)
//  3. Length filter → drop tokens shorter than a configured minimum
//  4. Stopword filter → drop tokens in the configured stopword set
//  5. Stemming    → reduce to a root form (optional)
//
// The pipeline is pure: the same text always produces the same tokens, and
// nothing here depends on build-time or query-time state. That purity is what
// lets the query evaluator reuse this exact code path instead of a cheaper
// approximation — a query for "Runs" has to land on the same token a
// document containing "running" produced, or nothing will ever match.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"regexp"
	"strings"
)

// DefaultTokenPattern is the extraction regular expression used when
// TokenizeOptions leaves Pattern empty.
const DefaultTokenPattern = `[a-zA-Z]{1,}`

// TokenizeOptions controls every stage of the tokenizer pipeline.
type TokenizeOptions struct {
	Pattern   string   // regular expression for token extraction; defaults to DefaultTokenPattern
	Lowercase bool     // lowercase each token before filtering
	MinLength int       // drop tokens shorter than this; 0 disables the filter
	Stopwords *StopSet // nil disables stopword filtering
	Stemmer   Stemmer  // nil disables stemming
}

// Tokenizer applies TokenizeOptions' pipeline to text. It is safe for
// concurrent use: the compiled regexp and the stopword set are both
// read-only after construction.
type Tokenizer struct {
	pattern *regexp.Regexp
	cfg     TokenizeOptions
}

// NewTokenizer compiles cfg's pattern (or the default) once and returns a
// reusable Tokenizer. An invalid regular expression is reported immediately
// rather than surfacing later as a confusing per-document failure.
func NewTokenizer(cfg TokenizeOptions) (*Tokenizer, error) {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &ConfigError{Field: "tokenizer.regular_exp", Err: err}
	}
	if cfg.Stemmer == nil {
		cfg.Stemmer = NoopStemmer{}
	}
	return &Tokenizer{pattern: re, cfg: cfg}, nil
}

// Tokenize runs the full pipeline over text and returns the resulting token
// sequence, in order of appearance. An empty or all-filtered input yields a
// non-nil empty slice, never a nil one, so callers can range over it safely.
func (t *Tokenizer) Tokenize(text string) []string {
	raw := t.pattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if t.cfg.Lowercase {
			tok = strings.ToLower(tok)
		}
		if t.cfg.MinLength > 0 && len(tok) < t.cfg.MinLength {
			continue
		}
		if t.cfg.Stopwords != nil && t.cfg.Stopwords.Contains(tok) {
			continue
		}
		tokens = append(tokens, t.cfg.Stemmer.Stem(tok))
	}
	return tokens
}

// ConfigError reports an invalid configuration value, identified by the
// dotted field name it was read from (matching the names in SPEC_FULL.md §6).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "invalid configuration for " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }
