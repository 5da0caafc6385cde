// ═══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════
// Settings are resolved in three layers, each overriding the last: compiled
// defaults, an optional YAML file, then CLI flags. Every field here mirrors
// one of the dotted names in SPEC_FULL.md §6, so a config file and the CLI
// flags that override it always agree on vocabulary.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TokenizerConfig mirrors the tokenizer.* configuration fields.
type TokenizerConfig struct {
	RegularExp    string `yaml:"regular_exp"`
	Lowercase     bool   `yaml:"lowercase"`
	MinLength     int    `yaml:"min_length"`
	StopwordsPath string `yaml:"stopwords_path"`
	Stemmer       string `yaml:"stemmer"` // "" or "snowball"
}

// IndexerConfig mirrors the indexer.* configuration fields.
type IndexerConfig struct {
	MemoryThreshold     float64 `yaml:"memory_threshold"`
	StoreTermPosition   bool    `yaml:"store_term_position"`
}

// RankingConfig mirrors the ranking.* configuration fields.
type RankingConfig struct {
	Method        string  `yaml:"method"` // "bm25" or "tfidf"
	K1            float64 `yaml:"k1"`
	B             float64 `yaml:"b"`
	SMARTNotation string  `yaml:"smart_notation"`
}

// SearchConfig mirrors the search.* configuration fields.
type SearchConfig struct {
	TopK        int    `yaml:"top_k"`
	SearchType  string `yaml:"search_type"`
	MaxDistance int    `yaml:"max_distance"`
}

// Config is the full resolved settings tree.
type Config struct {
	PathToCollection  string        `yaml:"path_to_collection"`
	IndexOutputFolder string        `yaml:"index_output_folder"`
	Tokenizer         TokenizerConfig `yaml:"tokenizer"`
	Indexer           IndexerConfig   `yaml:"indexer"`
	Ranking           RankingConfig   `yaml:"ranking"`
	Search            SearchConfig    `yaml:"search"`
}

// DefaultConfig returns the compiled-in defaults described throughout
// SPEC_FULL.md §4.
func DefaultConfig() Config {
	return Config{
		Tokenizer: TokenizerConfig{
			RegularExp: DefaultTokenPattern,
			Lowercase:  true,
			MinLength:  0,
		},
		Indexer: IndexerConfig{
			MemoryThreshold: DefaultPressureThreshold,
		},
		Ranking: RankingConfig{
			Method:        string(RankBM25),
			K1:            1.2,
			B:             0.75,
			SMARTNotation: string(SMARTLncLtc),
		},
		Search: SearchConfig{
			TopK:       10,
			SearchType: string(SearchStandard),
		},
	}
}

// LoadConfigFile layers a YAML file's contents on top of base. A missing
// path is not an error — it simply returns base unchanged, matching the
// CLI's "config file is optional" contract.
func LoadConfigFile(path string, base Config) (Config, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// BuildTokenizer constructs a Tokenizer from the resolved configuration.
func (c Config) BuildTokenizer() (*Tokenizer, error) {
	stopwords, err := LoadStopwords(c.Tokenizer.StopwordsPath, c.Tokenizer.MinLength)
	if err != nil {
		return nil, err
	}
	var stemmer Stemmer = NoopStemmer{}
	if c.Tokenizer.Stemmer == "snowball" {
		stemmer = SnowballStemmer{}
	}
	return NewTokenizer(TokenizeOptions{
		Pattern:   c.Tokenizer.RegularExp,
		Lowercase: c.Tokenizer.Lowercase,
		MinLength: c.Tokenizer.MinLength,
		Stopwords: stopwords,
		Stemmer:   stemmer,
	})
}
