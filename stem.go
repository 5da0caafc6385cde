package spimi

import snowballeng "github.com/kljensen/snowball/english"

// Stemmer reduces a token to a root form. It is the tokenizer's optional
// last stage; a nil Stemmer in TokenizeOptions is replaced with NoopStemmer.
type Stemmer interface {
	Stem(token string) string
}

// NoopStemmer passes tokens through unchanged. It is the default when
// stemming is disabled, so the pipeline never needs a nil check per token.
type NoopStemmer struct{}

func (NoopStemmer) Stem(token string) string { return token }

// SnowballStemmer wraps the Snowball English (Porter2) stemmer.
type SnowballStemmer struct{}

func (SnowballStemmer) Stem(token string) string {
	return snowballeng.Stem(token, false)
}
