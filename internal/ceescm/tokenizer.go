// Package ceescm normalizes free-form internship text into a
// deduplicated, order-preserving keyword sequence used for curriculum
// matching.
package ceescm

import (
	"context"
	"strings"
	"unicode"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

// Fallback stop words used when no lemmatizer model is configured:
// articles, conjunctions, common auxiliaries, demonstratives.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"been": {}, "be": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// Static technical vocabulary scanned as substrings by ExtractKeyTerms.
var techKeywords = []string{
	"python", "java", "javascript", "react", "node", "sql", "database",
	"machine learning", "ai", "data science", "web development", "frontend",
	"backend", "fullstack", "mobile", "android", "ios", "cloud", "aws",
	"azure", "gcp", "docker", "kubernetes", "api", "rest", "graphql",
}

const maxKeyTerms = 20
const maxChunkWords = 3
const minTokenLen = 3

// Tokenizer reduces descriptive text to CEESCM tokens. The lemmatizer and
// chunker capabilities are optional and selected once at startup; when
// absent the tokenizer falls back to the built-in stop-word set.
type Tokenizer struct {
	lemmatizer ports.Lemmatizer
	chunker    ports.NounChunker
}

func New(lemmatizer ports.Lemmatizer, chunker ports.NounChunker) *Tokenizer {
	return &Tokenizer{lemmatizer: lemmatizer, chunker: chunker}
}

// Tokenize lower-cases, strips punctuation, splits, filters stop words
// and short tokens, and deduplicates preserving first-occurrence order.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) []string {
	if text == "" {
		return nil
	}

	normalized := normalize(text)
	var tokens []string

	if t.lemmatizer != nil {
		analyzed, err := t.lemmatizer.Lemmas(ctx, normalized)
		if err == nil {
			for _, token := range analyzed {
				if !token.Stopword && len(token.Text) >= minTokenLen {
					tokens = append(tokens, token.Lemma)
				}
			}
			return dedupe(tokens)
		}
		// Model failure falls through to the built-in path.
	}

	for _, word := range strings.Fields(normalized) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if len(word) >= minTokenLen {
			tokens = append(tokens, word)
		}
	}
	return dedupe(tokens)
}

// ExtractKeyTerms returns up to 20 terms: every technical keyword found
// as a substring of the lower-cased text, then noun-phrase chunks of at
// most three words, underscore-joined and deduplicated.
func (t *Tokenizer) ExtractKeyTerms(ctx context.Context, text string) []string {
	textLower := strings.ToLower(text)
	var terms []string

	for _, keyword := range techKeywords {
		if strings.Contains(textLower, keyword) {
			terms = append(terms, strings.ReplaceAll(keyword, " ", "_"))
		}
	}

	if t.chunker != nil {
		chunks, err := t.chunker.NounChunks(ctx, text)
		if err == nil {
			seen := make(map[string]struct{}, len(terms))
			for _, term := range terms {
				seen[term] = struct{}{}
			}
			for _, chunk := range chunks {
				if len(strings.Fields(chunk)) > maxChunkWords {
					continue
				}
				normalized := strings.ReplaceAll(strings.ToLower(chunk), " ", "_")
				if _, ok := seen[normalized]; ok {
					continue
				}
				seen[normalized] = struct{}{}
				terms = append(terms, normalized)
			}
		}
	}

	if len(terms) > maxKeyTerms {
		terms = terms[:maxKeyTerms]
	}
	return terms
}

// TokensForForm combines the descriptive form fields the way matching
// expects: organization, title, then the activity log.
func (t *Tokenizer) TokensForForm(ctx context.Context, form domain.SubmissionForm) []string {
	combined := strings.Join([]string{form.Organization, form.InternshipTitle, form.Logs}, " ")
	return t.Tokenize(ctx, combined)
}

// normalize lower-cases and maps every punctuation rune to a space.
func normalize(text string) string {
	lowered := strings.ToLower(text)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
