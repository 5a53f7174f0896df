package index

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/synaptiq/neurag/internal/domain"
)

// SparseVectorizer represents chunks as TF-IDF weighted term vectors.
// EmbedDocuments fixes the vocabulary and inverse-document-frequency
// weights; query terms outside that vocabulary contribute nothing.
// It performs no I/O and never blocks.
type SparseVectorizer struct {
	vocab map[string]int // term -> vocabulary index, fixed after EmbedDocuments
	idf   []float64
}

// NewSparseVectorizer creates an unfitted TF-IDF vectorizer.
func NewSparseVectorizer() *SparseVectorizer {
	return &SparseVectorizer{}
}

// EmbedDocuments builds the vocabulary and IDF table from the chunk set and
// returns one normalized vector per chunk, in order.
func (v *SparseVectorizer) EmbedDocuments(_ context.Context, chunks []domain.Chunk) ([]Vector, error) {
	counts := make([]map[string]int, len(chunks))
	df := make(map[string]int)

	for i, c := range chunks {
		counts[i] = termCounts(c.Text)
		for term := range counts[i] {
			df[term]++
		}
	}

	// Vocabulary indices are assigned in lexicographic term order so that
	// vectors never depend on map iteration order.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(chunks))
	for i, term := range terms {
		v.vocab[term] = i
		// Smoothed IDF: never zero or negative, no division by zero.
		v.idf[i] = math.Log((n+1)/float64(df[term]+1)) + 1
	}

	vectors := make([]Vector, len(chunks))
	for i := range chunks {
		vectors[i] = v.vectorize(counts[i])
	}
	return vectors, nil
}

// EmbedQuery tokenizes text with the same rules as EmbedDocuments and
// returns its normalized TF-IDF vector over the fitted vocabulary.
func (v *SparseVectorizer) EmbedQuery(_ context.Context, text string) (Vector, error) {
	if v.vocab == nil {
		return nil, domain.ErrIndexNotReady
	}
	return v.vectorize(termCounts(text)), nil
}

func (v *SparseVectorizer) vectorize(counts map[string]int) Sparse {
	vec := make(Sparse, len(counts))
	for term, tf := range counts {
		i, ok := v.vocab[term]
		if !ok {
			continue
		}
		vec[i] = float64(tf) * v.idf[i]
	}
	vec.normalize()
	return vec
}

// termCounts tokenizes text into case-folded word tokens and counts them.
// Tokens are maximal runs of letters and digits; everything else is a
// separator.
func termCounts(text string) map[string]int {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
