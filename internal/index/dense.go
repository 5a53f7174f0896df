package index

import (
	"context"
	"fmt"

	"github.com/synaptiq/neurag/internal/domain"
)

// DenseVectorizer delegates vectorization to an external embedding provider.
// Documents and queries may use distinct embedders (e.g. with different
// instruction prefixes), but both must be backed by the same model version —
// a mismatch between build and query cannot be detected here and is a caller
// error. Returned vectors are treated as opaque and normalized internally.
type DenseVectorizer struct {
	documents domain.Embedder
	queries   domain.Embedder
}

// NewDenseVectorizer creates a vectorizer backed by an external provider.
func NewDenseVectorizer(documents, queries domain.Embedder) *DenseVectorizer {
	return &DenseVectorizer{documents: documents, queries: queries}
}

// EmbedDocuments fetches one embedding per chunk, in order, and normalizes
// each. All embeddings from one build must share a dimensionality.
func (v *DenseVectorizer) EmbedDocuments(ctx context.Context, chunks []domain.Chunk) ([]Vector, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var embeddings [][]float32
	if be, ok := v.documents.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed documents: %w", err)
		}
		embeddings = res.Embeddings
	} else {
		res, err := domain.BatchFallback(ctx, v.documents, texts)
		if err != nil {
			return nil, fmt.Errorf("embed documents: %w", err)
		}
		embeddings = res.Embeddings
	}

	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("provider returned %d embeddings for %d chunks: %w",
			len(embeddings), len(chunks), domain.ErrEmbeddingProviderError)
	}

	vectors := make([]Vector, len(embeddings))
	dim := -1
	for i, emb := range embeddings {
		if dim == -1 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return nil, fmt.Errorf("chunk %d has dimension %d, expected %d: %w",
				i, len(emb), dim, domain.ErrVectorDimMismatch)
		}
		vectors[i] = Dense(emb).normalized()
	}
	return vectors, nil
}

// EmbedQuery fetches and normalizes the query embedding.
func (v *DenseVectorizer) EmbedQuery(ctx context.Context, text string) (Vector, error) {
	res, err := v.queries.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return Dense(res.Embedding).normalized(), nil
}
