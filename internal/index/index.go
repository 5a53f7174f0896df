// Package index builds an in-memory similarity index over corpus chunks and
// ranks them by cosine similarity to a query. The vector representation is
// pluggable: sparse TF-IDF term vectors or dense external embeddings.
package index

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/synaptiq/neurag/internal/domain"
	"github.com/synaptiq/neurag/internal/metrics"
)

// Vectorizer turns chunks and queries into comparable vectors.
// EmbedDocuments is called once per build, one vector per chunk, in order.
// EmbedQuery is called once per search and must produce a vector with the
// same dimensionality and normalization convention as EmbedDocuments.
type Vectorizer interface {
	EmbedDocuments(ctx context.Context, chunks []domain.Chunk) ([]Vector, error)
	EmbedQuery(ctx context.Context, text string) (Vector, error)
}

// Index ranks chunks by cosine similarity to a query. Build must complete
// before the first Search; once built the index is read-only and safe for
// unsynchronized concurrent searches. Re-running Build replaces all derived
// state and must not race with in-flight searches.
type Index struct {
	strategy   domain.Strategy
	vectorizer Vectorizer
	chunks     []domain.Chunk
	vectors    []Vector
	built      bool
}

// New creates an unbuilt index over the given vectorizer.
func New(strategy domain.Strategy, vectorizer Vectorizer) *Index {
	return &Index{strategy: strategy, vectorizer: vectorizer}
}

// Build vectorizes the chunk set and makes the index searchable.
func (ix *Index) Build(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("build produced zero chunks: %w", domain.ErrEmptyIndex)
	}

	start := time.Now()

	vectors, err := ix.vectorizer.EmbedDocuments(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("vectorizer returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ix.chunks = chunks
	ix.vectors = vectors
	ix.built = true

	metrics.IndexBuildDuration.WithLabelValues(string(ix.strategy)).Observe(time.Since(start).Seconds())
	metrics.IndexChunks.WithLabelValues(string(ix.strategy)).Set(float64(len(chunks)))

	return nil
}

// Search returns the min(k, chunk count) chunks most similar to query,
// in strictly non-increasing score order; ties break by ascending chunk ID.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}
	if !ix.built {
		return nil, fmt.Errorf("search before build: %w", domain.ErrIndexNotReady)
	}

	start := time.Now()

	qv, err := ix.vectorizer.EmbedQuery(ctx, query)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(string(ix.strategy), "error").Inc()
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]domain.ScoredChunk, len(ix.chunks))
	for i, vec := range ix.vectors {
		results[i] = domain.ScoredChunk{Chunk: ix.chunks[i], Score: vec.Dot(qv)}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if k < len(results) {
		results = results[:k]
	}

	metrics.SearchesTotal.WithLabelValues(string(ix.strategy), "success").Inc()
	metrics.SearchDuration.WithLabelValues(string(ix.strategy)).Observe(time.Since(start).Seconds())

	return results, nil
}

// Built reports whether Build has completed successfully.
func (ix *Index) Built() bool { return ix.built }

// Chunks returns the number of indexed chunks.
func (ix *Index) Chunks() int { return len(ix.chunks) }

// Strategy returns the vectorization strategy the index was built with.
func (ix *Index) Strategy() domain.Strategy { return ix.strategy }
