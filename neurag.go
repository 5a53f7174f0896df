package neurag

import (
	"context"
	"fmt"

	"github.com/synaptiq/neurag/internal/chunker"
	"github.com/synaptiq/neurag/internal/domain"
	"github.com/synaptiq/neurag/internal/index"
)

// Embedder vectorizes text through an external embedding model.
// Implementations must embed documents and queries with the same model;
// mixing models across calls produces meaningless similarity scores.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchResult is one ranked chunk from a search.
type SearchResult struct {
	ChunkID int
	Text    string
	Score   float64
}

// Index is an immutable in-memory retrieval index over a chunked text.
// Safe for concurrent searches.
type Index struct {
	inner *index.Index
}

// Build chunks text and builds a retrieval index over it. The default is
// TF-IDF over fixed windows of 800 runes; see Option for alternatives.
func Build(ctx context.Context, text string, opts ...Option) (*Index, error) {
	cfg := defaultBuildConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}

	chunks, err := chunker.Split(text, cfg.mode, cfg.chunkSize, cfg.overlap)
	if err != nil {
		return nil, err
	}

	var vectorizer index.Vectorizer
	switch cfg.strategy {
	case StrategySparse:
		vectorizer = index.NewSparseVectorizer()
	case StrategyDense:
		if cfg.embedder == nil {
			return nil, fmt.Errorf("dense strategy requires WithEmbedder: %w", domain.ErrInvalidArgument)
		}
		vectorizer = index.NewDenseVectorizer(
			documentsAdapter{e: cfg.embedder},
			queryAdapter{e: cfg.embedder},
		)
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", cfg.strategy, domain.ErrInvalidArgument)
	}

	ix := index.New(domain.Strategy(cfg.strategy), vectorizer)
	if err := ix.Build(ctx, chunks); err != nil {
		return nil, err
	}

	return &Index{inner: ix}, nil
}

// Search returns the k chunks most similar to query, best first. Ties are
// broken by ascending chunk ID. Fewer than k results are returned when the
// index holds fewer chunks.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	scored, err := ix.inner.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(scored))
	for i, s := range scored {
		results[i] = SearchResult{
			ChunkID: s.Chunk.ID,
			Text:    s.Chunk.Text,
			Score:   s.Score,
		}
	}
	return results, nil
}

// Chunks reports how many chunks the index holds.
func (ix *Index) Chunks() int { return ix.inner.Chunks() }

// Strategy reports the retrieval strategy the index was built with.
func (ix *Index) Strategy() Strategy { return Strategy(ix.inner.Strategy()) }

// documentsAdapter exposes the public Embedder's document side as the
// internal embedding contract, batching where the index builds in bulk.
type documentsAdapter struct {
	e Embedder
}

func (a documentsAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vecs, err := a.e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if len(vecs) != 1 {
		return domain.EmbeddingResult{}, fmt.Errorf("got %d embeddings for 1 input: %w",
			len(vecs), domain.ErrEmbeddingProviderError)
	}
	return domain.EmbeddingResult{Embedding: vecs[0]}, nil
}

func (a documentsAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vecs, err := a.e.EmbedDocuments(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	if len(vecs) != len(texts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d embeddings for %d inputs: %w",
			len(vecs), len(texts), domain.ErrEmbeddingProviderError)
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

type queryAdapter struct {
	e Embedder
}

func (a queryAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.e.EmbedQuery(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}
