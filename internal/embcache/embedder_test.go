package embcache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/synaptiq/neurag/internal/domain"
)

func TestEmbed_MissCallsInnerAndStores(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 7,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	res, err := ce.Embed(context.Background(), "growth cones")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected one inner call, got %d", inner.calls)
	}
	if res.TotalTokens != 7 {
		t.Errorf("miss must report real token usage, got %d", res.TotalTokens)
	}
	if len(ms.sets) != 1 {
		t.Errorf("expected embedding stored in cache, got %d entries", len(ms.sets))
	}
}

func TestEmbed_HitSkipsInner(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.5, -1.25},
		TotalTokens: 9,
	}}
	ce, _ := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	if _, err := ce.Embed(ctx, "same text"); err != nil {
		t.Fatalf("first embed: %v", err)
	}

	res, err := ce.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected cache hit to skip inner, got %d calls", inner.calls)
	}
	if res.TotalTokens != 0 {
		t.Errorf("hit must report zero token usage, got %d", res.TotalTokens)
	}
	if len(res.Embedding) != 2 || res.Embedding[0] != 0.5 || res.Embedding[1] != -1.25 {
		t.Errorf("round-tripped embedding corrupted: %v", res.Embedding)
	}
}

func TestEmbed_DifferentTextsDifferentKeys(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	_, _ = ce.Embed(ctx, "alpha")
	_, _ = ce.Embed(ctx, "beta")

	if inner.calls != 2 {
		t.Errorf("expected two inner calls for distinct texts, got %d", inner.calls)
	}
	if len(ms.sets) != 2 {
		t.Errorf("expected two cache entries, got %d", len(ms.sets))
	}
}

func TestEmbed_StoreGetErrorFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return nil, errors.New("store down")
	}}
	ce := New(inner, ms, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("store failure must not fail embedding: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner call on store failure, got %d", inner.calls)
	}
}

func TestEmbed_CorruptCacheDataFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return []byte{1, 2, 3}, nil // not a multiple of 4
	}}
	ce := New(inner, ms, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("corrupt cache entry must not fail embedding: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner call on corrupt entry, got %d", inner.calls)
	}
}

func TestEmbed_StoreSetErrorIgnored(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := &mockKVStore{setFn: func(context.Context, string, []byte) error {
		return errors.New("store readonly")
	}}
	ce := New(inner, ms, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("cache write failure must not fail embedding: %v", err)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{err: wantErr})

	if _, err := ce.Embed(context.Background(), "x"); !errors.Is(err, wantErr) {
		t.Errorf("expected inner error, got %v", err)
	}
}

func TestBatchEmbed_MixedHitsAndMisses(t *testing.T) {
	inner := &mockBatchEmbedder{mockEmbedder: &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{2},
		TotalTokens: 5,
	}}}
	ce, _ := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	// Warm the cache for "b".
	if _, err := ce.Embed(ctx, "b"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	res, err := ce.BatchEmbed(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	for i, emb := range res.Embeddings {
		if len(emb) != 1 || emb[0] != 2 {
			t.Errorf("embedding %d corrupted: %v", i, emb)
		}
	}
	if inner.batchCalls != 1 {
		t.Fatalf("expected one batch call for misses, got %d", inner.batchCalls)
	}
	if len(inner.batchTexts) != 2 || inner.batchTexts[0] != "a" || inner.batchTexts[1] != "c" {
		t.Errorf("expected only misses in batch, got %v", inner.batchTexts)
	}
	if res.TotalTokens != 10 {
		t.Errorf("expected token usage for misses only, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_AllHitsSkipInner(t *testing.T) {
	inner := &mockBatchEmbedder{mockEmbedder: &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{1},
	}}}
	ce, _ := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	if _, err := ce.BatchEmbed(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	res, err := ce.BatchEmbed(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected no second batch call, got %d", inner.batchCalls)
	}
	if res.TotalTokens != 0 {
		t.Errorf("all-hit batch must report zero tokens, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_FallbackWithoutBatchInner(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, _ := newTestCachedEmbedder(t, inner)

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected per-text fallback calls, got %d", inner.calls)
	}
	if len(res.Embeddings) != 2 {
		t.Errorf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
}
