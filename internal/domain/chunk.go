package domain

// Chunk is a contiguous passage of corpus text, the unit of retrieval.
// Identifiers are dense, zero-based, and assigned in corpus order; no
// chunk is empty. Chunks are immutable once created.
type Chunk struct {
	ID   int
	Text string
}

// ScoredChunk pairs a chunk with its cosine similarity to a query,
// in [-1, 1]. Produced fresh per search, never persisted.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
