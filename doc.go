// Package neurag builds in-memory retrieval indexes over plain text for
// retrieval-augmented generation.
//
// Text is split into chunks, each chunk is vectorized, and searches return
// the chunks most similar to a query by cosine similarity.
//
// # Sparse retrieval — no external services
//
//	idx, _ := neurag.Build(ctx, text)
//	results, _ := idx.Search(ctx, "How do growth cones work?", 3)
//
// # Dense retrieval — external embedding model
//
//	idx, _ := neurag.Build(ctx, text,
//	    neurag.WithStrategy(neurag.StrategyDense),
//	    neurag.WithEmbedder(myEmbedder),
//	    neurag.WithParagraphChunks(),
//	)
//
// Indexes are immutable once built and safe for concurrent searches.
package neurag
