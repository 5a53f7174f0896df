package ask

import (
	"context"

	"github.com/synaptiq/neurag/internal/domain"
)

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}

// Generator streams a completion for a prompt, delivering content fragments
// to onDelta as they arrive.
type Generator interface {
	Stream(ctx context.Context, prompt string, onDelta func(delta string) error) error
}
