// Package ask implements retrieval-augmented question answering: retrieve
// the top-k chunks for a question, build a grounded prompt, and stream the
// model's answer.
package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synaptiq/neurag/internal/domain"
	"github.com/synaptiq/neurag/internal/logger"
)

const promptTemplate = "Based on the following neuroscience information, answer the question.\n\n" +
	"Context:\n%s\n\nQuestion: %s\n\nAnswer:"

// Service answers questions over the indexed corpus.
type Service struct {
	retriever Retriever
	generator Generator
	topK      int
}

// New creates an ask service. topK is the number of chunks stuffed into
// the prompt context.
func New(retriever Retriever, generator Generator, topK int) *Service {
	return &Service{retriever: retriever, generator: generator, topK: topK}
}

// Ask retrieves context for the question and streams the answer through
// onDelta. An empty or whitespace-only question is rejected with
// domain.ErrInvalidArgument.
func (s *Service) Ask(ctx context.Context, question string, onDelta func(delta string) error) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question is empty: %w", domain.ErrInvalidArgument)
	}

	log := logger.FromContext(ctx).With(
		zap.String("ask_id", uuid.NewString()),
	)

	start := time.Now()

	chunks, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		return fmt.Errorf("retrieve context: %w", err)
	}

	log.Debug("context retrieved",
		zap.Int("chunks", len(chunks)),
		zap.Duration("retrieval_duration", time.Since(start)),
	)

	prompt := buildPrompt(question, chunks)

	if err := s.generator.Stream(ctx, prompt, onDelta); err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}

	log.Info("question answered",
		zap.Int("chunks", len(chunks)),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// buildPrompt joins the retrieved chunks into the grounding context block.
func buildPrompt(question string, chunks []domain.ScoredChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	return fmt.Sprintf(promptTemplate, strings.Join(texts, "\n\n"), question)
}
