// Package chunker splits raw corpus text into ordered passages for retrieval.
// Both modes are pure: the same input and parameters always produce the same
// chunk sequence, which the index relies on for reproducible builds.
package chunker

import (
	"fmt"
	"strings"

	"github.com/synaptiq/neurag/internal/domain"
)

// Mode selects how the corpus is split into chunks.
type Mode string

// Chunking mode constants.
const (
	// ModeWindow splits text into fixed-size rune windows with optional overlap.
	ModeWindow Mode = "window"
	// ModeParagraph splits text on blank lines.
	ModeParagraph Mode = "paragraph"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == ModeWindow || m == ModeParagraph
}

// Window splits text into chunks of size runes. Adjacent chunks share
// overlap runes. The trailing remainder is emitted as a final, possibly
// shorter chunk unless it is whitespace-only.
func Window(text string, size, overlap int) ([]domain.Chunk, error) {
	if text == "" {
		return nil, fmt.Errorf("text is empty: %w", domain.ErrInvalidInput)
	}
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", size, domain.ErrInvalidInput)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got %d: %w", overlap, domain.ErrInvalidInput)
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []domain.Chunk
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			// Final chunk: whatever remains, dropped if whitespace-only.
			tail := string(runes[start:])
			if strings.TrimSpace(tail) != "" {
				chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: tail})
			}
			return chunks, nil
		}
		chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: string(runes[start:end])})
	}
}

// Paragraphs splits text on blank lines into trimmed, non-empty chunks.
func Paragraphs(text string) ([]domain.Chunk, error) {
	if text == "" {
		return nil, fmt.Errorf("text is empty: %w", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: block})
	}
	return chunks, nil
}

// Split dispatches to the chunking mode. Window parameters are ignored in
// paragraph mode.
func Split(text string, mode Mode, size, overlap int) ([]domain.Chunk, error) {
	switch mode {
	case ModeWindow:
		return Window(text, size, overlap)
	case ModeParagraph:
		return Paragraphs(text)
	default:
		return nil, fmt.Errorf("unknown chunking mode %q: %w", mode, domain.ErrInvalidInput)
	}
}
