package domain

import "errors"

var (
	// ErrInvalidInput signals malformed chunking text or parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidArgument signals a bad search argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexNotReady signals a search attempted before the index was built.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrEmptyIndex signals a build over zero chunks.
	ErrEmptyIndex = errors.New("empty index")
	// ErrVectorDimMismatch signals inconsistent embedding dimensions within one build.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
)
