package neurag

import "github.com/synaptiq/neurag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrInvalidArgument        = domain.ErrInvalidArgument
	ErrIndexNotReady          = domain.ErrIndexNotReady
	ErrEmptyIndex             = domain.ErrEmptyIndex
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
