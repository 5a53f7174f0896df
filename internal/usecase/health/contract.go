package health

import "context"

// IndexReader reports whether the retrieval index has been built.
type IndexReader interface {
	Built() bool
	Chunks() int
}

// ProviderChecker checks an external provider's availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
