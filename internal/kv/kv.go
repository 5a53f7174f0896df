// Package kv defines the key-value store contract used by the embedding
// cache, with in-memory and Redis/Valkey backends.
package kv

import (
	"context"
	"errors"
	"time"
)

// Store is the key-value facade the embedding cache is built on.
type Store interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrKeyNotFound signals a missing key.
var ErrKeyNotFound = errors.New("kv: key not found")

// Op constants map to store command names for error context.
const (
	OpGet  = "GET"
	OpSet  = "SET"
	OpPing = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
