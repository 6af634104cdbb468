// Package cache stores rendered artifacts keyed by a hash of their input.
//
// Rendering a support graph to SVG runs Graphviz and dominates the cost of
// "boxp layers -f svg" and of the server's SVG endpoint. Because the DOT
// source fully determines the SVG, results are cached under [Key] of the
// DOT text.
//
// Three implementations are provided:
//
//   - [FileCache] for the CLI, under $XDG_CACHE_HOME/boxp
//   - [MemoryCache] for the HTTP server
//   - [NullCache] when caching is disabled (--no-cache)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
