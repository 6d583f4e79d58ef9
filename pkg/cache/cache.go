// Package cache stores solve results and rendered artifacts.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// sharing results between machines, and [NullCache] to disable caching.
// Keys are derived by a [Keyer] from the problem content hash and every
// option that changes the result.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLSolve    = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// SolveKeyOpts are the options that change a solve result.
type SolveKeyOpts struct {
	Solver     string  `json:"solver"`
	Orderer    string  `json:"orderer"`
	ChildOrder string  `json:"child_order"`
	Epsilon    float64 `json:"epsilon"`
	MaxDepth   int     `json:"max_depth,omitempty"`
	Seed       int64   `json:"seed,omitempty"`

	// Plunge proportions only matter for the plunging orderer.
	MinPlunge float64 `json:"min_plunge,omitempty"`
	MaxPlunge float64 `json:"max_plunge,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered search tree.
type ArtifactKeyOpts struct {
	Solve    SolveKeyOpts `json:"solve"`
	Format   string       `json:"format"`
	Detailed bool         `json:"detailed"`
	MaxNodes int          `json:"max_nodes"`
}

// NullCache stores nothing. It backs --no-cache and the runner default.
type NullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
