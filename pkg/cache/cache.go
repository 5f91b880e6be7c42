// Package cache stores rendered export artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries as JSON files under a directory (CLI default)
//   - [RedisCache]: entries in Redis with native expiry (shared caches)
//   - [NullCache]: never stores anything (caching disabled)
//
// Keys are built by a [Keyer] from a hash of the model bytes and the export
// options, so a changed model or option set never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get returns the stored bytes and whether the key was found. A missing
	// or expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLArtifact is the default lifetime of cached export artifacts.
const TTLArtifact = 7 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// ExportKey returns the key for the artifacts of one export.
	ExportKey(modelHash string, opts ExportKeyOpts) string
}

// ExportKeyOpts are the export options that change the artifacts.
type ExportKeyOpts struct {
	Root      string            `json:"root"`
	Formats   []string          `json:"formats"`
	MetaTypes map[string]string `json:"meta_types,omitempty"`
}

// DefaultKeyer builds keys of the form "export:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ExportKey hashes the model hash together with opts.
func (DefaultKeyer) ExportKey(modelHash string, opts ExportKeyOpts) string {
	return hashKey("export", modelHash, opts)
}
