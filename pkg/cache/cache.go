// Package cache provides byte-level storage for processed corpus snapshots
// and rendered artifacts.
//
// Four backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared storage for several server instances
//   - [MongoCache]: durable shared storage with TTL indexes
//   - [NullCache]: disables caching
//
// Keys are built by a [Keyer] so that backends never see raw user input.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SnapshotKey identifies the processed snapshot of a source tree.
	SnapshotKey(root string, opts SnapshotKeyOpts) string

	// GraphKey identifies a rendered reference graph.
	GraphKey(graphHash string, opts GraphKeyOpts) string
}

// SnapshotKeyOpts holds the settings that change processed output.
type SnapshotKeyOpts struct {
	Processors []string       `json:"processors"`
	Args       map[string]any `json:"args,omitempty"`
	Limit      int            `json:"limit"`
}

// GraphKeyOpts holds the settings that change a rendered graph.
type GraphKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns "snapshot:<hash>".
func (DefaultKeyer) SnapshotKey(root string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", root, opts)
}

// GraphKey returns "graph:<hash>".
func (DefaultKeyer) GraphKey(graphHash string, opts GraphKeyOpts) string {
	return hashKey("graph", graphHash, opts)
}

// DefaultDir returns the cache directory: $XDG_CACHE_HOME/docsmith, or
// ~/.cache/docsmith when XDG_CACHE_HOME is unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "docsmith"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "docsmith"), nil
}
