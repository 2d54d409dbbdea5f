package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/observability"
)

// formatVersion is bumped whenever the persisted layout changes. Older
// snapshots are treated as a miss.
const formatVersion = 2

const keyType = "snapshot"

type persisted struct {
	Version int                 `json:"version"`
	SavedAt time.Time           `json:"savedAt"`
	Entries map[string]*Entry   `json:"entries"`
	Deps    map[string][]string `json:"deps,omitempty"`
}

// Save writes the committed snapshot to c under key. It waits for a running
// update to finish.
func (s *Store) Save(ctx context.Context, c cache.Cache, key string, ttl time.Duration) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	s.mu.RLock()
	n := len(s.entries)
	size, err := cache.SetJSON(ctx, c, key, persisted{
		Version: formatVersion,
		SavedAt: time.Now().UTC(),
		Entries: s.entries,
		Deps:    s.deps,
	}, ttl)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, keyType, size)
	s.logger.Debug("snapshot saved", "key", key, "entries", n, "bytes", size)
	return nil
}

// Load replaces the committed snapshot with the one stored in c under key.
// It reports whether a usable snapshot was found; a missing, outdated or
// unreadable entry leaves the store unchanged.
func (s *Store) Load(ctx context.Context, c cache.Cache, key string) (bool, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-s.sem }()

	var p persisted
	err := cache.GetJSON(ctx, c, key, &p)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	case errors.Is(err, cache.ErrCorrupt), err == nil && p.Version != formatVersion:
		s.logger.Warn("ignoring unreadable snapshot", "key", key, "version", p.Version, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if p.Entries == nil {
		p.Entries = map[string]*Entry{}
	}
	if p.Deps == nil {
		p.Deps = map[string][]string{}
	}

	s.mu.Lock()
	s.entries = p.Entries
	s.deps = p.Deps
	s.mu.Unlock()

	observability.Cache().OnCacheHit(ctx, keyType)
	s.logger.Debug("snapshot loaded", "key", key, "entries", len(p.Entries), "saved", p.SavedAt)
	return true, nil
}
