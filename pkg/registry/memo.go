package registry

import (
	"context"
	"sync"
)

// Memo wraps a Provider with an unbounded in-process memo keyed by
// normalized package name. Both successful lookups and failures are
// remembered for the lifetime of the Memo, so an analysis pass fetches
// each distinct package at most once.
//
// Concurrent identical fetches are tolerated rather than deduplicated:
// two goroutines racing on the same cold name may both hit the
// underlying provider, and the last result wins. Registry responses
// are idempotent, so this is an accepted cost, not a correctness risk.
type Memo struct {
	provider Provider

	mu      sync.RWMutex
	entries map[string]memoEntry
}

type memoEntry struct {
	meta *Metadata
	err  error
}

// NewMemo creates a memoizing wrapper around provider.
func NewMemo(provider Provider) *Memo {
	return &Memo{
		provider: provider,
		entries:  make(map[string]memoEntry),
	}
}

// Fetch returns the memoized result for name, consulting the underlying
// provider on first sight of a package.
func (m *Memo) Fetch(ctx context.Context, name string) (*Metadata, error) {
	key := NormalizeName(name)

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return entry.meta, entry.err
	}

	meta, err := m.provider.Fetch(ctx, name)

	m.mu.Lock()
	m.entries[key] = memoEntry{meta: meta, err: err}
	m.mu.Unlock()

	return meta, err
}

// Len reports how many distinct packages have been looked up.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ Provider = (*Memo)(nil)
