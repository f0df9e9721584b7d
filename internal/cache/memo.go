// Package cache provides bounded memoization for the normalization and
// matching pipeline. Normalization is a pure function of its input, and
// match results only change when the catalog reloads, so both are safe
// to memoize aggressively.
package cache

import (
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cache sizing defaults. Normalization entries are tiny strings;
// match entries hold full result payloads.
const (
	DefaultNormalizeEntries = 4096
	DefaultMatchEntries     = 1024
)

// Config defines cache sizes. Zero or negative sizes select defaults.
type Config struct {
	NormalizeEntries int
	MatchEntries     int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		NormalizeEntries: DefaultNormalizeEntries,
		MatchEntries:     DefaultMatchEntries,
	}
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Len    int   `json:"entries"`
}

// Memo is a bounded LRU keyed by the xxhash of the full call signature.
// Concurrent misses for the same key are collapsed into one computation.
type Memo[V any] struct {
	entries *lru.Cache[uint64, V]
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo creates a memo holding at most size entries.
func NewMemo[V any](size int) (*Memo[V], error) {
	if size <= 0 {
		size = DefaultNormalizeEntries
	}
	entries, err := lru.New[uint64, V](size)
	if err != nil {
		return nil, err
	}
	return &Memo[V]{entries: entries}, nil
}

// Key hashes the call signature parts into a cache key. Parts are
// length-prefixed so ("ab","c") and ("a","bc") never collide.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for _, part := range parts {
		_, _ = d.WriteString(strconv.Itoa(len(part)))
		_, _ = d.WriteString("|")
		_, _ = d.WriteString(part)
	}
	return d.Sum64()
}

// Get returns the cached value for key, if present.
func (m *Memo[V]) Get(key uint64) (V, bool) {
	v, ok := m.entries.Get(key)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Do returns the cached value for key, computing and storing it on a
// miss. Concurrent callers missing on the same key share one call to
// compute; its error is returned to all of them and nothing is cached.
func (m *Memo[V]) Do(key uint64, compute func() (V, error)) (V, error) {
	if v, ok := m.entries.Get(key); ok {
		m.hits.Add(1)
		return v, nil
	}
	m.misses.Add(1)

	v, err, _ := m.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		if v, ok := m.entries.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.entries.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Add stores a value without going through Do.
func (m *Memo[V]) Add(key uint64, value V) {
	m.entries.Add(key, value)
}

// Purge drops every entry. Called when the catalog or the dictionaries
// reload, since cached results may no longer reflect them.
func (m *Memo[V]) Purge() {
	m.entries.Purge()
}

// Stats returns current hit/miss counters and entry count.
func (m *Memo[V]) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Len:    m.entries.Len(),
	}
}
