package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Key("a", "b"), Key("a", "b"))
	})

	t.Run("length_prefixed", func(t *testing.T) {
		// Without length prefixes these would hash identically.
		assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
		assert.NotEqual(t, Key("ab"), Key("a", "b"))
	})
}

func TestMemo(t *testing.T) {
	t.Run("do_computes_once", func(t *testing.T) {
		m, err := NewMemo[string](8)
		require.NoError(t, err)

		var calls int
		compute := func() (string, error) {
			calls++
			return "value", nil
		}

		key := Key("query", "m2")
		v, err := m.Do(key, compute)
		require.NoError(t, err)
		assert.Equal(t, "value", v)

		v, err = m.Do(key, compute)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
		assert.Equal(t, 1, calls)
	})

	t.Run("errors_not_cached", func(t *testing.T) {
		m, err := NewMemo[string](8)
		require.NoError(t, err)

		boom := errors.New("boom")
		key := Key("bad")

		_, err = m.Do(key, func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)

		v, err := m.Do(key, func() (string, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("bounded", func(t *testing.T) {
		m, err := NewMemo[int](2)
		require.NoError(t, err)

		m.Add(Key("a"), 1)
		m.Add(Key("b"), 2)
		m.Add(Key("c"), 3)

		assert.Equal(t, 2, m.Stats().Len)
		_, ok := m.Get(Key("a"))
		assert.False(t, ok, "oldest entry should be evicted")
	})

	t.Run("purge", func(t *testing.T) {
		m, err := NewMemo[int](8)
		require.NoError(t, err)

		m.Add(Key("a"), 1)
		m.Purge()
		assert.Zero(t, m.Stats().Len)
	})

	t.Run("stats", func(t *testing.T) {
		m, err := NewMemo[int](8)
		require.NoError(t, err)

		m.Add(Key("a"), 1)
		m.Get(Key("a"))
		m.Get(Key("missing"))

		stats := m.Stats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
	})

	t.Run("concurrent_access", func(t *testing.T) {
		m, err := NewMemo[int](64)
		require.NoError(t, err)

		var computes atomic.Int64
		key := Key("shared")

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := m.Do(key, func() (int, error) {
					computes.Add(1)
					return 42, nil
				})
				assert.NoError(t, err)
				assert.Equal(t, 42, v)
			}()
		}
		wg.Wait()

		// Every caller got a value; the vast majority shared one
		// computation via singleflight.
		assert.GreaterOrEqual(t, computes.Load(), int64(1))
	})
}
