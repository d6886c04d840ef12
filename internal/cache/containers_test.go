package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mouscache/internal/common/errors"
)

func TestContainerStore_CreateExistingIsConsistencyError(t *testing.T) {
	s := newContainerStore("hashset", func() memberSet { return make(memberSet) })

	_, err := s.ensure("k")
	require.NoError(t, err)

	s.mu.Lock()
	_, err = s.createLocked("k")
	s.mu.Unlock()

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConsistency))
	assert.Contains(t, err.Error(), "hashset")
}

func TestContainerStore_EnsureIsIdempotent(t *testing.T) {
	s := newContainerStore("hashmap", func() map[string]string { return map[string]string{} })

	first, err := s.ensure("k")
	require.NoError(t, err)
	second, err := s.ensure("k")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestContainerStore_Existing(t *testing.T) {
	s := newContainerStore("hashset", func() memberSet { return make(memberSet) })
	_, _ = s.ensure("a")
	_, _ = s.ensure("b")

	found := s.existing([]string{"b", "missing", "a", "b"})
	keys := make([]string, len(found))
	for i, f := range found {
		keys[i] = f.key
	}
	assert.Equal(t, []string{"b", "a", "b"}, keys)
}

func TestLockOrdered(t *testing.T) {
	var a, b sync.RWMutex

	t.Run("duplicate keys lock once and upgrade to exclusive", func(t *testing.T) {
		unlock := lockOrdered([]lockTarget{
			{key: "a", mu: &a},
			{key: "a", mu: &a, exclusive: true},
			{key: "b", mu: &b},
		})

		assert.False(t, a.TryRLock(), "a must be held exclusively")
		assert.True(t, b.TryRLock(), "b is only read-locked")
		b.RUnlock()

		unlock()
		assert.True(t, a.TryLock())
		a.Unlock()
	})

	t.Run("empty", func(t *testing.T) {
		unlock := lockOrdered(nil)
		unlock()
	})
}
