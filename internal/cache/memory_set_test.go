package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"mouscache/internal/common/errors"
)

func seedSets(t *testing.T, m *Memory) {
	t.Helper()
	ctx := context.Background()
	_, err := m.SetAdd(ctx, "a", 1, 2, 3)
	require.NoError(t, err)
	_, err = m.SetAdd(ctx, "b", 2, 3, 4)
	require.NoError(t, err)
}

func TestMemory_SetBasics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.SetAdd(ctx, "s", "x", "y", "x", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := m.SetCard(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	members, err := m.SetMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y", "7"}, members)

	isMember, err := m.SetIsMember(ctx, "s", 7)
	require.NoError(t, err)
	assert.True(t, isMember)

	removed, err := m.SetRem(ctx, "s", "x")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.SetRem(ctx, "s", "x")
	require.NoError(t, err)
	assert.False(t, removed)

	t.Run("absent set", func(t *testing.T) {
		n, err := m.SetCard(ctx, "none")
		require.NoError(t, err)
		assert.Zero(t, n)

		members, err := m.SetMembers(ctx, "none")
		require.NoError(t, err)
		assert.Empty(t, members)

		isMember, err := m.SetIsMember(ctx, "none", "x")
		require.NoError(t, err)
		assert.False(t, isMember)

		removed, err := m.SetRem(ctx, "none", "x")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestMemory_SetAlgebra(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedSets(t, m)

	inter, err := m.SetInter(ctx, "a", "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, inter)

	diff, err := m.SetDiff(ctx, "a", "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1"}, diff)

	union, err := m.SetUnion(ctx, "a", "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3", "4"}, union)

	t.Run("missing keys are skipped, not empty", func(t *testing.T) {
		inter, err := m.SetInter(ctx, "a", "missing", "b")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"2", "3"}, inter)

		diff, err := m.SetDiff(ctx, "missing", "a", "b")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1"}, diff, "the first existing set seeds the fold")
	})

	t.Run("no existing keys", func(t *testing.T) {
		for _, op := range []func(context.Context, ...string) ([]string, error){m.SetDiff, m.SetInter, m.SetUnion} {
			out, err := op(ctx, "x", "y")
			require.NoError(t, err)
			assert.Empty(t, out)
		}
	})

	t.Run("repeated key", func(t *testing.T) {
		diff, err := m.SetDiff(ctx, "a", "a")
		require.NoError(t, err)
		assert.Empty(t, diff)
	})

	t.Run("inputs unchanged", func(t *testing.T) {
		members, err := m.SetMembers(ctx, "a")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "2", "3"}, members)
	})
}

func TestMemory_SetStoreVariants(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedSets(t, m)

	n, err := m.SetUnionStore(ctx, "u", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = m.SetInterStore(ctx, "i", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = m.SetDiffStore(ctx, "d", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	members, err := m.SetMembers(ctx, "i")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, members)

	t.Run("overwrites destination", func(t *testing.T) {
		_, err := m.SetAdd(ctx, "dest", "stale")
		require.NoError(t, err)

		n, err := m.SetDiffStore(ctx, "dest", "b", "a")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		members, err := m.SetMembers(ctx, "dest")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"4"}, members)
	})

	t.Run("destination may be a source", func(t *testing.T) {
		_, err := m.SetAdd(ctx, "acc", 9)
		require.NoError(t, err)

		n, err := m.SetUnionStore(ctx, "acc", "acc", "a")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("new destination is not an input", func(t *testing.T) {
		n, err := m.SetInterStore(ctx, "fresh", "a", "fresh")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("no existing inputs stores an empty set", func(t *testing.T) {
		n, err := m.SetUnionStore(ctx, "empty", "x", "y")
		require.NoError(t, err)
		assert.Zero(t, n)

		_, ok := m.sets.lookup("empty")
		assert.True(t, ok)
	})

	t.Run("result is detached from sources", func(t *testing.T) {
		n, err := m.SetUnionStore(ctx, "copy", "a")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		_, err = m.SetAdd(ctx, "copy", 100)
		require.NoError(t, err)

		n, err = m.SetCard(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestMemory_SetStoreFailureIsReported(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxContainerLen(3))
	seedSets(t, m)

	n, err := m.SetUnionStore(ctx, "out", "a", "b")
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, errors.IsType(err, errors.ErrTypeStore))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, errors.IsType(appErr.Unwrap(), errors.ErrTypeCapacity))

	n, err = m.SetInterStore(ctx, "out", "a", "b")
	require.NoError(t, err, "a result within the limit stores fine")
	assert.Equal(t, int64(2), n)
}

func TestMemory_SetMove(t *testing.T) {
	ctx := context.Background()

	t.Run("moves between existing sets", func(t *testing.T) {
		m := NewMemory()
		seedSets(t, m)

		moved, err := m.SetMove(ctx, "a", "b", 1)
		require.NoError(t, err)
		assert.True(t, moved)

		inA, _ := m.SetIsMember(ctx, "a", 1)
		inB, _ := m.SetIsMember(ctx, "b", 1)
		assert.False(t, inA)
		assert.True(t, inB)
	})

	t.Run("missing destination leaves source untouched", func(t *testing.T) {
		m := NewMemory()
		seedSets(t, m)

		moved, err := m.SetMove(ctx, "a", "nowhere", 1)
		require.NoError(t, err)
		assert.False(t, moved)

		members, err := m.SetMembers(ctx, "a")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "2", "3"}, members)

		_, ok := m.sets.lookup("nowhere")
		assert.False(t, ok)
	})

	t.Run("member not in source", func(t *testing.T) {
		m := NewMemory()
		seedSets(t, m)

		moved, err := m.SetMove(ctx, "a", "b", 4)
		require.NoError(t, err)
		assert.False(t, moved)

		n, _ := m.SetCard(ctx, "b")
		assert.Equal(t, int64(3), n)
	})

	t.Run("missing source", func(t *testing.T) {
		m := NewMemory()
		seedSets(t, m)

		moved, err := m.SetMove(ctx, "nope", "b", 2)
		require.NoError(t, err)
		assert.False(t, moved)
	})

	t.Run("same source and destination", func(t *testing.T) {
		m := NewMemory()
		seedSets(t, m)

		moved, err := m.SetMove(ctx, "a", "a", 1)
		require.NoError(t, err)
		assert.True(t, moved)

		moved, err = m.SetMove(ctx, "a", "a", 9)
		require.NoError(t, err)
		assert.False(t, moved)

		n, _ := m.SetCard(ctx, "a")
		assert.Equal(t, int64(3), n)
	})

	t.Run("full destination", func(t *testing.T) {
		m := NewMemory(WithMaxContainerLen(3))
		seedSets(t, m)

		moved, err := m.SetMove(ctx, "a", "b", 1)
		assert.False(t, moved)
		assert.True(t, errors.IsType(err, errors.ErrTypeCapacity))

		inA, _ := m.SetIsMember(ctx, "a", 1)
		assert.True(t, inA)
	})
}

func TestMemory_SetCapacity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxContainerLen(2))

	_, err := m.SetAdd(ctx, "s", "a", "b", "a")
	require.NoError(t, err)

	ok, err := m.SetAdd(ctx, "s", "b")
	require.NoError(t, err, "re-adding a member does not grow the set")
	assert.True(t, ok)

	ok, err = m.SetAdd(ctx, "s", "c")
	assert.False(t, ok)
	assert.True(t, errors.IsType(err, errors.ErrTypeCapacity))
}

func TestMemory_ConcurrentAddRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	const workers, perWorker = 8, 200

	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			_, err := m.SetAdd(ctx, "shared", fmt.Sprintf("old-%d-%d", w, i))
			require.NoError(t, err)
		}
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				if _, err := m.SetAdd(ctx, "shared", fmt.Sprintf("new-%d-%d", w, i)); err != nil {
					return err
				}
			}
			return nil
		})
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				if _, err := m.SetRem(ctx, "shared", fmt.Sprintf("old-%d-%d", w, i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	n, err := m.SetCard(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), n)
}

func TestMemory_ConcurrentContainerCreation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var g errgroup.Group
	for w := 0; w < 16; w++ {
		w := w
		g.Go(func() error {
			_, err := m.HashSet(ctx, "h", fmt.Sprintf("f%d", w), w)
			return err
		})
	}
	require.NoError(t, g.Wait())

	n, err := m.HashLen(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, int64(16), n)
}

func TestMemory_InverseMovesDoNotDeadlock(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 100; i++ {
		_, err := m.SetAdd(ctx, "left", fmt.Sprintf("l%d", i))
		require.NoError(t, err)
		_, err = m.SetAdd(ctx, "right", fmt.Sprintf("r%d", i))
		require.NoError(t, err)
	}

	done := make(chan error, 1)
	go func() {
		var g errgroup.Group
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				if _, err := m.SetMove(ctx, "left", "right", fmt.Sprintf("l%d", i)); err != nil {
					return err
				}
				if _, err := m.SetUnionStore(ctx, "left", "left", "right"); err != nil {
					return err
				}
			}
			return nil
		})
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				if _, err := m.SetMove(ctx, "right", "left", fmt.Sprintf("r%d", i)); err != nil {
					return err
				}
				if _, err := m.SetInterStore(ctx, "right", "right", "left"); err != nil {
					return err
				}
			}
			return nil
		})
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("opposite-direction operations deadlocked")
	}

	total, err := m.SetUnion(ctx, "left", "right")
	require.NoError(t, err)
	assert.NotEmpty(t, total)
}
