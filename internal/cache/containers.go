package cache

import (
	"fmt"
	"sort"
	"sync"

	"mouscache/internal/common/errors"
)

// container is one hash or set together with the lock guarding its contents.
type container[T any] struct {
	mu   sync.RWMutex
	data T
}

type namedContainer[T any] struct {
	key string
	c   *container[T]
}

// containerStore maps keys to lazily created containers. Its lock only guards
// which containers exist; contents are guarded by each container's own lock.
type containerStore[T any] struct {
	kind       string
	mu         sync.RWMutex
	containers map[string]*container[T]
	newData    func() T
}

func newContainerStore[T any](kind string, newData func() T) *containerStore[T] {
	return &containerStore[T]{
		kind:       kind,
		containers: make(map[string]*container[T]),
		newData:    newData,
	}
}

func (s *containerStore[T]) lookup(key string) (*container[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[key]
	return c, ok
}

// ensure returns the container for key, creating it if needed.
func (s *containerStore[T]) ensure(key string) (*container[T], error) {
	if c, ok := s.lookup(key); ok {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another writer may have created it between the two locks.
	if c, ok := s.containers[key]; ok {
		return c, nil
	}
	return s.createLocked(key)
}

// createLocked inserts a new container. Callers hold s.mu exclusively and have
// checked that key is absent, so finding one here means the locking is broken.
func (s *containerStore[T]) createLocked(key string) (*container[T], error) {
	if _, exists := s.containers[key]; exists {
		return nil, errors.ConsistencyError(fmt.Sprintf("unable to insert a new %s: %q already exists", s.kind, key))
	}
	c := &container[T]{data: s.newData()}
	s.containers[key] = c
	return c, nil
}

// existing resolves keys under one shared lock, keeping list order and
// duplicates and skipping keys with no container.
func (s *containerStore[T]) existing(keys []string) []namedContainer[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]namedContainer[T], 0, len(keys))
	for _, key := range keys {
		if c, ok := s.containers[key]; ok {
			out = append(out, namedContainer[T]{key: key, c: c})
		}
	}
	return out
}

type lockTarget struct {
	key       string
	mu        *sync.RWMutex
	exclusive bool
}

// lockOrdered acquires every target in lexicographic key order, each mutex once
// (exclusively if any request for it was exclusive), and returns the release func.
// Every operation spanning several containers must go through here.
func lockOrdered(targets []lockTarget) func() {
	merged := make(map[string]lockTarget, len(targets))
	for _, t := range targets {
		if prev, ok := merged[t.key]; ok {
			prev.exclusive = prev.exclusive || t.exclusive
			merged[t.key] = prev
			continue
		}
		merged[t.key] = t
	}

	ordered := make([]lockTarget, 0, len(merged))
	for _, t := range merged {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	for _, t := range ordered {
		if t.exclusive {
			t.mu.Lock()
		} else {
			t.mu.RLock()
		}
	}

	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			if ordered[i].exclusive {
				ordered[i].mu.Unlock()
			} else {
				ordered[i].mu.RUnlock()
			}
		}
	}
}
