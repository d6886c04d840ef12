package cache

import (
	"context"

	"mouscache/internal/common/errors"
)

// SetAdd implements SetAccess. Duplicate members collapse.
func (m *Memory) SetAdd(_ context.Context, key string, members ...interface{}) (bool, error) {
	s, err := m.sets.ensure(key)
	if err != nil {
		return false, err
	}

	values := formatValues(members)

	s.mu.Lock()
	defer s.mu.Unlock()

	if m.maxContainerLen > 0 {
		fresh := make(memberSet)
		for _, v := range values {
			if _, ok := s.data[v]; !ok {
				fresh[v] = struct{}{}
			}
		}
		if m.exceeds(len(s.data) + len(fresh)) {
			return false, errors.CapacityError(key, m.maxContainerLen)
		}
	}

	for _, v := range values {
		s.data[v] = struct{}{}
	}
	return true, nil
}

// SetCard implements SetAccess.
func (m *Memory) SetCard(_ context.Context, key string) (int64, error) {
	s, ok := m.sets.lookup(key)
	if !ok {
		return 0, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

// SetIsMember implements SetAccess.
func (m *Memory) SetIsMember(_ context.Context, key string, member interface{}) (bool, error) {
	s, ok := m.sets.lookup(key)
	if !ok {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok = s.data[formatValue(member)]
	return ok, nil
}

// SetMembers implements SetAccess.
func (m *Memory) SetMembers(_ context.Context, key string) ([]string, error) {
	s, ok := m.sets.lookup(key)
	if !ok {
		return []string{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.slice(), nil
}

// SetRem implements SetAccess. It reports whether member was removed.
func (m *Memory) SetRem(_ context.Context, key string, member interface{}) (bool, error) {
	s, ok := m.sets.lookup(key)
	if !ok {
		return false, nil
	}

	v := formatValue(member)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[v]; !ok {
		return false, nil
	}
	delete(s.data, v)
	return true, nil
}

// SetMove moves member from source to destination. Both sets must already exist;
// otherwise nothing changes and false is returned.
func (m *Memory) SetMove(_ context.Context, source, destination string, member interface{}) (bool, error) {
	v := formatValue(member)

	if source == destination {
		s, ok := m.sets.lookup(source)
		if !ok {
			return false, nil
		}
		s.mu.RLock()
		defer s.mu.RUnlock()
		_, ok = s.data[v]
		return ok, nil
	}

	found := m.sets.existing([]string{source, destination})
	if len(found) != 2 {
		return false, nil
	}
	src, dst := found[0].c, found[1].c

	unlock := lockOrdered([]lockTarget{
		{key: source, mu: &src.mu, exclusive: true},
		{key: destination, mu: &dst.mu, exclusive: true},
	})
	defer unlock()

	if _, ok := src.data[v]; !ok {
		return false, nil
	}
	if _, ok := dst.data[v]; !ok && m.exceeds(len(dst.data)+1) {
		return false, errors.CapacityError(destination, m.maxContainerLen)
	}

	dst.data[v] = struct{}{}
	delete(src.data, v)
	return true, nil
}

// SetDiff implements SetAccess. Keys with no set are skipped rather than treated as empty.
func (m *Memory) SetDiff(_ context.Context, keys ...string) ([]string, error) {
	return m.compute(keys, difference).slice(), nil
}

// SetInter implements SetAccess.
func (m *Memory) SetInter(_ context.Context, keys ...string) ([]string, error) {
	return m.compute(keys, intersection).slice(), nil
}

// SetUnion implements SetAccess.
func (m *Memory) SetUnion(_ context.Context, keys ...string) ([]string, error) {
	return m.compute(keys, union).slice(), nil
}

// SetDiffStore implements SetAccess.
func (m *Memory) SetDiffStore(_ context.Context, destination string, keys ...string) (int64, error) {
	return m.store(destination, keys, difference)
}

// SetInterStore implements SetAccess.
func (m *Memory) SetInterStore(_ context.Context, destination string, keys ...string) (int64, error) {
	return m.store(destination, keys, intersection)
}

// SetUnionStore implements SetAccess.
func (m *Memory) SetUnionStore(_ context.Context, destination string, keys ...string) (int64, error) {
	return m.store(destination, keys, union)
}

func (m *Memory) compute(keys []string, op setOp) memberSet {
	sources := m.sets.existing(keys)

	targets := make([]lockTarget, 0, len(sources))
	for _, src := range sources {
		targets = append(targets, lockTarget{key: src.key, mu: &src.c.mu})
	}
	unlock := lockOrdered(targets)
	defer unlock()

	return fold(contents(sources), op)
}

// store replaces destination with the result of op over keys. Sources are
// resolved before destination is created so a new destination never counts as
// an input.
func (m *Memory) store(destination string, keys []string, op setOp) (int64, error) {
	sources := m.sets.existing(keys)

	dst, err := m.sets.ensure(destination)
	if err != nil {
		return 0, errors.StoreError(destination, err)
	}

	targets := make([]lockTarget, 0, len(sources)+1)
	for _, src := range sources {
		targets = append(targets, lockTarget{key: src.key, mu: &src.c.mu})
	}
	targets = append(targets, lockTarget{key: destination, mu: &dst.mu, exclusive: true})
	unlock := lockOrdered(targets)
	defer unlock()

	result := fold(contents(sources), op)
	if m.exceeds(len(result)) {
		return 0, errors.StoreError(destination, errors.CapacityError(destination, m.maxContainerLen))
	}

	dst.data = result
	return int64(len(result)), nil
}

func contents(sources []namedContainer[memberSet]) []memberSet {
	out := make([]memberSet, len(sources))
	for i, src := range sources {
		out[i] = src.c.data
	}
	return out
}
