package cache

import (
	"context"

	"github.com/samber/lo"

	"mouscache/internal/common/errors"
)

// HashSet implements HashAccess.
func (m *Memory) HashSet(_ context.Context, key, field string, value interface{}) (bool, error) {
	h, err := m.hashes.ensure(key)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.data[field]; !exists && m.exceeds(len(h.data)+1) {
		return false, errors.CapacityError(key, m.maxContainerLen)
	}
	h.data[field] = formatValue(value)
	return true, nil
}

// HashSetIfNotExists implements HashAccess. It returns false without writing
// when field is already present.
func (m *Memory) HashSetIfNotExists(_ context.Context, key, field string, value interface{}) (bool, error) {
	h, err := m.hashes.ensure(key)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.data[field]; exists {
		return false, nil
	}
	if m.exceeds(len(h.data) + 1) {
		return false, errors.CapacityError(key, m.maxContainerLen)
	}
	h.data[field] = formatValue(value)
	return true, nil
}

// HashMultipleSet implements HashAccess. Either every pair is written or none is.
func (m *Memory) HashMultipleSet(_ context.Context, key string, pairs []FieldValue) (bool, error) {
	h, err := m.hashes.ensure(key)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	added := lo.Uniq(lo.FilterMap(pairs, func(p FieldValue, _ int) (string, bool) {
		_, exists := h.data[p.Field]
		return p.Field, !exists
	}))
	if m.exceeds(len(h.data) + len(added)) {
		return false, errors.CapacityError(key, m.maxContainerLen)
	}

	for _, p := range pairs {
		h.data[p.Field] = formatValue(p.Value)
	}
	return true, nil
}

// HashGet implements HashAccess.
func (m *Memory) HashGet(_ context.Context, key, field string) (string, bool, error) {
	h, ok := m.hashes.lookup(key)
	if !ok {
		return "", false, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.data[field]
	return v, ok, nil
}

// HashMultipleGet implements HashAccess. The result lines up with fields; absent ones are nil.
func (m *Memory) HashMultipleGet(_ context.Context, key string, fields ...string) ([]*string, error) {
	out := make([]*string, len(fields))

	h, ok := m.hashes.lookup(key)
	if !ok {
		return out, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for i, f := range fields {
		if v, ok := h.data[f]; ok {
			out[i] = lo.ToPtr(v)
		}
	}
	return out, nil
}

// HashGetAll reads the object stored under key through the object namespace.
// Hashes and whole objects share keys: this is Get, not a view of the hash container.
func (m *Memory) HashGetAll(ctx context.Context, key string, dest Cacheable) (bool, error) {
	return m.Get(ctx, key, dest)
}

// HashSetAll stores obj under key through the object namespace, see HashGetAll.
func (m *Memory) HashSetAll(ctx context.Context, key string, obj Cacheable) (bool, error) {
	if err := m.Insert(ctx, key, obj); err != nil {
		return false, err
	}
	return true, nil
}

// HashDelete implements HashAccess. Missing hashes and fields are ignored.
func (m *Memory) HashDelete(_ context.Context, key string, fields ...string) (bool, error) {
	h, ok := m.hashes.lookup(key)
	if !ok {
		return true, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range fields {
		delete(h.data, f)
	}
	return true, nil
}

// HashExists implements HashAccess.
func (m *Memory) HashExists(_ context.Context, key, field string) (bool, error) {
	h, ok := m.hashes.lookup(key)
	if !ok {
		return false, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok = h.data[field]
	return ok, nil
}

// HashKeys implements HashAccess.
func (m *Memory) HashKeys(_ context.Context, key string) ([]string, error) {
	h, ok := m.hashes.lookup(key)
	if !ok {
		return []string{}, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.data), nil
}

// HashValues implements HashAccess.
func (m *Memory) HashValues(_ context.Context, key string) ([]string, error) {
	h, ok := m.hashes.lookup(key)
	if !ok {
		return []string{}, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Values(h.data), nil
}

// HashLen implements HashAccess.
func (m *Memory) HashLen(_ context.Context, key string) (int64, error) {
	h, ok := m.hashes.lookup(key)
	if !ok {
		return 0, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return int64(len(h.data)), nil
}
