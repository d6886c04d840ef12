package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"mouscache/internal/common/errors"
)

// Option configures a Memory cache.
type Option func(*Memory)

// WithClock replaces time.Now, mainly so tests can move time forward.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// WithMaxContainerLen caps the number of fields or members a single hash or set
// may hold. Writes that would exceed it fail with ErrTypeCapacity. 0 disables the cap.
func WithMaxContainerLen(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.maxContainerLen = n
		}
	}
}

type objectEntry struct {
	value      reflect.Value
	valueType  reflect.Type
	expiration *Expiration
}

type objectStore struct {
	mu      sync.RWMutex
	entries map[string]*objectEntry
}

// Memory is the in-process cache engine.
//
// A *Memory is the shared handle: every holder of the pointer sees the same
// storage and the cache lives as long as its longest holder. Memory starts no
// goroutines; expired objects are dropped on the next Get of their key.
type Memory struct {
	now             func() time.Time
	maxContainerLen int

	objects *objectStore
	hashes  *containerStore[map[string]string]
	sets    *containerStore[memberSet]
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		now:     time.Now,
		objects: &objectStore{entries: make(map[string]*objectEntry)},
		hashes: newContainerStore("hashmap", func() map[string]string {
			return make(map[string]string)
		}),
		sets: newContainerStore("hashset", func() memberSet {
			return make(memberSet)
		}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close is a no-op; Memory holds no external resources.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) exceeds(n int) bool {
	return m.maxContainerLen > 0 && n > m.maxContainerLen
}

// Insert implements ObjectAccess.
func (m *Memory) Insert(ctx context.Context, key string, obj Cacheable) error {
	if err := checkObject(obj); err != nil {
		return err
	}
	return m.InsertWith(ctx, key, obj, obj.ExpiresAfter())
}

// InsertWith implements ObjectAccess. The stored value is a copy of *obj.
func (m *Memory) InsertWith(_ context.Context, key string, obj Cacheable, ttl time.Duration) error {
	if err := checkObject(obj); err != nil {
		return err
	}

	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		elem := v.Elem()
		v = reflect.New(elem.Type()).Elem()
		v.Set(elem)
	}

	entry := &objectEntry{
		value:      v,
		valueType:  v.Type(),
		expiration: newExpiration(m.now(), ttl),
	}

	tkey := ObjectKey(obj, key)
	m.objects.mu.Lock()
	m.objects.entries[tkey] = entry
	m.objects.mu.Unlock()
	return nil
}

// Get implements ObjectAccess. The returned copy is shallow: maps and slices
// inside the object are shared with the stored value.
func (m *Memory) Get(_ context.Context, key string, dest Cacheable) (bool, error) {
	if err := checkDestination(dest); err != nil {
		return false, err
	}

	tkey := ObjectKey(dest, key)

	m.objects.mu.RLock()
	entry, ok := m.objects.entries[tkey]
	m.objects.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if entry.expiration != nil && entry.expiration.IsExpired(m.now()) {
		m.objects.mu.Lock()
		// Only drop the entry we saw; a concurrent Insert may have replaced it.
		if m.objects.entries[tkey] == entry {
			delete(m.objects.entries, tkey)
		}
		m.objects.mu.Unlock()
		return false, nil
	}

	target := reflect.ValueOf(dest).Elem()
	if target.Type() != entry.valueType {
		return false, errors.TypeMismatchError(tkey, entry.valueType.String(), target.Type().String())
	}
	target.Set(entry.value)
	return true, nil
}

// ContainsKey implements ObjectAccess. It does not look at expiration: an
// expired entry that has not been read since is still reported present.
func (m *Memory) ContainsKey(_ context.Context, key string, model Cacheable) (bool, error) {
	if model == nil {
		return false, errors.ValidationError("model is required")
	}

	m.objects.mu.RLock()
	defer m.objects.mu.RUnlock()
	_, ok := m.objects.entries[ObjectKey(model, key)]
	return ok, nil
}

// Remove implements ObjectAccess.
func (m *Memory) Remove(_ context.Context, key string, model Cacheable) error {
	if model == nil {
		return errors.ValidationError("model is required")
	}

	m.objects.mu.Lock()
	delete(m.objects.entries, ObjectKey(model, key))
	m.objects.mu.Unlock()
	return nil
}

// PurgeExpired removes every object entry whose TTL has elapsed and returns how many it dropped.
func (m *Memory) PurgeExpired() int {
	now := m.now()

	m.objects.mu.Lock()
	defer m.objects.mu.Unlock()

	purged := 0
	for k, entry := range m.objects.entries {
		if entry.expiration != nil && entry.expiration.IsExpired(now) {
			delete(m.objects.entries, k)
			purged++
		}
	}
	return purged
}

// Len reports the number of object entries, expired ones included.
func (m *Memory) Len() int {
	m.objects.mu.RLock()
	defer m.objects.mu.RUnlock()
	return len(m.objects.entries)
}

func checkObject(obj Cacheable) error {
	if obj == nil {
		return errors.ValidationError("object is required")
	}
	if v := reflect.ValueOf(obj); v.Kind() == reflect.Ptr && v.IsNil() {
		return errors.ValidationError(fmt.Sprintf("object must not be a nil %T", obj))
	}
	return nil
}
