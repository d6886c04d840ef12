package cache

import (
	"context"
	"time"
)

// ObjectAccess stores whole Cacheable objects under namespaced keys.
type ObjectAccess interface {
	// Insert stores obj with its own default TTL, overwriting any previous entry.
	Insert(ctx context.Context, key string, obj Cacheable) error
	// InsertWith stores obj with an explicit TTL; ttl <= 0 means no expiration.
	InsertWith(ctx context.Context, key string, obj Cacheable, ttl time.Duration) error
	// Get copies the live entry into dest. Expired entries report false.
	Get(ctx context.Context, key string, dest Cacheable) (bool, error)
	// ContainsKey reports presence under model's namespace.
	ContainsKey(ctx context.Context, key string, model Cacheable) (bool, error)
	// Remove deletes the entry; removing an absent key is not an error.
	Remove(ctx context.Context, key string, model Cacheable) error
}

// HashAccess manipulates field/value containers.
type HashAccess interface {
	HashDelete(ctx context.Context, key string, fields ...string) (bool, error)
	HashExists(ctx context.Context, key, field string) (bool, error)
	HashGet(ctx context.Context, key, field string) (string, bool, error)
	// HashGetAll reads the whole object stored under key in dest's namespace.
	HashGetAll(ctx context.Context, key string, dest Cacheable) (bool, error)
	HashKeys(ctx context.Context, key string) ([]string, error)
	HashLen(ctx context.Context, key string) (int64, error)
	// HashMultipleGet returns one entry per requested field, nil when absent.
	HashMultipleGet(ctx context.Context, key string, fields ...string) ([]*string, error)
	HashMultipleSet(ctx context.Context, key string, pairs []FieldValue) (bool, error)
	HashSet(ctx context.Context, key, field string, value interface{}) (bool, error)
	// HashSetAll stores obj as a whole object, same as Insert.
	HashSetAll(ctx context.Context, key string, obj Cacheable) (bool, error)
	HashSetIfNotExists(ctx context.Context, key, field string, value interface{}) (bool, error)
	HashValues(ctx context.Context, key string) ([]string, error)
}

// SetAccess manipulates unique-member containers and computes set algebra across them.
//
// Algebra operations skip keys that do not exist rather than treating them as empty sets.
type SetAccess interface {
	SetAdd(ctx context.Context, key string, members ...interface{}) (bool, error)
	SetCard(ctx context.Context, key string) (int64, error)
	SetDiff(ctx context.Context, keys ...string) ([]string, error)
	SetDiffStore(ctx context.Context, destination string, keys ...string) (int64, error)
	SetInter(ctx context.Context, keys ...string) ([]string, error)
	SetInterStore(ctx context.Context, destination string, keys ...string) (int64, error)
	SetIsMember(ctx context.Context, key string, member interface{}) (bool, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
	// SetMove moves member from source to destination. It fails, leaving source
	// untouched, when destination does not exist.
	SetMove(ctx context.Context, source, destination string, member interface{}) (bool, error)
	SetRem(ctx context.Context, key string, member interface{}) (bool, error)
	SetUnion(ctx context.Context, keys ...string) ([]string, error)
	SetUnionStore(ctx context.Context, destination string, keys ...string) (int64, error)
}

// CollectionAccess groups the hash and set views.
type CollectionAccess interface {
	HashAccess
	SetAccess
}

// Cache is the full surface implemented by every backend.
type Cache interface {
	ObjectAccess
	CollectionAccess
	Close() error
}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*RedisCache)(nil)
)
