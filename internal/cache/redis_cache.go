package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/samber/lo"

	"mouscache/internal/circuitbreaker"
	"mouscache/internal/common/errors"
)

// typeField holds the Go type of an object written through ObjectAccess so Get
// can refuse to decode it into a different type.
const typeField = "__type"

var (
	// setMoveScript refuses to move into a destination that does not exist yet.
	setMoveScript = redis.NewScript(`
if KEYS[1] == KEYS[2] then
  return redis.call('SISMEMBER', KEYS[1], ARGV[1])
end
if redis.call('EXISTS', KEYS[2]) == 0 then
  return 0
end
return redis.call('SMOVE', KEYS[1], KEYS[2], ARGV[1])
`)

	// algebraScript runs ARGV[1] (SDIFF, SINTER or SUNION) over the keys that exist.
	algebraScript = redis.NewScript(`
local present = {}
for _, k in ipairs(KEYS) do
  if redis.call('EXISTS', k) == 1 then
    table.insert(present, k)
  end
end
if #present == 0 then
  return {}
end
return redis.call(ARGV[1], unpack(present))
`)

	// storeScript runs ARGV[1] (SDIFFSTORE, SINTERSTORE or SUNIONSTORE) into KEYS[1]
	// over the remaining keys that exist.
	storeScript = redis.NewScript(`
local present = {}
for i = 2, #KEYS do
  if redis.call('EXISTS', KEYS[i]) == 1 then
    table.insert(present, KEYS[i])
  end
end
if #present == 0 then
  redis.call('DEL', KEYS[1])
  return 0
end
return redis.call(ARGV[1], KEYS[1], unpack(present))
`)
)

// RedisClient is the part of go-redis the backend needs.
type RedisClient interface {
	redis.Cmdable
	redis.Scripter
}

// RedisCache forwards every operation to Redis with the same logical semantics
// as Memory. Objects expire through Redis' native expiry, so ContainsKey never
// reports an expired object. Redis cannot hold empty sets: a store that
// produces nothing leaves no destination key.
type RedisCache struct {
	client  RedisClient
	breaker *circuitbreaker.GoBreakerAdapter
	prefix  string
}

// NewRedisCache wraps client. breaker may be nil. Close does not close client;
// its owner does.
func NewRedisCache(client RedisClient, breaker *circuitbreaker.GoBreakerAdapter, keyPrefix string) *RedisCache {
	return &RedisCache{
		client:  client,
		breaker: breaker,
		prefix:  keyPrefix,
	}
}

// Close implements Cache.
func (r *RedisCache) Close() error {
	return nil
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) keys(ks []string) []string {
	return lo.Map(ks, func(k string, _ int) string {
		return r.key(k)
	})
}

// run executes fn through the breaker. Plain redis errors become connection errors.
func (r *RedisCache) run(ctx context.Context, op string, fn func() error) error {
	call := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return err
		}
		return errors.ConnectionError(fmt.Sprintf("redis %s failed", op), err)
	}

	if r.breaker == nil {
		return call()
	}
	return r.breaker.Execute(ctx, call)
}

// Insert implements ObjectAccess.
func (r *RedisCache) Insert(ctx context.Context, key string, obj Cacheable) error {
	if err := checkObject(obj); err != nil {
		return err
	}
	return r.InsertWith(ctx, key, obj, obj.ExpiresAfter())
}

// InsertWith implements ObjectAccess.
func (r *RedisCache) InsertWith(ctx context.Context, key string, obj Cacheable, ttl time.Duration) error {
	if err := checkObject(obj); err != nil {
		return err
	}

	tkey := r.key(ObjectKey(obj, key))
	fields := obj.ToFields()
	args := make([]interface{}, 0, 2*len(fields)+2)
	for f, v := range fields {
		args = append(args, f, v)
	}
	args = append(args, typeField, concreteType(obj).String())

	return r.run(ctx, "insert", func() error {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, tkey)
			pipe.HSet(ctx, tkey, args...)
			if ttl > 0 {
				pipe.PExpire(ctx, tkey, ttl)
			}
			return nil
		})
		return err
	})
}

// Get implements ObjectAccess.
func (r *RedisCache) Get(ctx context.Context, key string, dest Cacheable) (bool, error) {
	if err := checkDestination(dest); err != nil {
		return false, err
	}

	tkey := ObjectKey(dest, key)
	var fields map[string]string
	err := r.run(ctx, "get", func() error {
		var err error
		fields, err = r.client.HGetAll(ctx, r.key(tkey)).Result()
		return err
	})
	if err != nil || len(fields) == 0 {
		return false, err
	}

	requested := concreteType(dest).String()
	if stored, ok := fields[typeField]; ok && stored != requested {
		return false, errors.TypeMismatchError(tkey, stored, requested)
	}
	delete(fields, typeField)

	if err := dest.FromFields(fields); err != nil {
		return false, errors.ParseError(tkey, requested, err)
	}
	return true, nil
}

// ContainsKey implements ObjectAccess.
func (r *RedisCache) ContainsKey(ctx context.Context, key string, model Cacheable) (bool, error) {
	if model == nil {
		return false, errors.ValidationError("model is required")
	}

	var n int64
	err := r.run(ctx, "exists", func() error {
		var err error
		n, err = r.client.Exists(ctx, r.key(ObjectKey(model, key))).Result()
		return err
	})
	return n > 0, err
}

// Remove implements ObjectAccess.
func (r *RedisCache) Remove(ctx context.Context, key string, model Cacheable) error {
	if model == nil {
		return errors.ValidationError("model is required")
	}

	return r.run(ctx, "remove", func() error {
		return r.client.Del(ctx, r.key(ObjectKey(model, key))).Err()
	})
}

// HashSet implements HashAccess.
func (r *RedisCache) HashSet(ctx context.Context, key, field string, value interface{}) (bool, error) {
	err := r.run(ctx, "hset", func() error {
		return r.client.HSet(ctx, r.key(key), field, formatValue(value)).Err()
	})
	return err == nil, err
}

// HashSetIfNotExists implements HashAccess.
func (r *RedisCache) HashSetIfNotExists(ctx context.Context, key, field string, value interface{}) (bool, error) {
	var set bool
	err := r.run(ctx, "hsetnx", func() error {
		var err error
		set, err = r.client.HSetNX(ctx, r.key(key), field, formatValue(value)).Result()
		return err
	})
	return set, err
}

// HashMultipleSet implements HashAccess.
func (r *RedisCache) HashMultipleSet(ctx context.Context, key string, pairs []FieldValue) (bool, error) {
	if len(pairs) == 0 {
		return true, nil
	}

	args := make([]interface{}, 0, 2*len(pairs))
	for _, p := range pairs {
		args = append(args, p.Field, formatValue(p.Value))
	}

	err := r.run(ctx, "hset", func() error {
		return r.client.HSet(ctx, r.key(key), args...).Err()
	})
	return err == nil, err
}

// HashGet implements HashAccess.
func (r *RedisCache) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := r.run(ctx, "hget", func() error {
		v, err := r.client.HGet(ctx, r.key(key), field).Result()
		if err == redis.Nil {
			return nil
		}
		value, found = v, err == nil
		return err
	})
	return value, found, err
}

// HashMultipleGet implements HashAccess.
func (r *RedisCache) HashMultipleGet(ctx context.Context, key string, fields ...string) ([]*string, error) {
	out := make([]*string, len(fields))
	if len(fields) == 0 {
		return out, nil
	}

	err := r.run(ctx, "hmget", func() error {
		values, err := r.client.HMGet(ctx, r.key(key), fields...).Result()
		if err != nil {
			return err
		}
		for i, v := range values {
			if s, ok := v.(string); ok {
				out[i] = lo.ToPtr(s)
			}
		}
		return nil
	})
	return out, err
}

// HashGetAll reads the object stored under key, see Memory.HashGetAll.
func (r *RedisCache) HashGetAll(ctx context.Context, key string, dest Cacheable) (bool, error) {
	return r.Get(ctx, key, dest)
}

// HashSetAll stores obj under key, see Memory.HashSetAll.
func (r *RedisCache) HashSetAll(ctx context.Context, key string, obj Cacheable) (bool, error) {
	if err := r.Insert(ctx, key, obj); err != nil {
		return false, err
	}
	return true, nil
}

// HashDelete implements HashAccess.
func (r *RedisCache) HashDelete(ctx context.Context, key string, fields ...string) (bool, error) {
	if len(fields) == 0 {
		return true, nil
	}

	err := r.run(ctx, "hdel", func() error {
		return r.client.HDel(ctx, r.key(key), fields...).Err()
	})
	return err == nil, err
}

// HashExists implements HashAccess.
func (r *RedisCache) HashExists(ctx context.Context, key, field string) (bool, error) {
	var exists bool
	err := r.run(ctx, "hexists", func() error {
		var err error
		exists, err = r.client.HExists(ctx, r.key(key), field).Result()
		return err
	})
	return exists, err
}

// HashKeys implements HashAccess.
func (r *RedisCache) HashKeys(ctx context.Context, key string) ([]string, error) {
	keys := []string{}
	err := r.run(ctx, "hkeys", func() error {
		var err error
		keys, err = r.client.HKeys(ctx, r.key(key)).Result()
		return err
	})
	return keys, err
}

// HashValues implements HashAccess.
func (r *RedisCache) HashValues(ctx context.Context, key string) ([]string, error) {
	values := []string{}
	err := r.run(ctx, "hvals", func() error {
		var err error
		values, err = r.client.HVals(ctx, r.key(key)).Result()
		return err
	})
	return values, err
}

// HashLen implements HashAccess.
func (r *RedisCache) HashLen(ctx context.Context, key string) (int64, error) {
	var n int64
	err := r.run(ctx, "hlen", func() error {
		var err error
		n, err = r.client.HLen(ctx, r.key(key)).Result()
		return err
	})
	return n, err
}

// SetAdd implements SetAccess.
func (r *RedisCache) SetAdd(ctx context.Context, key string, members ...interface{}) (bool, error) {
	if len(members) == 0 {
		return true, nil
	}

	values := lo.Map(formatValues(members), func(v string, _ int) interface{} {
		return v
	})
	err := r.run(ctx, "sadd", func() error {
		return r.client.SAdd(ctx, r.key(key), values...).Err()
	})
	return err == nil, err
}

// SetCard implements SetAccess.
func (r *RedisCache) SetCard(ctx context.Context, key string) (int64, error) {
	var n int64
	err := r.run(ctx, "scard", func() error {
		var err error
		n, err = r.client.SCard(ctx, r.key(key)).Result()
		return err
	})
	return n, err
}

// SetIsMember implements SetAccess.
func (r *RedisCache) SetIsMember(ctx context.Context, key string, member interface{}) (bool, error) {
	var ok bool
	err := r.run(ctx, "sismember", func() error {
		var err error
		ok, err = r.client.SIsMember(ctx, r.key(key), formatValue(member)).Result()
		return err
	})
	return ok, err
}

// SetMembers implements SetAccess.
func (r *RedisCache) SetMembers(ctx context.Context, key string) ([]string, error) {
	members := []string{}
	err := r.run(ctx, "smembers", func() error {
		var err error
		members, err = r.client.SMembers(ctx, r.key(key)).Result()
		return err
	})
	return members, err
}

// SetRem implements SetAccess.
func (r *RedisCache) SetRem(ctx context.Context, key string, member interface{}) (bool, error) {
	var n int64
	err := r.run(ctx, "srem", func() error {
		var err error
		n, err = r.client.SRem(ctx, r.key(key), formatValue(member)).Result()
		return err
	})
	return n > 0, err
}

// SetMove implements SetAccess.
func (r *RedisCache) SetMove(ctx context.Context, source, destination string, member interface{}) (bool, error) {
	var moved bool
	err := r.run(ctx, "smove", func() error {
		var err error
		moved, err = setMoveScript.Run(ctx, r.client, []string{r.key(source), r.key(destination)}, formatValue(member)).Bool()
		return err
	})
	return moved, err
}

// SetDiff implements SetAccess.
func (r *RedisCache) SetDiff(ctx context.Context, keys ...string) ([]string, error) {
	return r.compute(ctx, "SDIFF", keys)
}

// SetInter implements SetAccess.
func (r *RedisCache) SetInter(ctx context.Context, keys ...string) ([]string, error) {
	return r.compute(ctx, "SINTER", keys)
}

// SetUnion implements SetAccess.
func (r *RedisCache) SetUnion(ctx context.Context, keys ...string) ([]string, error) {
	return r.compute(ctx, "SUNION", keys)
}

// SetDiffStore implements SetAccess.
func (r *RedisCache) SetDiffStore(ctx context.Context, destination string, keys ...string) (int64, error) {
	return r.store(ctx, "SDIFFSTORE", destination, keys)
}

// SetInterStore implements SetAccess.
func (r *RedisCache) SetInterStore(ctx context.Context, destination string, keys ...string) (int64, error) {
	return r.store(ctx, "SINTERSTORE", destination, keys)
}

// SetUnionStore implements SetAccess.
func (r *RedisCache) SetUnionStore(ctx context.Context, destination string, keys ...string) (int64, error) {
	return r.store(ctx, "SUNIONSTORE", destination, keys)
}

func (r *RedisCache) compute(ctx context.Context, command string, keys []string) ([]string, error) {
	members := []string{}
	if len(keys) == 0 {
		return members, nil
	}

	err := r.run(ctx, command, func() error {
		var err error
		members, err = algebraScript.Run(ctx, r.client, r.keys(keys), command).StringSlice()
		return err
	})
	return members, err
}

func (r *RedisCache) store(ctx context.Context, command, destination string, keys []string) (int64, error) {
	var n int64
	err := r.run(ctx, command, func() error {
		var err error
		n, err = storeScript.Run(ctx, r.client, append([]string{r.key(destination)}, r.keys(keys)...), command).Int64()
		return err
	})
	if err != nil {
		return 0, errors.StoreError(destination, err)
	}
	return n, nil
}
