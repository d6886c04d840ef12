// Package cache provides an embeddable cache with two views of the same storage:
// a typed object store with optional TTL expiration, and Redis-style hashes and
// sets with set algebra.
//
// Two backends implement the Cache interface:
//
// 1. Memory - in-process engine
//   - objects, hashes and sets each live behind one RWMutex guarding existence
//   - every hash or set container carries its own RWMutex for its contents
//   - expired objects are removed lazily on the next Get (see Reaper for an
//     optional scheduled sweep)
//
// 2. RedisCache - the same operations forwarded to Redis via go-redis
//   - objects are stored as hashes under the same namespaced keys
//   - expiration uses Redis' native EXPIRE
//   - calls run through a circuit breaker
//
// Objects are stored under "<ModelName()>:<key>", so two types sharing a caller
// key never collide.
//
// Usage:
//
//	c := cache.NewMemory()
//	_ = c.Insert(ctx, "42", &user)
//
//	var out User
//	found, err := c.Get(ctx, "42", &out)
//
//	_, _ = c.SetAdd(ctx, "a", 1, 2, 3)
//	_, _ = c.SetAdd(ctx, "b", 2, 3, 4)
//	both, _ := c.SetInter(ctx, "a", "b") // [2 3] in any order
//
//	// Using the factory
//	c, err := cache.New(cache.Config{Type: cache.TypeRedis, RedisClient: rdb})
package cache
