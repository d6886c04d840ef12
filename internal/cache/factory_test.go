package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default is memory", func(t *testing.T) {
		c, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, c)
	})

	t.Run("memory with limit", func(t *testing.T) {
		c, err := New(Config{Type: TypeMemory, MaxContainerLen: 4})
		require.NoError(t, err)
		assert.Equal(t, 4, c.(*Memory).maxContainerLen)
	})

	t.Run("redis requires a client", func(t *testing.T) {
		_, err := New(Config{Type: TypeRedis})
		assert.Error(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		c, err := New(Config{Type: TypeRedis, RedisClient: client, KeyPrefix: "app:"})
		require.NoError(t, err)
		require.IsType(t, &RedisCache{}, c)
		assert.Equal(t, "app:k", c.(*RedisCache).key("k"))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(Config{Type: "two_tier"})
		assert.Error(t, err)
		assert.Panics(t, func() { MustNew(Config{Type: "two_tier"}) })
	})
}
