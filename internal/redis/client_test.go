package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(&Config{
		Address:  mr.Addr(),
		PoolSize: 10,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewClient(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		client, err := NewClient(nil)
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("applies defaults", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		config := &Config{Address: mr.Addr()}
		client, err := NewClient(config)
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 10, config.PoolSize)
		assert.Equal(t, mr.Addr(), client.Address())
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		client, err := NewClient(&Config{Address: addr})
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), addr)
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)

	assert.NoError(t, client.Health())

	mr.SetError("LOADING server is loading")
	assert.Error(t, client.Health())

	mr.SetError("")
	assert.NoError(t, client.Health())
}

func TestClient_Redis(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Redis().SAdd(ctx, "tags", "a", "b").Err())

	members, err := mr.Members("tags")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	stats := client.PoolStats()
	assert.GreaterOrEqual(t, stats.TotalConns, uint32(1))
}
