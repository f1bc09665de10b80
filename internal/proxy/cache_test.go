package proxy

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/dashboard/internal/config"
)

func TestNewRedisClientRequiresAddress(t *testing.T) {
	client, err := NewRedisClient(config.RedisConfig{})
	assert.True(t, errors.Is(err, ErrEmptyAddress))
	assert.Nil(t, client)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}

	client, err := NewRedisClient(config.RedisConfig{Address: addr})
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte(`{"a":1}`), time.Minute))
	v, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(v))
}
