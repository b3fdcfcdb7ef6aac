package runlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	unlock, err := Noop{}.Lock(context.Background(), "k")
	require.NoError(t, err)
	assert.NoError(t, unlock(context.Background()))
}

func TestNewRedisLocker_DefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	assert.Equal(t, DefaultTTL, NewRedisLocker(client, 0).ttl)
	assert.Equal(t, time.Minute, NewRedisLocker(client, time.Minute).ttl)
}

func TestRedisLocker_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, err := NewRedisLocker(client, time.Minute).Lock(context.Background(), "guard-rota:Grand:2025-06-01")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLocked))
}
