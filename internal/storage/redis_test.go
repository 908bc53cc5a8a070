package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		_, client := newMiniredisClient(t)
		return NewRedisStore(client)
	})
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	mr, client := newMiniredisClient(t)
	s := NewRedisStore(client, WithRedisPrefix("test:"), WithRedisTTL(time.Hour))
	ctx := context.Background()

	_, err := s.Upsert(ctx, "wf", []ChunkInput{{Text: "a"}})
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:wf"))
	assert.Equal(t, time.Hour, mr.TTL("test:wf"))

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, "wf")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestRedisStore_CorruptChunk(t *testing.T) {
	mr, client := newMiniredisClient(t)
	s := NewRedisStore(client)

	mr.HSet("auraflow:collection:wf", "chunk-0", "{not json")

	_, err := s.Get(context.Background(), "wf")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCollectionNotFound)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := DialRedis(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	defer s.Close()

	mr.Close()
	_, err = DialRedis(ctx, mr.Addr(), "", 0)
	assert.Error(t, err)
}
