package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &store{client: client}, srv
}

func TestStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestStore(t)

	first, err := s.MarkProcessed(ctx, "pf-1001", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkProcessed(ctx, "pf-1001", time.Hour)
	require.NoError(t, err)
	assert.False(t, again, "a redelivered notification is a duplicate")

	assert.True(t, srv.Exists(keyPrefix+"pf-1001"))
	assert.Equal(t, time.Hour, srv.TTL(keyPrefix+"pf-1001"))

	srv.FastForward(time.Hour + time.Second)
	afterExpiry, err := s.MarkProcessed(ctx, "pf-1001", time.Hour)
	require.NoError(t, err)
	assert.True(t, afterExpiry)
}

func TestStore_ForgetAllowsRedelivery(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestStore(t)

	_, err := s.MarkProcessed(ctx, "pf-2002", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Forget(ctx, "pf-2002"))
	assert.False(t, srv.Exists(keyPrefix+"pf-2002"))

	retried, err := s.MarkProcessed(ctx, "pf-2002", time.Hour)
	require.NoError(t, err)
	assert.True(t, retried)

	require.NoError(t, s.Forget(ctx, "never-seen"))
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestStore(t)
	srv.Close()

	_, err := s.MarkProcessed(ctx, "pf-3003", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redisIdempotency.MarkProcessed")
	assert.Error(t, s.Forget(ctx, "pf-3003"))
}
