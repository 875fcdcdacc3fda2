package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实 Redis：TEST_REDIS_ADDR=127.0.0.1:6379 go test ./session
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestAppSessionLifecycle(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	store := NewAppSessionStore(rdb, time.Minute)
	uid := uuid.NewString()

	a, b := uuid.NewString(), uuid.NewString()
	require.NoError(t, store.Create(ctx, a, uid))
	require.NoError(t, store.Create(ctx, b, uid))

	got, err := store.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, uid, got.UserID)
	assert.Greater(t, got.ExpiresAt, got.IssuedAt)

	require.NoError(t, store.Delete(ctx, a))
	_, err = store.Get(ctx, a)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.RevokeAllForUser(ctx, uid))
	_, err = store.Get(ctx, b)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMarkSeenThrottle(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	store := NewAppSessionStore(rdb, time.Minute)
	uid := uuid.NewString()

	first, err := store.MarkSeen(ctx, uid, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	again, err := store.MarkSeen(ctx, uid, time.Minute)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestWebAuthnSessionStore(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	store := NewStore(rdb, time.Minute)
	sid := uuid.NewString()

	sd := &webauthn.SessionData{Challenge: "abc", UserID: []byte("u1")}
	require.NoError(t, store.SaveAuth(ctx, sid, sd))
	got, err := store.LoadAuth(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Challenge)

	store.DelAuth(ctx, sid)
	_, err = store.LoadAuth(ctx, sid)
	assert.Error(t, err)
}
