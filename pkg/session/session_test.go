package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/storefront-client/pkg/models"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestSession_LoginLogoutLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := New(ctx, store, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.AccessToken())

	require.NoError(t, sess.Login(ctx, models.TokenPair{Access: "acc-1", Refresh: "ref-1"}))
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "acc-1", sess.AccessToken())
	assert.Equal(t, "ref-1", sess.RefreshToken())

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", stored.Access)

	require.NoError(t, sess.Logout(ctx))
	assert.False(t, sess.Authenticated())
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestSession_RestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, models.TokenPair{Access: "persisted"}))

	sess, err := New(ctx, store, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "persisted", sess.AccessToken())
}

func TestSession_LoginRejectsEmptyToken(t *testing.T) {
	sess := Anonymous()
	err := sess.Login(context.Background(), models.TokenPair{Refresh: "only-refresh"})
	assert.Error(t, err)
	assert.False(t, sess.Authenticated())
}

func TestSession_RefreshKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	sess := Anonymous()
	require.NoError(t, sess.Login(ctx, models.TokenPair{Access: "a1", Refresh: "r1"}))

	require.NoError(t, sess.Refresh(ctx, models.TokenPair{Access: "a2"}))
	assert.Equal(t, "a2", sess.AccessToken())
	assert.Equal(t, "r1", sess.RefreshToken())
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Clear(context.Context) error { return errors.New("disk full") }

func TestSession_LogoutClearsMemoryEvenIfStoreFails(t *testing.T) {
	ctx := context.Background()
	sess, err := New(ctx, &failingStore{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, sess.Login(ctx, models.TokenPair{Access: "a"}))

	err = sess.Logout(ctx)
	assert.Error(t, err)
	assert.False(t, sess.Authenticated())
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoTokens)

	require.NoError(t, store.Save(ctx, models.TokenPair{Access: "file-acc", Refresh: "file-ref"}))

	tokens, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "file-acc", tokens.Access)
	assert.Equal(t, "file-ref", tokens.Refresh)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing twice is not an error")
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestRedisStore_SaveLoadClear(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewRedisStore(client, "alice")

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoTokens)

	require.NoError(t, store.Save(ctx, models.TokenPair{Access: "r-acc"}))
	assert.True(t, mr.Exists("storefront:session:alice"))

	tokens, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r-acc", tokens.Access)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("storefront:session:alice"))
}

func TestRedisStore_Options(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewRedisStore(client, "", WithPrefix("shop:"), WithTTL(time.Hour))

	assert.Equal(t, "shop:default", store.Key())
	require.NoError(t, store.Save(ctx, models.TokenPair{Access: "x"}))
	assert.Equal(t, time.Hour, mr.TTL("shop:default"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestRedisStore_CorruptData(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "bob")
	require.NoError(t, mr.Set(store.Key(), "{not json"))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTokens)
}

func TestNewRedisStore_Panic(t *testing.T) {
	assert.Panics(t, func() { NewRedisStore(nil, "x") })
}

func TestNew_PropagatesStoreError(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "carol")
	mr.Close()

	_, err := New(context.Background(), store, zerolog.Nop())
	assert.Error(t, err)
}
