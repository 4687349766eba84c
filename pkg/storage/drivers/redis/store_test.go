package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/quill/pkg/storage"
	quillredis "github.com/aussiebroadwan/quill/pkg/storage/drivers/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, namespace string) (*quillredis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return quillredis.NewStore(rdb, namespace), mr
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newTestStore(t, "")

	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, "token")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "token", "tok123"))
	require.NoError(t, s.Set(ctx, "avatar", "/a.png"))

	v, err := s.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, "tok123", v)

	// Stored as a field of the namespace hash.
	require.Equal(t, "tok123", mr.HGet(quillredis.DefaultNamespace, "token"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"token", "avatar"}, keys)

	require.NoError(t, s.Remove(ctx, "token"))
	require.NoError(t, s.Remove(ctx, "token"))
	_, err = s.Get(ctx, "token")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNamespacesAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := quillredis.NewStore(rdb, "quill:a")
	b := quillredis.NewStore(rdb, "quill:b")

	require.NoError(t, a.Set(ctx, "token", "for-a"))

	_, err := b.Get(ctx, "token")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s, err := quillredis.Dial(ctx, mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, "userName", "alice"))
	require.Equal(t, "alice", mr.HGet(quillredis.DefaultNamespace, "userName"))
}
