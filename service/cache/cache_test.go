package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	m, err := NewMemoryCache(16)
	require.NoError(t, err)

	m.Set(KeyUserProfile, "profile")
	m.Set(KeyNFTs, "nfts")

	v, ok := m.Get(KeyUserProfile)
	a.True(ok)
	a.Equal("profile", v)

	require.NoError(t, m.Invalidate(ctx, HandleAssetsKeys...))

	_, ok = m.Get(KeyUserProfile)
	a.False(ok)
	_, ok = m.Get(KeyNFTs)
	a.False(ok)
}

func TestRedisInvalidator(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inv := NewRedisInvalidatorFromClient(client, "reavers")

	require.NoError(t, mr.Set("reavers:"+KeyUserProfile, "cached"))
	require.NoError(t, mr.Set("reavers:"+KeyShopItems, "cached"))

	require.NoError(t, inv.Invalidate(ctx, KeyUserProfile))

	a.False(mr.Exists("reavers:" + KeyUserProfile))
	a.True(mr.Exists("reavers:" + KeyShopItems))

	// invalidating nothing is a no-op
	a.NoError(inv.Invalidate(ctx))
}

type recordingInvalidator struct {
	calls [][]string
	err   error
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	r.calls = append(r.calls, keys)
	return r.err
}

func TestMulti(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	t.Run("notifies every invalidator", func(t *testing.T) {
		first := &recordingInvalidator{}
		second := &recordingInvalidator{}
		m := NewMulti(first, second)
		defer m.Stop()

		require.NoError(t, m.Invalidate(ctx, LevelUpKeys...))

		a.Len(first.calls, 1)
		a.Len(second.calls, 1)
		a.Equal(LevelUpKeys, first.calls[0])
	})

	t.Run("keeps going past a failing invalidator", func(t *testing.T) {
		failing := &recordingInvalidator{err: errors.New("redis down")}
		healthy := &recordingInvalidator{}
		m := NewMulti(failing, healthy)
		defer m.Stop()

		err := m.Invalidate(ctx, KeyNFTs)
		a.Error(err)
		a.Len(healthy.calls, 1)
	})
}
