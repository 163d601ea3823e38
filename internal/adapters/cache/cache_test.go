package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildradar/core/internal/adapters/radarapi"
	"github.com/guildradar/core/internal/ports"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, ports.CacheKeyUsers, []byte("payload"), 0))

	value, err := m.Get(ctx, ports.CacheKeyUsers)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)
}

func TestMemory_MissOnColdKey(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)

	_, err := m.Get(context.Background(), ports.CacheKeyGuilds)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestMemory_NilValueClears(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, ports.CacheKeyUsers, []byte("payload"), 0))
	require.NoError(t, m.Set(ctx, ports.CacheKeyUsers, nil, 0))

	_, err := m.Get(ctx, ports.CacheKeyUsers)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, ports.CacheKeyUsers, []byte("payload"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, ports.CacheKeyUsers)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestLocal_ColdCacheIsSuccessNotFailure(t *testing.T) {
	local := NewLocalDataSource(NewMemory(time.Minute, time.Minute), 0)
	ctx := context.Background()

	userRes := local.GetCurrentUser(ctx)
	require.True(t, userRes.IsOk())
	assert.Nil(t, userRes.MustValue())

	usersRes := local.GetUsers(ctx)
	require.True(t, usersRes.IsOk())
	assert.Empty(t, usersRes.MustValue())

	guildsRes := local.GetGuilds(ctx)
	require.True(t, guildsRes.IsOk())
	assert.Empty(t, guildsRes.MustValue())
}

func TestLocal_SaveAndReadBack(t *testing.T) {
	local := NewLocalDataSource(NewMemory(time.Minute, time.Minute), 0)
	ctx := context.Background()

	user := radarapi.User{ID: "42", PlatformUser: radarapi.PlatformUser{ID: "42", Username: "scout"}}
	require.True(t, local.SaveCurrentUser(ctx, &user).IsOk())

	res := local.GetCurrentUser(ctx)
	require.True(t, res.IsOk())
	require.NotNil(t, res.MustValue())
	assert.Equal(t, "42", res.MustValue().ID)
	assert.True(t, res.Meta().CacheHit)

	users := []radarapi.User{user}
	require.True(t, local.SaveUsers(ctx, users).IsOk())
	assert.Len(t, local.GetUsers(ctx).MustValue(), 1)

	guilds := []radarapi.Guild{{ID: "g1", Name: "Night Watch"}}
	require.True(t, local.SaveGuilds(ctx, guilds).IsOk())
	assert.Len(t, local.GetGuilds(ctx).MustValue(), 1)
}

func TestLocal_SaveNilCurrentUserIsNoop(t *testing.T) {
	local := NewLocalDataSource(NewMemory(time.Minute, time.Minute), 0)
	ctx := context.Background()

	require.True(t, local.SaveCurrentUser(ctx, nil).IsOk())

	res := local.GetCurrentUser(ctx)
	require.True(t, res.IsOk())
	assert.Nil(t, res.MustValue())
}

func TestLocal_ClearAll(t *testing.T) {
	local := NewLocalDataSource(NewMemory(time.Minute, time.Minute), 0)
	ctx := context.Background()

	user := radarapi.User{ID: "42", PlatformUser: radarapi.PlatformUser{ID: "42", Username: "scout"}}
	require.True(t, local.SaveCurrentUser(ctx, &user).IsOk())
	require.True(t, local.SaveUsers(ctx, []radarapi.User{user}).IsOk())
	require.True(t, local.SaveGuilds(ctx, []radarapi.Guild{{ID: "g", Name: "n"}}).IsOk())

	require.True(t, local.ClearAll(ctx).IsOk())

	assert.Nil(t, local.GetCurrentUser(ctx).MustValue())
	assert.Empty(t, local.GetUsers(ctx).MustValue())
	assert.Empty(t, local.GetGuilds(ctx).MustValue())
}

func TestLocal_CorruptSnapshotIsFailure(t *testing.T) {
	mem := NewMemory(time.Minute, time.Minute)
	local := NewLocalDataSource(mem, 0)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, ports.CacheKeyCurrentUser, []byte("{not json"), 0))

	res := local.GetCurrentUser(ctx)
	require.True(t, res.IsErr())
	assert.False(t, res.CanRetry())
}

// failingCache simulates a store fault on every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, ports.CacheKey) ([]byte, error) {
	return nil, errors.New("store fault")
}

func (failingCache) Set(context.Context, ports.CacheKey, []byte, time.Duration) error {
	return errors.New("store fault")
}

func TestLocal_StoreFaultsSurfaceAsResults(t *testing.T) {
	local := NewLocalDataSource(failingCache{}, 0)
	ctx := context.Background()

	assert.True(t, local.GetCurrentUser(ctx).IsErr())
	assert.True(t, local.GetUsers(ctx).IsErr())
	assert.True(t, local.SaveUsers(ctx, nil).IsErr())
	assert.True(t, local.ClearAll(ctx).IsErr())
}
