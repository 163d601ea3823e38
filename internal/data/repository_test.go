package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildradar/core/internal/adapters/cache"
	"github.com/guildradar/core/internal/adapters/clients"
	"github.com/guildradar/core/internal/adapters/radarapi"
	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/platform/config"
	"github.com/guildradar/core/internal/result"
)

type fixture struct {
	repo  *Repository
	local *cache.LocalDataSource
	hits  *int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		BaseURL:     server.URL,
		ServiceName: "guildradar-api",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   100,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	})
	require.NoError(t, err)

	local := cache.NewLocalDataSource(cache.NewMemory(time.Minute, time.Minute), 0)
	remote := radarapi.NewRemoteDataSource(client, nil)

	return &fixture{
		repo:  NewRepository(remote, local, nil, nil),
		local: local,
		hits:  &hits,
	}
}

func (f *fixture) serverHits() int32 { return atomic.LoadInt32(f.hits) }

func wireUser(id, username string) radarapi.User {
	return radarapi.User{
		ID: id,
		PlatformUser: radarapi.PlatformUser{
			ID:       id,
			Username: username,
		},
		Privacy: radarapi.PrivacySettings{
			EnabledGuilds: []string{},
			BlockedUsers:  []string{},
		},
	}
}

func collect[T any](t *testing.T, ch <-chan result.Result[T]) []result.Result[T] {
	t.Helper()

	var results []result.Result[T]
	timeout := time.After(5 * time.Second)

	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return results
			}
			results = append(results, res)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func TestUsers_AbsentToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("network must not be touched without a token")
	})

	results := collect(t, f.repo.Users(context.Background(), "", false))

	require.Len(t, results, 1)
	assert.True(t, results[0].IsErr())
	assert.Equal(t, result.ErrorTypeAuthentication, results[0].ErrorType())
	assert.False(t, results[0].CanRetry())
	assert.Zero(t, f.serverHits())
}

func TestUsers_ColdCacheSingleNetworkElement(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]radarapi.User{wireUser("1", "alpha")})
	})

	results := collect(t, f.repo.Users(context.Background(), "Bearer t", false))

	require.Len(t, results, 1)
	require.True(t, results[0].IsOk())
	assert.False(t, results[0].Meta().CacheHit)
	assert.Len(t, results[0].MustValue(), 1)
}

func TestUsers_WarmCacheEmitsCacheThenNetwork(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]radarapi.User{
			wireUser("1", "alpha"),
			wireUser("2", "bravo"),
		})
	})

	cachedUsers := []radarapi.User{
		wireUser("1", "alpha"),
		wireUser("2", "bravo"),
		wireUser("3", "charlie"),
	}
	require.True(t, f.local.SaveUsers(context.Background(), cachedUsers).IsOk())

	results := collect(t, f.repo.Users(context.Background(), "Bearer t", false))

	require.Len(t, results, 2)
	require.True(t, results[0].IsOk())
	assert.True(t, results[0].Meta().CacheHit)
	assert.Len(t, results[0].MustValue(), 3)

	require.True(t, results[1].IsOk())
	assert.False(t, results[1].Meta().CacheHit)
	assert.Len(t, results[1].MustValue(), 2)

	// network success overwrote the snapshot
	refreshed := f.local.GetUsers(context.Background())
	require.True(t, refreshed.IsOk())
	assert.Len(t, refreshed.MustValue(), 2)
}

func TestUsers_ForceRefreshSkipsCache(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]radarapi.User{wireUser("1", "alpha")})
	})

	require.True(t, f.local.SaveUsers(context.Background(), []radarapi.User{wireUser("9", "stale")}).IsOk())

	results := collect(t, f.repo.Users(context.Background(), "Bearer t", true))

	require.Len(t, results, 1)
	require.True(t, results[0].IsOk())
	assert.Equal(t, domain.Username("alpha"), results[0].MustValue()[0].Username)
}

func TestUsers_EmptyCacheSnapshotEmitsNothing(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]radarapi.User{wireUser("1", "alpha")})
	})

	require.True(t, f.local.SaveUsers(context.Background(), []radarapi.User{}).IsOk())

	results := collect(t, f.repo.Users(context.Background(), "Bearer t", false))
	require.Len(t, results, 1)
	assert.False(t, results[0].Meta().CacheHit)
}

func TestUsers_NetworkFailureAfterCacheHit(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	require.True(t, f.local.SaveUsers(context.Background(), []radarapi.User{wireUser("1", "alpha")}).IsOk())

	results := collect(t, f.repo.Users(context.Background(), "Bearer t", false))

	require.Len(t, results, 2)
	assert.True(t, results[0].IsOk())
	require.True(t, results[1].IsErr())
	assert.Equal(t, result.ErrorTypeServer, results[1].ErrorType())
	assert.True(t, results[1].CanRetry())

	// failed fetch must not clobber the snapshot
	assert.Len(t, f.local.GetUsers(context.Background()).MustValue(), 1)
}

func TestCurrentUser_CacheThenNetwork(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(wireUser("42", "fresh"))
	})

	stale := wireUser("42", "stale")
	require.True(t, f.local.SaveCurrentUser(context.Background(), &stale).IsOk())

	results := collect(t, f.repo.CurrentUser(context.Background(), "Bearer t", false))

	require.Len(t, results, 2)
	assert.Equal(t, domain.Username("stale"), results[0].MustValue().Username)
	assert.True(t, results[0].Meta().CacheHit)
	assert.Equal(t, domain.Username("fresh"), results[1].MustValue().Username)

	cached, err := f.repo.CachedCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Username("fresh"), cached.Username)
}

func TestCachedCurrentUser_ColdCache(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	user, err := f.repo.CachedCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Zero(t, f.serverHits())
}

func TestUpdateUser(t *testing.T) {
	var receivedBody radarapi.User

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&receivedBody)
		_ = json.NewEncoder(w).Encode(radarapi.SuccessResponse{Success: true})
	})

	user := domain.User{
		ID:       "42",
		Username: "scout",
		Privacy: domain.PrivacySettings{
			NearbyNotificationsEnabled: true,
		},
	}

	res := f.repo.UpdateUser(context.Background(), "Bearer t", user)
	require.True(t, res.IsOk())
	assert.Equal(t, "42", receivedBody.ID)
	assert.Equal(t, "scout", receivedBody.PlatformUser.Username)
}

func TestDeleteUserData_ClearsCacheOnSuccessOnly(t *testing.T) {
	var status int32 = http.StatusInternalServerError

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		code := int(atomic.LoadInt32(&status))
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		_ = json.NewEncoder(w).Encode(radarapi.SuccessResponse{Success: true})
	})

	require.True(t, f.local.SaveUsers(context.Background(), []radarapi.User{wireUser("1", "alpha")}).IsOk())

	// failed delete keeps the cache
	res := f.repo.DeleteUserData(context.Background(), "Bearer t")
	require.True(t, res.IsErr())
	assert.Len(t, f.local.GetUsers(context.Background()).MustValue(), 1)

	// successful delete clears it
	atomic.StoreInt32(&status, http.StatusOK)
	res = f.repo.DeleteUserData(context.Background(), "Bearer t")
	require.True(t, res.IsOk())
	assert.Empty(t, f.local.GetUsers(context.Background()).MustValue())
}

func TestClearLocalData(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("clearing local data must not touch the network")
	})

	require.True(t, f.local.SaveUsers(context.Background(), []radarapi.User{wireUser("1", "alpha")}).IsOk())

	res := f.repo.ClearLocalData(context.Background())
	require.True(t, res.IsOk())
	assert.Empty(t, f.local.GetUsers(context.Background()).MustValue())
	assert.Zero(t, f.serverHits())
}

func TestGuilds_CacheThenNetwork(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]radarapi.Guild{{ID: "g1", Name: "Night Watch"}})
	})

	require.True(t, f.local.SaveGuilds(context.Background(), []radarapi.Guild{
		{ID: "g1", Name: "Night Watch"},
		{ID: "g2", Name: "Day Watch"},
	}).IsOk())

	results := collect(t, f.repo.Guilds(context.Background(), "Bearer t", false))

	require.Len(t, results, 2)
	assert.Len(t, results[0].MustValue(), 2)
	assert.Len(t, results[1].MustValue(), 1)
	assert.Equal(t, domain.GuildName("Night Watch"), results[1].MustValue()[0].Name)
}
