package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guildradar/core/internal/adapters/radarapi"
	"github.com/guildradar/core/internal/ports"
	"github.com/guildradar/core/internal/result"
)

// LocalDataSource stores wire-format snapshots of the three cached records.
// A cache miss is not a failure: reads return a success Result with a nil or
// empty payload. Only broken snapshots and store faults surface as errors.
type LocalDataSource struct {
	cache ports.Cache
	ttl   time.Duration
}

// NewLocalDataSource creates a local data source storing snapshots with the
// given ttl. A zero ttl keeps snapshots until overwritten.
func NewLocalDataSource(cache ports.Cache, ttl time.Duration) *LocalDataSource {
	return &LocalDataSource{cache: cache, ttl: ttl}
}

// GetCurrentUser reads the cached current-user snapshot, nil on a cold cache.
func (l *LocalDataSource) GetCurrentUser(ctx context.Context) result.Result[*radarapi.User] {
	return readSnapshot[radarapi.User](ctx, l, ports.CacheKeyCurrentUser, "getCachedCurrentUser")
}

// GetUsers reads the cached user-list snapshot, empty on a cold cache.
func (l *LocalDataSource) GetUsers(ctx context.Context) result.Result[[]radarapi.User] {
	return readListSnapshot[radarapi.User](ctx, l, ports.CacheKeyUsers, "getCachedUsers")
}

// GetGuilds reads the cached guild-list snapshot, empty on a cold cache.
func (l *LocalDataSource) GetGuilds(ctx context.Context) result.Result[[]radarapi.Guild] {
	return readListSnapshot[radarapi.Guild](ctx, l, ports.CacheKeyGuilds, "getCachedGuilds")
}

// SaveCurrentUser overwrites the current-user snapshot. A nil user is a no-op.
func (l *LocalDataSource) SaveCurrentUser(ctx context.Context, user *radarapi.User) result.Result[struct{}] {
	if user == nil {
		return result.Ok(struct{}{})
	}

	return writeSnapshot(ctx, l, ports.CacheKeyCurrentUser, user, "saveCurrentUser")
}

// SaveUsers overwrites the user-list snapshot.
func (l *LocalDataSource) SaveUsers(ctx context.Context, users []radarapi.User) result.Result[struct{}] {
	return writeSnapshot(ctx, l, ports.CacheKeyUsers, users, "saveUsers")
}

// SaveGuilds overwrites the guild-list snapshot.
func (l *LocalDataSource) SaveGuilds(ctx context.Context, guilds []radarapi.Guild) result.Result[struct{}] {
	return writeSnapshot(ctx, l, ports.CacheKeyGuilds, guilds, "saveGuilds")
}

// ClearAll wipes every snapshot. The store has no clear primitive, so each
// key is overwritten with nil.
func (l *LocalDataSource) ClearAll(ctx context.Context) result.Result[struct{}] {
	keys := []ports.CacheKey{
		ports.CacheKeyCurrentUser,
		ports.CacheKeyUsers,
		ports.CacheKeyGuilds,
	}

	for _, key := range keys {
		if err := l.cache.Set(ctx, key, nil, 0); err != nil {
			return result.Fail[struct{}](
				fmt.Errorf("clearing %s: %w", key, err),
				result.ErrorTypeUnknown,
				false,
			)
		}
	}

	return result.Ok(struct{}{})
}

func readSnapshot[T any](ctx context.Context, l *LocalDataSource, key ports.CacheKey, operation string) result.Result[*T] {
	meta := result.Metadata{Operation: operation, CacheHit: true}

	raw, err := l.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			return result.OkMeta[*T](nil, result.Metadata{Operation: operation})
		}

		return result.FailMeta[*T](err, result.ErrorTypeUnknown, false, meta)
	}

	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return result.FailMeta[*T](
			fmt.Errorf("decoding %s snapshot: %w", key, err),
			result.ErrorTypeUnknown,
			false,
			meta,
		)
	}

	return result.OkMeta(&decoded, meta)
}

func readListSnapshot[T any](ctx context.Context, l *LocalDataSource, key ports.CacheKey, operation string) result.Result[[]T] {
	res := readSnapshot[[]T](ctx, l, key, operation)
	if res.IsErr() {
		return result.MapErr[*[]T, []T](res)
	}

	items := res.MustValue()
	if items == nil {
		return result.OkMeta([]T{}, res.Meta())
	}

	return result.OkMeta(*items, res.Meta())
}

func writeSnapshot[T any](ctx context.Context, l *LocalDataSource, key ports.CacheKey, value T, operation string) result.Result[struct{}] {
	raw, err := json.Marshal(value)
	if err != nil {
		return result.Fail[struct{}](
			fmt.Errorf("encoding %s snapshot: %w", key, err),
			result.ErrorTypeUnknown,
			false,
		)
	}

	if err := l.cache.Set(ctx, key, raw, l.ttl); err != nil {
		return result.Fail[struct{}](
			fmt.Errorf("storing %s snapshot: %w", key, err),
			result.ErrorTypeUnknown,
			false,
		)
	}

	return result.OkMeta(struct{}{}, result.Metadata{Operation: operation})
}
