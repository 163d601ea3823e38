// Package data implements the repository merging the remote API and the local
// cache into ordered result streams.
package data

import (
	"context"
	"log/slog"

	"github.com/guildradar/core/internal/adapters/cache"
	"github.com/guildradar/core/internal/adapters/radarapi"
	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/platform/telemetry"
	"github.com/guildradar/core/internal/ports"
	"github.com/guildradar/core/internal/result"
)

var _ ports.UserRepository = (*Repository)(nil)

// streamBuffer sizes the result channels: at most a cache element and a
// network element per stream.
const streamBuffer = 2

// Repository merges the remote data source and the local snapshot cache.
//
// Stream contract: each returned channel yields a finite ordered sequence and
// is closed. Without forceRefresh, a successful non-empty cache read comes
// first; the network result always comes last, and on network success the
// cache is overwritten before that final emission. An absent token
// short-circuits to a single authentication error without touching the
// network.
type Repository struct {
	remote  *radarapi.RemoteDataSource
	local   *cache.LocalDataSource
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewRepository creates a repository. metrics may be nil.
func NewRepository(remote *radarapi.RemoteDataSource, local *cache.LocalDataSource, metrics *telemetry.Metrics, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{
		remote:  remote,
		local:   local,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "data.Repository")),
	}
}

// CurrentUser streams the authenticated user's own record.
func (r *Repository) CurrentUser(ctx context.Context, token string, forceRefresh bool) <-chan result.Result[*domain.User] {
	out := make(chan result.Result[*domain.User], streamBuffer)

	go func() {
		defer close(out)

		const operation = "getCurrentUser"

		if token == "" {
			out <- authRequired[*domain.User](operation)
			return
		}

		if !forceRefresh {
			if cached, ok := r.cachedCurrentUser(ctx); ok {
				r.observe(ctx, cached.Meta())
				out <- cached
			}
		}

		network := r.remote.GetCurrentUser(ctx, token)
		if network.IsErr() {
			r.observeFailure(ctx, operation, network.ErrorType())
			out <- result.MapErr[*radarapi.User, *domain.User](network)
			return
		}

		wire := network.MustValue()

		user, err := radarapi.UserToDomain(wire)
		if err != nil {
			out <- result.FailMeta[*domain.User](err, result.ErrorTypeValidation, false, network.Meta())
			return
		}

		if saved := r.local.SaveCurrentUser(ctx, wire); saved.IsErr() {
			r.logger.Warn("caching current user failed", slog.Any("error", saved.Err()))
		}

		r.observe(ctx, network.Meta())
		out <- result.OkMeta(user, network.Meta())
	}()

	return out
}

// Users streams the visible-user list.
func (r *Repository) Users(ctx context.Context, token string, forceRefresh bool) <-chan result.Result[[]domain.User] {
	return streamList(ctx, r, token, forceRefresh,
		"getUsers",
		r.local.GetUsers,
		r.remote.GetUsers,
		r.local.SaveUsers,
		radarapi.UserToDomain,
	)
}

// Guilds streams the user's guild list.
func (r *Repository) Guilds(ctx context.Context, token string, forceRefresh bool) <-chan result.Result[[]domain.Guild] {
	return streamList(ctx, r, token, forceRefresh,
		"getGuilds",
		r.local.GetGuilds,
		r.remote.GetGuilds,
		r.local.SaveGuilds,
		radarapi.GuildToDomain,
	)
}

// CachedCurrentUser reads the current user from the cache only. A cold cache
// returns nil with no error.
func (r *Repository) CachedCurrentUser(ctx context.Context) (*domain.User, error) {
	snapshot := r.local.GetCurrentUser(ctx)
	if snapshot.IsErr() {
		return nil, snapshot.Err()
	}

	wire := snapshot.MustValue()
	if wire == nil {
		return nil, nil
	}

	return radarapi.UserToDomain(wire)
}

// UpdateUser pushes local edits to the network. The cache is not touched; the
// next fetch re-reads the authoritative server state.
func (r *Repository) UpdateUser(ctx context.Context, token string, user domain.User) result.Result[struct{}] {
	if token == "" {
		return authRequired[struct{}]("updateCurrentUser")
	}

	wire := radarapi.UserFromDomain(&user)

	res := r.remote.UpdateCurrentUser(ctx, token, wire)
	if res.IsErr() {
		r.observeFailure(ctx, "updateCurrentUser", res.ErrorType())
	}

	return res
}

// DeleteUserData erases the user server-side, then clears the whole local
// cache. The cache survives a failed delete.
func (r *Repository) DeleteUserData(ctx context.Context, token string) result.Result[struct{}] {
	if token == "" {
		return authRequired[struct{}]("deleteUserData")
	}

	res := r.remote.DeleteUserData(ctx, token)
	if res.IsErr() {
		r.observeFailure(ctx, "deleteUserData", res.ErrorType())
		return res
	}

	if cleared := r.local.ClearAll(ctx); cleared.IsErr() {
		r.logger.Warn("clearing local cache after delete failed", slog.Any("error", cleared.Err()))
	}

	return res
}

// ClearLocalData wipes the local cache without a network call.
func (r *Repository) ClearLocalData(ctx context.Context) result.Result[struct{}] {
	return r.local.ClearAll(ctx)
}

// cachedCurrentUser reads and translates the cached snapshot. Reports ok only
// for a present, valid snapshot: misses, faults and broken snapshots all skip
// the cache emission.
func (r *Repository) cachedCurrentUser(ctx context.Context) (result.Result[*domain.User], bool) {
	snapshot := r.local.GetCurrentUser(ctx)
	if snapshot.IsErr() {
		return result.Result[*domain.User]{}, false
	}

	wire := snapshot.MustValue()
	if wire == nil {
		return result.Result[*domain.User]{}, false
	}

	user, err := radarapi.UserToDomain(wire)
	if err != nil {
		r.logger.Warn("cached current user snapshot is invalid", slog.Any("error", err))
		return result.Result[*domain.User]{}, false
	}

	return result.OkMeta(user, snapshot.Meta()), true
}

// streamList is the shared cache-then-network merge for the two list streams.
func streamList[W any, D any](
	ctx context.Context,
	r *Repository,
	token string,
	forceRefresh bool,
	operation string,
	readCache func(context.Context) result.Result[[]W],
	fetchRemote func(context.Context, string) result.Result[[]W],
	save func(context.Context, []W) result.Result[struct{}],
	translate radarapi.Translator[W, D],
) <-chan result.Result[[]D] {
	out := make(chan result.Result[[]D], streamBuffer)

	go func() {
		defer close(out)

		if token == "" {
			out <- authRequired[[]D](operation)
			return
		}

		if !forceRefresh {
			cached := readCache(ctx)
			if cached.IsOk() && len(cached.MustValue()) > 0 {
				items, err := translateList(cached.MustValue(), translate)
				if err != nil {
					r.logger.Warn("cached snapshot is invalid",
						slog.String("operation", operation),
						slog.Any("error", err),
					)
				} else {
					r.observe(ctx, cached.Meta())
					out <- result.OkMeta(items, cached.Meta())
				}
			}
		}

		network := fetchRemote(ctx, token)
		if network.IsErr() {
			r.observeFailure(ctx, operation, network.ErrorType())
			out <- result.MapErr[[]W, []D](network)
			return
		}

		wire := network.MustValue()

		items, err := translateList(wire, translate)
		if err != nil {
			out <- result.FailMeta[[]D](err, result.ErrorTypeValidation, false, network.Meta())
			return
		}

		if saved := save(ctx, wire); saved.IsErr() {
			r.logger.Warn("caching snapshot failed",
				slog.String("operation", operation),
				slog.Any("error", saved.Err()),
			)
		}

		r.observe(ctx, network.Meta())
		out <- result.OkMeta(items, network.Meta())
	}()

	return out
}

func translateList[W any, D any](items []W, translate radarapi.Translator[W, D]) ([]D, error) {
	translated, err := radarapi.TranslateSlice(items, translate)
	if err != nil {
		return nil, err
	}

	out := make([]D, 0, len(translated))
	for _, item := range translated {
		out = append(out, *item)
	}

	return out, nil
}

func authRequired[T any](operation string) result.Result[T] {
	return result.FailMeta[T](
		domain.ErrInvalidToken,
		result.ErrorTypeAuthentication,
		false,
		result.Metadata{Operation: operation},
	)
}

func (r *Repository) observe(ctx context.Context, meta result.Metadata) {
	r.metrics.RecordFetch(ctx, meta.Operation, meta.Duration, meta.CacheHit)
}

func (r *Repository) observeFailure(ctx context.Context, operation string, errorType result.ErrorType) {
	r.metrics.RecordNetworkError(ctx, operation, errorType.String())
}
