// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Fallible data-layer operations return result.Result, never raw errors
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/result"
)

// TokenProvider exposes the current authenticated session credential.
// The core reads token presence to gate every authenticated operation;
// an empty token means no session.
type TokenProvider interface {
	// Token returns the credential formatted as a Bearer token, "" if absent.
	Token() string

	// RawToken returns the credential without the Bearer prefix, "" if absent.
	RawToken() string
}

// CacheKey is one of the enumerated logical slots of the local cache.
type CacheKey string

// The local data source caches exactly three snapshots.
const (
	CacheKeyCurrentUser CacheKey = "current_user"
	CacheKeyUsers       CacheKey = "users"
	CacheKeyGuilds      CacheKey = "guilds"
)

// ErrCacheMiss is returned by Cache.Get when the key holds no value.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the opaque key-value store backing the local data source.
// Values are opaque byte snapshots; the cache has no native clear primitive,
// so clearing is modeled as overwriting with a nil value.
type Cache interface {
	// Get retrieves the value stored under key.
	// Returns ErrCacheMiss when the key is absent or was overwritten with nil.
	Get(ctx context.Context, key CacheKey) ([]byte, error)

	// Set stores value under key. A ttl of 0 means no expiration.
	// Storing a nil value clears the key.
	Set(ctx context.Context, key CacheKey, value []byte, ttl time.Duration) error
}

// UserRepository merges the remote API and the local cache into ordered
// streams of results.
//
// The stream contract for CurrentUser, Users and Guilds: the returned channel
// yields a finite, ordered sequence and is then closed. With forceRefresh the
// sequence is exactly the network result. Without it, a successful non-empty
// cache read is emitted first, then the network result; the cache is updated
// on network success before the network result is emitted. An absent token
// short-circuits to a single authentication error with no network call.
type UserRepository interface {
	// CurrentUser streams the authenticated user's own record.
	CurrentUser(ctx context.Context, token string, forceRefresh bool) <-chan result.Result[*domain.User]

	// Users streams the visible-user list.
	Users(ctx context.Context, token string, forceRefresh bool) <-chan result.Result[[]domain.User]

	// Guilds streams the user's guild list.
	Guilds(ctx context.Context, token string, forceRefresh bool) <-chan result.Result[[]domain.Guild]

	// CachedCurrentUser reads the current user from cache only, without
	// touching the network. Returns nil with no error on a cold cache.
	CachedCurrentUser(ctx context.Context) (*domain.User, error)

	// UpdateUser pushes local edits to the network. No cache pre-check.
	UpdateUser(ctx context.Context, token string, user domain.User) result.Result[struct{}]

	// DeleteUserData removes the user's data server-side and clears the whole
	// local cache on success only.
	DeleteUserData(ctx context.Context, token string) result.Result[struct{}]

	// ClearLocalData wipes the local cache without a network call.
	ClearLocalData(ctx context.Context) result.Result[struct{}]
}
