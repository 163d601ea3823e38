package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/events"
	"github.com/guildradar/core/internal/ports"
	"github.com/guildradar/core/internal/result"
)

// UserState is the immutable state of the profile screen.
type UserState struct {
	Phase Phase

	CurrentUser *domain.User
	Guilds      []domain.Guild
	Updating    bool
	LastUpdated time.Time

	Message   string
	ErrorType result.ErrorType
	CanRetry  bool
}

// UserModel drives the profile screen: it loads the current user and their
// guilds in parallel, applies profile updates and handles account deletion.
type UserModel struct {
	repo   ports.UserRepository
	tokens ports.TokenProvider
	bus    *events.Bus
	logger *slog.Logger

	mu     sync.Mutex
	state  UserState
	closed bool
}

// NewUserModel creates the profile state machine and subscribes it to the
// bus. Call Close when done.
func NewUserModel(repo ports.UserRepository, tokens ports.TokenProvider, bus *events.Bus, logger *slog.Logger) *UserModel {
	if logger == nil {
		logger = slog.Default()
	}

	m := &UserModel{
		repo:   repo,
		tokens: tokens,
		bus:    bus,
		logger: logger.With(slog.String("component", "app.UserModel")),
		state:  UserState{Phase: PhaseLoading},
	}

	bus.Subscribe(m)

	return m
}

// State returns a snapshot of the current state.
func (m *UserModel) State() UserState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Load fetches the current user and their guilds concurrently and settles on
// the freshest element of each stream. A user fetch failure is fatal for the
// screen; a guild fetch failure degrades to an empty guild list.
func (m *UserModel) Load(ctx context.Context) {
	token := m.tokens.Token()
	if token == "" {
		m.setState(userAuthErrorState())
		return
	}

	m.setState(UserState{Phase: PhaseLoading})

	// Failures travel inside the Result values so one fetch cannot cancel
	// the other.
	userRes, guildsRes, _ := Parallel2(ctx,
		func(ctx context.Context) (result.Result[*domain.User], error) {
			return lastResult(m.repo.CurrentUser(ctx, token, false)), nil
		},
		func(ctx context.Context) (result.Result[[]domain.Guild], error) {
			return lastResult(m.repo.Guilds(ctx, token, false)), nil
		},
	)

	if !userRes.IsOk() {
		m.bus.Publish(events.NetworkError{Operation: "getCurrentUser", Err: userRes.Err()})
		m.setState(UserState{
			Phase:     PhaseError,
			Message:   errorMessage(userRes.ErrorType()),
			ErrorType: userRes.ErrorType(),
			CanRetry:  userRes.CanRetry(),
		})

		return
	}

	user := userRes.MustValue()
	if user == nil {
		m.setState(UserState{
			Phase:     PhaseError,
			Message:   errorMessage(result.ErrorTypeServer),
			ErrorType: result.ErrorTypeServer,
			CanRetry:  true,
		})

		return
	}

	var guilds []domain.Guild
	if guildsRes.IsOk() {
		guilds = guildsRes.MustValue()
	} else {
		m.logger.Warn("guild fetch failed", slog.Any("error", guildsRes.Err()))
		m.bus.Publish(events.NetworkError{Operation: "getGuilds", Err: guildsRes.Err()})
	}

	m.setState(UserState{
		Phase:       PhaseContent,
		CurrentUser: user,
		Guilds:      guilds,
		LastUpdated: time.Now(),
	})

	m.bus.Publish(events.UserDataUpdated{User: *user})
}

// UpdateUser pushes a profile change to the server and applies it to the
// local state on success.
func (m *UserModel) UpdateUser(ctx context.Context, user domain.User) {
	token := m.tokens.Token()
	if token == "" {
		m.setState(userAuthErrorState())
		return
	}

	m.mu.Lock()
	m.state.Updating = true
	m.mu.Unlock()

	res := m.repo.UpdateUser(ctx, token, user)

	m.mu.Lock()
	m.state.Updating = false
	if res.IsOk() {
		// The server returns no record on update: apply the edit optimistically.
		m.state.Phase = PhaseContent
		m.state.CurrentUser = &user
		m.state.LastUpdated = time.Now()
		m.state.Message = ""
		m.mu.Unlock()

		m.bus.Publish(events.UserDataUpdated{User: user})

		return
	}
	m.mu.Unlock()

	m.bus.Publish(events.NetworkError{Operation: "updateCurrentUser", Err: res.Err()})
	m.setState(UserState{
		Phase:     PhaseError,
		Message:   errorMessage(res.ErrorType()),
		ErrorType: res.ErrorType(),
		CanRetry:  true,
	})
}

// DeleteData removes the account data server-side. Success clears the screen
// and announces the wipe; failure leaves the current state intact behind an
// error.
func (m *UserModel) DeleteData(ctx context.Context) {
	token := m.tokens.Token()
	if token == "" {
		m.setState(userAuthErrorState())
		return
	}

	res := m.repo.DeleteUserData(ctx, token)
	if res.IsOk() {
		m.setState(UserState{Phase: PhaseContent, LastUpdated: time.Now()})
		m.bus.Publish(events.DataCleared{})

		return
	}

	m.bus.Publish(events.NetworkError{Operation: "deleteUserData", Err: res.Err()})
	m.setState(UserState{
		Phase:     PhaseError,
		Message:   errorMessage(res.ErrorType()),
		ErrorType: res.ErrorType(),
		CanRetry:  res.CanRetry(),
	})
}

// OnEvent implements events.Subscriber.
func (m *UserModel) OnEvent(event events.Event) {
	switch event.(type) {
	case events.UserLoggedOut:
		m.setState(userAuthErrorState())
	case events.DataCleared:
		m.setState(UserState{Phase: PhaseContent, LastUpdated: time.Now()})
	}
}

// Close unsubscribes from the bus. Idempotent.
func (m *UserModel) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.closed = true
	m.mu.Unlock()

	m.bus.Unsubscribe(m)
}

func (m *UserModel) setState(state UserState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func userAuthErrorState() UserState {
	return UserState{
		Phase:     PhaseError,
		Message:   "Authentication required. Please log in again.",
		ErrorType: result.ErrorTypeAuthentication,
	}
}

// lastResult drains a repository stream and keeps the final element, which
// carries the freshest data the repository produced. A stream that closes
// without elements reads as an unknown failure.
func lastResult[T any](stream <-chan result.Result[T]) result.Result[T] {
	var (
		last result.Result[T]
		seen bool
	)

	for res := range stream {
		last = res
		seen = true
	}

	if !seen {
		return result.Fail[T](domain.ErrDataNotFound, result.ErrorTypeUnknown, false)
	}

	return last
}
