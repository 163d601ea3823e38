package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/events"
	"github.com/guildradar/core/internal/ports"
	"github.com/guildradar/core/internal/result"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// streamOf replays canned results as a closed repository stream.
func streamOf[T any](results ...result.Result[T]) <-chan result.Result[T] {
	ch := make(chan result.Result[T], len(results))
	for _, res := range results {
		ch <- res
	}
	close(ch)

	return ch
}

// fakeRepo replays canned results and records the calls it receives.
type fakeRepo struct {
	mu sync.Mutex

	currentResults []result.Result[*domain.User]
	userResults    []result.Result[[]domain.User]
	guildResults   []result.Result[[]domain.Guild]

	cached    *domain.User
	cachedErr error

	updateResult result.Result[struct{}]
	deleteResult result.Result[struct{}]
	clearResult  result.Result[struct{}]

	usersCalls   int
	forceFlags   []bool
	updatedUsers []domain.User
	deleteCalls  int
	clearCalls   int
}

var _ ports.UserRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		updateResult: result.Ok(struct{}{}),
		deleteResult: result.Ok(struct{}{}),
		clearResult:  result.Ok(struct{}{}),
	}
}

func (f *fakeRepo) CurrentUser(_ context.Context, _ string, _ bool) <-chan result.Result[*domain.User] {
	return streamOf(f.currentResults...)
}

func (f *fakeRepo) Users(_ context.Context, _ string, forceRefresh bool) <-chan result.Result[[]domain.User] {
	f.mu.Lock()
	f.usersCalls++
	f.forceFlags = append(f.forceFlags, forceRefresh)
	f.mu.Unlock()

	return streamOf(f.userResults...)
}

func (f *fakeRepo) Guilds(_ context.Context, _ string, _ bool) <-chan result.Result[[]domain.Guild] {
	return streamOf(f.guildResults...)
}

func (f *fakeRepo) CachedCurrentUser(context.Context) (*domain.User, error) {
	return f.cached, f.cachedErr
}

func (f *fakeRepo) UpdateUser(_ context.Context, _ string, user domain.User) result.Result[struct{}] {
	f.mu.Lock()
	f.updatedUsers = append(f.updatedUsers, user)
	f.mu.Unlock()

	return f.updateResult
}

func (f *fakeRepo) DeleteUserData(context.Context, string) result.Result[struct{}] {
	f.mu.Lock()
	f.deleteCalls++
	f.mu.Unlock()

	return f.deleteResult
}

func (f *fakeRepo) ClearLocalData(context.Context) result.Result[struct{}] {
	f.mu.Lock()
	f.clearCalls++
	f.mu.Unlock()

	return f.clearResult
}

func (f *fakeRepo) usersCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.usersCalls
}

// recorder captures every event published on the bus, in order.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) OnEvent(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]events.Event, len(r.events))
	copy(out, r.events)

	return out
}

func (r *recorder) typesSeen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		types = append(types, ev.EventType())
	}

	return types
}

func testUser(id domain.UserID, username string) domain.User {
	return domain.User{
		ID:       id,
		Username: domain.Username(username),
	}
}
