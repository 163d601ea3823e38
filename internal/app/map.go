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

// Phase is the coarse screen phase shared by the state machines.
type Phase int

const (
	// PhaseLoading is the initial fetch in flight with nothing to show.
	PhaseLoading Phase = iota

	// PhaseContent has data on screen.
	PhaseContent

	// PhaseError has a user-facing failure on screen.
	PhaseError
)

// effectBuffer bounds the pending-effect queue. Effects beyond it are dropped
// rather than blocking the state machine.
const effectBuffer = 16

// MapState is the immutable state of the map screen. Users carries the
// privacy-filtered list; AllUsers keeps the unfiltered fetch so a settings
// change can re-filter without a refetch.
type MapState struct {
	Phase Phase

	Users           []domain.User
	AllUsers        []domain.User
	SelectedUserID  domain.UserID
	LocationEnabled bool
	Refreshing      bool
	LastUpdated     time.Time

	Message   string
	ErrorType result.ErrorType
	CanRetry  bool
}

// MapIntent is a user action on the map screen.
type MapIntent interface{ isMapIntent() }

// LoadUsers requests the initial user fetch.
type LoadUsers struct{}

func (LoadUsers) isMapIntent() {}

// RefreshUsers requests a user-triggered refresh.
type RefreshUsers struct{}

func (RefreshUsers) isMapIntent() {}

// SelectUser marks a map marker as selected.
type SelectUser struct {
	ID domain.UserID
}

func (SelectUser) isMapIntent() {}

// LocationPermissionChanged records the device permission state.
type LocationPermissionChanged struct {
	Granted bool
}

func (LocationPermissionChanged) isMapIntent() {}

// MapEffect is a one-shot side effect for the UI layer.
type MapEffect interface{ isMapEffect() }

// ShowSnackbar asks the UI to flash a message.
type ShowSnackbar struct {
	Message string
}

func (ShowSnackbar) isMapEffect() {}

// NavigateToUser asks the UI to open a user's detail view.
type NavigateToUser struct {
	ID domain.UserID
}

func (NavigateToUser) isMapEffect() {}

// RequestLocationPermission asks the UI to run the permission prompt.
type RequestLocationPermission struct{}

func (RequestLocationPermission) isMapEffect() {}

// MapModel drives the map screen: it reduces intents into states, streams
// repository results, filters by the viewer's privacy settings and refreshes
// periodically in the background.
type MapModel struct {
	repo   ports.UserRepository
	tokens ports.TokenProvider
	bus    *events.Bus
	logger *slog.Logger

	mu      sync.Mutex
	state   MapState
	privacy *domain.PrivacySettings
	closed  bool

	refreshing      bool
	refreshInterval time.Duration
	stopRefresh     chan struct{}

	effects chan MapEffect
}

// NewMapModel creates the map state machine, subscribes it to the bus and
// seeds the privacy snapshot from the cache. Call Close when done.
func NewMapModel(ctx context.Context, repo ports.UserRepository, tokens ports.TokenProvider, bus *events.Bus, refreshInterval time.Duration, logger *slog.Logger) *MapModel {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MapModel{
		repo:            repo,
		tokens:          tokens,
		bus:             bus,
		logger:          logger.With(slog.String("component", "app.MapModel")),
		state:           MapState{Phase: PhaseLoading},
		refreshInterval: refreshInterval,
		effects:         make(chan MapEffect, effectBuffer),
	}

	m.seedPrivacySnapshot(ctx)
	bus.Subscribe(m)

	return m
}

// State returns a snapshot of the current state.
func (m *MapModel) State() MapState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Effects returns the channel of pending UI side effects.
func (m *MapModel) Effects() <-chan MapEffect {
	return m.effects
}

// ProcessIntent reduces the intent into the next state and kicks off any work
// it implies.
func (m *MapModel) ProcessIntent(ctx context.Context, intent MapIntent) {
	m.mu.Lock()
	m.state = reduceMap(m.state, intent, m.tokens.Token() != "")
	m.mu.Unlock()

	switch it := intent.(type) {
	case LoadUsers:
		m.Load(ctx)
	case RefreshUsers:
		m.Refresh(ctx)
	case SelectUser:
		m.emit(NavigateToUser{ID: it.ID})
	case LocationPermissionChanged:
		if !it.Granted {
			m.emit(RequestLocationPermission{})
		}
	}
}

// reduceMap is the pure state transition. Side effects and fetches live in
// ProcessIntent; this function only maps (state, intent) to the next state.
func reduceMap(state MapState, intent MapIntent, hasToken bool) MapState {
	switch it := intent.(type) {
	case LoadUsers:
		if !hasToken {
			return authErrorState()
		}

		return MapState{Phase: PhaseLoading}

	case RefreshUsers:
		return state

	case SelectUser:
		if state.Phase == PhaseContent {
			state.SelectedUserID = it.ID
		}

		return state

	case LocationPermissionChanged:
		if state.Phase == PhaseContent {
			state.LocationEnabled = it.Granted
		}

		return state

	default:
		return state
	}
}

// Load streams the user list (cache first, then network) into the state.
func (m *MapModel) Load(ctx context.Context) {
	token := m.tokens.Token()
	if token == "" {
		m.setState(authErrorState())
		return
	}

	for res := range m.repo.Users(ctx, token, false) {
		m.applyUsersResult(res)
	}
}

// Refresh performs a user-triggered network-only refresh. Overlapping
// refreshes collapse into one: a second call while one is running is a no-op.
func (m *MapModel) Refresh(ctx context.Context) {
	if !m.beginRefresh() {
		return
	}
	defer m.endRefresh()

	token := m.tokens.Token()
	if token == "" {
		m.setState(authErrorState())
		return
	}

	for res := range m.repo.Users(ctx, token, true) {
		m.applyUsersResult(res)
	}
}

// StartPeriodicRefresh launches the background refresh loop. Starting an
// already-running loop is a no-op.
func (m *MapModel) StartPeriodicRefresh(ctx context.Context) {
	m.mu.Lock()
	if m.stopRefresh != nil || m.closed {
		m.mu.Unlock()
		return
	}

	stop := make(chan struct{})
	m.stopRefresh = stop
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Refresh(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StopPeriodicRefresh halts the background refresh loop.
func (m *MapModel) StopPeriodicRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopPeriodicRefreshLocked()
}

func (m *MapModel) stopPeriodicRefreshLocked() {
	if m.stopRefresh != nil {
		close(m.stopRefresh)
		m.stopRefresh = nil
	}
}

// OnEvent implements events.Subscriber.
func (m *MapModel) OnEvent(event events.Event) {
	switch ev := event.(type) {
	case events.UserLoggedOut:
		m.mu.Lock()
		m.stopPeriodicRefreshLocked()
		m.state = authErrorState()
		m.mu.Unlock()

	case events.DataCleared:
		m.setState(MapState{Phase: PhaseContent, LastUpdated: time.Now()})

	case events.UserDataUpdated:
		// New privacy settings may change who is visible: re-filter the
		// retained unfiltered list without a refetch.
		m.mu.Lock()
		privacy := ev.User.Privacy
		m.privacy = &privacy
		if m.state.Phase == PhaseContent {
			m.state.Users = m.filterLocked(m.state.AllUsers)
		}
		m.mu.Unlock()
	}
}

// Close unsubscribes from the bus and stops background work. Idempotent.
func (m *MapModel) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.closed = true
	m.stopPeriodicRefreshLocked()
	m.mu.Unlock()

	m.bus.Unsubscribe(m)
}

func (m *MapModel) applyUsersResult(res result.Result[[]domain.User]) {
	if res.IsOk() {
		users := res.MustValue()

		m.mu.Lock()
		m.state = MapState{
			Phase:           PhaseContent,
			Users:           m.filterLocked(users),
			AllUsers:        users,
			SelectedUserID:  m.state.SelectedUserID,
			LocationEnabled: m.state.LocationEnabled,
			LastUpdated:     time.Now(),
		}
		m.mu.Unlock()

		if !res.Meta().CacheHit {
			m.bus.Publish(events.DataRefreshCompleted{Success: true})
		}

		return
	}

	m.setState(errorState(res.ErrorType(), res.CanRetry()))
	m.emit(ShowSnackbar{Message: errorMessage(res.ErrorType())})
	m.bus.Publish(events.DataRefreshCompleted{Success: false})
}

// seedPrivacySnapshot loads the viewer's privacy settings from the cache so
// filtering works before the first network round trip. Failures leave the
// filter open.
func (m *MapModel) seedPrivacySnapshot(ctx context.Context) {
	user, err := m.repo.CachedCurrentUser(ctx)
	if err != nil {
		m.logger.Debug("privacy snapshot unavailable", slog.Any("error", err))
		return
	}

	if user != nil {
		m.mu.Lock()
		privacy := user.Privacy
		m.privacy = &privacy
		m.mu.Unlock()
	}
}

// filterLocked removes users on the viewer's block list. Without a privacy
// snapshot the filter fails open and every user stays visible.
func (m *MapModel) filterLocked(users []domain.User) []domain.User {
	if m.privacy == nil {
		return users
	}

	filtered := make([]domain.User, 0, len(users))
	for _, user := range users {
		if m.privacy.IsBlocked(user.ID) {
			continue
		}

		filtered = append(filtered, user)
	}

	return filtered
}

func (m *MapModel) beginRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refreshing || m.state.Phase == PhaseLoading || m.closed {
		return false
	}

	m.refreshing = true
	if m.state.Phase == PhaseContent {
		m.state.Refreshing = true
	}

	return true
}

func (m *MapModel) endRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshing = false
	m.state.Refreshing = false
}

func (m *MapModel) setState(state MapState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// emit queues an effect without blocking; a full queue drops the effect.
func (m *MapModel) emit(effect MapEffect) {
	select {
	case m.effects <- effect:
	default:
		m.logger.Warn("effect queue full, dropping effect")
	}
}

func authErrorState() MapState {
	return MapState{
		Phase:     PhaseError,
		Message:   "Authentication required. Please log in again.",
		ErrorType: result.ErrorTypeAuthentication,
	}
}

func errorState(errorType result.ErrorType, canRetry bool) MapState {
	return MapState{
		Phase:     PhaseError,
		Message:   errorMessage(errorType),
		ErrorType: errorType,
		CanRetry:  canRetry,
	}
}

// errorMessage maps a failure classification onto the user-facing message
// tiers: auth problems ask for a re-login, server faults ask for patience,
// everything else reads as a connectivity problem.
func errorMessage(errorType result.ErrorType) string {
	switch errorType {
	case result.ErrorTypeAuthentication, result.ErrorTypeAuthorization:
		return "Authentication failed. Please log in again."
	case result.ErrorTypeServer:
		return "Server error occurred. Please try again later."
	default:
		return "Network error occurred. Check your connection and try again."
	}
}
