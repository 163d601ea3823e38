// Package events provides the process-wide domain event bus. Independent
// presentation state machines react to cross-cutting events (logout, data
// mutation) without holding references to each other; the bus is always
// constructor-injected, never an ambient singleton.
package events

import "github.com/guildradar/core/internal/domain"

// Event is a cross-cutting domain notification.
type Event interface {
	// EventType returns the type identifier for routing and logging.
	EventType() string
}

// UserLoggedOut signals that the session token was cleared.
type UserLoggedOut struct{}

// EventType implements Event.
func (UserLoggedOut) EventType() string { return "user_logged_out" }

// DataCleared signals that local data was wiped.
type DataCleared struct{}

// EventType implements Event.
func (DataCleared) EventType() string { return "data_cleared" }

// UserDataUpdated signals that the current user's profile or settings changed.
type UserDataUpdated struct {
	User domain.User
}

// EventType implements Event.
func (UserDataUpdated) EventType() string { return "user_data_updated" }

// DataRefreshCompleted signals the outcome of a background refresh cycle.
type DataRefreshCompleted struct {
	Success bool
}

// EventType implements Event.
func (DataRefreshCompleted) EventType() string { return "data_refresh_completed" }

// NetworkError signals a failed network operation other state machines may
// want to surface.
type NetworkError struct {
	Operation string
	Err       error
}

// EventType implements Event.
func (NetworkError) EventType() string { return "network_error" }

// Subscriber receives every event published between its Subscribe and
// Unsubscribe calls, in publication order.
type Subscriber interface {
	OnEvent(event Event)
}
