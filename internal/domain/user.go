// Package domain contains the validated entities and value objects of the
// location-sharing model. Construction is the only path through which values
// enter the domain: a value object that exists is a value object that passed
// validation, and nothing here is mutated after creation.
package domain

import (
	"regexp"
	"time"
)

const (
	maxUserIDLength   = 50
	maxUsernameLength = 32
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// UserID identifies a user. Non-blank, at most 50 characters.
type UserID string

// NewUserID validates a raw user id.
func NewUserID(raw string) (UserID, error) {
	if raw == "" {
		return "", NewInvalidUserDataError("id", "cannot be blank")
	}
	if len(raw) > maxUserIDLength {
		return "", NewInvalidUserDataError("id", "too long")
	}
	return UserID(raw), nil
}

// String returns the raw id.
func (id UserID) String() string { return string(id) }

// Username is a validated display handle.
type Username string

// NewUsername validates a raw username.
func NewUsername(raw string) (Username, error) {
	if raw == "" {
		return "", NewInvalidUserDataError("username", "cannot be blank")
	}
	if len(raw) > maxUsernameLength {
		return "", NewInvalidUserDataError("username", "too long")
	}
	if !usernamePattern.MatchString(raw) {
		return "", NewInvalidUserDataError("username", "contains invalid characters")
	}
	return Username(raw), nil
}

// String returns the raw username.
func (u Username) String() string { return string(u) }

// PrivacySettings is the user-owned visibility configuration. It is replaced
// wholesale on every change, never edited in place.
type PrivacySettings struct {
	EnabledGuilds              []GuildID
	BlockedUsers               []UserID
	LocationSharingEnabled     bool
	NearbyNotificationsEnabled bool
}

// IsBlocked reports whether the given user id is on the block list.
func (p PrivacySettings) IsBlocked(id UserID) bool {
	for _, blocked := range p.BlockedUsers {
		if blocked == id {
			return true
		}
	}
	return false
}

// IsGuildEnabled reports whether the given guild is enabled for sharing.
func (p PrivacySettings) IsGuildEnabled(id GuildID) bool {
	for _, enabled := range p.EnabledGuilds {
		if enabled == id {
			return true
		}
	}
	return false
}

// User is a member of the location-sharing network.
type User struct {
	ID        UserID
	Username  Username
	AvatarURL string
	Location  *Location
	Online    bool
	LastSeen  time.Time
	Privacy   PrivacySettings
}

// DisplayName returns the name shown on map markers and lists.
func (u User) DisplayName() string { return u.Username.String() }

// IsNearby reports whether both users have a location and are within
// maxDistance of each other.
func (u User) IsNearby(other User, maxDistance Distance) bool {
	if u.Location == nil || other.Location == nil {
		return false
	}
	return u.Location.DistanceTo(*other.Location) <= maxDistance
}

// IsVisibleTo reports whether the viewer may see this user.
// Only the block list is consulted; guild-membership gating is declared in the
// data model but intentionally not enforced here yet.
func (u User) IsVisibleTo(viewer User) bool {
	return !u.Privacy.IsBlocked(viewer.ID)
}

// IsActive reports whether the user was seen within the last five minutes.
func (u User) IsActive() bool {
	return u.LastSeen.After(time.Now().Add(-recentWindow))
}
