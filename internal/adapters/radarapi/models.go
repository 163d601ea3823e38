// Package radarapi is the adapter for the guildradar platform API. It owns the
// wire representations, the translation boundary into domain types, and the
// remote data source operations.
package radarapi

import (
	"fmt"
	"strconv"
)

const (
	cdnBaseURL = "https://cdn.discordapp.com"

	// defaultAvatarBuckets is the number of stock embed avatars on the CDN.
	defaultAvatarBuckets = 5

	// defaultNearbyDistanceMeters is the notification radius sent upstream
	// when the domain record does not carry one.
	defaultNearbyDistanceMeters = 500.0
)

// Location is the wire representation of a user location. Timestamps travel as
// fractional epoch milliseconds.
type Location struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Accuracy        float64 `json:"accuracy"`
	DesiredAccuracy float64 `json:"desiredAccuracy"`
	LastUpdated     float64 `json:"lastUpdated"`
}

// PrivacySettings is the wire representation of a user's privacy lists.
type PrivacySettings struct {
	EnabledGuilds []string `json:"enabledGuilds"`
	BlockedUsers  []string `json:"blockedUsers"`
}

// PlatformUser is the chat-platform identity embedded in a User record.
type PlatformUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// AvatarURL returns the CDN avatar URL, falling back to one of the stock
// embed avatars keyed by the numeric user ID.
func (u PlatformUser) AvatarURL() string {
	if u.Avatar != nil {
		return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBaseURL, u.ID, *u.Avatar)
	}

	id, _ := strconv.ParseInt(u.ID, 10, 64)
	if id < 0 {
		id = 0
	}

	return fmt.Sprintf("%s/embed/avatars/%d.png", cdnBaseURL, id%defaultAvatarBuckets)
}

// User is the wire representation of a guildradar user record.
type User struct {
	ID                            string          `json:"id"`
	Location                      *Location       `json:"location"`
	PlatformUser                  PlatformUser    `json:"duser"`
	Privacy                       PrivacySettings `json:"privacy"`
	PushToken                     *string         `json:"pushToken"`
	ReceiveNearbyNotifications    *bool           `json:"receiveNearbyNotifications"`
	AllowNearbyNotifications      *bool           `json:"allowNearbyNotifications"`
	NearbyNotificationDistance    *float64        `json:"nearbyNotificationDistance"`
	AllowNearbyNotificationRadius *float64        `json:"allowNearbyNotificationDistance"`
}

// Guild is the wire representation of a guild.
type Guild struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon"`
}

// IconURL returns the CDN icon URL, or empty when the guild has no icon set.
// The generated-avatar fallback lives on the domain type.
func (g Guild) IconURL() string {
	if g.Icon == nil {
		return ""
	}

	return fmt.Sprintf("%s/icons/%s/%s.png", cdnBaseURL, g.ID, *g.Icon)
}

// SuccessResponse is the acknowledgement body for mutating calls.
type SuccessResponse struct {
	Success bool `json:"success"`
}
