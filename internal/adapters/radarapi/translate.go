package radarapi

import (
	"fmt"
	"time"

	"github.com/guildradar/core/internal/domain"
)

// Translator converts a single wire record into its domain counterpart,
// validating along the way. Wire types never cross this boundary.
type Translator[Wire any, Domain any] func(w *Wire) (*Domain, error)

// TranslateSlice applies a translator to every element, failing on the first
// record that does not validate.
func TranslateSlice[W any, D any](items []W, translate Translator[W, D]) ([]*D, error) {
	out := make([]*D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		out = append(out, translated)
	}

	return out, nil
}

// UserToDomain validates and converts a wire user. The wire format does not
// carry presence, last-seen, or per-user sharing flags; they are filled with
// the documented placeholders: online, seen now, sharing enabled.
func UserToDomain(w *User) (*domain.User, error) {
	id, err := domain.NewUserID(w.ID)
	if err != nil {
		return nil, err
	}

	username, err := domain.NewUsername(w.PlatformUser.Username)
	if err != nil {
		return nil, err
	}

	var location *domain.Location
	if w.Location != nil {
		loc, err := LocationToDomain(w.Location)
		if err != nil {
			return nil, err
		}
		location = loc
	}

	privacy, err := privacyToDomain(w.Privacy, w.ReceiveNearbyNotifications)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:        id,
		Username:  username,
		AvatarURL: w.PlatformUser.AvatarURL(),
		Location:  location,
		Online:    true,
		LastSeen:  time.Now(),
		Privacy:   privacy,
	}, nil
}

// LocationToDomain validates and converts a wire location. The wire carries
// epoch milliseconds as a float; sub-millisecond precision is discarded.
func LocationToDomain(w *Location) (*domain.Location, error) {
	loc, err := domain.NewLocation(
		w.Latitude,
		w.Longitude,
		w.Accuracy,
		time.UnixMilli(int64(w.LastUpdated)),
	)
	if err != nil {
		return nil, err
	}

	return &loc, nil
}

// GuildToDomain validates and converts a wire guild. Member count and the
// sharing flag are not on the wire; they default to 0 and enabled.
func GuildToDomain(w *Guild) (*domain.Guild, error) {
	id, err := domain.NewGuildID(w.ID)
	if err != nil {
		return nil, err
	}

	name, err := domain.NewGuildName(w.Name)
	if err != nil {
		return nil, err
	}

	return &domain.Guild{
		ID:                     id,
		Name:                   name,
		IconURL:                w.IconURL(),
		MemberCount:            0,
		LocationSharingEnabled: true,
	}, nil
}

func privacyToDomain(w PrivacySettings, receiveNearby *bool) (domain.PrivacySettings, error) {
	enabledGuilds := make([]domain.GuildID, 0, len(w.EnabledGuilds))
	for _, raw := range w.EnabledGuilds {
		id, err := domain.NewGuildID(raw)
		if err != nil {
			return domain.PrivacySettings{}, err
		}
		enabledGuilds = append(enabledGuilds, id)
	}

	blockedUsers := make([]domain.UserID, 0, len(w.BlockedUsers))
	for _, raw := range w.BlockedUsers {
		id, err := domain.NewUserID(raw)
		if err != nil {
			return domain.PrivacySettings{}, err
		}
		blockedUsers = append(blockedUsers, id)
	}

	nearbyEnabled := true
	if receiveNearby != nil {
		nearbyEnabled = *receiveNearby
	}

	return domain.PrivacySettings{
		EnabledGuilds:              enabledGuilds,
		BlockedUsers:               blockedUsers,
		LocationSharingEnabled:     true,
		NearbyNotificationsEnabled: nearbyEnabled,
	}, nil
}

// UserFromDomain builds the wire record for pushing a local edit upstream.
// Fields the domain does not track (push token, notification radii) are sent
// with the server defaults; the round trip is not lossless.
func UserFromDomain(u *domain.User) *User {
	var location *Location
	if u.Location != nil {
		location = LocationFromDomain(u.Location)
	}

	receiveNearby := u.Privacy.NearbyNotificationsEnabled
	allowNearby := true
	nearbyDistance := defaultNearbyDistanceMeters

	enabledGuilds := make([]string, 0, len(u.Privacy.EnabledGuilds))
	for _, id := range u.Privacy.EnabledGuilds {
		enabledGuilds = append(enabledGuilds, id.String())
	}

	blockedUsers := make([]string, 0, len(u.Privacy.BlockedUsers))
	for _, id := range u.Privacy.BlockedUsers {
		blockedUsers = append(blockedUsers, id.String())
	}

	return &User{
		ID:       u.ID.String(),
		Location: location,
		PlatformUser: PlatformUser{
			ID:       u.ID.String(),
			Username: u.Username.String(),
			Avatar:   nil,
		},
		Privacy: PrivacySettings{
			EnabledGuilds: enabledGuilds,
			BlockedUsers:  blockedUsers,
		},
		PushToken:                     nil,
		ReceiveNearbyNotifications:    &receiveNearby,
		AllowNearbyNotifications:      &allowNearby,
		NearbyNotificationDistance:    &nearbyDistance,
		AllowNearbyNotificationRadius: &nearbyDistance,
	}
}

// LocationFromDomain builds the wire record for a domain location. The desired
// accuracy mirrors the actual accuracy; the domain does not track it.
func LocationFromDomain(l *domain.Location) *Location {
	return &Location{
		Latitude:        l.Latitude.Degrees(),
		Longitude:       l.Longitude.Degrees(),
		Accuracy:        l.Accuracy.Meters(),
		DesiredAccuracy: l.Accuracy.Meters(),
		LastUpdated:     float64(l.Timestamp.UnixMilli()),
	}
}

// GuildFromDomain builds the wire record for a domain guild.
func GuildFromDomain(g *domain.Guild) *Guild {
	var icon *string
	if g.IconURL != "" {
		iconURL := g.IconURL
		icon = &iconURL
	}

	return &Guild{
		ID:   g.ID.String(),
		Name: g.Name.String(),
		Icon: icon,
	}
}
