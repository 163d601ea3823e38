package domain

import "fmt"

const (
	maxGuildNameLength = 100

	// avatarInitialsLen is how many leading characters of the guild name feed
	// the generated-avatar fallback. Counted in runes, not bytes.
	avatarInitialsLen = 2

	generatedAvatarURL = "https://ui-avatars.com/api/?name=%s&background=random"
)

// GuildID identifies a guild on the upstream chat platform.
type GuildID string

// NewGuildID validates a raw guild id.
func NewGuildID(raw string) (GuildID, error) {
	if raw == "" {
		return "", NewInvalidUserDataError("guildId", "cannot be blank")
	}
	return GuildID(raw), nil
}

// String returns the raw id.
func (id GuildID) String() string { return string(id) }

// GuildName is a validated guild display name.
type GuildName string

// NewGuildName validates a raw guild name.
func NewGuildName(raw string) (GuildName, error) {
	if raw == "" {
		return "", NewInvalidUserDataError("guildName", "cannot be blank")
	}
	if len(raw) > maxGuildNameLength {
		return "", NewInvalidUserDataError("guildName", "too long")
	}
	return GuildName(raw), nil
}

// String returns the raw name.
func (n GuildName) String() string { return string(n) }

// Guild is a community on the chat platform used as a location-sharing scope.
type Guild struct {
	ID                     GuildID
	Name                   GuildName
	IconURL                string
	MemberCount            int
	LocationSharingEnabled bool
}

// DisplayName returns the guild's display name.
func (g Guild) DisplayName() string { return g.Name.String() }

// AllowsLocationSharing reports whether members may share location in this
// guild's scope.
func (g Guild) AllowsLocationSharing() bool { return g.LocationSharingEnabled }

// AvatarURL returns the guild icon, falling back to a deterministic generated
// avatar when the guild has none.
func (g Guild) AvatarURL() string {
	if g.IconURL != "" {
		return g.IconURL
	}
	initials := []rune(g.Name.String())
	if len(initials) > avatarInitialsLen {
		initials = initials[:avatarInitialsLen]
	}
	return fmt.Sprintf(generatedAvatarURL, string(initials))
}
