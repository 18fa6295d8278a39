package interfaces

import (
	"context"
	"errors"

	"contestbot/domain/entities"
)

var (
	// ErrForbidden is returned when the bot lacks the permission for a platform call
	ErrForbidden = errors.New("missing permissions")

	// ErrNotFound is returned when a referenced channel or role does not exist
	ErrNotFound = errors.New("not found")
)

// GuildGateway is the narrow view of the Discord API used by the contest services
type GuildGateway interface {
	// BotUserID returns the bot's own user id
	BotUserID() int64

	// BotRoleIDs returns the ids of the roles held by the bot
	BotRoleIDs(ctx context.Context, guildID int64) ([]int64, error)

	// Channels lists every channel and category of the guild
	Channels(ctx context.Context, guildID int64) ([]*entities.GuildChannel, error)

	// Channel resolves one channel by id
	Channel(ctx context.Context, channelID int64) (*entities.GuildChannel, error)

	// Roles lists every role of the guild
	Roles(ctx context.Context, guildID int64) ([]*entities.GuildRole, error)

	// CreateCategory creates a category with initial overwrites
	CreateCategory(ctx context.Context, guildID int64, name, reason string, overwrites entities.OverwriteSet) (*entities.GuildChannel, error)

	// CreateChannel creates a text or forum channel
	CreateChannel(ctx context.Context, guildID int64, spec entities.ChannelSpec) (*entities.GuildChannel, error)

	// CreateRole creates a role with default permissions
	CreateRole(ctx context.Context, guildID int64, name, reason string) (*entities.GuildRole, error)

	// SetOverwrite sets a single overwrite on a channel or category
	SetOverwrite(ctx context.Context, channelID int64, overwrite entities.Overwrite, reason string) error

	// EditOverwrites replaces the full overwrite list of a channel or category
	EditOverwrites(ctx context.Context, channelID int64, overwrites entities.OverwriteSet, reason string) error
}
