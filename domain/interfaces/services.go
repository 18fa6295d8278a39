package interfaces

import (
	"context"

	"contestbot/domain/entities"
)

// SettingResult describes the outcome of a single setter
type SettingResult struct {
	Field    entities.ConfigField
	EntityID int64
	// Changed is false when the field already held the same id
	Changed bool
	// OverwritesApplied is set when the contest role was added to the announcement channel
	OverwritesApplied bool
	Warnings          []string
}

// ContestSettingsService defines the per-field contest configuration operations
type ContestSettingsService interface {
	// GetSettings returns the guild's configuration, or nil if none was written yet
	GetSettings(ctx context.Context, guildID int64) (*entities.ServerConfig, error)

	// SetChannel validates the channel kind for the field and stores it
	SetChannel(ctx context.Context, guildID int64, field entities.ConfigField, channel *entities.GuildChannel) (*SettingResult, error)

	// SetRole stores a role field; the contest role also grants it access to the announcement channel
	SetRole(ctx context.Context, guildID int64, field entities.ConfigField, role *entities.GuildRole) (*SettingResult, error)
}

// ConfigTransactor runs configuration work in a short transaction of its own
type ConfigTransactor interface {
	// InTransaction runs fn against a repository and publisher bound to one
	// transaction, committing when fn succeeds
	InTransaction(ctx context.Context, guildID int64, fn func(repo ServerConfigRepository, publisher EventPublisher) error) error
}

// ProvisioningService creates or reuses the contest scaffold of a guild
type ProvisioningService interface {
	// Provision resolves or creates the scaffold and records the resulting ids
	Provision(ctx context.Context, guildID int64) (*entities.ProvisionResult, error)
}

// GuildLocker serializes provisioning runs per guild
type GuildLocker interface {
	// Lock blocks until the guild lock is held or ctx is done
	Lock(ctx context.Context, guildID int64) (unlock func(), err error)
}
