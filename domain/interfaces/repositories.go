package interfaces

import (
	"context"

	"contestbot/domain/entities"
)

// ServerConfigRepository defines the interface for per-guild contest configuration
type ServerConfigRepository interface {
	// GetByGuildID returns the guild's configuration, or nil if none was ever written
	GetByGuildID(ctx context.Context, guildID int64) (*entities.ServerConfig, error)

	// Upsert writes the non-nil fields of patch, creating the row on first write.
	// modified is false when the row already held exactly the patched values.
	Upsert(ctx context.Context, guildID int64, patch entities.ServerConfigPatch) (modified bool, err error)
}
