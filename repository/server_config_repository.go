package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contestbot/database"
	"contestbot/domain/entities"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const serverConfigTable = "server_config"

var serverConfigColumns = []string{
	"guild_id",
	"submission_channel_id",
	"voting_channel_id",
	"contest_role_id",
	"announcement_channel_id",
	"ping_role_id",
	"archive_channel_id",
	"logs_channel_id",
	"created_at",
	"updated_at",
}

// ServerConfigRepository implements the ServerConfigRepository interface
type ServerConfigRepository struct {
	q Queryable
}

// NewServerConfigRepository creates a new server config repository
func NewServerConfigRepository(db *database.DB) *ServerConfigRepository {
	return &ServerConfigRepository{q: db.Pool}
}

// NewServerConfigRepositoryWithTx creates a new server config repository bound to a transaction
func NewServerConfigRepositoryWithTx(tx Queryable) *ServerConfigRepository {
	return &ServerConfigRepository{q: tx}
}

// GetByGuildID returns the guild's configuration, or nil if no row exists
func (r *ServerConfigRepository) GetByGuildID(ctx context.Context, guildID int64) (*entities.ServerConfig, error) {
	query, args, err := sq.Select(serverConfigColumns...).
		From(serverConfigTable).
		Where(squirrel.Eq{"guild_id": guildID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build server config query: %w", err)
	}

	var cfg entities.ServerConfig
	err = r.q.QueryRow(ctx, query, args...).Scan(
		&cfg.GuildID,
		&cfg.SubmissionChannelID,
		&cfg.VotingChannelID,
		&cfg.ContestRoleID,
		&cfg.AnnouncementChannelID,
		&cfg.PingRoleID,
		&cfg.ArchiveChannelID,
		&cfg.LogsChannelID,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server config for guild %d: %w", guildID, err)
	}

	return &cfg, nil
}

// Upsert writes the patched columns, creating the row if needed. The update
// only fires when a patched column actually differs, so modified is false for
// a no-op write.
func (r *ServerConfigRepository) Upsert(ctx context.Context, guildID int64, patch entities.ServerConfigPatch) (bool, error) {
	values := patch.Values()
	if len(values) == 0 {
		return false, nil
	}

	columns := []string{"guild_id"}
	args := []any{guildID}
	var (
		sets     []string
		current  []string
		excluded []string
	)
	for _, v := range values {
		col := v.Field.Column()
		columns = append(columns, col)
		args = append(args, v.ID)
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		current = append(current, serverConfigTable+"."+col)
		excluded = append(excluded, "EXCLUDED."+col)
	}
	sets = append(sets, "updated_at = NOW()")

	query, queryArgs, err := sq.Insert(serverConfigTable).
		Columns(columns...).
		Values(args...).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (guild_id) DO UPDATE SET %s WHERE (%s) IS DISTINCT FROM (%s)",
			strings.Join(sets, ", "),
			strings.Join(current, ", "),
			strings.Join(excluded, ", "),
		)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build server config upsert: %w", err)
	}

	tag, err := r.q.Exec(ctx, query, queryArgs...)
	if err != nil {
		return false, fmt.Errorf("failed to upsert server config for guild %d: %w", guildID, err)
	}

	return tag.RowsAffected() > 0, nil
}
