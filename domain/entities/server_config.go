package entities

import "time"

// ServerConfig represents the contest configuration of a single guild.
// Every reference is nullable until set and may point at a channel or role
// that no longer exists.
type ServerConfig struct {
	GuildID               int64     `db:"guild_id"`
	SubmissionChannelID   *int64    `db:"submission_channel_id"`
	VotingChannelID       *int64    `db:"voting_channel_id"`
	ContestRoleID         *int64    `db:"contest_role_id"`
	AnnouncementChannelID *int64    `db:"announcement_channel_id"`
	PingRoleID            *int64    `db:"ping_role_id"`
	ArchiveChannelID      *int64    `db:"archive_channel_id"`
	LogsChannelID         *int64    `db:"logs_channel_id"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// Get returns the stored id for a field, or nil when unset
func (c *ServerConfig) Get(field ConfigField) *int64 {
	if c == nil {
		return nil
	}

	switch field {
	case FieldSubmissionChannel:
		return c.SubmissionChannelID
	case FieldVotingChannel:
		return c.VotingChannelID
	case FieldContestRole:
		return c.ContestRoleID
	case FieldAnnouncementChannel:
		return c.AnnouncementChannelID
	case FieldPingRole:
		return c.PingRoleID
	case FieldArchiveChannel:
		return c.ArchiveChannelID
	case FieldLogsChannel:
		return c.LogsChannelID
	}
	return nil
}

// HasAnnouncementChannel checks if an announcement channel is configured
func (c *ServerConfig) HasAnnouncementChannel() bool {
	return c != nil && c.AnnouncementChannelID != nil && *c.AnnouncementChannelID > 0
}

// HasLogsChannel checks if a logs channel is configured
func (c *ServerConfig) HasLogsChannel() bool {
	return c != nil && c.LogsChannelID != nil && *c.LogsChannelID > 0
}

// HasContestRole checks if a contest role is configured
func (c *ServerConfig) HasContestRole() bool {
	return c != nil && c.ContestRoleID != nil && *c.ContestRoleID > 0
}

// ServerConfigPatch is a sparse update of a ServerConfig. Nil fields are left
// untouched by an upsert.
type ServerConfigPatch struct {
	SubmissionChannelID   *int64
	VotingChannelID       *int64
	ContestRoleID         *int64
	AnnouncementChannelID *int64
	PingRoleID            *int64
	ArchiveChannelID      *int64
	LogsChannelID         *int64
}

// Set stores id under the given field
func (p *ServerConfigPatch) Set(field ConfigField, id int64) {
	switch field {
	case FieldSubmissionChannel:
		p.SubmissionChannelID = &id
	case FieldVotingChannel:
		p.VotingChannelID = &id
	case FieldContestRole:
		p.ContestRoleID = &id
	case FieldAnnouncementChannel:
		p.AnnouncementChannelID = &id
	case FieldPingRole:
		p.PingRoleID = &id
	case FieldArchiveChannel:
		p.ArchiveChannelID = &id
	case FieldLogsChannel:
		p.LogsChannelID = &id
	}
}

// Values returns the patched fields in column order
func (p ServerConfigPatch) Values() []FieldValue {
	var values []FieldValue
	for _, field := range AllConfigFields {
		var v *int64
		switch field {
		case FieldSubmissionChannel:
			v = p.SubmissionChannelID
		case FieldVotingChannel:
			v = p.VotingChannelID
		case FieldContestRole:
			v = p.ContestRoleID
		case FieldAnnouncementChannel:
			v = p.AnnouncementChannelID
		case FieldPingRole:
			v = p.PingRoleID
		case FieldArchiveChannel:
			v = p.ArchiveChannelID
		case FieldLogsChannel:
			v = p.LogsChannelID
		}
		if v != nil {
			values = append(values, FieldValue{Field: field, ID: *v})
		}
	}
	return values
}

// IsEmpty reports whether the patch touches no field
func (p ServerConfigPatch) IsEmpty() bool {
	return len(p.Values()) == 0
}

// FieldValue is a single patched field
type FieldValue struct {
	Field ConfigField
	ID    int64
}
