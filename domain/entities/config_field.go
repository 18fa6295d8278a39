package entities

// ConfigField identifies one settable reference of a ServerConfig
type ConfigField string

const (
	FieldSubmissionChannel   ConfigField = "submission_channel"
	FieldVotingChannel       ConfigField = "voting_channel"
	FieldContestRole         ConfigField = "contest_role"
	FieldAnnouncementChannel ConfigField = "contest_announcement_channel"
	FieldPingRole            ConfigField = "contest_ping_role"
	FieldArchiveChannel      ConfigField = "contest_archive_channel"
	FieldLogsChannel         ConfigField = "contest_logs_channel"
)

// AllConfigFields lists every field in storage column order
var AllConfigFields = []ConfigField{
	FieldSubmissionChannel,
	FieldVotingChannel,
	FieldContestRole,
	FieldAnnouncementChannel,
	FieldPingRole,
	FieldArchiveChannel,
	FieldLogsChannel,
}

// Column returns the server_config column backing the field
func (f ConfigField) Column() string {
	switch f {
	case FieldSubmissionChannel:
		return "submission_channel_id"
	case FieldVotingChannel:
		return "voting_channel_id"
	case FieldContestRole:
		return "contest_role_id"
	case FieldAnnouncementChannel:
		return "announcement_channel_id"
	case FieldPingRole:
		return "ping_role_id"
	case FieldArchiveChannel:
		return "archive_channel_id"
	case FieldLogsChannel:
		return "logs_channel_id"
	}
	return ""
}

// Label is the human readable name used in responses
func (f ConfigField) Label() string {
	switch f {
	case FieldSubmissionChannel:
		return "submission channel"
	case FieldVotingChannel:
		return "voting channel"
	case FieldContestRole:
		return "contest role"
	case FieldAnnouncementChannel:
		return "announcement channel"
	case FieldPingRole:
		return "contest ping role"
	case FieldArchiveChannel:
		return "art archive channel"
	case FieldLogsChannel:
		return "bot log channel"
	}
	return string(f)
}

// IsRole reports whether the field references a role rather than a channel
func (f ConfigField) IsRole() bool {
	return f == FieldContestRole || f == FieldPingRole
}

// RequiredKind returns the channel kind a channel field accepts.
// ChannelKindUnknown means any channel is accepted.
func (f ConfigField) RequiredKind() ChannelKind {
	switch f {
	case FieldVotingChannel, FieldArchiveChannel:
		return ChannelKindForum
	case FieldAnnouncementChannel, FieldLogsChannel:
		return ChannelKindText
	}
	return ChannelKindUnknown
}
