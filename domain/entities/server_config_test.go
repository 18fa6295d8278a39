package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerConfigPatch_Values(t *testing.T) {
	t.Parallel()

	var p ServerConfigPatch
	assert.True(t, p.IsEmpty())

	p.Set(FieldLogsChannel, 7)
	p.Set(FieldSubmissionChannel, 3)
	p.Set(FieldPingRole, 5)

	assert.False(t, p.IsEmpty())
	assert.Equal(t, []FieldValue{
		{Field: FieldSubmissionChannel, ID: 3},
		{Field: FieldPingRole, ID: 5},
		{Field: FieldLogsChannel, ID: 7},
	}, p.Values())
}

func TestServerConfig_Get(t *testing.T) {
	t.Parallel()

	var nilConfig *ServerConfig
	assert.Nil(t, nilConfig.Get(FieldVotingChannel))
	assert.False(t, nilConfig.HasAnnouncementChannel())

	id := int64(12)
	cfg := &ServerConfig{GuildID: 1, ArchiveChannelID: &id}
	assert.Equal(t, &id, cfg.Get(FieldArchiveChannel))
	assert.Nil(t, cfg.Get(FieldContestRole))
	assert.False(t, cfg.HasContestRole())
}

func TestConfigField_Metadata(t *testing.T) {
	t.Parallel()

	for _, field := range AllConfigFields {
		assert.NotEmpty(t, field.Column(), field)
		assert.NotEqual(t, string(field), field.Label(), field)
	}
	assert.Equal(t, ChannelKindForum, FieldVotingChannel.RequiredKind())
	assert.Equal(t, ChannelKindText, FieldLogsChannel.RequiredKind())
	assert.Equal(t, ChannelKindUnknown, FieldSubmissionChannel.RequiredKind())
	assert.True(t, FieldPingRole.IsRole())
	assert.False(t, FieldArchiveChannel.IsRole())
}

func TestProvisionResult_Names(t *testing.T) {
	t.Parallel()

	r := &ProvisionResult{
		Category: Outcome{Name: "Contest", Status: OutcomeReused},
		PingRole: Outcome{Name: "Contest Ping", Status: OutcomeFailed},
		Channels: []Outcome{
			{Name: "a", Status: OutcomeCreated},
			{Name: "b", Status: OutcomeFailed},
		},
	}

	assert.Equal(t, []string{"Contest"}, r.Reused())
	assert.Equal(t, []string{"a"}, r.Created())
	assert.Equal(t, []string{"Contest Ping", "b"}, r.Failed())
	assert.True(t, r.HasFailures())
}
