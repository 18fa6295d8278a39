package contest

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"contestbot/bot/common"
	"contestbot/domain/entities"
	"contestbot/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingMessage(t *testing.T) {
	tests := []struct {
		name     string
		result   *interfaces.SettingResult
		expected string
	}{
		{
			name:     "changed channel",
			result:   &interfaces.SettingResult{Field: entities.FieldArchiveChannel, EntityID: 7, Changed: true},
			expected: "<#7> is set as art archive channel",
		},
		{
			name:     "unchanged channel",
			result:   &interfaces.SettingResult{Field: entities.FieldLogsChannel, EntityID: 7},
			expected: "Bot log channel already set to <#7>",
		},
		{
			name:     "changed role",
			result:   &interfaces.SettingResult{Field: entities.FieldPingRole, EntityID: 9, Changed: true},
			expected: "<@&9> is set as contest ping role",
		},
		{
			name: "warnings appended",
			result: &interfaces.SettingResult{
				Field:    entities.FieldContestRole,
				EntityID: 9,
				Changed:  true,
				Warnings: []string{"announcement channel 3 no longer exists"},
			},
			expected: "<@&9> is set as contest role\n⚠️ announcement channel 3 no longer exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, settingMessage(tt.result))
		})
	}
}

func TestProvisionEmbed(t *testing.T) {
	result := &entities.ProvisionResult{
		Category: entities.Outcome{Name: "Contest", Status: entities.OutcomeReused, ID: 1},
		PingRole: entities.Outcome{Name: "Contest Ping", Status: entities.OutcomeFailed, Err: errors.New("missing permissions")},
		Channels: []entities.Outcome{
			{Name: "contest-submit", Status: entities.OutcomeCreated, ID: 2},
			{Name: "contest-vote", Status: entities.OutcomeReused, ID: 3},
		},
		ContestRole: &entities.GuildRole{ID: 4, Name: "Artists"},
		Warnings:    []string{"reused #contest-vote is a text channel, expected forum"},
		Persisted:   true,
	}

	embed := provisionEmbed(result)

	assert.Equal(t, "Contest setup finished with failures", embed.Title)
	values := make(map[string]string)
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "contest-submit", values["Created"])
	assert.Equal(t, "Contest, contest-vote", values["Reused"])
	assert.Equal(t, "**Contest Ping**: missing permissions", values["Failed"])
	assert.Equal(t, "<@&4>", values["Contest role"])
	assert.Contains(t, values["Warnings"], "expected forum")
	assert.Empty(t, embed.Description)
}

func TestProvisionEmbed_NothingPersisted(t *testing.T) {
	result := &entities.ProvisionResult{
		Category: entities.Outcome{Name: "Contest", Status: entities.OutcomeCreated, ID: 1},
	}

	embed := provisionEmbed(result)

	require.NotEmpty(t, embed.Fields)
	assert.Equal(t, "Contest channels created successfully.", embed.Title)
	assert.Equal(t, "No configuration was saved.", embed.Description)
}

func TestErrorLogEmbed(t *testing.T) {
	embed := errorLogEmbed("Error setting voting channel", errors.New("timeout"))

	assert.Equal(t, "Error setting voting channel", embed.Title)
	assert.Equal(t, "Error: timeout", embed.Description)
}

func TestProvisionEmbed_LongErrorsFitFieldLimit(t *testing.T) {
	html := errors.New(strings.Repeat("<p>502 Bad Gateway</p>", 70))
	result := &entities.ProvisionResult{
		Category: entities.Outcome{Name: "Contest", Status: entities.OutcomeReused, ID: 1},
		PingRole: entities.Outcome{Name: "Contest Ping", Status: entities.OutcomeFailed, Err: html},
	}
	for _, name := range []string{"contest-submit", "contest-vote", "contest-announcement", "contest-archive", "bot-logs"} {
		result.Channels = append(result.Channels, entities.Outcome{Name: name, Status: entities.OutcomeFailed, Err: html})
	}

	embed := common.ClampEmbed(provisionEmbed(result))

	var failed string
	for _, f := range embed.Fields {
		if f.Name == "Failed" {
			failed = f.Value
		}
	}
	require.NotEmpty(t, failed)
	assert.LessOrEqual(t, utf8.RuneCountInString(failed), common.MaxEmbedFieldLength)
	assert.Contains(t, failed, "**Contest Ping**: ")
	assert.Contains(t, failed, "**contest-vote**: ")
}
