package contest

import (
	"fmt"
	"strings"
	"time"

	"contestbot/bot/common"
	"contestbot/domain/entities"
	"contestbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// maxOutcomeErrorLength keeps one failed entity's error readable next to the others
const maxOutcomeErrorLength = 180

// provisionEmbed summarizes a contest setup run
func provisionEmbed(result *entities.ProvisionResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "Contest channels created successfully.",
		Color:     common.ColorSuccess,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Created", Value: common.FormatNameList(result.Created(), ""), Inline: true},
			{Name: "Reused", Value: common.FormatNameList(result.Reused(), ""), Inline: true},
		},
	}

	if result.HasFailures() {
		embed.Title = "Contest setup finished with failures"
		embed.Color = common.ColorWarning

		var lines []string
		for _, o := range failedOutcomes(result) {
			lines = append(lines, fmt.Sprintf("**%s**: %s", o.Name, common.Truncate(fmt.Sprint(o.Err), maxOutcomeErrorLength)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Failed",
			Value: strings.Join(lines, "\n"),
		})
	}

	contestRole := common.NotSet
	if result.ContestRole != nil {
		contestRole = common.RoleMention(result.ContestRole.ID)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Contest role", Value: contestRole, Inline: true})

	if len(result.Warnings) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Warnings",
			Value: "⚠️ " + strings.Join(result.Warnings, "\n⚠️ "),
		})
	}

	if !result.Persisted {
		embed.Description = "No configuration was saved."
	}

	return embed
}

func failedOutcomes(result *entities.ProvisionResult) []entities.Outcome {
	var out []entities.Outcome
	if result.Category.Status == entities.OutcomeFailed {
		out = append(out, result.Category)
	}
	if result.PingRole.Status == entities.OutcomeFailed {
		out = append(out, result.PingRole)
	}
	for _, ch := range result.Channels {
		if ch.Status == entities.OutcomeFailed {
			out = append(out, ch)
		}
	}
	return out
}

// settingsEmbed lists the stored configuration of a guild
func settingsEmbed(cfg *entities.ServerConfig) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(entities.AllConfigFields))
	for _, field := range entities.AllConfigFields {
		value := common.FormatOptionalChannel(cfg.Get(field))
		if field.IsRole() {
			value = common.FormatOptionalRole(cfg.Get(field))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   common.Capitalize(field.Label()),
			Value:  value,
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Contest settings",
		Color:  common.ColorPrimary,
		Fields: fields,
	}
}

// settingLogEmbed describes a changed setting for the logs channel
func settingLogEmbed(result *interfaces.SettingResult) *discordgo.MessageEmbed {
	mention := common.ChannelMention(result.EntityID)
	if result.Field.IsRole() {
		mention = common.RoleMention(result.EntityID)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s set", common.Capitalize(result.Field.Label())),
		Description: fmt.Sprintf("%s set to %s", common.Capitalize(result.Field.Label()), mention),
		Color:       common.ColorSuccess,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// errorLogEmbed describes a failed command for the logs channel
func errorLogEmbed(title string, err error) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: common.Truncate(common.FormatError(err), common.MaxEmbedDescriptionLength),
		Color:       common.ColorDanger,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
