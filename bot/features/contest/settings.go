package contest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contestbot/application"
	"contestbot/bot/common"
	"contestbot/domain/entities"
	"contestbot/domain/interfaces"
	"contestbot/domain/services"
	"contestbot/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleSetChannel handles the channel setters; the invoking channel is used when none is given
func (f *Feature) handleSetChannel(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, guildID int64, field entities.ConfigField) string {
	channelID, ok := channelOptionID(i)
	if !ok {
		common.FollowUp(s, i, "Please select a valid channel.")
		return observability.ResultValidation
	}

	channel, err := f.gateway.Channel(ctx, channelID)
	if errors.Is(err, interfaces.ErrNotFound) {
		common.FollowUp(s, i, "Please select a valid channel.")
		return observability.ResultValidation
	}
	if err != nil {
		return f.reportFailure(ctx, s, i, guildID, field, err)
	}

	var result *interfaces.SettingResult
	err = f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		var err error
		result, err = f.settingsService(uow).SetChannel(ctx, guildID, field, channel)
		return err
	})
	return f.reportSetting(ctx, s, i, guildID, field, result, err)
}

// handleSetRole handles the role setters; a role is required
func (f *Feature) handleSetRole(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, guildID int64, field entities.ConfigField) string {
	role := roleOption(i)

	var result *interfaces.SettingResult
	err := f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		var err error
		result, err = f.settingsService(uow).SetRole(ctx, guildID, field, role)
		return err
	})
	return f.reportSetting(ctx, s, i, guildID, field, result, err)
}

// reportSetting sends the follow-up for a setter and mirrors changes to the logs channel
func (f *Feature) reportSetting(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, guildID int64, field entities.ConfigField, result *interfaces.SettingResult, err error) string {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		common.FollowUp(s, i, vErr.UserMessage)
		return observability.ResultValidation
	}
	if err != nil {
		return f.reportFailure(ctx, s, i, guildID, field, err)
	}

	common.FollowUp(s, i, settingMessage(result))

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"field":    field,
		"id":       result.EntityID,
		"changed":  result.Changed,
	}).Info("Contest setting updated")

	if result.Changed {
		f.mirrorToLogs(ctx, guildID, settingLogEmbed(result))
	}
	return observability.ResultSuccess
}

func (f *Feature) reportFailure(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, guildID int64, field entities.ConfigField, err error) string {
	common.FollowUpWithError(s, i, common.NewSystemError(err, fmt.Sprintf("Failed to set %s", field.Label())))
	f.mirrorToLogs(ctx, guildID, errorLogEmbed(fmt.Sprintf("Error setting %s", field.Label()), err))
	return observability.ResultError
}

// handleShowSettings shows the stored configuration
func (f *Feature) handleShowSettings(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, guildID int64) string {
	var cfg *entities.ServerConfig
	err := f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		var err error
		cfg, err = f.settingsService(uow).GetSettings(ctx, guildID)
		return err
	})
	if err != nil {
		common.FollowUpWithError(s, i, common.NewSystemError(err, "Failed to load contest settings"))
		return observability.ResultError
	}

	common.FollowUpWithEmbed(s, i, settingsEmbed(cfg))
	return observability.ResultSuccess
}

// settingMessage renders the user-facing answer of a setter
func settingMessage(result *interfaces.SettingResult) string {
	mention := common.ChannelMention(result.EntityID)
	if result.Field.IsRole() {
		mention = common.RoleMention(result.EntityID)
	}

	var b strings.Builder
	if result.Changed {
		fmt.Fprintf(&b, "%s is set as %s", mention, result.Field.Label())
	} else {
		fmt.Fprintf(&b, "%s already set to %s", common.Capitalize(result.Field.Label()), mention)
	}

	if result.OverwritesApplied {
		fmt.Fprintf(&b, "\n%s can now read the announcement channel", mention)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "\n⚠️ %s", w)
	}
	return b.String()
}
