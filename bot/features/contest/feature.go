package contest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"contestbot/application"
	"contestbot/bot/common"
	"contestbot/domain/entities"
	"contestbot/domain/interfaces"
	"contestbot/domain/services"
	"contestbot/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Command names
const (
	CommandSetSubmissionChannel   = "set-submission-channel"
	CommandSetVotingChannel       = "set-voting-channel"
	CommandSetContestRole         = "set-contest-role"
	CommandSetAnnouncementChannel = "set-announcement-channel"
	CommandSetPingRole            = "set-ping-role"
	CommandSetArchiveChannel      = "set-archive-channel"
	CommandSetLogsChannel         = "set-logs-channel"
	CommandCreateContestSetup     = "create-contest-setup"
	CommandContestSettings        = "contest-settings"
)

// SetterFields maps every setter command to the field it writes
var SetterFields = map[string]entities.ConfigField{
	CommandSetSubmissionChannel:   entities.FieldSubmissionChannel,
	CommandSetVotingChannel:       entities.FieldVotingChannel,
	CommandSetContestRole:         entities.FieldContestRole,
	CommandSetAnnouncementChannel: entities.FieldAnnouncementChannel,
	CommandSetPingRole:            entities.FieldPingRole,
	CommandSetArchiveChannel:      entities.FieldArchiveChannel,
	CommandSetLogsChannel:         entities.FieldLogsChannel,
}

// Gateway is the guild gateway plus the ability to post to a channel
type Gateway interface {
	interfaces.GuildGateway
	SendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error
}

// Feature handles the contest configuration commands
type Feature struct {
	uowFactory     application.UnitOfWorkFactory
	gateway        Gateway
	locker         interfaces.GuildLocker
	commandTimeout time.Duration
}

// NewFeature creates a new contest feature instance
func NewFeature(uowFactory application.UnitOfWorkFactory, gateway Gateway, locker interfaces.GuildLocker, commandTimeout time.Duration) *Feature {
	return &Feature{
		uowFactory:     uowFactory,
		gateway:        gateway,
		locker:         locker,
		commandTimeout: commandTimeout,
	}
}

// Handles reports whether the command belongs to this feature
func (f *Feature) Handles(name string) bool {
	_, ok := SetterFields[name]
	return ok || name == CommandCreateContestSetup || name == CommandContestSettings
}

// HandleCommand acknowledges the interaction, runs the command and sends exactly one follow-up
func (f *Feature) HandleCommand(s common.Responder, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	start := time.Now()

	if err := common.DeferResponse(s, i); err != nil {
		log.WithError(err).WithField("command", name).Error("Failed to acknowledge interaction")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.commandTimeout)
	defer cancel()

	result := f.dispatch(ctx, s, i, name)
	observability.GetMetrics().RecordCommand(name, result, time.Since(start))
}

func (f *Feature) dispatch(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, name string) string {
	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		common.FollowUpWithError(s, i, common.NewUserError("This command can only be used in a server.", "Command used outside a guild"))
		return observability.ResultValidation
	}

	switch name {
	case CommandCreateContestSetup:
		return f.handleCreateSetup(ctx, s, i, guildID)
	case CommandContestSettings:
		return f.handleShowSettings(ctx, s, i, guildID)
	}

	field, ok := SetterFields[name]
	if !ok {
		common.FollowUpWithError(s, i, fmt.Errorf("unknown command %q", name))
		return observability.ResultError
	}
	if field.IsRole() {
		return f.handleSetRole(ctx, s, i, guildID, field)
	}
	return f.handleSetChannel(ctx, s, i, guildID, field)
}

// inUnitOfWork runs fn in a guild-scoped unit of work and commits when it succeeds
func (f *Feature) inUnitOfWork(ctx context.Context, guildID int64, fn func(uow application.UnitOfWork) error) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var _ interfaces.ConfigTransactor = (*Feature)(nil)

// InTransaction runs fn in its own guild-scoped unit of work
func (f *Feature) InTransaction(ctx context.Context, guildID int64, fn func(repo interfaces.ServerConfigRepository, publisher interfaces.EventPublisher) error) error {
	return f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		return fn(uow.ServerConfigRepository(), uow.EventBus())
	})
}

func (f *Feature) settingsService(uow application.UnitOfWork) interfaces.ContestSettingsService {
	return services.NewContestSettingsService(uow.ServerConfigRepository(), f.gateway, uow.EventBus())
}

// mirrorToLogs posts an embed to the configured logs channel; failures are only logged
func (f *Feature) mirrorToLogs(ctx context.Context, guildID int64, embed *discordgo.MessageEmbed) {
	var cfg *entities.ServerConfig
	err := f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		var err error
		cfg, err = f.settingsService(uow).GetSettings(ctx, guildID)
		return err
	})
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Warn("Could not load logs channel")
		return
	}
	if !cfg.HasLogsChannel() {
		return
	}

	if err := f.gateway.SendEmbed(ctx, *cfg.LogsChannelID, common.ClampEmbed(embed)); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": guildID,
			"channel":  *cfg.LogsChannelID,
		}).Warn("Could not post to logs channel")
	}
}
