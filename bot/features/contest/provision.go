package contest

import (
	"context"

	"contestbot/bot/common"
	"contestbot/domain/entities"
	"contestbot/domain/services"
	"contestbot/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleCreateSetup provisions the contest scaffold and reports every entity's outcome.
// The provisioner opens its own short units of work, so no transaction is held
// while it waits on the guild lock or talks to Discord.
func (f *Feature) handleCreateSetup(ctx context.Context, s common.Responder, i *discordgo.InteractionCreate, guildID int64) string {
	provisioner := services.NewProvisioningService(f, f.gateway, f.locker)
	result, err := provisioner.Provision(ctx, guildID)

	recordOutcomes(result)

	if err != nil {
		common.FollowUpWithError(s, i, common.NewSystemError(err, "Contest setup failed"))
		f.mirrorToLogs(ctx, guildID, errorLogEmbed("Error creating contest setup", err))
		return observability.ResultError
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"created":  len(result.Created()),
		"failed":   len(result.Failed()),
	}).Info("Contest setup command completed")

	embed := provisionEmbed(result)
	common.FollowUpWithEmbed(s, i, embed)
	f.mirrorToLogs(ctx, guildID, embed)
	return observability.ResultSuccess
}

func recordOutcomes(result *entities.ProvisionResult) {
	if result == nil {
		return
	}

	metrics := observability.GetMetrics()
	metrics.RecordProvisionOutcome(result.Category.Name, string(result.Category.Status))
	if result.PingRole.Status != "" {
		metrics.RecordProvisionOutcome(result.PingRole.Name, string(result.PingRole.Status))
	}
	for _, ch := range result.Channels {
		metrics.RecordProvisionOutcome(ch.Name, string(ch.Status))
	}
}
