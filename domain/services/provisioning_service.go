package services

import (
	"context"
	"errors"
	"fmt"

	"contestbot/domain/entities"
	"contestbot/domain/events"
	"contestbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// ContestCategoryName is the category every contest channel is created in
	ContestCategoryName = "Contest"

	// PingRoleName is the role pinged for contest notifications
	PingRoleName = "Contest Ping"

	// VotingAutoArchiveMinutes is the thread inactivity window of the voting forum (7 days)
	VotingAutoArchiveMinutes = 10080

	categoryReason = "Contest category"
	pingRoleReason = "Contest ping role"
)

// ContestBlueprints declares the contest channels in creation order
func ContestBlueprints(guildID int64) []entities.ChannelBlueprint {
	return []entities.ChannelBlueprint{
		{Name: "contest-submit", Kind: entities.ChannelKindText, Field: entities.FieldSubmissionChannel, Reason: "Submission channel"},
		{Name: "contest-vote", Kind: entities.ChannelKindForum, Field: entities.FieldVotingChannel, Reason: "Voting channel", AutoArchiveMinutes: VotingAutoArchiveMinutes},
		{
			Name:            "contest-announcement",
			Kind:            entities.ChannelKindText,
			Field:           entities.FieldAnnouncementChannel,
			Reason:          "Announcement channel",
			ExtraOverwrites: entities.OverwriteSet{viewOnlyOverwrite(guildID)},
		},
		{Name: "contest-archive", Kind: entities.ChannelKindForum, Field: entities.FieldArchiveChannel, Reason: "Contest archive channel"},
		{Name: "bot-logs", Kind: entities.ChannelKindText, Field: entities.FieldLogsChannel, Reason: "Bot log channel"},
	}
}

// provisioningService implements the ProvisioningService interface.
// Platform calls and lock waits happen outside any transaction; the store is
// only entered to read the contest role and to record the result.
type provisioningService struct {
	store   interfaces.ConfigTransactor
	gateway interfaces.GuildGateway
	locker  interfaces.GuildLocker
}

// NewProvisioningService creates a new provisioning service
func NewProvisioningService(
	store interfaces.ConfigTransactor,
	gateway interfaces.GuildGateway,
	locker interfaces.GuildLocker,
) interfaces.ProvisioningService {
	return &provisioningService{
		store:   store,
		gateway: gateway,
		locker:  locker,
	}
}

// guildSnapshot is the platform state read once at the start of a run
type guildSnapshot struct {
	guildID        int64
	botID          int64
	botTopPosition int
	channels       []*entities.GuildChannel
	roles          []*entities.GuildRole
}

// Provision resolves or creates the contest scaffold and stores the resulting ids.
// On a category failure the returned result is non-nil alongside the error and
// nothing else was touched.
func (s *provisioningService) Provision(ctx context.Context, guildID int64) (*entities.ProvisionResult, error) {
	unlock, err := s.locker.Lock(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire provisioning lock: %w", err)
	}
	defer unlock()

	snap, err := s.snapshot(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var cfg *entities.ServerConfig
	err = s.store.InTransaction(ctx, guildID, func(repo interfaces.ServerConfigRepository, _ interfaces.EventPublisher) error {
		var err error
		cfg, err = repo.GetByGuildID(ctx, guildID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get server config: %w", err)
	}

	result := &entities.ProvisionResult{GuildID: guildID}
	logger := log.WithField("guild_id", guildID)

	category, err := s.ensureCategory(ctx, snap, result)
	if err != nil {
		logger.WithError(err).Error("Contest category could not be resolved, aborting setup")
		return result, err
	}

	if cfg.HasContestRole() {
		result.ContestRole = entities.FindRoleByID(snap.roles, *cfg.ContestRoleID)
	}
	logger.WithField("contest_role", result.ContestRole).Debug("Resolved contest role")

	result.PingRole = s.ensurePingRole(ctx, snap)
	if result.PingRole.OK() {
		result.Patch.Set(entities.FieldPingRole, result.PingRole.ID)
	}

	for _, bp := range ContestBlueprints(guildID) {
		outcome := s.ensureChannel(ctx, snap, category, bp)
		if outcome.Warning != "" {
			result.Warnings = append(result.Warnings, outcome.Warning)
		}
		if outcome.OK() {
			result.Patch.Set(bp.Field, outcome.ID)
		}
		result.Channels = append(result.Channels, outcome)
	}

	if result.Patch.IsEmpty() {
		logger.Warn("Contest setup resolved nothing, skipping config write")
		return result, nil
	}

	if err := s.record(ctx, result); err != nil {
		return result, err
	}
	result.Persisted = true

	logger.WithFields(log.Fields{
		"created": len(result.Created()),
		"reused":  len(result.Reused()),
		"failed":  len(result.Failed()),
	}).Info("Contest setup provisioned")

	return result, nil
}

// record stores the resolved ids and queues the provisioning event in one transaction
func (s *provisioningService) record(ctx context.Context, result *entities.ProvisionResult) error {
	return s.store.InTransaction(ctx, result.GuildID, func(repo interfaces.ServerConfigRepository, publisher interfaces.EventPublisher) error {
		if _, err := repo.Upsert(ctx, result.GuildID, result.Patch); err != nil {
			return fmt.Errorf("failed to update server config: %w", err)
		}

		if err := publisher.Publish(events.ContestSetupProvisionedEvent{
			GuildID: result.GuildID,
			Created: result.Created(),
			Reused:  result.Reused(),
			Failed:  result.Failed(),
		}); err != nil {
			log.WithError(err).WithField("guild_id", result.GuildID).Warn("Failed to publish contest setup event")
		}
		return nil
	})
}

func (s *provisioningService) snapshot(ctx context.Context, guildID int64) (*guildSnapshot, error) {
	channels, err := s.gateway.Channels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild channels: %w", err)
	}

	roles, err := s.gateway.Roles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild roles: %w", err)
	}

	botRoles, err := s.gateway.BotRoleIDs(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot roles: %w", err)
	}

	return &guildSnapshot{
		guildID:        guildID,
		botID:          s.gateway.BotUserID(),
		botTopPosition: entities.TopRolePosition(roles, botRoles),
		channels:       channels,
		roles:          roles,
	}, nil
}

// ensureCategory resolves or creates the contest category. Any creation failure
// is fatal for the run.
func (s *provisioningService) ensureCategory(ctx context.Context, snap *guildSnapshot, result *entities.ProvisionResult) (*entities.GuildChannel, error) {
	result.Category = entities.Outcome{Name: ContestCategoryName, Kind: entities.ChannelKindCategory}

	category := entities.FindCategoryByName(snap.channels, ContestCategoryName)
	if category != nil {
		result.Category.Status = entities.OutcomeReused
	} else {
		created, err := s.gateway.CreateCategory(ctx, snap.guildID, ContestCategoryName, categoryReason, defaultOverwrites(snap.guildID, snap.botID))
		if err != nil {
			result.Category.Status = entities.OutcomeFailed
			result.Category.Err = err
			if errors.Is(err, interfaces.ErrForbidden) {
				return nil, fmt.Errorf("%w: %w", ErrCategoryForbidden, err)
			}
			return nil, fmt.Errorf("failed to create contest category: %w", err)
		}
		category = created
		result.Category.Status = entities.OutcomeCreated
	}
	result.Category.ID = category.ID

	if err := s.gateway.SetOverwrite(ctx, category.ID, botFullOverwrite(snap.botID), categoryReason); err != nil {
		warning := fmt.Sprintf("could not update category permissions for bot: %v", err)
		result.Warnings = append(result.Warnings, warning)
		log.WithError(err).WithField("guild_id", snap.guildID).Warn("Could not update category permissions for bot")
	}

	return category, nil
}

// ensurePingRole resolves the ping role by name or creates it
func (s *provisioningService) ensurePingRole(ctx context.Context, snap *guildSnapshot) entities.Outcome {
	outcome := entities.Outcome{Name: PingRoleName, Field: entities.FieldPingRole}

	if role := entities.FindRoleByName(snap.roles, PingRoleName); role != nil {
		outcome.Status = entities.OutcomeReused
		outcome.ID = role.ID
		return outcome
	}

	role, err := s.gateway.CreateRole(ctx, snap.guildID, PingRoleName, pingRoleReason)
	if err != nil {
		log.WithError(err).WithField("guild_id", snap.guildID).Warn("Could not create contest ping role")
		outcome.Status = entities.OutcomeFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = entities.OutcomeCreated
	outcome.ID = role.ID
	return outcome
}

// ensureChannel reuses any channel with the blueprint's name, otherwise creates it
// in the contest category. Failures only affect this channel.
func (s *provisioningService) ensureChannel(ctx context.Context, snap *guildSnapshot, category *entities.GuildChannel, bp entities.ChannelBlueprint) entities.Outcome {
	outcome := entities.Outcome{Name: bp.Name, Kind: bp.Kind, Field: bp.Field}
	logger := log.WithFields(log.Fields{
		"guild_id": snap.guildID,
		"channel":  bp.Name,
	})

	if existing := entities.FindChannelByName(snap.channels, bp.Name); existing != nil {
		outcome.Status = entities.OutcomeReused
		outcome.ID = existing.ID
		if existing.Kind != bp.Kind {
			outcome.Warning = fmt.Sprintf("reused #%s is a %s channel, expected %s", bp.Name, existing.Kind, bp.Kind)
			logger.Warn(outcome.Warning)
		}
		return outcome
	}

	overwrites, warnings := composeChannelOverwrites(snap.guildID, snap.botID, bp.ExtraOverwrites, snap.roles, snap.botTopPosition)
	for _, w := range warnings {
		logger.Warn(w)
	}

	created, err := s.gateway.CreateChannel(ctx, snap.guildID, entities.ChannelSpec{
		Name:               bp.Name,
		Kind:               bp.Kind,
		ParentID:           category.ID,
		Reason:             bp.Reason,
		AutoArchiveMinutes: bp.AutoArchiveMinutes,
		Overwrites:         overwrites,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrForbidden) {
			logger.WithError(err).Warnf("Bot does not have permission to create %s channel", bp.Kind)
		} else {
			logger.WithError(err).Error("Failed to create contest channel")
		}
		outcome.Status = entities.OutcomeFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = entities.OutcomeCreated
	outcome.ID = created.ID
	if len(warnings) > 0 {
		outcome.Warning = warnings[0]
	}
	return outcome
}
