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

const announcementAccessReason = "Contest role access to announcements"

// contestSettingsService implements the ContestSettingsService interface
type contestSettingsService struct {
	configRepo     interfaces.ServerConfigRepository
	gateway        interfaces.GuildGateway
	eventPublisher interfaces.EventPublisher
}

// NewContestSettingsService creates a new contest settings service
func NewContestSettingsService(
	configRepo interfaces.ServerConfigRepository,
	gateway interfaces.GuildGateway,
	eventPublisher interfaces.EventPublisher,
) interfaces.ContestSettingsService {
	return &contestSettingsService{
		configRepo:     configRepo,
		gateway:        gateway,
		eventPublisher: eventPublisher,
	}
}

// GetSettings returns the stored configuration of a guild
func (s *contestSettingsService) GetSettings(ctx context.Context, guildID int64) (*entities.ServerConfig, error) {
	cfg, err := s.configRepo.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server config: %w", err)
	}
	return cfg, nil
}

// SetChannel validates and stores a channel field
func (s *contestSettingsService) SetChannel(ctx context.Context, guildID int64, field entities.ConfigField, channel *entities.GuildChannel) (*interfaces.SettingResult, error) {
	if field.IsRole() {
		return nil, fmt.Errorf("field %s is not a channel setting", field)
	}

	if err := validateChannel(guildID, field, channel); err != nil {
		return nil, err
	}

	return s.store(ctx, guildID, field, channel.ID, nil)
}

// SetRole stores a role field. Setting the contest role also gives it read access
// to the configured announcement channel if it has none yet.
func (s *contestSettingsService) SetRole(ctx context.Context, guildID int64, field entities.ConfigField, role *entities.GuildRole) (*interfaces.SettingResult, error) {
	if !field.IsRole() {
		return nil, fmt.Errorf("field %s is not a role setting", field)
	}

	if role == nil || role.ID == 0 {
		return nil, newValidationError("Please specify a role.")
	}

	var (
		applied  bool
		warnings []string
	)
	if field == entities.FieldContestRole {
		var err error
		applied, warnings, err = s.grantAnnouncementAccess(ctx, guildID, role)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.store(ctx, guildID, field, role.ID, warnings)
	if err != nil {
		return nil, err
	}
	result.OverwritesApplied = applied

	return result, nil
}

// grantAnnouncementAccess adds the contest role to the announcement channel overwrites.
// Presence of the role in the overwrites, not their content, decides whether to edit.
func (s *contestSettingsService) grantAnnouncementAccess(ctx context.Context, guildID int64, role *entities.GuildRole) (bool, []string, error) {
	cfg, err := s.configRepo.GetByGuildID(ctx, guildID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to get server config: %w", err)
	}

	if !cfg.HasAnnouncementChannel() {
		return false, nil, nil
	}

	channel, err := s.gateway.Channel(ctx, *cfg.AnnouncementChannelID)
	if errors.Is(err, interfaces.ErrNotFound) {
		warning := fmt.Sprintf("announcement channel %d no longer exists", *cfg.AnnouncementChannelID)
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": *cfg.AnnouncementChannelID,
		}).Warn("Configured announcement channel not found")
		return false, []string{warning}, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to get announcement channel: %w", err)
	}

	if channel.Overwrites.Has(role.ID) {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"role_id":  role.ID,
		}).Debug("Role already in announcement channel")
		return false, nil, nil
	}

	overwrites := channel.Overwrites.Merge(contestRoleOverwrites(guildID, s.gateway.BotUserID(), role.ID))
	if err := s.gateway.EditOverwrites(ctx, channel.ID, overwrites, announcementAccessReason); err != nil {
		return false, nil, fmt.Errorf("failed to update announcement channel permissions: %w", err)
	}

	return true, nil, nil
}

// store upserts one field and publishes a change event when stored state changed
func (s *contestSettingsService) store(ctx context.Context, guildID int64, field entities.ConfigField, id int64, warnings []string) (*interfaces.SettingResult, error) {
	var patch entities.ServerConfigPatch
	patch.Set(field, id)

	modified, err := s.configRepo.Upsert(ctx, guildID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update server config: %w", err)
	}

	if modified {
		if err := s.eventPublisher.Publish(events.ServerConfigUpdatedEvent{
			GuildID: guildID,
			Fields:  []string{string(field)},
			IDs:     []int64{id},
		}); err != nil {
			log.WithError(err).WithField("guild_id", guildID).Warn("Failed to publish config update event")
		}
	}

	return &interfaces.SettingResult{
		Field:    field,
		EntityID: id,
		Changed:  modified,
		Warnings: warnings,
	}, nil
}

// validateChannel enforces the kind constraint of a channel field
func validateChannel(guildID int64, field entities.ConfigField, channel *entities.GuildChannel) error {
	if channel == nil || channel.ID == 0 {
		return newValidationError("Please select a valid channel.")
	}

	if channel.GuildID != 0 && channel.GuildID != guildID {
		return newValidationError("Please select a channel from this server.")
	}

	switch field.RequiredKind() {
	case entities.ChannelKindForum:
		if !channel.IsForum() {
			return newValidationError(fmt.Sprintf("Please select a valid forum channel for %s.", kindPurpose(field)))
		}
	case entities.ChannelKindText:
		if !channel.IsText() {
			return newValidationError(fmt.Sprintf("Please select a valid text channel for %s.", kindPurpose(field)))
		}
	}

	return nil
}

func kindPurpose(field entities.ConfigField) string {
	switch field {
	case entities.FieldVotingChannel:
		return "voting"
	case entities.FieldAnnouncementChannel:
		return "announcement"
	case entities.FieldArchiveChannel:
		return "art archive"
	case entities.FieldLogsChannel:
		return "bot log"
	}
	return field.Label()
}
