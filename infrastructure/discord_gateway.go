package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"contestbot/domain/entities"
	"contestbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// forumLayoutGallery is Discord's default_forum_layout value for gallery view
const forumLayoutGallery = 2

// DiscordSession is the subset of *discordgo.Session used by the gateway
type DiscordSession interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string, options ...discordgo.RequestOption) ([]byte, error)
}

// DiscordGateway implements GuildGateway on top of discordgo
type DiscordGateway struct {
	session DiscordSession
	botID   int64
}

// NewDiscordGateway creates a gateway acting as the given bot user
func NewDiscordGateway(session DiscordSession, botUserID string) (*DiscordGateway, error) {
	botID, err := strconv.ParseInt(botUserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid bot user id %q: %w", botUserID, err)
	}
	return &DiscordGateway{session: session, botID: botID}, nil
}

var _ interfaces.GuildGateway = (*DiscordGateway)(nil)

func (g *DiscordGateway) BotUserID() int64 {
	return g.botID
}

func (g *DiscordGateway) BotRoleIDs(ctx context.Context, guildID int64) ([]int64, error) {
	member, err := g.session.GuildMember(snowflake(guildID), snowflake(g.botID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to get bot member: %w", err))
	}

	ids := make([]int64, 0, len(member.Roles))
	for _, roleID := range member.Roles {
		ids = append(ids, parseID(roleID))
	}
	return ids, nil
}

func (g *DiscordGateway) Channels(ctx context.Context, guildID int64) ([]*entities.GuildChannel, error) {
	channels, err := g.session.GuildChannels(snowflake(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to list channels: %w", err))
	}

	out := make([]*entities.GuildChannel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, toGuildChannel(ch))
	}
	return out, nil
}

func (g *DiscordGateway) Channel(ctx context.Context, channelID int64) (*entities.GuildChannel, error) {
	ch, err := g.session.Channel(snowflake(channelID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to get channel %d: %w", channelID, err))
	}
	return toGuildChannel(ch), nil
}

func (g *DiscordGateway) Roles(ctx context.Context, guildID int64) ([]*entities.GuildRole, error) {
	roles, err := g.session.GuildRoles(snowflake(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to list roles: %w", err))
	}

	out := make([]*entities.GuildRole, 0, len(roles))
	for _, r := range roles {
		out = append(out, &entities.GuildRole{ID: parseID(r.ID), Name: r.Name, Position: r.Position})
	}
	return out, nil
}

func (g *DiscordGateway) CreateCategory(ctx context.Context, guildID int64, name, reason string, overwrites entities.OverwriteSet) (*entities.GuildChannel, error) {
	ch, err := g.session.GuildChannelCreateComplex(snowflake(guildID), discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: toDiscordOverwrites(overwrites),
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to create category %s: %w", name, err))
	}
	return toGuildChannel(ch), nil
}

// forumCreateData carries the forum-only fields of a channel create request
type forumCreateData struct {
	Name                       string                           `json:"name"`
	Type                       discordgo.ChannelType            `json:"type"`
	ParentID                   string                           `json:"parent_id,omitempty"`
	PermissionOverwrites       []*discordgo.PermissionOverwrite `json:"permission_overwrites,omitempty"`
	DefaultAutoArchiveDuration int                              `json:"default_auto_archive_duration,omitempty"`
	DefaultForumLayout         int                              `json:"default_forum_layout"`
}

func (g *DiscordGateway) CreateChannel(ctx context.Context, guildID int64, spec entities.ChannelSpec) (*entities.GuildChannel, error) {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx), discordgo.WithAuditLogReason(spec.Reason)}
	parentID := ""
	if spec.ParentID != 0 {
		parentID = snowflake(spec.ParentID)
	}

	switch spec.Kind {
	case entities.ChannelKindText:
		ch, err := g.session.GuildChannelCreateComplex(snowflake(guildID), discordgo.GuildChannelCreateData{
			Name:                 spec.Name,
			Type:                 discordgo.ChannelTypeGuildText,
			ParentID:             parentID,
			PermissionOverwrites: toDiscordOverwrites(spec.Overwrites),
		}, opts...)
		if err != nil {
			return nil, mapError(fmt.Errorf("failed to create text channel %s: %w", spec.Name, err))
		}
		return toGuildChannel(ch), nil

	case entities.ChannelKindForum:
		endpoint := discordgo.EndpointGuildChannels(snowflake(guildID))
		body, err := g.session.RequestWithBucketID(http.MethodPost, endpoint, forumCreateData{
			Name:                       spec.Name,
			Type:                       discordgo.ChannelTypeGuildForum,
			ParentID:                   parentID,
			PermissionOverwrites:       toDiscordOverwrites(spec.Overwrites),
			DefaultAutoArchiveDuration: spec.AutoArchiveMinutes,
			DefaultForumLayout:         forumLayoutGallery,
		}, endpoint, opts...)
		if err != nil {
			return nil, mapError(fmt.Errorf("failed to create forum channel %s: %w", spec.Name, err))
		}

		var ch discordgo.Channel
		if err := json.Unmarshal(body, &ch); err != nil {
			return nil, fmt.Errorf("failed to decode forum channel %s: %w", spec.Name, err)
		}
		return toGuildChannel(&ch), nil
	}

	return nil, fmt.Errorf("unsupported channel kind %q", spec.Kind)
}

func (g *DiscordGateway) CreateRole(ctx context.Context, guildID int64, name, reason string) (*entities.GuildRole, error) {
	role, err := g.session.GuildRoleCreate(snowflake(guildID), &discordgo.RoleParams{Name: name},
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to create role %s: %w", name, err))
	}
	return &entities.GuildRole{ID: parseID(role.ID), Name: role.Name, Position: role.Position}, nil
}

func (g *DiscordGateway) SetOverwrite(ctx context.Context, channelID int64, overwrite entities.Overwrite, reason string) error {
	err := g.session.ChannelPermissionSet(
		snowflake(channelID),
		snowflake(overwrite.TargetID),
		toDiscordTargetType(overwrite.TargetType),
		int64(overwrite.Allow),
		int64(overwrite.Deny),
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason),
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to set overwrite on %d: %w", channelID, err))
	}
	return nil
}

func (g *DiscordGateway) EditOverwrites(ctx context.Context, channelID int64, overwrites entities.OverwriteSet, reason string) error {
	_, err := g.session.ChannelEdit(snowflake(channelID), &discordgo.ChannelEdit{
		PermissionOverwrites: toDiscordOverwrites(overwrites),
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return mapError(fmt.Errorf("failed to edit overwrites on %d: %w", channelID, err))
	}
	return nil
}

// SendEmbed posts an embed to a channel
func (g *DiscordGateway) SendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	if _, err := g.session.ChannelMessageSendEmbed(snowflake(channelID), embed, discordgo.WithContext(ctx)); err != nil {
		return mapError(fmt.Errorf("failed to send embed to %d: %w", channelID, err))
	}
	return nil
}

// mapError tags Discord 403 and 404 responses with the domain sentinel errors
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}

	switch restErr.Response.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", interfaces.ErrForbidden, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", interfaces.ErrNotFound, err)
	}
	return err
}

func toGuildChannel(ch *discordgo.Channel) *entities.GuildChannel {
	out := &entities.GuildChannel{
		ID:       parseID(ch.ID),
		GuildID:  parseID(ch.GuildID),
		Name:     ch.Name,
		Kind:     channelKind(ch.Type),
		ParentID: parseID(ch.ParentID),
	}
	for _, ow := range ch.PermissionOverwrites {
		out.Overwrites = append(out.Overwrites, entities.Overwrite{
			TargetID:   parseID(ow.ID),
			TargetType: fromDiscordTargetType(ow.Type),
			Allow:      entities.Permission(ow.Allow),
			Deny:       entities.Permission(ow.Deny),
		})
	}
	return out
}

// channelKind maps Discord channel types; announcement channels count as text
func channelKind(t discordgo.ChannelType) entities.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return entities.ChannelKindText
	case discordgo.ChannelTypeGuildForum:
		return entities.ChannelKindForum
	case discordgo.ChannelTypeGuildCategory:
		return entities.ChannelKindCategory
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return entities.ChannelKindVoice
	}
	return entities.ChannelKindOther
}

func toDiscordOverwrites(set entities.OverwriteSet) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(set))
	for _, o := range set {
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    snowflake(o.TargetID),
			Type:  toDiscordTargetType(o.TargetType),
			Allow: int64(o.Allow),
			Deny:  int64(o.Deny),
		})
	}
	return out
}

func toDiscordTargetType(t entities.OverwriteTarget) discordgo.PermissionOverwriteType {
	if t == entities.OverwriteTargetMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

func fromDiscordTargetType(t discordgo.PermissionOverwriteType) entities.OverwriteTarget {
	if t == discordgo.PermissionOverwriteTypeMember {
		return entities.OverwriteTargetMember
	}
	return entities.OverwriteTargetRole
}

func snowflake(v int64) string {
	return strconv.FormatInt(v, 10)
}

// parseID parses a snowflake, 0 for empty or malformed input
func parseID(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
