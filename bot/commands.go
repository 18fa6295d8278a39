package bot

import (
	"fmt"

	"contestbot/bot/features/contest"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var (
	manageServerPermission int64 = discordgo.PermissionManageServer
	dmPermission                 = false
)

// Commands returns every slash command of the bot
func Commands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		channelSetter(contest.CommandSetSubmissionChannel, "Select submission channel", "Submission channel (defaults to this channel)"),
		channelSetter(contest.CommandSetVotingChannel, "Select voting channel", "Voting forum (defaults to this channel)",
			discordgo.ChannelTypeGuildForum),
		roleSetter(contest.CommandSetContestRole, "Select contest role"),
		channelSetter(contest.CommandSetAnnouncementChannel, "Select announcement channel", "Announcement channel (defaults to this channel)",
			discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews),
		roleSetter(contest.CommandSetPingRole, "Select contest ping role"),
		channelSetter(contest.CommandSetArchiveChannel, "Select art archive channel", "Art archive forum (defaults to this channel)",
			discordgo.ChannelTypeGuildForum),
		channelSetter(contest.CommandSetLogsChannel, "Select bot log channel", "Bot log channel (defaults to this channel)",
			discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews),
		{
			Name:        contest.CommandCreateContestSetup,
			Description: "Create contest channels",
		},
		{
			Name:        contest.CommandContestSettings,
			Description: "Show the contest configuration",
		},
	}

	for _, cmd := range commands {
		cmd.DefaultMemberPermissions = &manageServerPermission
		cmd.DMPermission = &dmPermission
	}
	return commands
}

func channelSetter(name, description, optionDescription string, channelTypes ...discordgo.ChannelType) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  optionDescription,
				ChannelTypes: channelTypes,
				Required:     false,
			},
		},
	}
}

func roleSetter(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "The role to use",
				Required:    true,
			},
		},
	}
}

// registerCommands registers all slash commands with Discord, globally or to the configured guild
func (b *Bot) registerCommands() error {
	for _, cmd := range Commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithField("guild_id", b.config.GuildID).Info("Registered slash commands")
	return nil
}
