package bot

import (
	"fmt"
	"runtime/debug"
	"time"

	"contestbot/application"
	"contestbot/bot/features/contest"
	"contestbot/domain/interfaces"
	"contestbot/infrastructure"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID registers the commands to a single guild when set
	GuildID        string
	CommandTimeout time.Duration
}

// Bot manages the Discord session and the contest feature
type Bot struct {
	config  Config
	session *discordgo.Session
	contest *contest.Feature
}

// New opens the Discord session, wires the contest feature and registers the slash commands
func New(config Config, uowFactory application.UnitOfWorkFactory, locker interfaces.GuildLocker) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	gateway, err := infrastructure.NewDiscordGateway(dg, dg.State.User.ID)
	if err != nil {
		dg.Close()
		return nil, fmt.Errorf("error creating guild gateway: %w", err)
	}

	bot := &Bot{
		config:  config,
		session: dg,
		contest: contest.NewFeature(uowFactory, gateway, locker, config.CommandTimeout),
	}

	dg.AddHandler(bot.handleCommands)

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithFields(log.Fields{
		"user":     dg.State.User.Username,
		"guild_id": config.GuildID,
	}).Info("Bot is running")

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands routes slash commands to the contest feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"command":  name,
				"guild_id": i.GuildID,
				"panic":    r,
			}).Errorf("Recovered from panic in command handler\n%s", debug.Stack())
		}
	}()

	if i.GuildID == "" {
		return
	}

	if b.contest.Handles(name) {
		b.contest.HandleCommand(s, i)
	}
}
