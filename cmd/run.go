package cmd

import (
	"context"
	"fmt"
	"time"

	"contestbot/bot"
	"contestbot/config"
	"contestbot/database"
	"contestbot/domain/interfaces"
	"contestbot/domain/services"
	"contestbot/infrastructure"
	"contestbot/infrastructure/observability"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.Info("Starting contestbot...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	databaseURL := cfg.GetDatabaseURL()
	db, err := database.NewConnection(ctx, databaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize event publishing
	eventPublisher, natsClient, err := newEventPublisher(ctx, cfg)
	if err != nil {
		db.Close()
		return err
	}

	// Initialize provisioning lock
	locker, redisClient, err := newGuildLocker(ctx, cfg)
	if err != nil {
		closeNATS(natsClient)
		db.Close()
		return err
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:          cfg.DiscordToken,
		GuildID:        cfg.GuildID,
		CommandTimeout: cfg.CommandTimeout,
	}, uowFactory, locker)
	if err != nil {
		closeRedis(redisClient)
		closeNATS(natsClient)
		db.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	closeNATS(natsClient)
	closeRedis(redisClient)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down metrics")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// newEventPublisher connects to NATS when configured, otherwise events are dropped
func newEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, *infrastructure.NATSClient, error) {
	if cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, contest events will not be published")
		return infrastructure.NewNoopEventPublisher(), nil, nil
	}

	log.Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.ContestEventsStreamName, mapper.GetAllSubjects()); err != nil {
		closeNATS(client)
		return nil, nil, fmt.Errorf("failed to ensure contest event stream: %w", err)
	}
	log.Info("NATS connection established successfully")

	return infrastructure.NewNATSEventPublisher(client, mapper), client, nil
}

// newGuildLocker uses redis when configured so several instances share the provisioning lock
func newGuildLocker(ctx context.Context, cfg *config.Config) (interfaces.GuildLocker, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-process provisioning lock")
		return services.NewLocalGuildLocker(), nil, nil
	}

	log.Info("Connecting to redis...")
	rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Redis connection established successfully")

	return infrastructure.NewRedisGuildLocker(rdb, cfg.ProvisionLockTTL), rdb, nil
}

func closeNATS(client *infrastructure.NATSClient) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.WithError(err).Error("Error closing NATS connection")
	}
}

func closeRedis(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		log.WithError(err).Error("Error closing redis connection")
	}
}
