package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"contestbot/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // When set, commands are registered to this guild only

	// Database configuration
	DatabaseURL  string
	DatabaseName string
	DBMaxConns   int32 // Zero keeps the pgx pool default

	// Redis configuration, an empty address keeps the provisioning lock in-process
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ProvisionLockTTL time.Duration

	// NATS configuration, empty disables event publishing
	NATSServers string

	// Handler configuration
	CommandTimeout time.Duration

	// Observability
	OTelEnabled  bool
	OTelEndpoint string
	LogLevel     string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the bot runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		ProvisionLockTTL: 2 * time.Minute,

		NATSServers: os.Getenv("NATS_SERVERS"),

		CommandTimeout: 30 * time.Second,

		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		parsed, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		config.RedisDB = parsed
	}

	if maxConns := os.Getenv("DB_MAX_CONNS"); maxConns != "" {
		parsed, err := strconv.ParseInt(maxConns, 10, 32)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid DB_MAX_CONNS: %q", maxConns)
		}
		config.DBMaxConns = int32(parsed)
	}

	if ttl, err := getDuration("PROVISION_LOCK_TTL"); err != nil {
		return nil, err
	} else if ttl > 0 {
		config.ProvisionLockTTL = ttl
	}

	if timeout, err := getDuration("COMMAND_TIMEOUT"); err != nil {
		return nil, err
	} else if timeout > 0 {
		config.CommandTimeout = timeout
	}

	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		parsed, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid OTEL_ENABLED: %w", err)
		}
		config.OTelEnabled = parsed
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a Go duration from the environment, 0 when unset
func getDuration(key string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		ProvisionLockTTL: 2 * time.Minute,
		CommandTimeout:   30 * time.Second,
		LogLevel:         "debug",
	}
}
