package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const lockKeyPrefix = "contestbot:provision-lock:"

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuildLocker serializes provisioning per guild across bot instances
type RedisGuildLocker struct {
	rdb          *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisGuildLocker creates a locker whose locks expire after ttl if never released
func NewRedisGuildLocker(rdb *redis.Client, ttl time.Duration) *RedisGuildLocker {
	return &RedisGuildLocker{
		rdb:          rdb,
		ttl:          ttl,
		pollInterval: 250 * time.Millisecond,
	}
}

// Lock polls until the guild lock is acquired or ctx is done
func (l *RedisGuildLocker) Lock(ctx context.Context, guildID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", lockKeyPrefix, guildID)
	token := uuid.New().String()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to acquire lock for guild %d: %w", guildID, err)
		}
		if ok {
			return l.unlockFunc(key, token, guildID), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisGuildLocker) unlockFunc(key, token string, guildID int64) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		// Release even when the caller's context is already done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			log.WithError(err).WithField("guild_id", guildID).Warn("Failed to release provisioning lock")
		}
	}
}
