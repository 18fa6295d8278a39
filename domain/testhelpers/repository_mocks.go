package testhelpers

import (
	"context"
	"sync"

	"contestbot/domain/entities"
	"contestbot/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockServerConfigRepository is a mock implementation of ServerConfigRepository
type MockServerConfigRepository struct {
	mock.Mock
}

func (m *MockServerConfigRepository) GetByGuildID(ctx context.Context, guildID int64) (*entities.ServerConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ServerConfig), args.Error(1)
}

func (m *MockServerConfigRepository) Upsert(ctx context.Context, guildID int64, patch entities.ServerConfigPatch) (bool, error) {
	args := m.Called(ctx, guildID, patch)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// InMemoryServerConfigRepository keeps configs in a map and mirrors the
// modified semantics of the postgres upsert
type InMemoryServerConfigRepository struct {
	mu      sync.Mutex
	configs map[int64]*entities.ServerConfig
	Upserts int
}

// NewInMemoryServerConfigRepository creates an empty in-memory repository
func NewInMemoryServerConfigRepository() *InMemoryServerConfigRepository {
	return &InMemoryServerConfigRepository{configs: make(map[int64]*entities.ServerConfig)}
}

func (r *InMemoryServerConfigRepository) GetByGuildID(ctx context.Context, guildID int64) (*entities.ServerConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[guildID]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (r *InMemoryServerConfigRepository) Upsert(ctx context.Context, guildID int64, patch entities.ServerConfigPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Upserts++

	cfg, ok := r.configs[guildID]
	if !ok {
		cfg = &entities.ServerConfig{GuildID: guildID}
		r.configs[guildID] = cfg
	}

	modified := !ok
	for _, v := range patch.Values() {
		current := cfg.Get(v.Field)
		if current != nil && *current == v.ID {
			continue
		}
		modified = true
		setField(cfg, v.Field, v.ID)
	}
	return modified, nil
}

func setField(cfg *entities.ServerConfig, field entities.ConfigField, id int64) {
	switch field {
	case entities.FieldSubmissionChannel:
		cfg.SubmissionChannelID = &id
	case entities.FieldVotingChannel:
		cfg.VotingChannelID = &id
	case entities.FieldContestRole:
		cfg.ContestRoleID = &id
	case entities.FieldAnnouncementChannel:
		cfg.AnnouncementChannelID = &id
	case entities.FieldPingRole:
		cfg.PingRoleID = &id
	case entities.FieldArchiveChannel:
		cfg.ArchiveChannelID = &id
	case entities.FieldLogsChannel:
		cfg.LogsChannelID = &id
	}
}
