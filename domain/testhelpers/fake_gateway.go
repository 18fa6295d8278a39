package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"contestbot/domain/entities"
	"contestbot/domain/interfaces"
)

// The bot's own role in every fake guild
const (
	FakeBotRoleID       = int64(900)
	FakeBotRolePosition = 10
)

// FakeGuildGateway is an in-memory guild used by service tests
type FakeGuildGateway struct {
	mu sync.Mutex

	BotID    int64
	BotRoles []int64

	channels map[int64]*entities.GuildChannel
	roles    map[int64]*entities.GuildRole
	order    []int64
	nextID   int64

	// ForbiddenNames makes creation of the named channel, category or role fail with ErrForbidden
	ForbiddenNames map[string]bool
	// FailNames makes creation of the named entity fail with a generic error
	FailNames map[string]bool
	// ForbidOverwrites makes SetOverwrite and EditOverwrites fail with ErrForbidden
	ForbidOverwrites bool
	// OnCreate, when set, is called with the name of every entity about to be created
	OnCreate func(name string)

	CreateCalls    int
	OverwriteCalls int
	LastSpecs      map[string]entities.ChannelSpec
}

// NewFakeGuildGateway creates a fake guild where the bot has the given id
func NewFakeGuildGateway(botID int64) *FakeGuildGateway {
	botRole := &entities.GuildRole{ID: FakeBotRoleID, Name: "Contest Bot", Position: FakeBotRolePosition}
	return &FakeGuildGateway{
		BotID:          botID,
		BotRoles:       []int64{botRole.ID},
		channels:       make(map[int64]*entities.GuildChannel),
		roles:          map[int64]*entities.GuildRole{botRole.ID: botRole},
		nextID:         1000,
		ForbiddenNames: make(map[string]bool),
		FailNames:      make(map[string]bool),
		LastSpecs:      make(map[string]entities.ChannelSpec),
	}
}

// AddChannel seeds an existing channel and returns it
func (g *FakeGuildGateway) AddChannel(guildID int64, name string, kind entities.ChannelKind) *entities.GuildChannel {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addChannelLocked(guildID, name, kind, 0, nil)
}

// AddRole seeds an existing role and returns it
func (g *FakeGuildGateway) AddRole(name string, position int) *entities.GuildRole {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	role := &entities.GuildRole{ID: g.nextID, Name: name, Position: position}
	g.roles[role.ID] = role
	return role
}

// RemoveChannel deletes a channel as if a moderator removed it
func (g *FakeGuildGateway) RemoveChannel(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.channels, id)
}

// Get returns a copy of the stored channel
func (g *FakeGuildGateway) Get(id int64) *entities.GuildChannel {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.channels[id]
	if !ok {
		return nil
	}
	cp := *ch
	return &cp
}

// CountNamed counts channels and roles with the given name
func (g *FakeGuildGateway) CountNamed(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, ch := range g.channels {
		if ch.Name == name {
			n++
		}
	}
	for _, r := range g.roles {
		if r.Name == name {
			n++
		}
	}
	return n
}

func (g *FakeGuildGateway) addChannelLocked(guildID int64, name string, kind entities.ChannelKind, parentID int64, overwrites entities.OverwriteSet) *entities.GuildChannel {
	g.nextID++
	ch := &entities.GuildChannel{
		ID:         g.nextID,
		GuildID:    guildID,
		Name:       name,
		Kind:       kind,
		ParentID:   parentID,
		Overwrites: overwrites,
	}
	g.channels[ch.ID] = ch
	g.order = append(g.order, ch.ID)
	return ch
}

func (g *FakeGuildGateway) createErr(name string) error {
	if g.OnCreate != nil {
		g.OnCreate(name)
	}
	if g.ForbiddenNames[name] {
		return fmt.Errorf("create %s: %w", name, interfaces.ErrForbidden)
	}
	if g.FailNames[name] {
		return fmt.Errorf("create %s: upstream unavailable", name)
	}
	return nil
}

func (g *FakeGuildGateway) BotUserID() int64 {
	return g.BotID
}

func (g *FakeGuildGateway) BotRoleIDs(ctx context.Context, guildID int64) ([]int64, error) {
	return g.BotRoles, nil
}

func (g *FakeGuildGateway) Channels(ctx context.Context, guildID int64) ([]*entities.GuildChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []*entities.GuildChannel
	for _, id := range g.order {
		if ch, ok := g.channels[id]; ok {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (g *FakeGuildGateway) Channel(ctx context.Context, channelID int64) (*entities.GuildChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %d: %w", channelID, interfaces.ErrNotFound)
	}
	cp := *ch
	return &cp, nil
}

func (g *FakeGuildGateway) Roles(ctx context.Context, guildID int64) ([]*entities.GuildRole, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*entities.GuildRole, 0, len(g.roles))
	for _, r := range g.roles {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (g *FakeGuildGateway) CreateCategory(ctx context.Context, guildID int64, name, reason string, overwrites entities.OverwriteSet) (*entities.GuildChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateCalls++

	if err := g.createErr(name); err != nil {
		return nil, err
	}
	cp := *g.addChannelLocked(guildID, name, entities.ChannelKindCategory, 0, overwrites)
	return &cp, nil
}

func (g *FakeGuildGateway) CreateChannel(ctx context.Context, guildID int64, spec entities.ChannelSpec) (*entities.GuildChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateCalls++
	g.LastSpecs[spec.Name] = spec

	if err := g.createErr(spec.Name); err != nil {
		return nil, err
	}
	cp := *g.addChannelLocked(guildID, spec.Name, spec.Kind, spec.ParentID, spec.Overwrites)
	return &cp, nil
}

func (g *FakeGuildGateway) CreateRole(ctx context.Context, guildID int64, name, reason string) (*entities.GuildRole, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateCalls++

	if err := g.createErr(name); err != nil {
		return nil, err
	}
	g.nextID++
	role := &entities.GuildRole{ID: g.nextID, Name: name, Position: 1}
	g.roles[role.ID] = role
	cp := *role
	return &cp, nil
}

func (g *FakeGuildGateway) SetOverwrite(ctx context.Context, channelID int64, overwrite entities.Overwrite, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.OverwriteCalls++

	if g.ForbidOverwrites {
		return fmt.Errorf("set overwrite: %w", interfaces.ErrForbidden)
	}
	ch, ok := g.channels[channelID]
	if !ok {
		return fmt.Errorf("channel %d: %w", channelID, interfaces.ErrNotFound)
	}
	ch.Overwrites = ch.Overwrites.Set(overwrite)
	return nil
}

func (g *FakeGuildGateway) EditOverwrites(ctx context.Context, channelID int64, overwrites entities.OverwriteSet, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.OverwriteCalls++

	if g.ForbidOverwrites {
		return fmt.Errorf("edit overwrites: %w", interfaces.ErrForbidden)
	}
	ch, ok := g.channels[channelID]
	if !ok {
		return fmt.Errorf("channel %d: %w", channelID, interfaces.ErrNotFound)
	}
	ch.Overwrites = append(entities.OverwriteSet(nil), overwrites...)
	return nil
}
