package contest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"contestbot/application"
	"contestbot/domain/entities"
	"contestbot/domain/events"
	"contestbot/domain/interfaces"
	"contestbot/domain/services"
	"contestbot/domain/testhelpers"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID = int64(555555555)
	testBotID   = int64(999999)
)

// fakeResponder records the interaction responses sent through it
type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followUps []*discordgo.WebhookParams
}

func (r *fakeResponder) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, resp)
	return nil
}

func (r *fakeResponder) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.followUps = append(r.followUps, data)
	return &discordgo.Message{}, nil
}

func (r *fakeResponder) only(t *testing.T) *discordgo.WebhookParams {
	t.Helper()
	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, r.responses[0].Type)
	require.Len(t, r.followUps, 1)
	return r.followUps[0]
}

// embedGateway adds SendEmbed to the fake guild
type embedGateway struct {
	*testhelpers.FakeGuildGateway
	mu     sync.Mutex
	embeds map[int64][]*discordgo.MessageEmbed
}

func (g *embedGateway) SendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.embeds[channelID] = append(g.embeds[channelID], embed)
	return nil
}

// recordingPublisher queues events like the transactional publisher does
type recordingPublisher struct {
	mu        sync.Mutex
	pending   []events.Event
	published []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

// fakeUnitOfWork runs directly against the in-memory repository
type fakeUnitOfWork struct {
	repo      interfaces.ServerConfigRepository
	publisher *recordingPublisher
	open      *int32
	beginErr  error
	began     bool
	ended     bool
	committed bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	u.began = true
	atomic.AddInt32(u.open, 1)
	return nil
}

func (u *fakeUnitOfWork) end() {
	if u.began && !u.ended {
		u.ended = true
		atomic.AddInt32(u.open, -1)
	}
}

func (u *fakeUnitOfWork) Commit() error {
	u.end()
	u.committed = true
	u.publisher.mu.Lock()
	defer u.publisher.mu.Unlock()
	u.publisher.published = append(u.publisher.published, u.publisher.pending...)
	u.publisher.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if u.ended {
		return nil
	}
	u.end()
	u.publisher.mu.Lock()
	defer u.publisher.mu.Unlock()
	u.publisher.pending = nil
	return nil
}

func (u *fakeUnitOfWork) ServerConfigRepository() interfaces.ServerConfigRepository { return u.repo }
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher                       { return u.publisher }

type fakeUnitOfWorkFactory struct {
	repo      interfaces.ServerConfigRepository
	publisher *recordingPublisher
	beginErr  error
	open      int32
}

func (f *fakeUnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo, publisher: f.publisher, open: &f.open, beginErr: f.beginErr}
}

// openTransactions counts units of work begun and not yet committed or rolled back
func (f *fakeUnitOfWorkFactory) openTransactions() int {
	return int(atomic.LoadInt32(&f.open))
}

type harness struct {
	feature   *Feature
	repo      *testhelpers.InMemoryServerConfigRepository
	gateway   *embedGateway
	publisher *recordingPublisher
	factory   *fakeUnitOfWorkFactory
	locker    *services.LocalGuildLocker
}

func newHarness() *harness {
	repo := testhelpers.NewInMemoryServerConfigRepository()
	gateway := &embedGateway{
		FakeGuildGateway: testhelpers.NewFakeGuildGateway(testBotID),
		embeds:           make(map[int64][]*discordgo.MessageEmbed),
	}
	publisher := &recordingPublisher{}
	factory := &fakeUnitOfWorkFactory{repo: repo, publisher: publisher}
	locker := services.NewLocalGuildLocker()

	return &harness{
		feature:   NewFeature(factory, gateway, locker, 5*time.Second),
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		factory:   factory,
		locker:    locker,
	}
}

func snowflakeString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// commandInteraction builds a slash command interaction invoked from channelID
func commandInteraction(name string, channelID int64, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   snowflakeString(testGuildID),
			ChannelID: snowflakeString(channelID),
			Member:    &discordgo.Member{User: &discordgo.User{ID: "42"}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:     name,
				Options:  options,
				Resolved: &discordgo.ApplicationCommandInteractionDataResolved{},
			},
		},
	}
}

func channelOpt(id int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "channel",
		Type:  discordgo.ApplicationCommandOptionChannel,
		Value: snowflakeString(id),
	}
}

func roleOpt(id int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "role",
		Type:  discordgo.ApplicationCommandOptionRole,
		Value: snowflakeString(id),
	}
}

func TestFeature_SetChannel(t *testing.T) {
	t.Run("defaults to the invoking channel", func(t *testing.T) {
		h := newHarness()
		general := h.gateway.AddChannel(testGuildID, "general", entities.ChannelKindText)
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandSetSubmissionChannel, general.ID))

		msg := s.only(t)
		assert.Equal(t, "<#"+snowflakeString(general.ID)+"> is set as submission channel", msg.Content)

		cfg, err := h.repo.GetByGuildID(context.Background(), testGuildID)
		require.NoError(t, err)
		require.NotNil(t, cfg.SubmissionChannelID)
		assert.Equal(t, general.ID, *cfg.SubmissionChannelID)
	})

	t.Run("second identical call reports already set", func(t *testing.T) {
		h := newHarness()
		vote := h.gateway.AddChannel(testGuildID, "vote", entities.ChannelKindForum)

		h.feature.HandleCommand(&fakeResponder{}, commandInteraction(CommandSetVotingChannel, 1, channelOpt(vote.ID)))
		s := &fakeResponder{}
		h.feature.HandleCommand(s, commandInteraction(CommandSetVotingChannel, 1, channelOpt(vote.ID)))

		assert.Equal(t, "Voting channel already set to <#"+snowflakeString(vote.ID)+">", s.only(t).Content)
		assert.Len(t, h.publisher.published, 1)
	})

	t.Run("wrong kind is rejected without mutation", func(t *testing.T) {
		h := newHarness()
		text := h.gateway.AddChannel(testGuildID, "chat", entities.ChannelKindText)
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandSetVotingChannel, 1, channelOpt(text.ID)))

		assert.Equal(t, "Please select a valid forum channel for voting.", s.only(t).Content)
		assert.Equal(t, 0, h.repo.Upserts)
		assert.Empty(t, h.publisher.published)
	})

	t.Run("unknown channel is rejected", func(t *testing.T) {
		h := newHarness()
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandSetLogsChannel, 1, channelOpt(123)))

		assert.Equal(t, "Please select a valid channel.", s.only(t).Content)
		assert.Equal(t, 0, h.repo.Upserts)
	})

	t.Run("store failure is reported as Error", func(t *testing.T) {
		h := newHarness()
		h.factory.beginErr = errors.New("connection refused")
		text := h.gateway.AddChannel(testGuildID, "news", entities.ChannelKindText)
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandSetAnnouncementChannel, 1, channelOpt(text.ID)))

		assert.Equal(t, "Error: failed to begin transaction: connection refused", s.only(t).Content)
	})
}

func TestFeature_LogsMirror(t *testing.T) {
	h := newHarness()
	logs := h.gateway.AddChannel(testGuildID, "bot-logs", entities.ChannelKindText)
	submit := h.gateway.AddChannel(testGuildID, "submit", entities.ChannelKindText)

	h.feature.HandleCommand(&fakeResponder{}, commandInteraction(CommandSetLogsChannel, logs.ID))
	h.feature.HandleCommand(&fakeResponder{}, commandInteraction(CommandSetSubmissionChannel, 1, channelOpt(submit.ID)))

	embeds := h.gateway.embeds[logs.ID]
	require.Len(t, embeds, 2)
	assert.Equal(t, "Submission channel set", embeds[1].Title)
	assert.Contains(t, embeds[1].Description, "<#"+snowflakeString(submit.ID)+">")

	// unchanged settings are not mirrored
	h.feature.HandleCommand(&fakeResponder{}, commandInteraction(CommandSetSubmissionChannel, 1, channelOpt(submit.ID)))
	assert.Len(t, h.gateway.embeds[logs.ID], 2)
}

func TestFeature_SetRole(t *testing.T) {
	t.Run("missing role", func(t *testing.T) {
		h := newHarness()
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandSetPingRole, 1))

		assert.Equal(t, "Please specify a role.", s.only(t).Content)
		assert.Equal(t, 0, h.repo.Upserts)
	})

	t.Run("contest role gains announcement access", func(t *testing.T) {
		h := newHarness()
		announce := h.gateway.AddChannel(testGuildID, "announce", entities.ChannelKindText)
		role := h.gateway.AddRole("Artists", 2)

		h.feature.HandleCommand(&fakeResponder{}, commandInteraction(CommandSetAnnouncementChannel, 1, channelOpt(announce.ID)))
		s := &fakeResponder{}
		h.feature.HandleCommand(s, commandInteraction(CommandSetContestRole, 1, roleOpt(role.ID)))

		content := s.only(t).Content
		assert.Contains(t, content, "<@&"+snowflakeString(role.ID)+"> is set as contest role")
		assert.Contains(t, content, "can now read the announcement channel")
		assert.True(t, h.gateway.Get(announce.ID).Overwrites.Has(role.ID))
	})
}

func TestFeature_CreateContestSetup(t *testing.T) {
	t.Run("fresh guild", func(t *testing.T) {
		h := newHarness()
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandCreateContestSetup, 1))

		msg := s.only(t)
		require.Len(t, msg.Embeds, 1)
		assert.Equal(t, "Contest channels created successfully.", msg.Embeds[0].Title)

		cfg, err := h.repo.GetByGuildID(context.Background(), testGuildID)
		require.NoError(t, err)
		require.NotNil(t, cfg.LogsChannelID)

		// the summary is mirrored into the freshly created logs channel
		assert.Len(t, h.gateway.embeds[*cfg.LogsChannelID], 1)
		require.Len(t, h.publisher.published, 1)
		assert.Equal(t, events.EventTypeContestSetupProvisioned, h.publisher.published[0].Type())
	})

	t.Run("category forbidden aborts", func(t *testing.T) {
		h := newHarness()
		h.gateway.ForbiddenNames[services.ContestCategoryName] = true
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandCreateContestSetup, 1))

		assert.Contains(t, s.only(t).Content, "Error: ")
		assert.Equal(t, 0, h.gateway.CountNamed("contest-submit"))
		assert.Equal(t, 0, h.repo.Upserts)
		assert.Empty(t, h.publisher.published)
	})

	t.Run("no transaction is held while waiting on the guild lock", func(t *testing.T) {
		h := newHarness()
		unlock, err := h.locker.Lock(context.Background(), testGuildID)
		require.NoError(t, err)

		const runs = 3
		s := &fakeResponder{}
		var wg sync.WaitGroup
		for n := 0; n < runs; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.feature.HandleCommand(s, commandInteraction(CommandCreateContestSetup, 1))
			}()
		}

		require.Eventually(t, func() bool {
			s.mu.Lock()
			defer s.mu.Unlock()
			return len(s.responses) == runs
		}, time.Second, 5*time.Millisecond)
		assert.Never(t, func() bool { return h.factory.openTransactions() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

		unlock()
		wg.Wait()

		assert.Zero(t, h.factory.openTransactions())
		assert.Len(t, s.followUps, runs)
		assert.Equal(t, 1, h.gateway.CountNamed("contest-submit"))
	})

	t.Run("partial failure is listed", func(t *testing.T) {
		h := newHarness()
		h.gateway.ForbiddenNames["contest-vote"] = true
		s := &fakeResponder{}

		h.feature.HandleCommand(s, commandInteraction(CommandCreateContestSetup, 1))

		embed := s.only(t).Embeds[0]
		assert.Equal(t, "Contest setup finished with failures", embed.Title)

		var failed *discordgo.MessageEmbedField
		for _, f := range embed.Fields {
			if f.Name == "Failed" {
				failed = f
			}
		}
		require.NotNil(t, failed)
		assert.Contains(t, failed.Value, "contest-vote")
	})
}

func TestFeature_ShowSettings(t *testing.T) {
	h := newHarness()
	vote := h.gateway.AddChannel(testGuildID, "vote", entities.ChannelKindForum)
	h.feature.HandleCommand(&fakeResponder{}, commandInteraction(CommandSetVotingChannel, 1, channelOpt(vote.ID)))

	s := &fakeResponder{}
	h.feature.HandleCommand(s, commandInteraction(CommandContestSettings, 1))

	embed := s.only(t).Embeds[0]
	require.Len(t, embed.Fields, len(entities.AllConfigFields))
	assert.Equal(t, "Submission channel", embed.Fields[0].Name)
	assert.Equal(t, "not set", embed.Fields[0].Value)
	assert.Equal(t, "<#"+snowflakeString(vote.ID)+">", embed.Fields[1].Value)
}

func TestFeature_Handles(t *testing.T) {
	h := newHarness()
	for name := range SetterFields {
		assert.True(t, h.feature.Handles(name), name)
	}
	assert.True(t, h.feature.Handles(CommandCreateContestSetup))
	assert.True(t, h.feature.Handles(CommandContestSettings))
	assert.False(t, h.feature.Handles("balance"))
}
