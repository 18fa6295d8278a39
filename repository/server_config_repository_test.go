package repository

import (
	"context"
	"testing"

	"contestbot/domain/entities"
	"contestbot/domain/events"
	"contestbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patchOf(field entities.ConfigField, id int64) entities.ServerConfigPatch {
	var p entities.ServerConfigPatch
	p.Set(field, id)
	return p
}

func TestServerConfigRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewServerConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing guild returns nil", func(t *testing.T) {
		cfg, err := repo.GetByGuildID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("first write creates the row", func(t *testing.T) {
		modified, err := repo.Upsert(ctx, 100, patchOf(entities.FieldVotingChannel, 11))
		require.NoError(t, err)
		assert.True(t, modified)

		cfg, err := repo.GetByGuildID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, int64(100), cfg.GuildID)
		assert.Equal(t, int64(11), *cfg.VotingChannelID)
		assert.Nil(t, cfg.SubmissionChannelID)
		assert.False(t, cfg.CreatedAt.IsZero())
	})

	t.Run("identical write is not a modification", func(t *testing.T) {
		before, err := repo.GetByGuildID(ctx, 100)
		require.NoError(t, err)

		modified, err := repo.Upsert(ctx, 100, patchOf(entities.FieldVotingChannel, 11))
		require.NoError(t, err)
		assert.False(t, modified)

		after, err := repo.GetByGuildID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	})

	t.Run("fields are independent", func(t *testing.T) {
		modified, err := repo.Upsert(ctx, 100, patchOf(entities.FieldLogsChannel, 22))
		require.NoError(t, err)
		assert.True(t, modified)

		cfg, err := repo.GetByGuildID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(11), *cfg.VotingChannelID)
		assert.Equal(t, int64(22), *cfg.LogsChannelID)
	})

	t.Run("multi field patch with one change", func(t *testing.T) {
		var patch entities.ServerConfigPatch
		patch.Set(entities.FieldVotingChannel, 11)
		patch.Set(entities.FieldLogsChannel, 22)
		patch.Set(entities.FieldPingRole, 33)

		modified, err := repo.Upsert(ctx, 100, patch)
		require.NoError(t, err)
		assert.True(t, modified)

		modified, err = repo.Upsert(ctx, 100, patch)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		modified, err := repo.Upsert(ctx, 200, entities.ServerConfigPatch{})
		require.NoError(t, err)
		assert.False(t, modified)

		cfg, err := repo.GetByGuildID(ctx, 200)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("guilds are isolated", func(t *testing.T) {
		_, err := repo.Upsert(ctx, 300, patchOf(entities.FieldVotingChannel, 99))
		require.NoError(t, err)

		cfg, err := repo.GetByGuildID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(11), *cfg.VotingChannelID)
	})
}

type fakeTransactionalPublisher struct {
	flushed   int
	discarded int
}

func (p *fakeTransactionalPublisher) Publish(event events.Event) error { return nil }

func (p *fakeTransactionalPublisher) Flush(ctx context.Context) error {
	p.flushed++
	return nil
}

func (p *fakeTransactionalPublisher) Discard() { p.discarded++ }

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	t.Run("rollback discards writes and events", func(t *testing.T) {
		publisher := &fakeTransactionalPublisher{}
		uow := factory.CreateForGuildWithPublisher(500, publisher)
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.ServerConfigRepository().Upsert(ctx, 500, patchOf(entities.FieldSubmissionChannel, 1))
		require.NoError(t, err)
		require.NoError(t, uow.Rollback())

		cfg, err := NewServerConfigRepository(testDB.DB).GetByGuildID(ctx, 500)
		require.NoError(t, err)
		assert.Nil(t, cfg)
		assert.Equal(t, 1, publisher.discarded)
		assert.Zero(t, publisher.flushed)
	})

	t.Run("commit persists and flushes", func(t *testing.T) {
		publisher := &fakeTransactionalPublisher{}
		uow := factory.CreateForGuildWithPublisher(501, publisher)
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.ServerConfigRepository().Upsert(ctx, 501, patchOf(entities.FieldSubmissionChannel, 1))
		require.NoError(t, err)
		require.NoError(t, uow.Commit())

		cfg, err := NewServerConfigRepository(testDB.DB).GetByGuildID(ctx, 501)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, 1, publisher.flushed)

		// Rollback after commit is harmless
		assert.NoError(t, uow.Rollback())
		assert.Zero(t, publisher.discarded)
	})

	t.Run("double begin fails", func(t *testing.T) {
		uow := factory.CreateForGuildWithPublisher(502, &fakeTransactionalPublisher{})
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})
}
