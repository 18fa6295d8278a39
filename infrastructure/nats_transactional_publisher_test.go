package infrastructure

import (
	"context"
	"errors"
	"testing"

	"contestbot/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	publisher := NewNATSTransactionalPublisher(mockPublisher)

	first := events.ServerConfigUpdatedEvent{GuildID: 1, Fields: []string{"voting_channel"}, IDs: []int64{10}}
	second := events.ContestSetupProvisionedEvent{GuildID: 1, Created: []string{"contest-vote"}}

	require.NoError(t, publisher.Publish(first))
	require.NoError(t, publisher.Publish(second))

	assert.Empty(t, mockPublisher.PublishedEvents)
	assert.Equal(t, 2, publisher.Pending())

	require.NoError(t, publisher.Flush(context.Background()))

	assert.Equal(t, []events.Event{first, second}, mockPublisher.PublishedEvents)
	assert.Zero(t, publisher.Pending())
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	publisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, publisher.Publish(events.ServerConfigUpdatedEvent{GuildID: 1}))
	publisher.Discard()
	require.NoError(t, publisher.Flush(context.Background()))

	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushIgnoresPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	publisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, publisher.Publish(events.ServerConfigUpdatedEvent{GuildID: 1}))

	assert.NoError(t, publisher.Flush(context.Background()))
	assert.Zero(t, publisher.Pending())
}

func TestNATSTransactionalPublisher_FlushStopsOnDoneContext(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	publisher := NewNATSTransactionalPublisher(mockPublisher)
	require.NoError(t, publisher.Publish(events.ServerConfigUpdatedEvent{GuildID: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, publisher.Flush(ctx), context.Canceled)
	assert.Empty(t, mockPublisher.PublishedEvents)
}
