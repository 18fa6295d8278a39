package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"contestbot/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	subject string
	data    []byte
}

type fakeMessagePublisher struct {
	messages []capturedMessage
	err      error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, capturedMessage{subject: subject, data: data})
	return nil
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	tests := []struct {
		name        string
		event       events.Event
		wantSubject string
	}{
		{
			name:        "config update",
			event:       events.ServerConfigUpdatedEvent{GuildID: 42, Fields: []string{"contest_role"}, IDs: []int64{7}},
			wantSubject: SubjectConfigUpdated,
		},
		{
			name:        "setup provisioned",
			event:       events.ContestSetupProvisionedEvent{GuildID: 42, Created: []string{"bot-logs"}},
			wantSubject: SubjectSetupProvisioned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMessagePublisher{}
			publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

			require.NoError(t, publisher.Publish(tt.event))
			require.Len(t, client.messages, 1)
			assert.Equal(t, tt.wantSubject, client.messages[0].subject)

			var envelope EventEnvelope
			require.NoError(t, json.Unmarshal(client.messages[0].data, &envelope))
			assert.Equal(t, string(tt.event.Type()), envelope.EventType)
			assert.Equal(t, sourceService, envelope.SourceService)
			_, err := uuid.Parse(envelope.EventID)
			assert.NoError(t, err)

			wantPayload, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, string(wantPayload), string(envelope.Payload))
		})
	}
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	client := &fakeMessagePublisher{err: errors.New("no responders")}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	err := publisher.Publish(events.ServerConfigUpdatedEvent{GuildID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event to NATS")
}

func TestEventSubjectMapper_AllSubjectsCovered(t *testing.T) {
	mapper := NewEventSubjectMapper()
	subjects := mapper.GetAllSubjects()

	assert.Contains(t, subjects, mapper.MapEventToSubject(events.ServerConfigUpdatedEvent{}))
	assert.Contains(t, subjects, mapper.MapEventToSubject(events.ContestSetupProvisionedEvent{}))
}
