package infrastructure

import (
	"fmt"

	"contestbot/domain/events"
)

const (
	SubjectConfigUpdated    = "contest.config.updated"
	SubjectSetupProvisioned = "contest.setup.provisioned"
	ContestEventsStreamName = "contest_events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeServerConfigUpdated:
		return SubjectConfigUpdated
	case events.EventTypeContestSetupProvisioned:
		return SubjectSetupProvisioned
	default:
		return fmt.Sprintf("contest.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectConfigUpdated,
		SubjectSetupProvisioned,
	}
}
