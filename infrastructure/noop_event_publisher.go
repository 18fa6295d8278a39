package infrastructure

import (
	"contestbot/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops events; used when NATS is not configured
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a publisher that discards every event
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

func (p *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Event publishing disabled, dropping event")
	return nil
}
