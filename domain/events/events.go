package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeServerConfigUpdated     EventType = "server_config_updated"
	EventTypeContestSetupProvisioned EventType = "contest_setup_provisioned"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ServerConfigUpdatedEvent is published when a setter changed stored state
type ServerConfigUpdatedEvent struct {
	GuildID int64    `json:"guild_id"`
	Fields  []string `json:"fields"`
	IDs     []int64  `json:"ids"`
}

func (e ServerConfigUpdatedEvent) Type() EventType {
	return EventTypeServerConfigUpdated
}

// ContestSetupProvisionedEvent is published after a provisioning run persisted its ids
type ContestSetupProvisionedEvent struct {
	GuildID int64    `json:"guild_id"`
	Created []string `json:"created"`
	Reused  []string `json:"reused"`
	Failed  []string `json:"failed"`
}

func (e ContestSetupProvisionedEvent) Type() EventType {
	return EventTypeContestSetupProvisioned
}
