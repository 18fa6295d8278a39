package entities

// OutcomeStatus describes what happened to one scaffold entity
type OutcomeStatus string

const (
	OutcomeReused  OutcomeStatus = "reused"
	OutcomeCreated OutcomeStatus = "created"
	OutcomeFailed  OutcomeStatus = "failed"
)

// ChannelBlueprint declares one channel of the contest scaffold
type ChannelBlueprint struct {
	Name   string
	Kind   ChannelKind
	Field  ConfigField
	Reason string
	// AutoArchiveMinutes is the default thread inactivity window for forums, 0 for none
	AutoArchiveMinutes int
	// ExtraOverwrites are merged over the default overwrites on creation
	ExtraOverwrites OverwriteSet
}

// ChannelSpec is everything needed to create a channel
type ChannelSpec struct {
	Name               string
	Kind               ChannelKind
	ParentID           int64
	Reason             string
	AutoArchiveMinutes int
	Overwrites         OverwriteSet
}

// Outcome is the result of resolving or creating one entity
type Outcome struct {
	Name    string
	Kind    ChannelKind // empty for roles
	Field   ConfigField // empty for the category
	Status  OutcomeStatus
	ID      int64
	Err     error
	Warning string
}

// OK reports whether the entity exists after the run
func (o Outcome) OK() bool {
	return o.Status == OutcomeReused || o.Status == OutcomeCreated
}

// ProvisionResult is the structured result of a contest setup run
type ProvisionResult struct {
	GuildID     int64
	Category    Outcome
	ContestRole *GuildRole
	PingRole    Outcome
	Channels    []Outcome
	Patch       ServerConfigPatch
	Persisted   bool
	Warnings    []string
}

// Created returns the names of entities created by the run
func (r *ProvisionResult) Created() []string {
	return r.namesWith(OutcomeCreated)
}

// Reused returns the names of entities that already existed
func (r *ProvisionResult) Reused() []string {
	return r.namesWith(OutcomeReused)
}

// Failed returns the names of entities that could not be resolved
func (r *ProvisionResult) Failed() []string {
	return r.namesWith(OutcomeFailed)
}

// HasFailures reports whether any entity failed
func (r *ProvisionResult) HasFailures() bool {
	return len(r.Failed()) > 0
}

func (r *ProvisionResult) all() []Outcome {
	out := make([]Outcome, 0, len(r.Channels)+2)
	if r.Category.Name != "" {
		out = append(out, r.Category)
	}
	if r.PingRole.Name != "" {
		out = append(out, r.PingRole)
	}
	return append(out, r.Channels...)
}

func (r *ProvisionResult) namesWith(status OutcomeStatus) []string {
	var names []string
	for _, o := range r.all() {
		if o.Status == status {
			names = append(names, o.Name)
		}
	}
	return names
}
