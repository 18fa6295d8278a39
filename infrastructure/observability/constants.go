package observability

// Metric name prefixes
const (
	MetricPrefix = "contestbot"
)

// Metric names
const (
	CommandsTotal        = MetricPrefix + ".commands.total"
	CommandDuration      = MetricPrefix + ".commands.duration"
	ProvisionOutcomes    = MetricPrefix + ".provisioning.outcomes_total"
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
)

// Label keys
const (
	LabelCommand   = "command"
	LabelResult    = "result"
	LabelStatus    = "status"
	LabelEntity    = "entity"
	LabelEventType = "event_type"
)

// Command results
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultError      = "error"
)
