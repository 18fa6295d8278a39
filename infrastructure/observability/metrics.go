package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contestbot/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const exportInterval = 30 * time.Second

// MetricsProvider manages OpenTelemetry metrics for the bot
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	commandsCounter        metric.Int64Counter
	commandDurationHist    metric.Float64Histogram
	provisionOutcomes      metric.Int64Counter
	eventsPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{config: cfg}
}

// Initialize sets up the OpenTelemetry metrics provider. With an OTLP endpoint
// configured metrics are pushed over gRPC, otherwise they go to stdout.
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("contestbot"),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	if mp.config.OTelEndpoint == "" {
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
	} else {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelEndpoint).Info("Using OTLP metric exporter")
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.createInstruments(mp.meterProvider.Meter("contestbot")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments on the given meter
func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	var err error

	mp.commandsCounter, err = meter.Int64Counter(
		CommandsTotal,
		metric.WithDescription("Total number of slash commands handled"),
	)
	if err != nil {
		return fmt.Errorf("failed to create commands counter: %w", err)
	}

	mp.commandDurationHist, err = meter.Float64Histogram(
		CommandDuration,
		metric.WithDescription("Duration of slash command handling in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return fmt.Errorf("failed to create command duration histogram: %w", err)
	}

	mp.provisionOutcomes, err = meter.Int64Counter(
		ProvisionOutcomes,
		metric.WithDescription("Contest scaffold entities by provisioning outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create provisioning outcome counter: %w", err)
	}

	mp.eventsPublishedCounter, err = meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Domain events handed to the event publisher"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events counter: %w", err)
	}

	mp.meter = meter
	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordCommand records one handled command with its result and duration
func (mp *MetricsProvider) RecordCommand(command, result string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelCommand, command),
		attribute.String(LabelResult, result),
	)
	mp.commandsCounter.Add(context.Background(), 1, attrs)
	mp.commandDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordProvisionOutcome records the outcome of one scaffold entity
func (mp *MetricsProvider) RecordProvisionOutcome(entity, status string) {
	if !mp.isEnabled() {
		return
	}

	mp.provisionOutcomes.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEntity, entity),
			attribute.String(LabelStatus, status),
		),
	)
}

// RecordEventPublished records an event handed to the publisher
func (mp *MetricsProvider) RecordEventPublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider; nil-safe to record on
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
