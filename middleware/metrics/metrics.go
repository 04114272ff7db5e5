// Package metrics provides Prometheus metrics integration for go-foundation.
//
// It records dispatch through generated local buses and the outcome of
// generation runs.
//
// Basic usage:
//
//	m := metrics.New()
//	// Register with Prometheus
//	prometheus.MustRegister(m.Collectors()...)
//
//	// Wrap a generated bus
//	bus := m.WrapCommandBus(generated.NewLocalCommandBus(infra))
//
// The metrics collected include:
//   - Dispatch counts, durations and in-flight gauges per bus and contract
//   - Generation runs and generated files per artifact
//   - Error counts by type
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/eventsourcing"
)

// Default metric labels.
const (
	LabelBus          = "bus"
	LabelContractType = "contract_type"
	LabelArtifact     = "artifact"
	LabelStatus       = "status"
	LabelErrorType    = "error_type"
	LabelService      = "service"
)

// Status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics for foundation.
type Metrics struct {
	namespace   string
	subsystem   string
	serviceName string

	// Dispatch metrics
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchInFlight *prometheus.GaugeVec

	// Generation metrics
	generationRunsTotal *prometheus.CounterVec
	generationDuration  *prometheus.HistogramVec
	generatedFilesTotal *prometheus.CounterVec

	// Error metrics
	errorsTotal *prometheus.CounterVec
}

// MetricsOption configures Metrics.
type MetricsOption func(*Metrics)

// WithNamespace sets the Prometheus namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(m *Metrics) {
		m.namespace = namespace
	}
}

// WithSubsystem sets the Prometheus subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(m *Metrics) {
		m.subsystem = subsystem
	}
}

// WithMetricsServiceName sets the service name label.
func WithMetricsServiceName(name string) MetricsOption {
	return func(m *Metrics) {
		m.serviceName = name
	}
}

// New creates a new Metrics instance with default settings.
func New(opts ...MetricsOption) *Metrics {
	m := &Metrics{
		namespace:   "foundation",
		subsystem:   "",
		serviceName: "unknown",
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initMetrics()
	return m
}

// initMetrics initializes all Prometheus metrics.
func (m *Metrics) initMetrics() {
	m.dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "dispatch_total",
			Help:      "Total number of contracts dispatched through local buses.",
		},
		[]string{LabelService, LabelBus, LabelContractType, LabelStatus},
	)

	m.dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of contract dispatch in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelService, LabelBus, LabelContractType},
	)

	m.dispatchInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "dispatch_in_flight",
			Help:      "Number of contracts currently being dispatched.",
		},
		[]string{LabelService, LabelBus, LabelContractType},
	)

	m.generationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "generation_runs_total",
			Help:      "Total number of generation runs.",
		},
		[]string{LabelService, LabelStatus},
	)

	m.generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation steps in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelService, LabelArtifact},
	)

	m.generatedFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "generated_files_total",
			Help:      "Total number of generated files by artifact.",
		},
		[]string{LabelService, LabelArtifact},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors by type.",
		},
		[]string{LabelService, LabelErrorType},
	)
}

// Collectors returns all Prometheus collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.dispatchTotal,
		m.dispatchDuration,
		m.dispatchInFlight,
		m.generationRunsTotal,
		m.generationDuration,
		m.generatedFilesTotal,
		m.errorsTotal,
	}
}

// MustRegister registers all collectors with the default registry.
// Panics if registration fails.
func (m *Metrics) MustRegister() {
	prometheus.MustRegister(m.Collectors()...)
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	for _, collector := range m.Collectors() {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Generation
// =============================================================================

// ObserveGeneration records one generation step and the number of files it produced.
func (m *Metrics) ObserveGeneration(artifact string, duration time.Duration, files int, err error) {
	m.generationDuration.WithLabelValues(m.serviceName, artifact).Observe(duration.Seconds())
	if err != nil {
		m.RecordError(errorTypeName(err))
		return
	}
	m.generatedFilesTotal.WithLabelValues(m.serviceName, artifact).Add(float64(files))
}

// RecordRun records the outcome of a whole generation run.
func (m *Metrics) RecordRun(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.generationRunsTotal.WithLabelValues(m.serviceName, status).Inc()
}

// =============================================================================
// Bus Middleware
// =============================================================================

func (m *Metrics) observeDispatch(bus, contractType string, fn func() error) error {
	m.dispatchInFlight.WithLabelValues(m.serviceName, bus, contractType).Inc()
	defer m.dispatchInFlight.WithLabelValues(m.serviceName, bus, contractType).Dec()

	start := time.Now()
	err := fn()
	m.dispatchDuration.WithLabelValues(m.serviceName, bus, contractType).Observe(time.Since(start).Seconds())

	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.RecordError(errorTypeName(err))
	}
	m.dispatchTotal.WithLabelValues(m.serviceName, bus, contractType, status).Inc()
	return err
}

type queryBus struct {
	next    foundation.QueryBus
	metrics *Metrics
}

// WrapQueryBus wraps a query bus with metrics collection.
func (m *Metrics) WrapQueryBus(bus foundation.QueryBus) foundation.QueryBus {
	return &queryBus{next: bus, metrics: m}
}

func (b *queryBus) Process(ctx context.Context, query foundation.Query) (any, error) {
	if query == nil {
		return nil, foundation.ErrNilContract
	}
	var result any
	err := b.metrics.observeDispatch(foundation.BusQuery, query.QueryType(), func() error {
		var err error
		result, err = b.next.Process(ctx, query)
		return err
	})
	return result, err
}

type commandBus struct {
	next    foundation.CommandBus
	metrics *Metrics
}

// WrapCommandBus wraps a command bus with metrics collection.
func (m *Metrics) WrapCommandBus(bus foundation.CommandBus) foundation.CommandBus {
	return &commandBus{next: bus, metrics: m}
}

func (b *commandBus) Process(ctx context.Context, command foundation.Command) error {
	if command == nil {
		return foundation.ErrNilContract
	}
	return b.metrics.observeDispatch(foundation.BusCommand, command.CommandType(), func() error {
		return b.next.Process(ctx, command)
	})
}

type eventBus struct {
	next    foundation.EventBus
	metrics *Metrics
}

// WrapEventBus wraps an event bus with metrics collection.
func (m *Metrics) WrapEventBus(bus foundation.EventBus) foundation.EventBus {
	return &eventBus{next: bus, metrics: m}
}

func (b *eventBus) Process(ctx context.Context, event foundation.Event) error {
	if event == nil {
		return foundation.ErrNilContract
	}
	return b.metrics.observeDispatch(foundation.BusEvent, event.EventType(), func() error {
		return b.next.Process(ctx, event)
	})
}

// =============================================================================
// Errors
// =============================================================================

// RecordError records an error metric.
func (m *Metrics) RecordError(errorType string) {
	m.errorsTotal.WithLabelValues(m.serviceName, errorType).Inc()
}

// errorTypeName extracts the error type name based on sentinel errors.
func errorTypeName(err error) string {
	if err == nil {
		return "none"
	}

	switch {
	case errors.Is(err, foundation.ErrHandlerNotFound):
		return "handler_not_found"
	case errors.Is(err, foundation.ErrMalformedAttribute):
		return "malformed_attribute"
	case errors.Is(err, foundation.ErrDecodeFailed):
		return "decode_failed"
	case errors.Is(err, foundation.ErrEncodeFailed):
		return "encode_failed"
	case errors.Is(err, foundation.ErrDecryptFailed):
		return "decrypt_failed"
	case errors.Is(err, eventsourcing.ErrIncompleteEncryptedData):
		return "incomplete_encrypted_data"
	case errors.Is(err, foundation.ErrTranslatorNotFound):
		return "translator_not_found"
	case errors.Is(err, foundation.ErrDuplicateHandlerVersion):
		return "duplicate_handler_version"
	case errors.Is(err, foundation.ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, foundation.ErrNilContract):
		return "nil_contract"
	case errors.Is(err, foundation.ErrHandlerPanicked):
		return "handler_panicked"
	default:
		return "unknown"
	}
}

// =============================================================================
// Accessors
// =============================================================================

// DispatchTotal returns the dispatch counter.
func (m *Metrics) DispatchTotal() *prometheus.CounterVec {
	return m.dispatchTotal
}

// DispatchDuration returns the dispatch duration histogram.
func (m *Metrics) DispatchDuration() *prometheus.HistogramVec {
	return m.dispatchDuration
}

// DispatchInFlight returns the in-flight gauge.
func (m *Metrics) DispatchInFlight() *prometheus.GaugeVec {
	return m.dispatchInFlight
}

// GenerationRunsTotal returns the generation run counter.
func (m *Metrics) GenerationRunsTotal() *prometheus.CounterVec {
	return m.generationRunsTotal
}

// GenerationDuration returns the generation step histogram.
func (m *Metrics) GenerationDuration() *prometheus.HistogramVec {
	return m.generationDuration
}

// GeneratedFilesTotal returns the generated file counter.
func (m *Metrics) GeneratedFilesTotal() *prometheus.CounterVec {
	return m.generatedFilesTotal
}

// ErrorsTotal returns the error counter.
func (m *Metrics) ErrorsTotal() *prometheus.CounterVec {
	return m.errorsTotal
}
