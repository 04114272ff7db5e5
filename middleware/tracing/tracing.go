// Package tracing provides OpenTelemetry integration for go-foundation.
//
// It traces two things: dispatch through generated local buses and the
// steps of a generation run.
//
// Basic usage with a generated bus:
//
//	tp := sdktrace.NewTracerProvider(...)
//	otel.SetTracerProvider(tp)
//
//	tracer := tracing.NewTracer()
//	bus := tracing.TraceCommandBus(generated.NewLocalCommandBus(infra), tracer)
//
// Dispatch spans capture:
//   - Bus kind and contract type
//   - Success/failure status
//   - Error details when handlers fail
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AshkanYarmoradi/go-foundation"
)

const (
	// TracerName is the name of the foundation tracer.
	TracerName = "github.com/AshkanYarmoradi/go-foundation"

	// DefaultServiceName is the default service name for spans.
	DefaultServiceName = "foundation"
)

// Span attribute keys.
const (
	AttrService      = "foundation.service"
	AttrBus          = "foundation.bus"
	AttrContractType = "foundation.contract.type"
	AttrArtifact     = "foundation.generate.artifact"
	AttrTarget       = "foundation.generate.target"
	AttrPath         = "foundation.generate.path"
	AttrFiles        = "foundation.generate.files"
)

// Tracer wraps OpenTelemetry tracer for foundation operations.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithTracerProvider sets a custom TracerProvider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(t *Tracer) {
		t.tracer = tp.Tracer(TracerName)
	}
}

// WithServiceName sets the service name for spans.
func WithServiceName(name string) TracerOption {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// NewTracer creates a new Tracer with the global TracerProvider.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{
		tracer:      otel.Tracer(TracerName),
		serviceName: DefaultServiceName,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Tracer returns the underlying OpenTelemetry tracer.
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// =============================================================================
// Generation Spans
// =============================================================================

// StartGeneration starts a span for one generation step. Use artifact
// "run" for the span enclosing a whole run.
func (t *Tracer) StartGeneration(ctx context.Context, artifact, target string) (context.Context, trace.Span) {
	ctx, span := t.StartSpan(ctx, "generate."+artifact,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String(AttrService, t.serviceName),
		attribute.String(AttrArtifact, artifact),
	)
	if target != "" {
		span.SetAttributes(attribute.String(AttrTarget, target))
	}
	return ctx, span
}

// Finish records the outcome of a span and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// =============================================================================
// Bus Middleware
// =============================================================================

func (t *Tracer) startDispatch(ctx context.Context, bus, contractType string) (context.Context, trace.Span) {
	ctx, span := t.StartSpan(ctx, fmt.Sprintf("%s.%s", bus, contractType),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String(AttrService, t.serviceName),
		attribute.String(AttrBus, bus),
		attribute.String(AttrContractType, contractType),
	)
	return ctx, span
}

type queryBus struct {
	next   foundation.QueryBus
	tracer *Tracer
}

// TraceQueryBus wraps a query bus so every query is processed in a span.
func TraceQueryBus(bus foundation.QueryBus, tracer *Tracer) foundation.QueryBus {
	return &queryBus{next: bus, tracer: tracer}
}

func (b *queryBus) Process(ctx context.Context, query foundation.Query) (any, error) {
	if query == nil {
		return nil, foundation.ErrNilContract
	}
	ctx, span := b.tracer.startDispatch(ctx, foundation.BusQuery, query.QueryType())
	result, err := b.next.Process(ctx, query)
	Finish(span, err)
	return result, err
}

type commandBus struct {
	next   foundation.CommandBus
	tracer *Tracer
}

// TraceCommandBus wraps a command bus so every command is processed in a span.
func TraceCommandBus(bus foundation.CommandBus, tracer *Tracer) foundation.CommandBus {
	return &commandBus{next: bus, tracer: tracer}
}

func (b *commandBus) Process(ctx context.Context, command foundation.Command) error {
	if command == nil {
		return foundation.ErrNilContract
	}
	ctx, span := b.tracer.startDispatch(ctx, foundation.BusCommand, command.CommandType())
	err := b.next.Process(ctx, command)
	Finish(span, err)
	return err
}

type eventBus struct {
	next   foundation.EventBus
	tracer *Tracer
}

// TraceEventBus wraps an event bus so every event is processed in a span.
func TraceEventBus(bus foundation.EventBus, tracer *Tracer) foundation.EventBus {
	return &eventBus{next: bus, tracer: tracer}
}

func (b *eventBus) Process(ctx context.Context, event foundation.Event) error {
	if event == nil {
		return foundation.ErrNilContract
	}
	ctx, span := b.tracer.startDispatch(ctx, foundation.BusEvent, event.EventType())
	err := b.next.Process(ctx, event)
	Finish(span, err)
	return err
}

// =============================================================================
// Span Helpers
// =============================================================================

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, opts ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, opts...)
}

// SetError sets an error on the current span.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}
