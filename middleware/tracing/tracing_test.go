package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AshkanYarmoradi/go-foundation"
)

// =============================================================================
// Test Types
// =============================================================================

type getOrder struct{}

func (getOrder) QueryType() string { return "shop/contract.GetOrder" }

type placeOrder struct{}

func (placeOrder) CommandType() string { return "shop/contract.PlaceOrder" }

type orderPlaced struct{}

func (orderPlaced) EventType() string { return "shop/contract.OrderPlaced" }

type stubQueryBus struct {
	result any
	err    error
}

func (b stubQueryBus) Process(ctx context.Context, query foundation.Query) (any, error) {
	return b.result, b.err
}

type stubCommandBus struct{ err error }

func (b stubCommandBus) Process(ctx context.Context, command foundation.Command) error {
	return b.err
}

type stubEventBus struct{ err error }

func (b stubEventBus) Process(ctx context.Context, event foundation.Event) error {
	return b.err
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		tp.Shutdown(context.Background())
	})

	tracer := NewTracer(WithTracerProvider(tp))
	return tracer, exporter
}

func assertAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			assert.Equal(t, expectedValue, attr.Value.AsString(), "attribute %s has wrong value", key)
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}

// =============================================================================
// Tracer Tests
// =============================================================================

func TestNewTracer(t *testing.T) {
	t.Run("creates tracer with defaults", func(t *testing.T) {
		tracer := NewTracer()

		assert.NotNil(t, tracer)
		assert.Equal(t, DefaultServiceName, tracer.ServiceName())
		assert.NotNil(t, tracer.Tracer())
	})

	t.Run("with custom service name", func(t *testing.T) {
		tracer := NewTracer(WithServiceName("codegen"))

		assert.Equal(t, "codegen", tracer.ServiceName())
	})
}

func TestTracer_StartGeneration(t *testing.T) {
	t.Run("successful step", func(t *testing.T) {
		tracer, exporter := setupTestTracer(t)

		_, span := tracer.StartGeneration(context.Background(), "local_bus", "LocalQueryBus")
		Finish(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "generate.local_bus", spans[0].Name)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assertAttribute(t, spans[0].Attributes, AttrArtifact, "local_bus")
		assertAttribute(t, spans[0].Attributes, AttrTarget, "LocalQueryBus")
	})

	t.Run("failed step", func(t *testing.T) {
		tracer, exporter := setupTestTracer(t)

		_, span := tracer.StartGeneration(context.Background(), "run", "")
		Finish(span, errors.New("boom"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "boom", spans[0].Status.Description)
		require.Len(t, spans[0].Events, 1)
	})

	t.Run("child spans share the trace", func(t *testing.T) {
		tracer, exporter := setupTestTracer(t)

		ctx, run := tracer.StartGeneration(context.Background(), "run", "")
		_, step := tracer.StartGeneration(ctx, "message_translator", "OrderMessageTranslator")
		Finish(step, nil)
		Finish(run, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)
		assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
		assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	})
}

// =============================================================================
// Bus Middleware Tests
// =============================================================================

func TestTraceQueryBus(t *testing.T) {
	t.Run("traces successful query", func(t *testing.T) {
		tracer, exporter := setupTestTracer(t)
		bus := TraceQueryBus(stubQueryBus{result: "order"}, tracer)

		result, err := bus.Process(context.Background(), getOrder{})

		require.NoError(t, err)
		assert.Equal(t, "order", result)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "query.shop/contract.GetOrder", spans[0].Name)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assertAttribute(t, spans[0].Attributes, AttrBus, "query")
		assertAttribute(t, spans[0].Attributes, AttrContractType, "shop/contract.GetOrder")
	})

	t.Run("records handler not found", func(t *testing.T) {
		tracer, exporter := setupTestTracer(t)
		notFound := foundation.NewHandlerNotFoundError(foundation.BusQuery, "shop/contract.GetOrder")
		bus := TraceQueryBus(stubQueryBus{err: notFound}, tracer)

		_, err := bus.Process(context.Background(), getOrder{})

		assert.ErrorIs(t, err, foundation.ErrHandlerNotFound)
		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
	})

	t.Run("rejects nil query", func(t *testing.T) {
		tracer, exporter := setupTestTracer(t)
		bus := TraceQueryBus(stubQueryBus{}, tracer)

		_, err := bus.Process(context.Background(), nil)

		assert.ErrorIs(t, err, foundation.ErrNilContract)
		assert.Empty(t, exporter.GetSpans())
	})
}

func TestTraceCommandBus(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	require.NoError(t, TraceCommandBus(stubCommandBus{}, tracer).Process(context.Background(), placeOrder{}))
	err := TraceCommandBus(stubCommandBus{err: errors.New("rejected")}, tracer).Process(context.Background(), placeOrder{})
	assert.EqualError(t, err, "rejected")

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "command.shop/contract.PlaceOrder", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestTraceEventBus(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	require.NoError(t, TraceEventBus(stubEventBus{}, tracer).Process(context.Background(), orderPlaced{}))
	assert.ErrorIs(t, TraceEventBus(stubEventBus{}, tracer).Process(context.Background(), nil), foundation.ErrNilContract)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "event.shop/contract.OrderPlaced", spans[0].Name)
	assertAttribute(t, spans[0].Attributes, AttrBus, "event")
}

// =============================================================================
// Span Helper Tests
// =============================================================================

func TestSpanHelpers(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	ctx, span := tracer.StartSpan(context.Background(), "helpers")
	assert.Equal(t, span, SpanFromContext(ctx))
	AddEvent(ctx, "checkpoint")
	SetAttributes(ctx, attribute.String("key", "value"))
	SetError(ctx, errors.New("failed"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertAttribute(t, spans[0].Attributes, "key", "value")
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 2)
}
