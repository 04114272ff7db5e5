package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/middleware/metrics"
	"github.com/AshkanYarmoradi/go-foundation/middleware/tracing"
)

func setupRunner(t *testing.T, opts ...RunnerOption) (*Runner, *tracetest.InMemoryExporter, *metrics.Metrics) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	m := metrics.New(metrics.WithMetricsServiceName("test"))
	base := []RunnerOption{
		WithModule(testModule),
		WithTracer(tracing.NewTracer(tracing.WithTracerProvider(tp))),
		WithMetrics(m),
	}
	return NewRunner(append(base, opts...)...), exporter, m
}

func loadFixture(t *testing.T) *Settings {
	t.Helper()
	s, err := LoadSettings([]byte(settingsYAML))
	require.NoError(t, err)
	return s
}

// =============================================================================
// Runner Tests
// =============================================================================

func TestRunner_Run(t *testing.T) {
	var steps []string
	r, exporter, m := setupRunner(t, WithProgress(func(artifact, target string) {
		steps = append(steps, artifact)
	}))

	s := loadFixture(t)
	files, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, len(files), r.Steps(s))

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"orders/generated/place_order_message_translator.go",
		"orders/generated/order_message_translator.go",
		"orders/generated/order_placed_fields.go",
		"orders/generated/local_command_bus.go",
		"orders/generated/mocks/mockable_local_command_bus.go",
		"orders/generated/auto_generated_infrastructure_provider.go",
	}, paths)

	assert.Equal(t, []string{
		ArtifactMessageTranslator,
		ArtifactMessageTranslator,
		ArtifactEventFields,
		ArtifactLocalBus,
		ArtifactMockableBus,
		ArtifactInfrastructureProvider,
	}, steps)

	spans := exporter.GetSpans()
	require.Len(t, spans, 7)
	assert.Equal(t, "generate.run", spans[len(spans)-1].Name)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GenerationRunsTotal().WithLabelValues("test", metrics.StatusSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.GeneratedFilesTotal().WithLabelValues("test", ArtifactMessageTranslator)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GeneratedFilesTotal().WithLabelValues("test", ArtifactLocalBus)))
}

func TestRunner_WithoutMockableBuses(t *testing.T) {
	r, _, _ := setupRunner(t, WithMockableBuses(false))

	files, err := r.Run(context.Background(), loadFixture(t))
	require.NoError(t, err)
	assert.Len(t, files, 5)
	assert.Equal(t, 5, r.Steps(loadFixture(t)))
	for _, f := range files {
		assert.NotContains(t, f.Path, "/mocks/")
	}
}

func TestRunner_EmptySettings(t *testing.T) {
	r, _, _ := setupRunner(t)

	files, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, 0, r.Steps(nil))
	assert.Equal(t, 0, r.Steps(&Settings{}))
}

func TestRunner_InvalidSettings(t *testing.T) {
	r, exporter, m := setupRunner(t)

	s := loadFixture(t)
	s.Handlers = append(s.Handlers, s.Handlers[0])

	files, err := r.Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, foundation.ErrDuplicateHandlerVersion)
	assert.Nil(t, files)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "generate.run", spans[0].Name)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GenerationRunsTotal().WithLabelValues("test", metrics.StatusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsTotal().WithLabelValues("test", "duplicate_handler_version")))
}

func TestRunner_OutsideModule(t *testing.T) {
	r, _, m := setupRunner(t)
	r.module = "example.com/other"

	files, err := r.Run(context.Background(), loadFixture(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, foundation.ErrInvalidSettings)
	assert.Nil(t, files)
	assert.Contains(t, err.Error(), ArtifactMessageTranslator)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsTotal().WithLabelValues("test", "invalid_settings")))
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(WithLogger(nil), WithTracer(nil))
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.tracer)
	assert.Nil(t, r.metrics)
	assert.True(t, r.mockableBuses)

	files, err := r.Run(context.Background(), &Settings{
		Handlers: []HandlerSettings{
			handler(EventBus, "example.com/shop/orders.OrderPlaced", "example.com/shop/handlers.Notify", 0),
		},
	})
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Equal(t, "example.com/shop/orders/generated", files[0].Directory)
}

// =============================================================================
// WriteFiles Tests
// =============================================================================

func TestWriteFiles(t *testing.T) {
	root := t.TempDir()
	files := []GeneratedFile{
		{Directory: "orders/generated", FileName: "a.go", Path: "orders/generated/a.go", Content: "package generated\n"},
		{Directory: ".", FileName: "b.go", Path: "b.go", Content: "package shop\n"},
	}

	require.NoError(t, WriteFiles(root, files))

	data, err := os.ReadFile(filepath.Join(root, "orders", "generated", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package generated\n", string(data))

	data, err = os.ReadFile(filepath.Join(root, "b.go"))
	require.NoError(t, err)
	assert.Equal(t, "package shop\n", string(data))
}
