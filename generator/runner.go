package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/middleware/metrics"
	"github.com/AshkanYarmoradi/go-foundation/middleware/tracing"
)

// artifactRun names the span and metric of a whole run.
const artifactRun = "run"

// Runner runs every generator for a settings bundle.
type Runner struct {
	module        string
	logger        foundation.Logger
	tracer        *tracing.Tracer
	metrics       *metrics.Metrics
	mockableBuses bool
	onStep        func(artifact, target string)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithModule sets the project module generated directories are relative to.
func WithModule(module string) RunnerOption {
	return func(r *Runner) {
		r.module = module
	}
}

// WithLogger sets the logger.
func WithLogger(logger foundation.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer recording generation spans.
func WithTracer(tracer *tracing.Tracer) RunnerOption {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithMetrics sets the metrics recording generation runs.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithMockableBuses enables or disables the mockable bus test doubles.
func WithMockableBuses(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.mockableBuses = enabled
	}
}

// WithProgress sets a callback invoked before each generation step.
func WithProgress(fn func(artifact, target string)) RunnerOption {
	return func(r *Runner) {
		r.onStep = fn
	}
}

// NewRunner creates a Runner. Mockable buses are generated by default.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:        foundation.NopLogger(),
		tracer:        tracing.NewTracer(),
		mockableBuses: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Steps returns the number of files Run generates for s.
func (r *Runner) Steps(s *Settings) int {
	if s == nil {
		return 0
	}
	steps := len(s.Contracts) + len(s.Events)
	for _, kind := range BusKinds {
		if len(s.HandlersFor(kind)) == 0 {
			continue
		}
		steps++
		if r.mockableBuses {
			steps++
		}
	}
	if len(s.Contracts) > 0 || len(s.Handlers) > 0 || len(s.Events) > 0 {
		steps++
	}
	return steps
}

// Run validates s and generates every artifact: translators, event field
// tables, local buses, mockable buses and the infrastructure provider.
// It stops at the first error and returns no files in that case.
func (r *Runner) Run(ctx context.Context, s *Settings) (files []GeneratedFile, err error) {
	ctx, span := r.tracer.StartGeneration(ctx, artifactRun, r.module)
	start := time.Now()
	var stepErr error
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrFiles, len(files)))
		tracing.Finish(span, err)
		if r.metrics != nil {
			r.metrics.RecordRun(err)
			// Step failures are already counted by the step.
			runErr := err
			if stepErr != nil {
				runErr = nil
			}
			r.metrics.ObserveGeneration(artifactRun, time.Since(start), 0, runErr)
		}
		if err != nil {
			files = nil
			r.logger.Error("Generation failed", "module", r.module, "error", err)
			return
		}
		r.logger.Info("Generation completed", "module", r.module, "files", len(files), "duration", time.Since(start))
	}()

	if s == nil {
		s = &Settings{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var out []GeneratedFile
	add := func(artifact, target string, fn func() (GeneratedFile, error)) error {
		file, err := r.step(ctx, artifact, target, fn)
		if err != nil {
			stepErr = err
			return err
		}
		out = append(out, file)
		return nil
	}

	translators := NewMessageTranslatorGenerator(r.module)
	for _, c := range s.Contracts {
		c := c
		err := add(ArtifactMessageTranslator, MessageTranslatorTarget(c.Contract).FullName(), func() (GeneratedFile, error) {
			var messaging *MessagingSetting
			if m, ok := s.MessagingFor(c.Contract); ok {
				messaging = &m
			}
			return translators.Generate(c, messaging, s.ImplementationOf(c.Contract), c.Properties)
		})
		if err != nil {
			return nil, err
		}
	}

	fields := NewEventFieldsGenerator(r.module)
	for _, e := range s.Events {
		e := e
		if err := add(ArtifactEventFields, EventFieldsTarget(e.Event).FullName(), func() (GeneratedFile, error) {
			return fields.Generate(e)
		}); err != nil {
			return nil, err
		}
	}

	for _, kind := range BusKinds {
		handlers := s.HandlersFor(kind)
		if len(handlers) == 0 {
			continue
		}
		bus := LocalBusTarget(kind, handlers)

		err := add(ArtifactLocalBus, bus.FullName(), func() (GeneratedFile, error) {
			file, plan, err := NewLocalBusGenerator(r.module).Generate(kind, handlers)
			if err == nil {
				r.logger.Debug("Dispatch plan built", "bus", string(kind),
					"contracts", len(plan.Cases), "factories", len(plan.Factories))
			}
			return file, err
		})
		if err != nil {
			return nil, err
		}

		if !r.mockableBuses {
			continue
		}
		if err := add(ArtifactMockableBus, MockableBusTarget(bus).FullName(), func() (GeneratedFile, error) {
			return NewMockableBusGenerator(r.module).Generate(kind, handlers)
		}); err != nil {
			return nil, err
		}
	}

	if len(s.Contracts) > 0 || len(s.Handlers) > 0 || len(s.Events) > 0 {
		if err := add(ArtifactInfrastructureProvider, InfrastructureProviderTarget(s).FullName(), func() (GeneratedFile, error) {
			return NewInfrastructureProviderGenerator(r.module).Generate(s)
		}); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *Runner) step(ctx context.Context, artifact, target string, fn func() (GeneratedFile, error)) (file GeneratedFile, err error) {
	if r.onStep != nil {
		r.onStep(artifact, target)
	}
	_, span := r.tracer.StartGeneration(ctx, artifact, target)
	start := time.Now()
	defer func() {
		if err == nil {
			span.SetAttributes(attribute.String(tracing.AttrPath, file.Path))
		}
		tracing.Finish(span, err)
		if r.metrics != nil {
			files := 1
			if err != nil {
				files = 0
			}
			r.metrics.ObserveGeneration(artifact, time.Since(start), files, err)
		}
	}()

	file, err = fn()
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("generator: %s %s: %w", artifact, target, err)
	}
	r.logger.Debug("Generated file", "artifact", artifact, "target", target, "path", file.Path)
	return file, nil
}

// WriteFiles writes files under root, creating directories as needed.
func WriteFiles(root string, files []GeneratedFile) error {
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("generator: failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("generator: failed to write %s: %w", f.Path, err)
		}
	}
	return nil
}
