package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/cli/config"
	"github.com/AshkanYarmoradi/go-foundation/cli/logging"
	"github.com/AshkanYarmoradi/go-foundation/cli/styles"
	"github.com/AshkanYarmoradi/go-foundation/cli/ui"
	"github.com/AshkanYarmoradi/go-foundation/generator"
	"github.com/AshkanYarmoradi/go-foundation/middleware/metrics"
	"github.com/AshkanYarmoradi/go-foundation/middleware/tracing"
)

type generateOptions struct {
	dryRun      bool
	progress    bool
	trace       bool
	verbose     bool
	metricsFile string
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate buses, translators and event field tables",
		Long: `Generate the wiring declared in the settings bundle.

For each contract a message translator is generated, for each event its
field table, for each bus kind with handlers a local bus and a mockable bus,
and an infrastructure provider tying them together.

Examples:
  foundation generate
  foundation generate --dry-run
  foundation generate --progress
  foundation generate --trace --metrics-file generate.prom`,
		Aliases: []string{"gen", "g"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "List generated files without writing them")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Show an interactive progress bar")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print generation spans to stderr")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this file")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	out := cmd.OutOrStdout()

	cfg, dir, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w (run 'foundation init' first)", config.ConfigFileName, err)
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	settings, err := generator.LoadSettingsFile(cfg.SettingsPath(dir))
	if err != nil {
		return err
	}
	applyDefaultCodec(settings, cfg.Generation.DefaultCodec)

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	runnerOpts := []generator.RunnerOption{
		generator.WithModule(cfg.Project.Module),
		generator.WithLogger(logger),
		generator.WithMockableBuses(cfg.Generation.MockableBuses),
	}

	if opts.trace {
		tp, err := newStdoutTracerProvider(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
		runnerOpts = append(runnerOpts, generator.WithTracer(
			tracing.NewTracer(tracing.WithTracerProvider(tp), tracing.WithServiceName(cfg.Project.Name))))
	}

	var registry *prometheus.Registry
	if opts.metricsFile != "" {
		registry = prometheus.NewRegistry()
		m := metrics.New(metrics.WithMetricsServiceName(cfg.Project.Name))
		if err := m.Register(registry); err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, generator.WithMetrics(m))
	}

	var notify func(artifact, target string)
	runnerOpts = append(runnerOpts, generator.WithProgress(func(artifact, target string) {
		if notify != nil {
			notify(artifact, target)
		}
	}))
	runner := generator.NewRunner(runnerOpts...)

	var files []generator.GeneratedFile
	if opts.progress {
		files, err = runWithProgress(cmd, runner, settings, logger, &notify)
	} else {
		files, err = runner.Run(cmd.Context(), settings)
	}

	if registry != nil {
		if werr := prometheus.WriteToTextfile(opts.metricsFile, registry); werr != nil && err == nil {
			err = fmt.Errorf("failed to write metrics: %w", werr)
		}
	}
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(out, styles.FormatWarning("Nothing to generate: the settings bundle declares no contracts, handlers or events"))
		return nil
	}

	if opts.dryRun {
		printFiles(out, files, "pending")
		fmt.Fprintln(out, styles.FormatInfo(fmt.Sprintf("Dry run: %s would be written", ui.Pluralize(len(files), "file"))))
		return nil
	}

	if err := generator.WriteFiles(cfg.OutputRoot(dir), files); err != nil {
		return err
	}

	printFiles(out, files, "generated")
	fmt.Fprintln(out, styles.FormatSuccess(fmt.Sprintf("Generated %s", ui.Pluralize(len(files), "file"))))
	return nil
}

// applyDefaultCodec sets the codec of contracts that do not name one.
func applyDefaultCodec(s *generator.Settings, name string) {
	for i := range s.Contracts {
		if s.Contracts[i].Codec == "" {
			s.Contracts[i].Codec = name
		}
	}
}

func newStdoutTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}

// runWithProgress runs the generator while a bubbletea program renders the
// steps. notify is pointed at the program before the run starts.
func runWithProgress(cmd *cobra.Command, runner *generator.Runner, s *generator.Settings, logger foundation.Logger, notify *func(artifact, target string)) ([]generator.GeneratedFile, error) {
	p := tea.NewProgram(ui.NewGenerationProgress(runner.Steps(s)),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithInput(cmd.InOrStdin()))

	*notify = func(artifact, target string) {
		p.Send(ui.StepMsg{Artifact: artifact, Target: target})
	}

	finished := make(chan error, 1)
	go func() {
		_, err := p.Run()
		finished <- err
	}()

	files, err := runner.Run(cmd.Context(), s)
	if err != nil {
		p.Send(ui.SpinnerDoneMsg{Result: "Generation failed", Err: err})
	} else {
		p.Send(ui.SpinnerDoneMsg{Result: fmt.Sprintf("Generated %s", ui.Pluralize(len(files), "file"))})
	}

	if perr := <-finished; perr != nil {
		logger.Warn("Progress display failed", "error", perr)
	}
	return files, err
}

func printFiles(w io.Writer, files []generator.GeneratedFile, status string) {
	table := ui.NewTable("File", "Package", "Status")
	for _, f := range files {
		table.AddRow(f.Path, f.Directory, ui.StatusBadge(status))
	}
	fmt.Fprintln(w, table.Render())
}
