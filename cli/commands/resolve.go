package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/cli/config"
	"github.com/AshkanYarmoradi/go-foundation/cli/styles"
	"github.com/AshkanYarmoradi/go-foundation/cli/ui"
	"github.com/AshkanYarmoradi/go-foundation/generator"
)

// resolution is one row of the resolve table.
type resolution struct {
	Bus      generator.BusKind
	Contract generator.ClassInfo
	Versions []int
	Handler  generator.HandlerRef
	Resolved bool
}

// Status returns "resolved", "factory" or "unresolved".
func (r resolution) Status() string {
	switch {
	case !r.Resolved:
		return "unresolved"
	case r.Handler.Factory != "":
		return "factory"
	default:
		return "resolved"
	}
}

// NewResolveCommand creates the resolve command
func NewResolveCommand() *cobra.Command {
	var (
		bus     string
		version int
		skip    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [contract]",
		Short: "Show which handler a generated bus resolves",
		Long: `Evaluate the dispatch plan of the generated buses for a versioning strategy.

The contract is matched by full name (example.com/shop/orders.PlaceOrder)
or simple name (PlaceOrder). Without a contract every contract is listed.

Examples:
  foundation resolve
  foundation resolve PlaceOrder --version 1
  foundation resolve --bus query --skip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dir, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
			}
			settings, err := generator.LoadSettingsFile(cfg.SettingsPath(dir))
			if err != nil {
				return err
			}

			kinds := generator.BusKinds
			if bus != "" {
				kind := generator.BusKind(bus)
				if !kind.IsValid() {
					return fmt.Errorf("unknown bus %q (query, command or event)", bus)
				}
				kinds = []generator.BusKind{kind}
			}

			strategy := foundation.UseLatestVersion()
			switch {
			case skip:
				strategy = foundation.SkipResolution()
			case cmd.Flags().Changed("version"):
				strategy = foundation.UseSpecificVersion(version)
			}

			contract := ""
			if len(args) > 0 {
				contract = args[0]
			}

			rows, err := resolveContracts(settings, kinds, contract, strategy)
			if err != nil {
				return err
			}
			if contract != "" && len(rows) == 0 {
				return fmt.Errorf("no handler is declared for %q", contract)
			}

			printResolutions(cmd.OutOrStdout(), rows, strategy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bus, "bus", "b", "", "Only evaluate this bus (query, command, event)")
	cmd.Flags().IntVar(&version, "version", 0, "Resolve this handler version instead of the latest")
	cmd.Flags().BoolVar(&skip, "skip", false, "Evaluate the skip strategy")

	return cmd
}

// resolveContracts evaluates the dispatch plan of each bus kind. An empty
// contract matches every contract.
func resolveContracts(s *generator.Settings, kinds []generator.BusKind, contract string, strategy foundation.HandlerVersioningStrategy) ([]resolution, error) {
	var rows []resolution
	for _, kind := range kinds {
		handlers := s.HandlersFor(kind)
		if len(handlers) == 0 {
			continue
		}
		plan, err := generator.BuildDispatchPlan(kind, handlers)
		if err != nil {
			return nil, err
		}
		for _, c := range plan.Cases {
			if contract != "" && contract != c.Contract.FullName() && contract != c.Contract.Name {
				continue
			}
			row := resolution{Bus: kind, Contract: c.Contract}
			for _, ref := range c.Versions {
				row.Versions = append(row.Versions, ref.Settings.Version)
			}
			row.Handler, row.Resolved = plan.Resolve(c.Contract.FullName(), strategy)
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func printResolutions(w io.Writer, rows []resolution, strategy foundation.HandlerVersioningStrategy) {
	if len(rows) == 0 {
		fmt.Fprintln(w, styles.FormatWarning("No handlers are declared"))
		return
	}

	fmt.Fprintln(w, styles.FormatKeyValue("Strategy", strategy.String()))
	table := ui.NewTable("Bus", "Contract", "Versions", "Handler", "Status")
	for _, r := range rows {
		handler := "-"
		if r.Resolved {
			handler = r.Handler.Settings.Handler.FullName()
		}
		table.AddRow(string(r.Bus), r.Contract.FullName(), formatVersions(r.Versions), handler, ui.StatusBadge(r.Status()))
	}
	fmt.Fprintln(w, table.Render())
}

func formatVersions(versions []int) string {
	if len(versions) == 0 {
		return "-"
	}
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
