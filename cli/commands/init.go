package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/go-foundation/cli/config"
	"github.com/AshkanYarmoradi/go-foundation/cli/styles"
	"github.com/AshkanYarmoradi/go-foundation/cli/ui"
	"github.com/AshkanYarmoradi/go-foundation/codec"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		name           string
		module         string
		settings       string
		defaultCodec   string
		noMocks        bool
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new foundation project",
		Long: `Initialize a foundation project with a configuration file and a starter settings bundle.

This command will:
  • Create a foundation.yaml configuration file
  • Create a commented settings bundle to declare contracts and handlers

Examples:
  foundation init                      # Initialize in current directory
  foundation init services/orders      # Initialize in another directory
  foundation init --codec=msgpack      # Encode contracts with MessagePack by default`,

		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			if config.Exists(absDir) {
				fmt.Fprintln(out, styles.FormatWarning(config.ConfigFileName+" already exists in this directory"))
				return nil
			}

			cfg := config.DefaultConfig()
			cfg.Project.Name = filepath.Base(absDir)
			if detected := detectModule(absDir); detected != "" {
				cfg.Project.Module = detected
			}
			if name != "" {
				cfg.Project.Name = name
			}
			if module != "" {
				cfg.Project.Module = module
			}
			if settings != "" {
				cfg.Generation.Settings = settings
			}
			if defaultCodec != "" {
				cfg.Generation.DefaultCodec = defaultCodec
			}
			if noMocks {
				cfg.Generation.MockableBuses = false
			}

			if !nonInteractive {
				fmt.Fprintln(out, ui.Banner())
				fmt.Fprintln(out)
				if err := initForm(cfg).Run(); err != nil {
					return err
				}
			}

			if problems := cfg.Validate(); len(problems) > 0 {
				return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
			}

			if err := os.MkdirAll(absDir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", absDir, err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, styles.Title.Render(styles.IconFolder+" Creating project files..."))
			fmt.Fprintln(out)

			configPath := filepath.Join(absDir, config.ConfigFileName)
			if err := os.WriteFile(configPath, []byte(config.GenerateYAML(cfg)), 0644); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			fmt.Fprintln(out, styles.FormatSuccess("Created "+config.ConfigFileName))

			settingsPath := cfg.SettingsPath(absDir)
			if _, err := os.Stat(settingsPath); err == nil {
				fmt.Fprintln(out, styles.FormatInfo("Keeping existing "+cfg.Generation.Settings))
			} else {
				if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
					return fmt.Errorf("failed to create settings directory: %w", err)
				}
				if err := os.WriteFile(settingsPath, []byte(starterSettings(cfg.Project.Module)), 0644); err != nil {
					return fmt.Errorf("failed to create settings file: %w", err)
				}
				fmt.Fprintln(out, styles.FormatSuccess("Created "+cfg.Generation.Settings))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, styles.InfoBox.Render(nextSteps(cfg)))

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().StringVarP(&module, "module", "m", "", "Go module path")
	cmd.Flags().StringVar(&settings, "settings", "", "Settings bundle path")
	cmd.Flags().StringVar(&defaultCodec, "codec", "", "Default contract codec ("+strings.Join(codec.Names(), ", ")+")")
	cmd.Flags().BoolVar(&noMocks, "no-mocks", false, "Do not generate mockable buses")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Run in non-interactive mode")

	return cmd
}

func initForm(cfg *config.Config) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project Name").
				Description("The name of your project").
				Value(&cfg.Project.Name),

			huh.NewInput().
				Title("Go Module").
				Description("The Go module path (from go.mod)").
				Value(&cfg.Project.Module),
		).Title("Project Configuration"),

		huh.NewGroup(
			huh.NewInput().
				Title("Settings Bundle").
				Description("Where contracts, handlers and events are declared").
				Value(&cfg.Generation.Settings),

			huh.NewSelect[string]().
				Title("Default Codec").
				Description("Codec of contracts that do not name one").
				Options(
					huh.NewOption("JSON (recommended)", codec.NameJSON),
					huh.NewOption("MessagePack", codec.NameMsgPack),
					huh.NewOption("Protobuf JSON", codec.NameProtoJSON),
				).
				Value(&cfg.Generation.DefaultCodec),

			huh.NewConfirm().
				Title("Mockable Buses").
				Description("Generate test doubles for each local bus").
				Value(&cfg.Generation.MockableBuses),
		).Title("Code Generation"),
	).WithTheme(huh.ThemeDracula())
}

// detectModule tries to detect the Go module from go.mod
func detectModule(dir string) string {
	gomodPath := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomodPath)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}

	return ""
}

// starterSettings returns an empty settings bundle with a commented example.
func starterSettings(module string) string {
	return `# Foundation settings bundle
# Declare contracts, handlers and events; "foundation generate" reads this file.
#
# contracts:
#   - contract: ` + module + `/orders.PlaceOrder
#     kind: command
#     codec: json
#     properties:
#       - name: OrderID
#       - name: Lines
#         hasBody: true
#
# implementations:
#   - contract: ` + module + `/orders.PlaceOrder
#     implementation: ` + module + `/orders/internal.PlaceOrderRequest
#
# handlers:
#   - bus: command
#     contract: ` + module + `/orders.PlaceOrder
#     handler: ` + module + `/orders/handlers.PlaceOrderHandler
#   - bus: command
#     contract: ` + module + `/orders.PlaceOrder
#     version: 2
#     handler: ` + module + `/orders/handlers.PlaceOrderHandlerV2
#     makeByFactory: true
#
# messaging:
#   - contract: ` + module + `/orders.PlaceOrder
#     type: orders.place
#
# events:
#   - event: ` + module + `/orders.OrderPlaced
#     fields:
#       CustomerEmail:
#         encrypted: true
#         faked: email

contracts: []
handlers: []
`
}

func nextSteps(cfg *config.Config) string {
	steps := []string{
		styles.Bold.Render("Next Steps:"),
		"",
		"1. Declare your contracts and handlers in:",
		"   " + styles.Code.Render(cfg.Generation.Settings),
		"",
		"2. Generate the wiring:",
		"   " + styles.Code.Render("foundation generate"),
		"",
		"3. Check which handler a bus resolves:",
		"   " + styles.Code.Render("foundation resolve <contract>"),
		"",
		"Happy building! " + styles.IconFoundation,
	}

	return strings.Join(steps, "\n")
}
