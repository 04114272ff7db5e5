// Package commands provides the CLI command implementations for foundation.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/go-foundation/cli/config"
	"github.com/AshkanYarmoradi/go-foundation/cli/styles"
	"github.com/AshkanYarmoradi/go-foundation/cli/ui"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command for the foundation CLI
func NewRootCommand() *cobra.Command {
	var (
		noColor    bool
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "foundation",
		Short: "CQRS wiring generator for Go",
		Long: ui.SimpleBanner() + `

Foundation generates the wiring between your contracts and handlers:
local buses, message translators, mockable buses, event field tables
and an infrastructure provider.

` + styles.Title.Render("Quick Start:") + `

  ` + styles.Code.Render("foundation init") + `              Create foundation.yaml and a settings bundle
  ` + styles.Code.Render("foundation generate") + `          Generate code from the settings bundle
  ` + styles.Code.Render("foundation resolve") + `           Show which handler a bus resolves
  ` + styles.Code.Render("foundation message inspect") + `   Decode a serialized message

` + styles.Title.Render("Documentation:") + `

  https://github.com/AshkanYarmoradi/go-foundation`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				styles.DisableColors()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to foundation.yaml (default: search upwards from the working directory)")

	// Add subcommands
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewResolveCommand())
	rootCmd.AddCommand(NewMessageCommand())
	rootCmd.AddCommand(NewVersionCommand(Version, Commit, BuildDate))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.FormatError(err.Error()))
		return err
	}

	return nil
}

// configFlag returns the --config value, or "" when the command runs without
// the root command.
func configFlag(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil {
		return f.Value.String()
	}
	return ""
}

// loadConfig loads the configuration named by --config or, without it, the
// nearest foundation.yaml above the working directory.
// Returns (config, config directory, error).
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if path := configFlag(cmd); path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", err
		}
		cfg, err := config.LoadFile(abs)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(abs), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	dir, cfg, err := config.FindConfig(cwd)
	if err != nil {
		return nil, cwd, err
	}

	return cfg, dir, nil
}

// loadConfigOrDefault is like loadConfig but returns defaults if no config
// file is found. An explicit --config that cannot be read is still an error.
func loadConfigOrDefault(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, dir, err := loadConfig(cmd)
	if err == nil {
		return cfg, dir, nil
	}
	if configFlag(cmd) != "" || !os.IsNotExist(err) || dir == "" {
		return nil, dir, err
	}
	return config.DefaultConfig(), dir, nil
}
