package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/go-foundation/cli/ui"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.SimpleBanner())
			fmt.Fprintln(out)

			table := ui.NewTable("", "")
			table.AddRow("Version", version)
			table.AddRow("Commit", commit)
			table.AddRow("Built", date)
			table.AddRow("Go", runtime.Version())
			table.AddRow("OS/Arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))

			fmt.Fprintln(out, table.Render())

			return nil
		},
	}
}
