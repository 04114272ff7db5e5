// foundation is the command-line interface for the go-foundation code generator.
//
// Usage:
//
//	foundation <command> [flags]
//
// Commands:
//
//	init        Create foundation.yaml and a starter settings bundle
//	generate    Generate buses, translators, event field tables and the provider
//	resolve     Show which handler a generated bus resolves
//	message     Create and inspect serialized messages
//	version     Show version information
//
// Examples:
//
//	# Initialize a project in the current module
//	foundation init
//
//	# Generate the wiring declared in foundation.settings.yaml
//	foundation generate --progress
//
//	# Check version resolution of a contract
//	foundation resolve PlaceOrder --version 1
//
//	# Decode a message captured from a queue
//	foundation message inspect message.json
package main

import (
	"os"

	"github.com/AshkanYarmoradi/go-foundation/cli/commands"
)

// Build information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Set version info
	commands.Version = version
	commands.Commit = commit
	commands.BuildDate = buildDate

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
