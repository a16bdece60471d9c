// Package cli implements sasctl, the command line panel for the SMS
// scheduling backend.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version can be overridden at build time via:
// go build -ldflags "-X sas-panel/internal/cli.version=1.2.3"
var version = "0.4.0"

// NewRootCommand builds a fresh sasctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sasctl",
		Short:         "Manage SMS templates, people and delivery rules",
		Long:          color.CyanString("sasctl") + " talks to the scheduling backend over its WebSocket channel.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a config file (default: search ./configs, ., ~/.sas)")
	flags.String("url", "", "Backend channel URL, e.g. ws://127.0.0.1:8585/")
	flags.StringP("username", "u", "", "Backend username")
	flags.String("password", "", "Backend password (prompted when unset)")
	flags.Duration("timeout", 0, "Per-request timeout (default from config)")
	flags.Bool("json", false, "Print records as JSON")
	flags.Bool("no-cache", false, "Bypass the Redis result cache")

	root.AddCommand(
		newLoginCommand(),
		newPasswdCommand(),
		newRecordCommand(templateCommands),
		newRecordCommand(peopleCommands),
		newRecordCommand(ruleCommands),
		newPreviewCommand(),
		newSettingsCommand(),
		newSelectCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
