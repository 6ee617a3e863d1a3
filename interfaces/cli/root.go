// Package cli implements moodictl, the offline export and reporting tool.
package cli

import (
	"context"
	"fmt"
	"time"

	querybus "moodi-backend/application/queries/bus"

	"github.com/spf13/cobra"
)

// Backend opens the query side of the configured store. The returned func
// releases it.
type Backend func(ctx context.Context) (*querybus.QueryBus, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Output string // "text" | "json" | "yaml"
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for moodictl.
func NewRootCommand(backend Backend) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "moodictl",
		Short:         "moodictl - chain analysis journal tool",
		Long:          "Exports recorded chain analyses and prints monthly summaries straight from the configured store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(opts.Output) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid output %q: must be one of %v", opts.Output, ValidOutputs))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewExportCommand(opts, backend))
	cmd.AddCommand(NewSummaryCommand(opts, backend))

	return cmd
}

// monthFlags registers --year and --month, defaulting to the current month
func monthFlags(cmd *cobra.Command, year, month *int) {
	now := time.Now()
	cmd.Flags().IntVar(year, "year", now.Year(), "calendar year")
	cmd.Flags().IntVar(month, "month", int(now.Month()), "calendar month (1-12)")
}

// isValidOutput checks if the format is one of the allowed values.
func isValidOutput(format string) bool {
	for _, f := range ValidOutputs {
		if f == format {
			return true
		}
	}
	return false
}
