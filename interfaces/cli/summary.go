package cli

import (
	"fmt"
	"io"
	"strconv"

	"moodi-backend/application/queries"
	"moodi-backend/domain/reports"

	"github.com/spf13/cobra"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(opts *RootOptions, backend Backend) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary of one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bus, release, err := backend(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to open store", err)
			}
			defer release()

			result, err := bus.Ask(cmd.Context(), queries.MonthlySummaryQuery{Year: year, Month: month})
			if err != nil {
				return queryError("summary failed", err)
			}
			summary, ok := result.(*reports.MonthlySummary)
			if !ok {
				return NewExitError(ExitFailure, fmt.Sprintf("unexpected summary result %T", result))
			}

			w := cmd.OutOrStdout()
			if opts.Output == "text" {
				return writeSummaryText(w, summary)
			}
			return writeStructured(w, opts.Output, summary)
		},
	}

	monthFlags(cmd, &year, &month)
	return cmd
}

func writeSummaryText(w io.Writer, s *reports.MonthlySummary) error {
	dominant := s.DominantEmotion
	if dominant == "" {
		dominant = "-"
	}

	lines := []string{
		fmt.Sprintf("Summary for %04d-%02d", s.Year, s.Month),
		fmt.Sprintf("  %-18s%d", "Analyses:", s.TotalAnalyses),
		fmt.Sprintf("  %-18s%s", "Average wellness:", strconv.FormatFloat(s.AverageWellness, 'f', 1, 64)),
		fmt.Sprintf("  %-18s%d", "Vulnerabilities:", s.VulnerabilityCount),
		fmt.Sprintf("  %-18s%s", "Dominant emotion:", dominant),
	}
	if len(s.EmotionBreakdown) > 0 {
		lines = append(lines, "", "Emotion breakdown:")
		for _, e := range s.EmotionBreakdown {
			lines = append(lines, fmt.Sprintf("  %-12s%3d %4d%%", e.Emotion, e.Count, e.Percentage))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
