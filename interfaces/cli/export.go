package cli

import (
	"fmt"
	"io"
	"time"

	"moodi-backend/application/queries"
	"moodi-backend/domain/core/entities"

	"github.com/spf13/cobra"
)

// exportRecord fixes the YAML field names; JSON uses the entity's own tags
type exportRecord struct {
	ID                 string       `yaml:"id"`
	Title              string       `yaml:"title"`
	EventDate          string       `yaml:"eventDate"`
	EventTime          *string      `yaml:"eventTime"`
	PrecipitatingEvent string       `yaml:"precipitatingEvent"`
	PrimaryEmotion     string       `yaml:"primaryEmotion"`
	EmotionalIntensity int          `yaml:"emotionalIntensity"`
	ChainLinks         []exportLink `yaml:"chainLinks"`
	Vulnerabilities    []string     `yaml:"vulnerabilities"`
	Interventions      []string     `yaml:"interventions"`
	WellnessScore      *int         `yaml:"wellnessScore"`
	Notes              *string      `yaml:"notes"`
	CreatedAt          string       `yaml:"createdAt"`
}

type exportLink struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Content string `yaml:"content"`
	Order   int    `yaml:"order"`
}

func toExportRecords(analyses []*entities.ChainAnalysis) []exportRecord {
	out := make([]exportRecord, 0, len(analyses))
	for _, a := range analyses {
		links := make([]exportLink, 0, len(a.ChainLinks))
		for _, l := range a.ChainLinks {
			links = append(links, exportLink{ID: l.ID, Type: string(l.Type), Content: l.Content, Order: l.Order})
		}
		out = append(out, exportRecord{
			ID:                 a.ID,
			Title:              a.Title,
			EventDate:          a.EventDate,
			EventTime:          a.EventTime,
			PrecipitatingEvent: a.PrecipitatingEvent,
			PrimaryEmotion:     a.PrimaryEmotion,
			EmotionalIntensity: a.EmotionalIntensity,
			ChainLinks:         links,
			Vulnerabilities:    a.Vulnerabilities,
			Interventions:      a.Interventions,
			WellnessScore:      a.WellnessScore,
			Notes:              a.Notes,
			CreatedAt:          a.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return out
}

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions, backend Backend) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the analyses recorded in one month",
		Long:  "Writes every analysis created in the given month, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bus, release, err := backend(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to open store", err)
			}
			defer release()

			result, err := bus.Ask(cmd.Context(), queries.AnalysesByMonthQuery{Year: year, Month: month})
			if err != nil {
				return queryError("export failed", err)
			}
			analyses, _ := result.([]*entities.ChainAnalysis)

			w := cmd.OutOrStdout()
			switch opts.Output {
			case "json":
				if analyses == nil {
					analyses = []*entities.ChainAnalysis{}
				}
				return writeStructured(w, "json", analyses)
			case "yaml":
				return writeStructured(w, "yaml", toExportRecords(analyses))
			default:
				return writeExportText(w, year, month, analyses)
			}
		},
	}

	monthFlags(cmd, &year, &month)
	return cmd
}

func writeExportText(w io.Writer, year, month int, analyses []*entities.ChainAnalysis) error {
	if len(analyses) == 0 {
		_, err := fmt.Fprintf(w, "No analyses for %04d-%02d\n", year, month)
		return err
	}
	if _, err := fmt.Fprintf(w, "Analyses for %04d-%02d (%d)\n", year, month, len(analyses)); err != nil {
		return err
	}
	for _, a := range analyses {
		if _, err := fmt.Fprintf(w, "%s  %-12s  %-10s %2d  %s\n",
			a.CreatedAt.Format(time.RFC3339), a.ID, a.PrimaryEmotion, a.EmotionalIntensity, a.Title); err != nil {
			return err
		}
	}
	return nil
}
