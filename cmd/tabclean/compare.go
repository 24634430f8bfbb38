package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/tabclean/internal/config"
	"github.com/nao1215/tabclean/internal/database"
	"github.com/nao1215/tabclean/internal/model"
	"github.com/nao1215/tabclean/internal/report"
)

// ErrNotEnoughRuns is returned when a source has fewer than two stored runs.
var ErrNotEnoughRuns = errors.New("at least two runs of the source are needed")

// ErrSourceMismatch is returned when --with-run-id names a run of another source.
var ErrSourceMismatch = errors.New("run belongs to a different source")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <source>",
		Short: "Compare the latest run of a source with an earlier one",
		Long: `Compare puts the latest stored run of a source next to the run before
it, or the run given with --with-run-id, and shows how the input, the
cleaned table and the findings changed.

Examples:
  tabclean compare data.csv
  tabclean compare data.csv --with-run-id 7d0c1a4e-... --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().String("with-run-id", "", "Compare against this run instead of the previous one")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().Bool("show-unchanged", false, "Show metrics that did not change")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	withRunID, _ := cmd.Flags().GetString("with-run-id")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	markdownOutput, _ := cmd.Flags().GetBool("markdown")
	showUnchanged, _ := cmd.Flags().GetBool("show-unchanged")

	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := openHistory(cmd, false)
	if err != nil {
		return err
	}
	defer db.Close()

	prev, curr, err := runsToCompare(cmd, db, args[0], withRunID)
	if err != nil {
		return err
	}

	cmp, err := report.NewComparison(prev, curr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithShowEmpty(showUnchanged))
	}
	_, err = writer.WriteComparison(cmp)
	return err
}

// runsToCompare returns the earlier and the later run to compare.
func runsToCompare(cmd *cobra.Command, db *database.HistoryDB, source, withRunID string) (*model.Run, *model.Run, error) {
	ctx := cmd.Context()

	if withRunID == "" {
		runs, err := db.LatestRuns(ctx, source, 2)
		if err != nil {
			return nil, nil, err
		}
		if len(runs) < 2 {
			return nil, nil, fmt.Errorf("%w: %s has %d", ErrNotEnoughRuns, source, len(runs))
		}
		return runs[1], runs[0], nil
	}

	other, err := db.GetRun(ctx, withRunID)
	if err != nil {
		return nil, nil, err
	}
	if other.Source != source {
		return nil, nil, fmt.Errorf("%w: %s is a run of %s", ErrSourceMismatch, withRunID, other.Source)
	}

	runs, err := db.LatestRuns(ctx, source, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(runs) == 0 || runs[0].ID == other.ID {
		return nil, nil, fmt.Errorf("%w: no later run of %s", ErrNotEnoughRuns, source)
	}
	return other, runs[0], nil
}
