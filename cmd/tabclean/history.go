package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/tabclean/internal/config"
	"github.com/nao1215/tabclean/internal/database"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "List stored cleaning runs",
		Long: `History lists the runs stored by the clean command, newest first.

Examples:
  # Runs of every source
  tabclean history

  # Runs of one source
  tabclean history data.csv --limit 5

  # Sources with stored runs
  tabclean history --sources

  # Full report of one run
  tabclean history --show 7d0c1a4e-...

  # Remove the runs of a source
  tabclean history data.csv --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("sources", false, "List sources with stored runs")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs listed (0: all)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (with --show)")
	cmd.Flags().String("show", "", "Print the report of the run with this ID")
	cmd.Flags().Bool("clear", false, "Delete the stored runs of the source")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	sources, _ := cmd.Flags().GetBool("sources")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	markdownOutput, _ := cmd.Flags().GetBool("markdown")
	show, _ := cmd.Flags().GetString("show")
	clearRuns, _ := cmd.Flags().GetBool("clear")

	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	var source string
	if len(args) > 0 {
		source = args[0]
	}
	if clearRuns && source == "" {
		return errors.New("--clear requires a source")
	}

	db, err := openHistory(cmd, false)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case show != "":
		run, err := db.GetRun(ctx, show)
		if err != nil {
			return err
		}
		writer := newReportWriter(out, jsonOutput, markdownOutput, getVerboseFlag(cmd))
		_, err = writer.Write(run)
		return err

	case clearRuns:
		n, err := db.DeleteRuns(ctx, source)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d runs of %s\n", n, source)
		return nil

	case sources:
		list, err := db.ListSources(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No runs stored")
			return nil
		}
		for _, s := range list {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	runs, err := db.ListRuns(ctx, source, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored")
		return nil
	}
	return writeRunTable(out, runs)
}

// openHistory opens the history database named by the history-dir flag.
func openHistory(cmd *cobra.Command, create bool) (*database.HistoryDB, error) {
	dir := getHistoryDirFlag(cmd)
	if dir == "" {
		dir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	db, err := database.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database in %s: %w", dir, err)
	}
	return db, nil
}

func writeRunTable(w io.Writer, runs []database.RunMetadata) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSTARTED\tSHAPE\tFINDINGS\tSTATUS")
	for _, r := range runs {
		status := r.HighestSeverity.String()
		if r.Error != "" {
			status = "error"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t(%d, %d) -> (%d, %d)\t%d\t%s\n",
			r.ID, r.Source, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.RowsBefore, r.ColsBefore, r.RowsAfter, r.ColsAfter, r.Findings, status)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
