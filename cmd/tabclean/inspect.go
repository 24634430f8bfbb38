package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/tabclean/internal/config"
	"github.com/nao1215/tabclean/internal/report"
	"github.com/nao1215/tabclean/internal/tableio"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Describe a table without cleaning it",
		Long: `Inspect reads a table and prints its shape, missing values, duplicate
rows, memory usage and the datatype of every column.

Examples:
  tabclean inspect data.csv
  tabclean inspect book.xlsx --sheet Data --json`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().String("format", "", "Input format, overrides detection")
	cmd.Flags().String("sheet", "", "Worksheet of Excel inputs (default: first sheet)")
	cmd.Flags().String("query", "", "SQL query for database inputs")
	cmd.Flags().Int("table-index", 0, "Table of HTML inputs, counted from 0")
	cmd.Flags().StringSlice("na", nil, "Cell texts read as missing values")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("config", "c", "", "Configuration file path")

	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	src := cfg.Source(args[0])
	t, err := tableio.Open(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	profile, err := report.NewProfile(src.String(), t)
	if err != nil {
		return err
	}

	writer := newReportWriter(cmd.OutOrStdout(), cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose)
	if _, err := writer.WriteProfile(profile); err != nil {
		return errors.Join(errors.New("failed to write profile"), err)
	}
	return nil
}
