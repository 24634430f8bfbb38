package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for tabclean.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabclean",
		Short: "Clean and shrink tabular data",
		Long: `tabclean cleans tabular data read from CSV, TSV, Excel, HTML, SQLite or
PostgreSQL sources.

It normalizes column names, drops empty and single-valued columns, rows with
too many missing values and duplicate rows, converts every column to the most
compact datatype and reports what changed. Every run is stored in a local
history database so runs of the same source can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("history-dir", "",
		"History database directory (default: XDG data directory)")

	cmd.AddCommand(NewCleanCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
