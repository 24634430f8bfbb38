package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nao1215/tabclean/internal/config"
	"github.com/nao1215/tabclean/internal/database"
	"github.com/nao1215/tabclean/internal/tableio"
)

// TestNewCleanCmd tests the clean command creation.
func TestNewCleanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCleanCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "output", shorthand: "o", defValue: ""},
		{name: "json", shorthand: "j", defValue: "false"},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "report", shorthand: "r", defValue: ""},
		{name: "batch", shorthand: "b", defValue: "4"},
		{name: "config", shorthand: "c", defValue: ""},
		{name: "timeout", shorthand: "t", defValue: "0s"},
		{name: "drop-threshold-cols", defValue: "0.9"},
		{name: "drop-threshold-rows", defValue: "0.9"},
		{name: "cat-threshold", defValue: "0.03"},
		{name: "pool", defValue: "false"},
		{name: "no-history", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		root.SetArgs([]string{"clean", "a.csv",
			"--no-category", "--keep-duplicates", "--col-exclude", "notes,id",
			"--drop-threshold-rows", "0.5", "--history-dir", "/tmp/h", "-v"})

		var cfg *config.Config
		clean, _, err := root.Find([]string{"clean"})
		if err != nil {
			t.Fatal(err)
		}
		clean.RunE = func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = buildConfig(cmd, args)
			return err
		}
		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Category {
			t.Error("expected category disabled")
		}
		if cfg.DropDuplicates {
			t.Error("expected duplicates kept")
		}
		if !cfg.ConvertDTypes {
			t.Error("expected dtype conversion left enabled")
		}
		if len(cfg.ColExclude) != 2 || cfg.ColExclude[0] != "notes" {
			t.Errorf("ColExclude = %v", cfg.ColExclude)
		}
		if cfg.DropThresholdRows != 0.5 || cfg.DropThresholdCols != config.DefaultDropThreshold {
			t.Errorf("thresholds = %v/%v", cfg.DropThresholdCols, cfg.DropThresholdRows)
		}
		if cfg.HistoryDir != "/tmp/h" {
			t.Errorf("HistoryDir = %q", cfg.HistoryDir)
		}
		if !cfg.Verbose {
			t.Error("expected verbose")
		}
		if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "a.csv" {
			t.Errorf("Inputs = %v", cfg.Inputs)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()
		_, err := executeCmd(t, "clean", "a.csv", "-c", filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   config.Config
		path  string
		index int
		want  string
	}{
		{
			name: "no output",
			path: "data.csv",
			want: "",
		},
		{
			name: "output file wins",
			cfg:  config.Config{OutputFile: "out.tsv", OutDir: "dir"},
			path: "data.csv",
			want: "out.tsv",
		},
		{
			name: "keeps writable extension",
			cfg:  config.Config{OutDir: "dir"},
			path: "in/data.xlsx",
			want: filepath.Join("dir", "data.xlsx"),
		},
		{
			name: "drops compression",
			cfg:  config.Config{OutDir: "dir"},
			path: "in/data.tsv.gz",
			want: filepath.Join("dir", "data.tsv"),
		},
		{
			name: "html becomes csv",
			cfg:  config.Config{OutDir: "dir"},
			path: "page.html",
			want: filepath.Join("dir", "page.csv"),
		},
		{
			name:  "database source",
			cfg:   config.Config{OutDir: "dir"},
			path:  "postgres://u:p@localhost/db",
			index: 2,
			want:  filepath.Join("dir", "source_3.csv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := outputPath(&tt.cfg, tableio.Source{Path: tt.path}, tt.index)
			if got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunCleanCmd(t *testing.T) {
	t.Run("writes cleaned table and json report", func(t *testing.T) {
		dir := t.TempDir()
		input := writeTestCSV(t, dir, "people.csv")
		output := filepath.Join(dir, "out", "people_clean.csv")
		reportPath := filepath.Join(dir, "reports", "people.json")
		historyDir := filepath.Join(dir, "history")

		_, err := executeCmd(t, "clean", input, "-o", output, "-j", "-r", reportPath, "--history-dir", historyDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read cleaned table: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		if lines[0] != "first_name,age" {
			t.Errorf("header = %q, want %q", lines[0], "first_name,age")
		}
		if len(lines) != 4 {
			t.Errorf("expected 3 rows and a header, got %d lines", len(lines))
		}

		raw, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var rep struct {
			Version string `json:"version"`
			Run     struct {
				Source string `json:"source"`
			} `json:"run"`
		}
		if err := json.Unmarshal(raw, &rep); err != nil {
			t.Fatalf("report is not JSON: %v", err)
		}
		if rep.Version == "" {
			t.Error("expected version in report")
		}
		if rep.Run.Source != input {
			t.Errorf("report source = %q, want %q", rep.Run.Source, input)
		}

		db, err := database.Open(historyDir, database.Options{})
		if err != nil {
			t.Fatalf("expected history database: %v", err)
		}
		defer db.Close()
		runs, err := db.ListRuns(t.Context(), input, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 stored run, got %d", len(runs))
		}
		if runs[0].RowsAfter != 3 || runs[0].ColsAfter != 2 {
			t.Errorf("stored shape = (%d, %d), want (3, 2)", runs[0].RowsAfter, runs[0].ColsAfter)
		}
	})

	t.Run("batch into directory without history", func(t *testing.T) {
		dir := t.TempDir()
		first := writeTestCSV(t, dir, "a.csv")
		second := writeTestCSV(t, dir, "b.csv")
		outDir := filepath.Join(dir, "cleaned")
		historyDir := filepath.Join(dir, "history")

		stdout, err := executeCmd(t, "clean", first, second, "--out-dir", outDir,
			"--no-history", "--history-dir", historyDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(stdout, "TABCLEAN REPORT") != 2 {
			t.Errorf("expected two reports, got %q", stdout)
		}
		for _, name := range []string{"a.csv", "b.csv"} {
			if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
				t.Errorf("expected cleaned %s: %v", name, err)
			}
		}
		if _, err := os.Stat(filepath.Join(historyDir, database.FileName)); !os.IsNotExist(err) {
			t.Error("expected no history database")
		}
	})

	t.Run("missing input fails", func(t *testing.T) {
		dir := t.TempDir()
		_, err := executeCmd(t, "clean", filepath.Join(dir, "missing.csv"), "--no-history")
		if err == nil {
			t.Fatal("expected error for missing input")
		}
		if !strings.Contains(err.Error(), "1 of 1 inputs failed") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid configuration", func(t *testing.T) {
		_, err := executeCmd(t, "clean")
		if !errors.Is(err, config.ErrNoInput) {
			t.Errorf("expected ErrNoInput, got %v", err)
		}

		_, err = executeCmd(t, "clean", "a.csv", "-j", "-m")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
