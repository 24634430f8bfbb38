package pipeline

import (
	"context"
	"slices"
	"testing"

	"github.com/nao1215/tabclean/internal/clean"
	"github.com/nao1215/tabclean/internal/frame"
	"github.com/nao1215/tabclean/internal/model"
)

func hasFinding(run *model.Run, findingType, value string) bool {
	return slices.ContainsFunc(run.Findings, func(f model.Finding) bool {
		return f.Type == findingType && f.Value == value
	})
}

// TestStepNames tests that every step reports its constant name.
func TestStepNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step Step
		want string
	}{
		{NewColumnNamesStep(nil), StepColumnNames},
		{NewSingleValuedStep(), StepSingleValued},
		{NewDropMissingStep(clean.DefaultDropMissingOptions()), StepDropMissing},
		{NewDropDuplicatesStep(), StepDropDuplicate},
		{NewConvertDTypesStep(clean.DefaultConvertOptions()), StepConvertDTypes},
		{NewPoolSubsetsStep(clean.DefaultPoolOptions()), StepPoolSubsets},
		{NewAssessStep(MissingWarnRatio), StepAssess},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.step.Name(); got != tt.want {
				t.Errorf("got %q, expected %q", got, tt.want)
			}
		})
	}
}

// TestColumnNamesStepDo tests renaming and the name findings.
func TestColumnNamesStepDo(t *testing.T) {
	t.Parallel()

	tbl := frame.MustNew(
		frame.NewColumn("First Name", "a"),
		frame.NewColumn("first_name", "b"),
		frame.NewColumn("a column name that is far too long", "c"),
	)
	run := model.NewRun("names.csv", tbl)

	if err := NewColumnNamesStep(nil).Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first_name", "first_name_1", "a_column_name_that_is_far_too_long"}
	if got := run.Output.Names(); !slices.Equal(got, want) {
		t.Errorf("got names %v, expected %v", got, want)
	}
	if len(run.RenamedColumns) != 3 {
		t.Errorf("expected 3 renamed columns, got %v", run.RenamedColumns)
	}
	if !hasFinding(run, model.FindingDuplicateColumnName, "first_name_1") {
		t.Error("expected a duplicate column name finding")
	}
	if !hasFinding(run, model.FindingLongColumnName, want[2]) {
		t.Error("expected a long column name finding")
	}
	if len(run.LongColumnNames) != 1 {
		t.Errorf("expected 1 long name, got %v", run.LongColumnNames)
	}
	if got := tbl.Names(); got[0] != "First Name" {
		t.Error("input table must not be modified")
	}
}

// TestSingleValuedStepDo tests that constant columns are dropped.
func TestSingleValuedStepDo(t *testing.T) {
	t.Parallel()

	run := model.NewRun("x", frame.MustNew(
		frame.NewColumn("const", 1, 1, 1),
		frame.NewColumn("empty", nil, nil, nil),
		frame.NewColumn("gaps", 1, nil, 1),
	))

	if err := NewSingleValuedStep().Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := run.Output.Names(); !slices.Equal(got, []string{"gaps"}) {
		t.Errorf("got names %v, expected [gaps]", got)
	}
	if !slices.Equal(run.SingleValuedColumns, []string{"const", "empty"}) {
		t.Errorf("unexpected dropped columns %v", run.SingleValuedColumns)
	}
	if !hasFinding(run, model.FindingSingleValuedColumn, "empty") {
		t.Error("expected a single-valued finding")
	}
}

// TestDropMissingStepDo tests that dropped rows and columns are recorded.
func TestDropMissingStepDo(t *testing.T) {
	t.Parallel()

	run := model.NewRun("x", dataCleaningFixture())
	step := NewDropMissingStep(clean.DropMissingOptions{ThresholdCols: 0.5, ThresholdRows: 0.9})

	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(run.MissingColumns, []string{"c1", "c5"}) {
		t.Errorf("unexpected dropped columns %v", run.MissingColumns)
	}
	if !slices.Equal(run.MissingRows, []int{0, 1}) {
		t.Errorf("unexpected dropped rows %v", run.MissingRows)
	}
	if !hasFinding(run, model.FindingMissingColumn, "c5") {
		t.Error("expected a missing column finding")
	}
}

// TestDropDuplicatesStepDo tests duplicate removal.
func TestDropDuplicatesStepDo(t *testing.T) {
	t.Parallel()

	t.Run("drops repeated rows", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("x", frame.MustNew(
			frame.NewColumn("a", 1, 2, 1, 1),
			frame.NewColumn("b", "x", "y", "x", "x"),
		))
		if err := NewDropDuplicatesStep().Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rows := run.Output.NumRows(); rows != 2 {
			t.Errorf("expected 2 rows, got %d", rows)
		}
		if !slices.Equal(run.DuplicateRows, []int{2, 3}) {
			t.Errorf("unexpected duplicate rows %v", run.DuplicateRows)
		}
		if !hasFinding(run, model.FindingDuplicateRows, "2") {
			t.Error("expected a duplicate rows finding")
		}
	})

	t.Run("no finding without duplicates", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("x", smallTable())
		if err := NewDropDuplicatesStep().Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(run.Findings) != 0 || len(run.DuplicateRows) != 0 {
			t.Errorf("expected nothing recorded, got %v", run.Findings)
		}
	})
}

// TestConvertDTypesStepDo tests conversion and the mixed-type finding.
func TestConvertDTypesStepDo(t *testing.T) {
	t.Parallel()

	run := model.NewRun("x", frame.MustNew(
		frame.NewColumn("n", 1, 2, 3),
		frame.NewColumn("mixed", "a", 1, nil),
		frame.NewColumn("void", nil, nil, nil),
	))
	step := NewConvertDTypesStep(clean.ConvertOptions{Category: false, CatThreshold: 0.05})

	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := run.Output.Column(0).DType.Name(); got != "int8" {
		t.Errorf("expected int8, got %s", got)
	}
	if !hasFinding(run, model.FindingMixedTypes, "mixed") {
		t.Error("expected a mixed types finding")
	}
	if hasFinding(run, model.FindingMixedTypes, "void") {
		t.Error("an empty column is not mixed")
	}
}

// TestPoolSubsetsStepDo tests that pooling is recorded on the run.
func TestPoolSubsetsStepDo(t *testing.T) {
	t.Parallel()

	t.Run("pools duplicated subset", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("x", frame.MustNew(
			frame.NewColumn("a", 1, 1, 1, 2),
			frame.NewColumn("b", "x", "x", "x", "y"),
			frame.NewColumn("id", 1, 2, 3, 4),
		))
		opts := clean.PoolOptions{ColDuplThresh: 0.2, SubsetThresh: 0.2, MinColPool: 2}
		if err := NewPoolSubsetsStep(opts).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Pool == nil {
			t.Fatal("expected pool info")
		}
		if run.Pool.Column != clean.DefaultPooledName {
			t.Errorf("got pooled column %q", run.Pool.Column)
		}
		if !slices.Equal(run.Pool.Subset, []string{"a", "b"}) {
			t.Errorf("unexpected subset %v", run.Pool.Subset)
		}
		if got := run.Output.Names(); !slices.Equal(got, []string{"id", clean.DefaultPooledName}) {
			t.Errorf("unexpected names %v", got)
		}
	})

	t.Run("leaves unique columns alone", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("x", smallTable())
		opts := clean.PoolOptions{ColDuplThresh: 0.2, SubsetThresh: 0.2, MinColPool: 1}
		if err := NewPoolSubsetsStep(opts).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Pool != nil {
			t.Errorf("expected no pooling, got %+v", run.Pool)
		}
	})
}

// TestAssessStepDo tests the findings about the cleaned table.
func TestAssessStepDo(t *testing.T) {
	t.Parallel()

	t.Run("reports mostly missing columns", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("x", frame.MustNew(
			frame.NewColumn("full", 1, 2, 3),
			frame.NewColumn("sparse", nil, nil, 3),
		))
		if err := NewAssessStep(0.5).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !hasFinding(run, model.FindingMissingRemaining, "sparse") {
			t.Error("expected a missing remaining finding")
		}
		if hasFinding(run, model.FindingMissingRemaining, "full") {
			t.Error("complete column must not be reported")
		}
	})

	t.Run("reports empty result", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("x", frame.MustNew())
		if err := NewAssessStep(0.5).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.HighestSeverity() != model.SeverityCritical {
			t.Errorf("expected CRITICAL, got %v", run.HighestSeverity())
		}
	})
}
