package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/nao1215/tabclean/internal/clean"
	"github.com/nao1215/tabclean/internal/colname"
	"github.com/nao1215/tabclean/internal/frame"
	"github.com/nao1215/tabclean/internal/model"
)

// Step names in the order Clean runs them.
const (
	StepColumnNames   = "column_names"
	StepSingleValued  = "single_valued"
	StepDropMissing   = "drop_missing"
	StepDropDuplicate = "drop_duplicates"
	StepConvertDTypes = "convert_dtypes"
	StepPoolSubsets   = "pool_subsets"
	StepAssess        = "assess"
)

// MissingWarnRatio is the missing ratio above which a remaining column is
// reported as mostly missing.
const MissingWarnRatio = 0.5

// StepOption configures the logger shared by the cleaning steps.
type StepOption func(*stepBase)

// WithStepLogger sets the logger a step reports its changes to.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(b *stepBase) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type stepBase struct {
	logger *slog.Logger
}

func newStepBase(opts []StepOption) stepBase {
	b := stepBase{logger: slog.Default()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// ColumnNamesStep normalizes the column headers.
type ColumnNamesStep struct {
	stepBase
	cleaner *colname.Cleaner
}

// NewColumnNamesStep creates a step renaming columns with cleaner.
// A nil cleaner uses colname.New with the step's logger.
func NewColumnNamesStep(cleaner *colname.Cleaner, opts ...StepOption) *ColumnNamesStep {
	s := &ColumnNamesStep{stepBase: newStepBase(opts)}
	if cleaner == nil {
		cleaner = colname.New(colname.WithLogger(s.logger))
	}
	s.cleaner = cleaner
	return s
}

// Name returns the step name.
func (s *ColumnNamesStep) Name() string { return StepColumnNames }

// Do renames the columns of run.Output.
func (s *ColumnNamesStep) Do(_ context.Context, run *model.Run) error {
	out, res, err := s.cleaner.Apply(run.Output)
	if err != nil {
		return err
	}
	run.Output = out

	for _, r := range res.Renamed {
		run.RenamedColumns = append(run.RenamedColumns, model.RenamedColumn{
			Position: r.Position,
			From:     r.From,
			To:       r.To,
		})
	}
	for _, pos := range res.Duplicates {
		run.AddFinding(model.FindingDuplicateColumnName, "Duplicate column name", res.Names[pos])
	}
	for _, name := range res.LongNames {
		run.LongColumnNames = append(run.LongColumnNames, name)
		run.AddFinding(model.FindingLongColumnName, "Long column name", name)
	}
	return nil
}

// SingleValuedStep drops columns holding a single distinct value.
// Missing counts as a value, and no exclusion list applies.
type SingleValuedStep struct {
	stepBase
}

// NewSingleValuedStep creates a step dropping single-valued columns.
func NewSingleValuedStep(opts ...StepOption) *SingleValuedStep {
	return &SingleValuedStep{stepBase: newStepBase(opts)}
}

// Name returns the step name.
func (s *SingleValuedStep) Name() string { return StepSingleValued }

// Do drops the single-valued columns of run.Output.
func (s *SingleValuedStep) Do(_ context.Context, run *model.Run) error {
	out, dropped, err := clean.DropSingleValued(run.Output)
	if err != nil {
		return err
	}
	run.Output = out
	run.SingleValuedColumns = append(run.SingleValuedColumns, dropped...)
	for _, name := range dropped {
		run.AddFinding(model.FindingSingleValuedColumn, "Single-valued column dropped", name)
	}
	if len(dropped) > 0 {
		s.logger.Debug("dropped single-valued columns", "source", run.Source, "columns", dropped)
	}
	return nil
}

// DropMissingStep drops columns and rows with too many missing values.
type DropMissingStep struct {
	stepBase
	options clean.DropMissingOptions
}

// NewDropMissingStep creates a drop-missing step with the given thresholds.
func NewDropMissingStep(options clean.DropMissingOptions, opts ...StepOption) *DropMissingStep {
	return &DropMissingStep{stepBase: newStepBase(opts), options: options}
}

// Name returns the step name.
func (s *DropMissingStep) Name() string { return StepDropMissing }

// Do applies the missing-value thresholds to run.Output.
func (s *DropMissingStep) Do(_ context.Context, run *model.Run) error {
	res, err := clean.DropMissingDetails(run.Output, s.options)
	if err != nil {
		return err
	}
	run.Output = res.Table
	run.MissingColumns = append(run.MissingColumns, res.DroppedColumns...)
	run.MissingRows = append(run.MissingRows, res.DroppedRows...)
	for _, name := range res.DroppedColumns {
		run.AddFinding(model.FindingMissingColumn, "Mostly missing column dropped", name)
	}
	if len(res.DroppedColumns) > 0 || len(res.DroppedRows) > 0 {
		s.logger.Debug("dropped missing values",
			"source", run.Source,
			"columns", res.DroppedColumns,
			"rows", len(res.DroppedRows),
		)
	}
	return nil
}

// DropDuplicatesStep drops rows repeating an earlier row.
type DropDuplicatesStep struct {
	stepBase
}

// NewDropDuplicatesStep creates a duplicate-row step.
func NewDropDuplicatesStep(opts ...StepOption) *DropDuplicatesStep {
	return &DropDuplicatesStep{stepBase: newStepBase(opts)}
}

// Name returns the step name.
func (s *DropDuplicatesStep) Name() string { return StepDropDuplicate }

// Do removes duplicate rows from run.Output.
func (s *DropDuplicatesStep) Do(_ context.Context, run *model.Run) error {
	out, groups, err := clean.DetectDuplicates(run.Output)
	if err != nil {
		return err
	}
	run.Output = out
	labels := groups.Labels()
	if len(labels) == 0 {
		return nil
	}
	run.DuplicateRows = append(run.DuplicateRows, labels...)
	run.AddFinding(model.FindingDuplicateRows, "Duplicate rows dropped", strconv.Itoa(len(labels)))
	s.logger.Debug("dropped duplicate rows", "source", run.Source, "rows", len(labels))
	return nil
}

// ConvertDTypesStep gives every column the most compact dtype.
type ConvertDTypesStep struct {
	stepBase
	options clean.ConvertOptions
}

// NewConvertDTypesStep creates a datatype conversion step.
func NewConvertDTypesStep(options clean.ConvertOptions, opts ...StepOption) *ConvertDTypesStep {
	return &ConvertDTypesStep{stepBase: newStepBase(opts), options: options}
}

// Name returns the step name.
func (s *ConvertDTypesStep) Name() string { return StepConvertDTypes }

// Do converts the columns of run.Output and reports those left as object.
func (s *ConvertDTypesStep) Do(_ context.Context, run *model.Run) error {
	out, err := clean.ConvertDatatypes(run.Output, s.options)
	if err != nil {
		return err
	}
	run.Output = out
	for _, c := range out.Columns() {
		if c.DType.Kind == frame.KindObject && !allMissing(c.Values) {
			run.AddFinding(model.FindingMixedTypes, "Column with mixed value types", c.Name)
		}
	}
	return nil
}

// PoolSubsetsStep folds a duplicated column subset into one column.
type PoolSubsetsStep struct {
	stepBase
	options clean.PoolOptions
}

// NewPoolSubsetsStep creates a pooling step.
func NewPoolSubsetsStep(options clean.PoolOptions, opts ...StepOption) *PoolSubsetsStep {
	return &PoolSubsetsStep{stepBase: newStepBase(opts), options: options}
}

// Name returns the step name.
func (s *PoolSubsetsStep) Name() string { return StepPoolSubsets }

// Do pools the best column subset of run.Output, if any qualifies.
// Earlier steps may leave fewer than MinColPool columns; then nothing is pooled.
func (s *PoolSubsetsStep) Do(_ context.Context, run *model.Run) error {
	if cols := run.Output.NumCols(); s.options.MinColPool > cols {
		s.logger.Debug("too few columns left to pool",
			"source", run.Source,
			"columns", cols,
			"min_col_pool", s.options.MinColPool,
		)
		return nil
	}

	res, err := clean.PoolDuplicateSubsetsDetails(run.Output, s.options)
	if err != nil {
		return err
	}
	run.Output = res.Table
	if !res.Pooled() {
		s.logger.Debug("no column subset pooled", "source", run.Source)
		return nil
	}

	name := s.options.PooledName
	if name == "" {
		name = clean.DefaultPooledName
	}
	run.Pool = &model.PoolInfo{
		Column:         name,
		Subset:         res.SubsetColumns,
		DuplicateRatio: res.SubsetRatio,
		Groups:         len(res.Groups),
	}
	run.AddFinding(model.FindingPooledSubset, "Columns pooled", name)
	s.logger.Debug("pooled column subset",
		"source", run.Source,
		"columns", res.SubsetColumns,
		"ratio", res.SubsetRatio,
	)
	return nil
}

// AssessStep inspects the cleaned table and records findings about what
// is still wrong with it. It never changes run.Output.
type AssessStep struct {
	stepBase
	warnRatio float64
}

// NewAssessStep creates an assessment step reporting remaining columns whose
// missing ratio exceeds warnRatio.
func NewAssessStep(warnRatio float64, opts ...StepOption) *AssessStep {
	return &AssessStep{stepBase: newStepBase(opts), warnRatio: warnRatio}
}

// Name returns the step name.
func (s *AssessStep) Name() string { return StepAssess }

// Do records findings about run.Output.
func (s *AssessStep) Do(_ context.Context, run *model.Run) error {
	rows, cols := run.Output.Shape()
	if rows == 0 || cols == 0 {
		run.AddFinding(model.FindingEmptyResult, "Nothing left after cleaning",
			fmt.Sprintf("%d rows, %d columns", rows, cols))
		return nil
	}

	report, err := clean.AnalyzeMissing(run.Output)
	if err != nil {
		return err
	}
	for j, r := range report.ColRatios {
		if r > s.warnRatio {
			run.AddFinding(model.FindingMissingRemaining, "Mostly missing column", run.Output.Column(j).Name)
		}
	}
	return nil
}

func allMissing(values []any) bool {
	return !slices.ContainsFunc(values, func(v any) bool { return !frame.IsNA(v) })
}
