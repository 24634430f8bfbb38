package pipeline

import (
	"context"

	"github.com/nao1215/tabclean/internal/clean"
	"github.com/nao1215/tabclean/internal/colname"
	"github.com/nao1215/tabclean/internal/frame"
	"github.com/nao1215/tabclean/internal/model"
)

// Options selects and configures the cleaning steps.
type Options struct {
	// CleanColumnNames normalizes the headers first.
	CleanColumnNames bool `json:"clean_col_names"`

	// Abbreviate shortens common words while cleaning headers.
	Abbreviate bool `json:"abbreviate"`

	// ColExclude names columns the missing-value rule never drops.
	// Names refer to the headers after cleaning.
	ColExclude []string `json:"col_exclude"`

	// DropThresholdCols and DropThresholdRows are the missing ratios above
	// which a column or row is dropped.
	DropThresholdCols float64 `json:"drop_threshold_cols" validate:"gte=0,lte=1"`
	DropThresholdRows float64 `json:"drop_threshold_rows" validate:"gte=0,lte=1"`

	// DropDuplicates removes repeated rows.
	DropDuplicates bool `json:"drop_duplicates"`

	// ConvertDTypes gives every column the most compact dtype.
	ConvertDTypes bool `json:"convert_dtypes"`

	// Category allows category dtypes for columns with few distinct values
	// relative to CatThreshold.
	Category     bool    `json:"category"`
	CatThreshold float64 `json:"cat_threshold" validate:"gte=0,lte=1"`

	// CatExclude lists columns never converted to category.
	CatExclude []frame.ColumnRef `json:"-"`

	// Pool enables pooling of a duplicated column subset as the last step.
	Pool bool `json:"pool"`

	// PoolOptions configures pooling.
	PoolOptions clean.PoolOptions `json:"pool_options"`

	// MissingWarnRatio is the missing ratio above which a remaining column
	// is reported.
	MissingWarnRatio float64 `json:"missing_warn_ratio" validate:"gte=0,lte=1"`
}

// DefaultOptions returns the standard cleaning configuration.
func DefaultOptions() Options {
	return Options{
		CleanColumnNames:  true,
		DropThresholdCols: 0.9,
		DropThresholdRows: 0.9,
		DropDuplicates:    true,
		ConvertDTypes:     true,
		Category:          true,
		CatThreshold:      0.03,
		PoolOptions:       clean.DefaultPoolOptions(),
		MissingWarnRatio:  MissingWarnRatio,
	}
}

// Validate reports the first out-of-range option as *clean.InvalidInputError.
func (o Options) Validate() error {
	return clean.ValidateOptions(o)
}

// NewCleaningPipeline creates a pipeline with the steps selected by opts,
// in their fixed order. The steps log through the pipeline's logger.
func NewCleaningPipeline(opts Options, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)
	logger := WithStepLogger(p.logger)

	if opts.CleanColumnNames {
		cleaner := colname.New(
			colname.WithLogger(p.logger),
			colname.WithAbbreviations(opts.Abbreviate),
		)
		p.AddStep(NewColumnNamesStep(cleaner, logger))
	}
	p.AddStep(NewSingleValuedStep(logger))
	p.AddStep(NewDropMissingStep(clean.DropMissingOptions{
		ThresholdCols: opts.DropThresholdCols,
		ThresholdRows: opts.DropThresholdRows,
		ColExclude:    opts.ColExclude,
	}, logger))
	if opts.DropDuplicates {
		p.AddStep(NewDropDuplicatesStep(logger))
	}
	if opts.ConvertDTypes {
		p.AddStep(NewConvertDTypesStep(clean.ConvertOptions{
			Category:     opts.Category,
			CatThreshold: opts.CatThreshold,
			CatExclude:   opts.CatExclude,
		}, logger))
	}
	if opts.Pool {
		p.AddStep(NewPoolSubsetsStep(opts.PoolOptions, logger))
	}
	p.AddStep(NewAssessStep(opts.MissingWarnRatio, logger))
	return p
}

// Clean runs the cleaning steps over t and returns the cleaned table with
// the run describing what changed. Invalid options are rejected before any
// step runs; t itself is never modified.
func Clean(ctx context.Context, t *frame.Table, opts Options, pipelineOpts ...Option) (*frame.Table, *model.Run, error) {
	if t == nil {
		return nil, nil, &clean.InvalidInputError{Field: "data", Value: nil, Reason: "but should be a two-dimensional table"}
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	run := model.NewRun("", t)
	err := CleanRun(ctx, run, opts, pipelineOpts...)
	return run.Output, run, err
}

// CleanRun runs the cleaning steps on an existing run and finishes it.
func CleanRun(ctx context.Context, run *model.Run, opts Options, pipelineOpts ...Option) error {
	if run.Input == nil {
		err := &clean.InvalidInputError{Field: "data", Value: nil, Reason: "but should be a two-dimensional table"}
		run.Finish(err)
		return err
	}
	if err := opts.Validate(); err != nil {
		run.Finish(err)
		return err
	}
	if opts.Pool {
		cols := float64(run.Input.NumCols())
		if err := clean.ValidateRange(float64(opts.PoolOptions.MinColPool), "min_col_pool", 0, cols); err != nil {
			run.Finish(err)
			return err
		}
	}

	err := NewCleaningPipeline(opts, pipelineOpts...).Execute(ctx, run)
	run.Finish(err)
	return err
}
