package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tabclean/internal/frame"
	"github.com/nao1215/tabclean/internal/model"
	"github.com/nao1215/tabclean/internal/tableio"
)

// OpenFunc reads the table of a source.
type OpenFunc func(ctx context.Context, src tableio.Source) (*frame.Table, error)

// BatchProcessor reads and cleans many sources concurrently.
// Every source gets its own pipeline, so options may differ per source.
type BatchProcessor struct {
	// optionsFor returns the cleaning options of a source.
	optionsFor func(src tableio.Source) Options

	// open reads a source. Defaults to tableio.Open.
	open OpenFunc

	// concurrency is the maximum number of sources cleaned at once.
	concurrency int

	// logger is used for batch-level logging and handed to each pipeline.
	logger *slog.Logger

	// results stores completed runs in source order.
	results []*model.Run
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of sources cleaned at once.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithOpener replaces the function reading sources.
func WithOpener(open OpenFunc) BatchOption {
	return func(b *BatchProcessor) {
		if open != nil {
			b.open = open
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor. optionsFor is called once
// per source; a nil optionsFor uses DefaultOptions for every source.
func NewBatchProcessor(optionsFor func(src tableio.Source) Options, opts ...BatchOption) *BatchProcessor {
	if optionsFor == nil {
		optionsFor = func(tableio.Source) Options { return DefaultOptions() }
	}
	bp := &BatchProcessor{
		optionsFor:  optionsFor,
		open:        tableio.Open,
		concurrency: 4,
		results:     make([]*model.Run, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch cleans every source, at most concurrency at a time.
//
// A source that cannot be read or cleaned does not stop the others; its run
// carries the error. The returned runs are in source order. The error is
// only non-nil when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []tableio.Source) ([]*model.Run, error) {
	bp.logger.Info("starting batch processing",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]*model.Run, len(sources))

	err := bp.process(ctx, sources, func(run *model.Run, i int) {
		bp.mu.Lock()
		bp.results[i] = run
		bp.mu.Unlock()
	})

	bp.logger.Info("batch processing complete",
		"total_sources", len(sources),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback cleans every source and calls callback with each
// finished run and the index of its source. The callback is called from the
// goroutine that cleaned the source, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []tableio.Source,
	callback func(run *model.Run, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)
	return bp.process(ctx, sources, callback)
}

func (bp *BatchProcessor) process(ctx context.Context, sources []tableio.Source, done func(*model.Run, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, src := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			run := bp.cleanSource(ctx, src, i, len(sources))
			done(run, i)

			// Failures are recorded in the run; keep cleaning the other sources.
			return nil
		})
	}

	return g.Wait()
}

func (bp *BatchProcessor) cleanSource(ctx context.Context, src tableio.Source, i, total int) *model.Run {
	name := src.String()
	bp.logger.Info("cleaning source",
		"source", name,
		"index", i+1,
		"total", total,
	)

	t, err := bp.open(ctx, src)
	run := model.NewRun(name, t)
	if err != nil {
		bp.logger.Warn("failed to read source", "source", name, "error", err)
		run.Finish(err)
		return run
	}

	if err := CleanRun(ctx, run, bp.optionsFor(src), WithLogger(bp.logger)); err != nil {
		bp.logger.Warn("cleaning failed", "source", name, "error", err)
		return run
	}

	rows, cols := run.Output.Shape()
	bp.logger.Info("source cleaned",
		"source", name,
		"rows", rows,
		"cols", cols,
	)
	return run
}
