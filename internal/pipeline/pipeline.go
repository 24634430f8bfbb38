package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/tabclean/internal/model"
)

// Step is one stage of a cleaning run.
// Steps are executed in sequence. Each step reads run.Output, replaces it
// with its result and records what it changed on the run.
type Step interface {
	// Do executes the step.
	// Returns an error if the table cannot be processed; remarks about the
	// data belong in run.Findings and are not errors.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and their errors
// are recorded in the run, but subsequent steps still execute on the
// last table that was produced.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	// Apply options
	for _, opt := range opts {
		opt(p)
	}

	// Set default logger if not provided
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step; a cancelled run is marked
// TimedOut and keeps the table produced so far.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded in the run).
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", run.Source,
				"reason", ctx.Err(),
			)
			run.TimedOut = true
			return ctx.Err()
		default:
		}

		rows, cols := run.Output.Shape()
		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", run.Source,
			"rows", rows,
			"cols", cols,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", run.Source,
				"error", err,
			)

			run.Error = err
			run.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
			continue
		}

		rows, cols = run.Output.Shape()
		p.logger.Debug("step completed",
			"step", step.Name(),
			"source", run.Source,
			"rows", rows,
			"cols", cols,
		)
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
