package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoInput is returned when no input file or connection string is given.
	ErrNoInput = errors.New("no input specified: provide at least one file or connection string")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidTimeout is returned when the timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingOutputs is returned when both --output and --out-dir are set.
	ErrConflictingOutputs = errors.New("conflicting outputs: --output and --out-dir cannot be used together")

	// ErrOutputWithBatch is returned when --output is used with several inputs.
	ErrOutputWithBatch = errors.New("--output takes a single input: use --out-dir for several inputs")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigFile is returned when the configuration file holds
	// values out of range.
	ErrInvalidConfigFile = errors.New("invalid configuration file")
)
