package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/tabclean/internal/clean"
	"github.com/nao1215/tabclean/internal/frame"
	"github.com/nao1215/tabclean/internal/pipeline"
	"github.com/nao1215/tabclean/internal/tableio"
)

// Default configuration values.
const (
	// DefaultDropThreshold drops only rows and columns that are almost
	// entirely missing.
	DefaultDropThreshold = 0.9

	// DefaultCatThreshold converts a text column to category when its
	// distinct values are at most 3% of its rows.
	DefaultCatThreshold = 0.03

	// DefaultBatchSize is the number of sources cleaned concurrently.
	DefaultBatchSize = 4

	// DefaultTimeout of zero means cleaning is not time limited.
	DefaultTimeout time.Duration = 0

	// AppName is the application name used for XDG directory paths.
	AppName = "tabclean"
)

// Config holds all configuration options for tabclean.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and passed down explicitly.
type Config struct {
	// Inputs are the files or connection strings to clean.
	Inputs []string

	// Format overrides format detection for every input.
	Format string

	// Sheet selects the worksheet of Excel inputs.
	Sheet string

	// Query is the SQL query for database inputs.
	Query string

	// TableIndex selects the table of HTML inputs.
	TableIndex int

	// NATokens are the cell texts read as missing. Nil means the reader default.
	NATokens []string

	// CleanColumnNames normalizes the headers.
	CleanColumnNames bool

	// Abbreviate shortens common words in headers.
	Abbreviate bool

	// ColExclude names columns never dropped for missing values.
	ColExclude []string

	// DropThresholdCols and DropThresholdRows are the missing ratios above
	// which columns and rows are dropped.
	DropThresholdCols float64
	DropThresholdRows float64

	// DropDuplicates removes repeated rows.
	DropDuplicates bool

	// ConvertDTypes converts every column to its most compact dtype.
	ConvertDTypes bool

	// Category allows category dtypes; CatThreshold bounds the distinct ratio.
	Category     bool
	CatThreshold float64

	// CatExclude lists columns, by name or position, never made category.
	CatExclude []string

	// Pool enables duplicate-subset pooling.
	Pool bool

	// ColDuplThresh, SubsetThresh, MinColPool and PooledName configure pooling.
	ColDuplThresh float64
	SubsetThresh  float64
	MinColPool    int
	PooledName    string

	// PoolExclude lists columns, by name or position, never pooled.
	PoolExclude []string

	// MissingWarnRatio is the remaining missing ratio that is reported.
	MissingWarnRatio float64

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. Mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file for the report. Empty means stdout.
	ReportFile string

	// OutputFile receives the cleaned table of a single input.
	OutputFile string

	// OutDir receives the cleaned tables of a batch, one file per input.
	OutDir string

	// BatchSize is the number of sources cleaned concurrently.
	BatchSize int

	// Timeout limits the whole run. Zero means no limit.
	Timeout time.Duration

	// HistoryDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/tabclean on Linux).
	HistoryDir string

	// SaveHistory stores every run in the history database.
	SaveHistory bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .tabclean is searched in the current and home directories.
	ConfigFilePath string

	// SourceConfigs holds the settings loaded from the configuration file.
	SourceConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	pool := clean.DefaultPoolOptions()
	return &Config{
		CleanColumnNames:  true,
		DropThresholdCols: DefaultDropThreshold,
		DropThresholdRows: DefaultDropThreshold,
		DropDuplicates:    true,
		ConvertDTypes:     true,
		Category:          true,
		CatThreshold:      DefaultCatThreshold,
		ColDuplThresh:     pool.ColDuplThresh,
		SubsetThresh:      pool.SubsetThresh,
		MinColPool:        pool.MinColPool,
		PooledName:        pool.PooledName,
		MissingWarnRatio:  pipeline.MissingWarnRatio,
		BatchSize:         DefaultBatchSize,
		Timeout:           DefaultTimeout,
		HistoryDir:        XDGDataDir(),
		SaveHistory:       true,
	}
}

// XDGDataDir returns the XDG data directory for tabclean.
// On Linux: ~/.local/share/tabclean
// On macOS: ~/Library/Application Support/tabclean
// On Windows: %LOCALAPPDATA%\tabclean
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tabclean.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// Flag-level problems are reported as sentinel errors; out-of-range
// cleaning options as *clean.InvalidInputError.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.OutputFile != "" && c.OutDir != "" {
		return ErrConflictingOutputs
	}
	if c.OutputFile != "" && len(c.Inputs) > 1 {
		return ErrOutputWithBatch
	}
	return c.Options().Validate()
}

// Options returns the cleaning options of the configuration, without any
// per-source override.
func (c *Config) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.CleanColumnNames = c.CleanColumnNames
	opts.Abbreviate = c.Abbreviate
	opts.ColExclude = c.ColExclude
	opts.DropThresholdCols = c.DropThresholdCols
	opts.DropThresholdRows = c.DropThresholdRows
	opts.DropDuplicates = c.DropDuplicates
	opts.ConvertDTypes = c.ConvertDTypes
	opts.Category = c.Category
	opts.CatThreshold = c.CatThreshold
	opts.CatExclude = frame.ParseRefs(c.CatExclude)
	opts.Pool = c.Pool
	opts.PoolOptions = clean.PoolOptions{
		ColDuplThresh: c.ColDuplThresh,
		SubsetThresh:  c.SubsetThresh,
		MinColPool:    c.MinColPool,
		Exclude:       frame.ParseRefs(c.PoolExclude),
		PooledName:    c.PooledName,
	}
	opts.MissingWarnRatio = c.MissingWarnRatio
	return opts
}

// OptionsFor returns the cleaning options for one source: the
// configuration's options with the file's defaults and the source's own
// section applied.
func (c *Config) OptionsFor(src tableio.Source) pipeline.Options {
	opts := c.Options()
	if c.SourceConfigs != nil {
		c.SourceConfigs.GetSourceConfig(src.Path).apply(&opts)
	}
	return opts
}

// Source describes how to read path, with the reader settings of the
// configuration file applied.
func (c *Config) Source(path string) tableio.Source {
	src := tableio.Source{
		Path:       path,
		Format:     tableio.Format(c.Format),
		Query:      c.Query,
		Sheet:      c.Sheet,
		TableIndex: c.TableIndex,
		NATokens:   c.NATokens,
	}
	if c.SourceConfigs == nil {
		return src
	}

	sc := c.SourceConfigs.GetSourceConfig(path)
	if src.Format == "" && sc.Format != "" {
		src.Format = tableio.Format(sc.Format)
	}
	if src.Query == "" {
		src.Query = sc.Query
	}
	if src.Sheet == "" {
		src.Sheet = sc.Sheet
	}
	if src.TableIndex == 0 && sc.TableIndex != nil {
		src.TableIndex = *sc.TableIndex
	}
	if src.NATokens == nil && len(sc.NATokens) > 0 {
		src.NATokens = sc.NATokens
	}
	return src
}

// Sources returns a Source for every input.
func (c *Config) Sources() []tableio.Source {
	sources := make([]tableio.Source, len(c.Inputs))
	for i, in := range c.Inputs {
		sources[i] = c.Source(in)
	}
	return sources
}
