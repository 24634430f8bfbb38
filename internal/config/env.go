package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by ApplyEnv.
const EnvPrefix = "TABCLEAN"

// envSettings lists the settings that can be overridden from the
// environment, e.g. TABCLEAN_DROP_THRESHOLD_COLS=0.5.
type envSettings struct {
	DropThresholdCols float64       `envconfig:"DROP_THRESHOLD_COLS"`
	DropThresholdRows float64       `envconfig:"DROP_THRESHOLD_ROWS"`
	CatThreshold      float64       `envconfig:"CAT_THRESHOLD"`
	ColExclude        []string      `envconfig:"COL_EXCLUDE"`
	CatExclude        []string      `envconfig:"CAT_EXCLUDE"`
	NATokens          []string      `envconfig:"NA_TOKENS"`
	DropDuplicates    bool          `envconfig:"DROP_DUPLICATES"`
	ConvertDTypes     bool          `envconfig:"CONVERT_DTYPES"`
	Category          bool          `envconfig:"CATEGORY"`
	Pool              bool          `envconfig:"POOL"`
	MinColPool        int           `envconfig:"MIN_COL_POOL"`
	MissingWarnRatio  float64       `envconfig:"MISSING_WARN_RATIO"`
	BatchSize         int           `envconfig:"BATCH_SIZE"`
	Timeout           time.Duration `envconfig:"TIMEOUT"`
	HistoryDir        string        `envconfig:"HISTORY_DIR"`
	SaveHistory       bool          `envconfig:"SAVE_HISTORY"`
	Verbose           bool          `envconfig:"VERBOSE"`
}

// ApplyEnv overrides c with the TABCLEAN_* variables that are set.
// Unset variables keep the current value.
func (c *Config) ApplyEnv() error {
	env := envSettings{
		DropThresholdCols: c.DropThresholdCols,
		DropThresholdRows: c.DropThresholdRows,
		CatThreshold:      c.CatThreshold,
		ColExclude:        c.ColExclude,
		CatExclude:        c.CatExclude,
		NATokens:          c.NATokens,
		DropDuplicates:    c.DropDuplicates,
		ConvertDTypes:     c.ConvertDTypes,
		Category:          c.Category,
		Pool:              c.Pool,
		MinColPool:        c.MinColPool,
		MissingWarnRatio:  c.MissingWarnRatio,
		BatchSize:         c.BatchSize,
		Timeout:           c.Timeout,
		HistoryDir:        c.HistoryDir,
		SaveHistory:       c.SaveHistory,
		Verbose:           c.Verbose,
	}
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	c.DropThresholdCols = env.DropThresholdCols
	c.DropThresholdRows = env.DropThresholdRows
	c.CatThreshold = env.CatThreshold
	c.ColExclude = env.ColExclude
	c.CatExclude = env.CatExclude
	c.NATokens = env.NATokens
	c.DropDuplicates = env.DropDuplicates
	c.ConvertDTypes = env.ConvertDTypes
	c.Category = env.Category
	c.Pool = env.Pool
	c.MinColPool = env.MinColPool
	c.MissingWarnRatio = env.MissingWarnRatio
	c.BatchSize = env.BatchSize
	c.Timeout = env.Timeout
	c.HistoryDir = env.HistoryDir
	c.SaveHistory = env.SaveHistory
	c.Verbose = env.Verbose
	return nil
}
