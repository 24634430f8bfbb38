package config

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/nao1215/tabclean/internal/frame"
	"github.com/nao1215/tabclean/internal/pipeline"
)

// SourceConfig holds the settings of the configuration file for one source.
// Nil pointers and empty values leave the setting unchanged.
type SourceConfig struct {
	// Reader settings.
	Format     string   `yaml:"format,omitempty" validate:"omitempty,oneof=csv tsv xlsx html sqlite postgres"`
	Sheet      string   `yaml:"sheet,omitempty"`
	Query      string   `yaml:"query,omitempty"`
	TableIndex *int     `yaml:"tableIndex,omitempty" validate:"omitempty,gte=0"`
	NATokens   []string `yaml:"naTokens,omitempty"`

	// Cleaning settings.
	ColExclude        []string `yaml:"colExclude,omitempty"`
	DropThresholdCols *float64 `yaml:"dropThresholdCols,omitempty" validate:"omitempty,gte=0,lte=1"`
	DropThresholdRows *float64 `yaml:"dropThresholdRows,omitempty" validate:"omitempty,gte=0,lte=1"`
	DropDuplicates    *bool    `yaml:"dropDuplicates,omitempty"`
	ConvertDTypes     *bool    `yaml:"convertDTypes,omitempty"`
	Category          *bool    `yaml:"category,omitempty"`
	CatThreshold      *float64 `yaml:"catThreshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	CatExclude        []string `yaml:"catExclude,omitempty"`
	Pool              *bool    `yaml:"pool,omitempty"`
	MinColPool        *int     `yaml:"minColPool,omitempty" validate:"omitempty,gte=0"`
}

// File represents the structure of the .tabclean configuration file.
type File struct {
	// Defaults apply to every source.
	Defaults SourceConfig `yaml:"defaults,omitempty"`

	// Sources maps a path, or a glob pattern matched against the path, to
	// settings that override Defaults.
	Sources map[string]SourceConfig `yaml:"sources,omitempty" validate:"dive"`
}

// GetSourceConfig returns the settings for path: Defaults overridden by
// the section whose key equals path or, failing that, the first pattern
// in sorted order that matches it.
func (cf *File) GetSourceConfig(path string) SourceConfig {
	result := cf.Defaults

	sc, ok := cf.Sources[path]
	if !ok {
		for _, pattern := range slices.Sorted(maps.Keys(cf.Sources)) {
			if matched, err := filepath.Match(pattern, path); err == nil && matched {
				sc, ok = cf.Sources[pattern], true
				break
			}
		}
	}
	if ok {
		result.merge(sc)
	}
	return result
}

// merge overrides s with the settings o sets.
func (s *SourceConfig) merge(o SourceConfig) {
	if o.Format != "" {
		s.Format = o.Format
	}
	if o.Sheet != "" {
		s.Sheet = o.Sheet
	}
	if o.Query != "" {
		s.Query = o.Query
	}
	if o.TableIndex != nil {
		s.TableIndex = o.TableIndex
	}
	if len(o.NATokens) > 0 {
		s.NATokens = o.NATokens
	}
	if len(o.ColExclude) > 0 {
		s.ColExclude = o.ColExclude
	}
	if o.DropThresholdCols != nil {
		s.DropThresholdCols = o.DropThresholdCols
	}
	if o.DropThresholdRows != nil {
		s.DropThresholdRows = o.DropThresholdRows
	}
	if o.DropDuplicates != nil {
		s.DropDuplicates = o.DropDuplicates
	}
	if o.ConvertDTypes != nil {
		s.ConvertDTypes = o.ConvertDTypes
	}
	if o.Category != nil {
		s.Category = o.Category
	}
	if o.CatThreshold != nil {
		s.CatThreshold = o.CatThreshold
	}
	if len(o.CatExclude) > 0 {
		s.CatExclude = o.CatExclude
	}
	if o.Pool != nil {
		s.Pool = o.Pool
	}
	if o.MinColPool != nil {
		s.MinColPool = o.MinColPool
	}
}

// apply writes the cleaning settings of s into opts.
func (s SourceConfig) apply(opts *pipeline.Options) {
	if len(s.ColExclude) > 0 {
		opts.ColExclude = s.ColExclude
	}
	if s.DropThresholdCols != nil {
		opts.DropThresholdCols = *s.DropThresholdCols
	}
	if s.DropThresholdRows != nil {
		opts.DropThresholdRows = *s.DropThresholdRows
	}
	if s.DropDuplicates != nil {
		opts.DropDuplicates = *s.DropDuplicates
	}
	if s.ConvertDTypes != nil {
		opts.ConvertDTypes = *s.ConvertDTypes
	}
	if s.Category != nil {
		opts.Category = *s.Category
	}
	if s.CatThreshold != nil {
		opts.CatThreshold = *s.CatThreshold
	}
	if len(s.CatExclude) > 0 {
		opts.CatExclude = frame.ParseRefs(s.CatExclude)
	}
	if s.Pool != nil {
		opts.Pool = *s.Pool
	}
	if s.MinColPool != nil {
		opts.PoolOptions.MinColPool = *s.MinColPool
	}
}
