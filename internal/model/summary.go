package model

import (
	"maps"
	"slices"

	"github.com/nao1215/tabclean/internal/frame"
)

// Summary compares a table before and after cleaning.
type Summary struct {
	// === Shape ===

	RowsBefore int `json:"rows_before"`
	ColsBefore int `json:"cols_before"`
	RowsAfter  int `json:"rows_after"`
	ColsAfter  int `json:"cols_after"`

	// === Missing Values ===

	// MissingBefore and MissingAfter count missing cells.
	MissingBefore int `json:"missing_before"`
	MissingAfter  int `json:"missing_after"`

	// === Changes ===

	// DroppedRows is the number of removed rows, of which
	// DroppedDuplicateRows were duplicates.
	DroppedRows          int `json:"dropped_rows"`
	DroppedDuplicateRows int `json:"dropped_duplicate_rows"`

	// DroppedColumns is the number of removed columns, of which
	// DroppedSingleValued held a single value.
	DroppedColumns      int `json:"dropped_columns"`
	DroppedSingleValued int `json:"dropped_single_valued"`

	// DroppedMissing is the number of missing cells that are gone.
	DroppedMissing int `json:"dropped_missing"`

	// === Memory ===

	// MemoryBefore and MemoryAfter are shallow memory estimates in bytes.
	MemoryBefore int64 `json:"memory_before"`
	MemoryAfter  int64 `json:"memory_after"`

	// === Types ===

	// DTypesBefore and DTypesAfter count columns per dtype name.
	DTypesBefore map[string]int `json:"dtypes_before"`
	DTypesAfter  map[string]int `json:"dtypes_after"`
}

// NewSummary builds the summary of a run from its input and output tables.
func NewSummary(r *Run) *Summary {
	s := &Summary{
		DroppedDuplicateRows: len(r.DuplicateRows),
		DroppedSingleValued:  len(r.SingleValuedColumns),
	}
	if r.Input != nil {
		s.RowsBefore, s.ColsBefore = r.Input.Shape()
		s.MissingBefore = countMissing(r.Input)
		s.MemoryBefore = frame.MemoryUsage(r.Input, false)
		s.DTypesBefore = dtypeCounts(r.Input)
	}
	if r.Output != nil {
		s.RowsAfter, s.ColsAfter = r.Output.Shape()
		s.MissingAfter = countMissing(r.Output)
		s.MemoryAfter = frame.MemoryUsage(r.Output, false)
		s.DTypesAfter = dtypeCounts(r.Output)
	}
	s.DroppedRows = s.RowsBefore - s.RowsAfter
	s.DroppedColumns = s.ColsBefore - s.ColsAfter
	s.DroppedMissing = s.MissingBefore - s.MissingAfter
	return s
}

// MemoryReduction returns the saved bytes and the saving as a percentage
// of the memory before cleaning.
func (s *Summary) MemoryReduction() (int64, float64) {
	saved := s.MemoryBefore - s.MemoryAfter
	if s.MemoryBefore == 0 {
		return saved, 0
	}
	return saved, 100 * float64(saved) / float64(s.MemoryBefore)
}

// DTypeNames returns the dtype names seen before or after cleaning, sorted.
func (s *Summary) DTypeNames() []string {
	names := make(map[string]struct{})
	for k := range s.DTypesBefore {
		names[k] = struct{}{}
	}
	for k := range s.DTypesAfter {
		names[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(names))
}

// MB converts bytes to megabytes.
func MB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

func countMissing(t *frame.Table) int {
	n := 0
	for _, c := range t.Columns() {
		for _, v := range c.Values {
			if frame.IsNA(v) {
				n++
			}
		}
	}
	return n
}

func dtypeCounts(t *frame.Table) map[string]int {
	counts := make(map[string]int)
	for _, dt := range t.DTypes() {
		counts[dt.Name()]++
	}
	return counts
}
