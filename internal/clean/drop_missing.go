package clean

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/nao1215/tabclean/internal/frame"
)

// DropMissingOptions configures DropMissing.
type DropMissingOptions struct {
	// ThresholdCols drops columns whose missing ratio is above this value.
	ThresholdCols float64 `json:"drop_threshold_cols" validate:"gte=0,lte=1"`

	// ThresholdRows drops rows whose missing ratio, computed over the columns
	// that survived the column pass, is above this value.
	ThresholdRows float64 `json:"drop_threshold_rows" validate:"gte=0,lte=1"`

	// ColExclude names columns that are never dropped by the missing rule.
	// They still count when row ratios are computed.
	ColExclude []string `json:"col_exclude"`
}

// DefaultDropMissingOptions returns options that only drop rows and columns
// that are entirely missing.
func DefaultDropMissingOptions() DropMissingOptions {
	return DropMissingOptions{
		ThresholdCols: 1,
		ThresholdRows: 1,
	}
}

// DropMissingResult describes what DropMissing removed.
type DropMissingResult struct {
	// Table is the cleaned table.
	Table *frame.Table

	// DroppedColumns lists the names of dropped columns in input order.
	DroppedColumns []string

	// DroppedRows lists the labels of dropped rows in input order.
	DroppedRows []int
}

// DropMissing removes columns and then rows with too many missing values.
//
// A column that is not excluded is dropped when its missing ratio is strictly
// greater than ThresholdCols or when it holds no value at all. Afterwards a
// row is dropped when its missing ratio over the remaining columns is strictly
// greater than ThresholdRows or when none of the remaining columns holds a
// value for it; with no column left that is every row.
func DropMissing(t *frame.Table, opts DropMissingOptions) (*frame.Table, error) {
	res, err := DropMissingDetails(t, opts)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// DropMissingDetails is DropMissing returning the dropped labels and names as well.
func DropMissingDetails(t *frame.Table, opts DropMissingOptions) (*DropMissingResult, error) {
	if err := requireTable(t); err != nil {
		return nil, err
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(opts.ColExclude))
	for _, name := range opts.ColExclude {
		exclude[name] = true
	}

	report, err := AnalyzeMissing(t)
	if err != nil {
		return nil, err
	}

	res := &DropMissingResult{}
	keepCols := make([]int, 0, t.NumCols())
	for j, c := range t.Columns() {
		allMissing := report.Cols[j] == t.NumRows()
		if !exclude[c.Name] && (report.ColRatios[j] > opts.ThresholdCols || allMissing) {
			res.DroppedColumns = append(res.DroppedColumns, c.Name)
			continue
		}
		keepCols = append(keepCols, j)
	}
	reduced := t.SelectColumns(keepCols)

	rowMissing := make([]int, t.NumRows())
	for _, j := range keepCols {
		it := report.ColumnMask(j).Iterator()
		for it.HasNext() {
			rowMissing[it.Next()]++
		}
	}
	keepRows := roaring.New()
	for i, n := range rowMissing {
		allMissing := n == len(keepCols)
		if ratio(n, len(keepCols)) > opts.ThresholdRows || allMissing {
			res.DroppedRows = append(res.DroppedRows, reduced.Label(i))
			continue
		}
		keepRows.Add(uint32(i))
	}

	res.Table = reduced.TakeRows(keepRows)
	return res, nil
}
