package clean

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/nao1215/tabclean/internal/frame"
)

// MissingReport summarizes the missing cells of a table.
// It is a read-only view computed once per call.
type MissingReport struct {
	// Total is the number of missing cells in the table.
	Total int `json:"total"`

	// Rows holds the missing count of each row, by row position.
	Rows []int `json:"rows"`

	// RowRatios holds Rows[i] divided by the number of columns.
	RowRatios []float64 `json:"row_ratios"`

	// Cols holds the missing count of each column, by column position.
	Cols []int `json:"cols"`

	// ColRatios holds Cols[j] divided by the number of rows.
	ColRatios []float64 `json:"col_ratios"`

	// masks holds the positions of missing rows per column.
	masks []*roaring.Bitmap
}

// AnalyzeMissing computes the missing-value report of t.
// Ratios are zero when the divisor is zero, so they always lie in [0,1].
func AnalyzeMissing(t *frame.Table) (*MissingReport, error) {
	if err := requireTable(t); err != nil {
		return nil, err
	}

	rows, cols := t.Shape()
	report := &MissingReport{
		Rows:      make([]int, rows),
		RowRatios: make([]float64, rows),
		Cols:      make([]int, cols),
		ColRatios: make([]float64, cols),
		masks:     make([]*roaring.Bitmap, cols),
	}

	for j, c := range t.Columns() {
		mask := roaring.New()
		for i, v := range c.Values {
			if frame.IsNA(v) {
				mask.Add(uint32(i))
				report.Rows[i]++
			}
		}
		report.masks[j] = mask
		report.Cols[j] = int(mask.GetCardinality())
		report.Total += report.Cols[j]
		report.ColRatios[j] = ratio(report.Cols[j], rows)
	}
	for i, n := range report.Rows {
		report.RowRatios[i] = ratio(n, cols)
	}

	return report, nil
}

// ColumnMask returns the row positions where column j is missing.
// The returned bitmap is a copy.
func (r *MissingReport) ColumnMask(j int) *roaring.Bitmap {
	return r.masks[j].Clone()
}

// CompleteRows returns the positions of rows without any missing cell.
func (r *MissingReport) CompleteRows() *roaring.Bitmap {
	out := roaring.New()
	for i, n := range r.Rows {
		if n == 0 {
			out.Add(uint32(i))
		}
	}
	return out
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
