package tableio

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/tabclean/internal/frame"
)

// XLSXOptions configures workbook input and output.
type XLSXOptions struct {
	// Sheet selects the worksheet. Empty means the first sheet.
	Sheet string

	// NATokens are the cell texts read as missing. Nil means DefaultNATokens.
	NATokens []string
}

// ReadXLSX reads one worksheet of a workbook. The first row is the header.
func ReadXLSX(r io.Reader, opts XLSXOptions) (*frame.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet := opts.Sheet
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return frame.MustNew(), nil
	}

	header := rows[0]
	width := len(header)
	for _, row := range rows[1:] {
		width = max(width, len(row))
	}
	for len(header) < width {
		header = append(header, fmt.Sprint(len(header)))
	}

	naTokens := opts.NATokens
	if naTokens == nil {
		naTokens = DefaultNATokens
	}
	return textColumns(header, rows[1:], naTokens)
}

// WriteXLSX writes t to a new workbook with a single sheet.
func WriteXLSX(w io.Writer, t *frame.Table, opts XLSXOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]any, t.NumCols())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r := range t.NumRows() {
		row := make([]any, t.NumCols())
		for c := range row {
			row[c] = xlsxCell(t.Cell(r, c))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// xlsxCell maps a cell to a value excelize stores natively. Missing cells
// are left empty.
func xlsxCell(v any) any {
	switch x := v.(type) {
	case int64, float64, bool, string:
		return x
	}
	if frame.IsNA(v) {
		return nil
	}
	return frame.Format(v)
}
