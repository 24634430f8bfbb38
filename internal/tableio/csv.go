package tableio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nao1215/tabclean/internal/frame"
)

// CSVOptions configures delimited text input and output.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// NATokens are the cell texts read as missing. Nil means DefaultNATokens.
	NATokens []string

	// NoHeader treats the first record as data and names columns by position.
	NoHeader bool

	// NAText is written for missing cells.
	NAText string
}

func (o CSVOptions) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

func (o CSVOptions) naTokens() []string {
	if o.NATokens == nil {
		return DefaultNATokens
	}
	return o.NATokens
}

// ReadCSV reads a delimited table. Rows shorter than the header are padded
// with missing cells.
func ReadCSV(r io.Reader, opts CSVOptions) (*frame.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.comma()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return frame.MustNew(), nil
	}

	var header []string
	if opts.NoHeader {
		width := 0
		for _, rec := range records {
			width = max(width, len(rec))
		}
		header = positionalNames(width)
	} else {
		header, records = records[0], records[1:]
	}
	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: record %d has %d fields, header has %d",
				frame.ErrRaggedColumns, i+1, len(rec), len(header))
		}
	}
	return textColumns(header, records, opts.naTokens())
}

// WriteCSV writes t with a header line.
func WriteCSV(w io.Writer, t *frame.Table, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.comma()

	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, t.NumCols())
	for r := range t.NumRows() {
		for c := range record {
			v := t.Cell(r, c)
			if frame.IsNA(v) {
				record[c] = opts.NAText
				continue
			}
			record[c] = frame.Format(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", r, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func positionalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprint(i)
	}
	return names
}
