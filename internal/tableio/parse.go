package tableio

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nao1215/tabclean/internal/frame"
)

// DefaultNATokens are the cell texts read as missing values.
var DefaultNATokens = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"null", "NULL", "None", "<NA>", "#N/A", "#NA",
}

// gotaNA is the only cell text gota reads as missing.
const gotaNA = "NaN"

// textColumns turns a header and row-major text cells into a table. Cells
// matching naTokens become missing, then gota infers one type per column:
// integer, float or boolean only when every present cell parses as such,
// text otherwise. Rows shorter than the header are padded with missing
// cells, and the text "NaN" is always missing.
func textColumns(header []string, rows [][]string, naTokens []string) (*frame.Table, error) {
	if len(header) == 0 {
		if len(rows) > 0 {
			return frame.FromRecords(nil, make([][]any, len(rows)))
		}
		return frame.New()
	}
	if len(rows) == 0 {
		columns := make([]*frame.Column, len(header))
		for j, name := range header {
			columns[j] = frame.NewColumn(name)
		}
		return frame.New(columns...)
	}

	na := make(map[string]bool, len(naTokens))
	for _, tok := range naTokens {
		na[tok] = true
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, row := range rows {
		rec := make([]string, len(header))
		for j := range rec {
			c := gotaNA
			if j < len(row) {
				c = row[j]
			}
			if na[c] || na[strings.TrimSpace(c)] {
				c = gotaNA
			}
			rec[j] = c
		}
		records = append(records, rec)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{gotaNA}),
	)
	t, err := FromGota(df)
	if err != nil {
		return nil, err
	}

	// gota renames empty and repeated headers; keep them as read.
	t, err = t.WithNames(header)
	if err != nil {
		return nil, err
	}
	return fixBooleans(t, records[1:])
}

// fixBooleans settles boolean columns. gota only reads lower-case true and
// false, and it types a column boolean even when numbers are mixed in,
// turning those numbers into missing cells.
func fixBooleans(t *frame.Table, records [][]string) (*frame.Table, error) {
	for j := range t.NumCols() {
		var present, bools int
		for _, rec := range records {
			if rec[j] == gotaNA {
				continue
			}
			present++
			if isBoolText(rec[j]) {
				bools++
			}
		}

		isBool := t.Column(j).DType.Kind == frame.KindBool
		allBools := present > 0 && bools == present
		if isBool == allBools {
			continue
		}

		values := make([]any, len(records))
		for i, rec := range records {
			switch {
			case rec[j] == gotaNA:
				values[i] = frame.NA
			case allBools:
				values[i] = strings.EqualFold(rec[j], "true")
			default:
				values[i] = rec[j]
			}
		}
		var err error
		t, err = t.WithColumn(j, frame.NewColumn(t.Column(j).Name, values...))
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func isBoolText(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}
