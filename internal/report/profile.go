package report

import (
	"github.com/nao1215/tabclean/internal/clean"
	"github.com/nao1215/tabclean/internal/frame"
)

// Profile describes a table as it is, without cleaning it.
type Profile struct {
	Source        string          `json:"source"`
	Rows          int             `json:"rows"`
	Cols          int             `json:"cols"`
	Missing       int             `json:"missing"`
	CompleteRows  int             `json:"complete_rows"`
	DuplicateRows int             `json:"duplicate_rows"`
	Memory        int64           `json:"memory"`
	Columns       []ColumnProfile `json:"columns"`
}

// ColumnProfile describes one column of a profiled table.
type ColumnProfile struct {
	Name         string  `json:"name"`
	DType        string  `json:"dtype"`
	Missing      int     `json:"missing"`
	MissingRatio float64 `json:"missing_ratio"`
	Distinct     int     `json:"distinct"`
}

// NewProfile profiles t. Distinct counts include missing as a value.
func NewProfile(source string, t *frame.Table) (*Profile, error) {
	missing, err := clean.AnalyzeMissing(t)
	if err != nil {
		return nil, err
	}

	rows, cols := t.Shape()
	p := &Profile{
		Source:       source,
		Rows:         rows,
		Cols:         cols,
		Missing:      missing.Total,
		CompleteRows: int(missing.CompleteRows().GetCardinality()),
		Memory:       frame.MemoryUsage(t, true),
		Columns:      make([]ColumnProfile, cols),
	}

	all := make([]int, cols)
	for j := range all {
		all[j] = j
	}
	for _, dup := range clean.DuplicatedRows(t, all) {
		if dup {
			p.DuplicateRows++
		}
	}

	for j, c := range t.Columns() {
		seen := make(map[string]struct{}, len(c.Values))
		for _, v := range c.Values {
			seen[frame.Key(v)] = struct{}{}
		}
		p.Columns[j] = ColumnProfile{
			Name:         c.Name,
			DType:        c.DType.Name(),
			Missing:      missing.Cols[j],
			MissingRatio: missing.ColRatios[j],
			Distinct:     len(seen),
		}
	}
	return p, nil
}
