package frame

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrRaggedColumns is returned when columns of one table differ in length.
	ErrRaggedColumns = errors.New("columns have different lengths")

	// ErrIndexLength is returned when the row labels do not match the row count.
	ErrIndexLength = errors.New("index length does not match row count")

	// ErrNameCount is returned when a rename does not supply one name per column.
	ErrNameCount = errors.New("number of names does not match number of columns")
)

// Column is a named sequence of cells with a dtype.
type Column struct {
	Name   string
	DType  DType
	Values []any
}

// NewColumn creates a column from raw values.
// Values are normalized and the dtype is inferred from them.
func NewColumn(name string, values ...any) *Column {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = Normalize(v)
	}
	return &Column{Name: name, DType: Infer(normalized), Values: normalized}
}

// NewTypedColumn creates a column with an explicit dtype.
// Values must already be in canonical form.
func NewTypedColumn(name string, dtype DType, values []any) *Column {
	return &Column{Name: name, DType: dtype, Values: values}
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// clone returns a deep copy of the column header and a shallow copy of its cells.
func (c *Column) clone() *Column {
	dt := c.DType
	dt.Categories = slices.Clone(dt.Categories)
	return &Column{Name: c.Name, DType: dt, Values: slices.Clone(c.Values)}
}

// Table is an ordered collection of equally long columns with row labels.
type Table struct {
	columns []*Column
	index   []int
	rows    int
}

// New creates a table from columns. Row labels default to 0..n-1.
func New(columns ...*Column) (*Table, error) {
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	for _, c := range columns {
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d cells, expected %d", ErrRaggedColumns, c.Name, c.Len(), rows)
		}
	}
	index := make([]int, rows)
	for i := range index {
		index[i] = i
	}
	return &Table{columns: columns, index: index, rows: rows}, nil
}

// MustNew is like New but panics on error. It is intended for fixtures.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecords builds a table from row-major records and column names.
func FromRecords(names []string, records [][]any) (*Table, error) {
	cols := make([][]any, len(names))
	for r, rec := range records {
		if len(rec) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedColumns, r, len(rec), len(names))
		}
		for c, v := range rec {
			cols[c] = append(cols[c], v)
		}
	}
	columns := make([]*Column, len(names))
	for i, name := range names {
		if cols[i] == nil {
			cols[i] = []any{}
		}
		columns[i] = NewColumn(name, cols[i]...)
	}
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	t.rows = len(records)
	if len(columns) == 0 {
		t.index = make([]int, len(records))
		for i := range t.index {
			t.index[i] = i
		}
	}
	return t, nil
}

// WithIndex returns a copy of the table using the given row labels.
func (t *Table) WithIndex(index []int) (*Table, error) {
	if len(index) != t.rows {
		return nil, fmt.Errorf("%w: got %d labels for %d rows", ErrIndexLength, len(index), t.rows)
	}
	out := t.Clone()
	out.index = slices.Clone(index)
	return out, nil
}

// Shape returns the number of rows and columns.
// A nil table has shape (0, 0).
func (t *Table) Shape() (rows, cols int) {
	if t == nil {
		return 0, 0
	}
	return t.rows, len(t.columns)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Index returns a copy of the row labels.
func (t *Table) Index() []int { return slices.Clone(t.index) }

// Label returns the label of the row at position r.
func (t *Table) Label(r int) int { return t.index[r] }

// Columns returns the columns. Callers must not modify them.
func (t *Table) Columns() []*Column { return t.columns }

// Column returns the column at position i.
func (t *Table) Column(i int) *Column { return t.columns[i] }

// ColumnByName returns the first column with the given name and its position.
func (t *Table) ColumnByName(name string) (*Column, int, bool) {
	for i, c := range t.columns {
		if c.Name == name {
			return c, i, true
		}
	}
	return nil, -1, false
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// DTypes returns the column dtypes in order.
func (t *Table) DTypes() []DType {
	out := make([]DType, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.DType
	}
	return out
}

// Cell returns the cell at row position r and column position c.
func (t *Table) Cell(r, c int) any { return t.columns[c].Values[r] }

// Row returns the cells of the row at position r.
func (t *Table) Row(r int) []any {
	row := make([]any, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Values[r]
	}
	return row
}

// RowSubset returns the cells of row r restricted to the given column positions.
func (t *Table) RowSubset(r int, cols []int) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = t.columns[c].Values[r]
	}
	return row
}

// Clone returns a copy of the table that shares no slices with the receiver.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.clone()
	}
	return &Table{columns: cols, index: slices.Clone(t.index), rows: t.rows}
}

// SelectColumns returns a table holding the columns at the given positions.
func (t *Table) SelectColumns(positions []int) *Table {
	cols := make([]*Column, len(positions))
	for i, p := range positions {
		cols[i] = t.columns[p].clone()
	}
	return &Table{columns: cols, index: slices.Clone(t.index), rows: t.rows}
}

// DropColumns returns a table without the named columns. Unknown names are ignored.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]int, 0, len(t.columns))
	for i, c := range t.columns {
		if !drop[c.Name] {
			keep = append(keep, i)
		}
	}
	return t.SelectColumns(keep)
}

// TakeRows returns a table holding the rows whose positions are set in keep,
// in their original order.
func (t *Table) TakeRows(keep *roaring.Bitmap) *Table {
	positions := keep.ToArray()
	index := make([]int, 0, len(positions))
	for _, p := range positions {
		if int(p) < t.rows {
			index = append(index, t.index[p])
		}
	}
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]any, 0, len(index))
		for _, p := range positions {
			if int(p) < t.rows {
				values = append(values, c.Values[p])
			}
		}
		dt := c.DType
		dt.Categories = slices.Clone(dt.Categories)
		cols[i] = &Column{Name: c.Name, DType: dt, Values: values}
	}
	return &Table{columns: cols, index: index, rows: len(index)}
}

// AllRows returns a bitmap with every row position of the table set.
func (t *Table) AllRows() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(0, uint64(t.rows))
	return bm
}

// WithNames returns a copy of the table with its columns renamed.
func (t *Table) WithNames(names []string) (*Table, error) {
	if len(names) != len(t.columns) {
		return nil, fmt.Errorf("%w: got %d names for %d columns", ErrNameCount, len(names), len(t.columns))
	}
	out := t.Clone()
	for i, n := range names {
		out.columns[i].Name = n
	}
	return out, nil
}

// WithColumn returns a copy of the table where the column at position i is
// replaced. The replacement must have one cell per row.
func (t *Table) WithColumn(i int, c *Column) (*Table, error) {
	if c.Len() != t.rows {
		return nil, fmt.Errorf("%w: column %q has %d cells, expected %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
	}
	out := t.Clone()
	out.columns[i] = c
	return out, nil
}

// AppendColumn returns a copy of the table with c added as the last column.
func (t *Table) AppendColumn(c *Column) (*Table, error) {
	if c.Len() != t.rows {
		return nil, fmt.Errorf("%w: column %q has %d cells, expected %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
	}
	out := t.Clone()
	out.columns = append(out.columns, c)
	return out, nil
}
