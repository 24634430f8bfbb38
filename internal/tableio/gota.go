package tableio

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nao1215/tabclean/internal/frame"
)

// FromGota converts a gota dataframe. Gota NaN elements become missing cells.
func FromGota(df dataframe.DataFrame) (*frame.Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("invalid dataframe: %w", df.Err)
	}

	names := df.Names()
	columns := make([]*frame.Column, len(names))
	for j, name := range names {
		s := df.Col(name)
		values := make([]any, s.Len())
		for i := range values {
			values[i] = gotaValue(s.Elem(i), s.Type())
		}
		columns[j] = frame.NewColumn(name, values...)
	}
	return frame.New(columns...)
}

func gotaValue(e series.Element, t series.Type) any {
	if e.IsNA() {
		return frame.NA
	}
	switch t {
	case series.Int:
		if n, err := e.Int(); err == nil {
			return n
		}
	case series.Float:
		return e.Float()
	case series.Bool:
		if b, err := e.Bool(); err == nil {
			return b
		}
	}
	return e.String()
}

// ToGota converts a table to a gota dataframe. Integer, float and bool
// columns keep their type; every other column becomes a string series.
func ToGota(t *frame.Table) (dataframe.DataFrame, error) {
	cols := make([]series.Series, t.NumCols())
	for j, c := range t.Columns() {
		typ := gotaType(c)
		values := make([]any, c.Len())
		for i, v := range c.Values {
			values[i] = toGotaElem(v, typ)
		}
		cols[j] = series.New(values, typ, c.Name)
		if cols[j].Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to convert column %q: %w", c.Name, cols[j].Err)
		}
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to build dataframe: %w", df.Err)
	}
	return df, nil
}

func gotaType(c *frame.Column) series.Type {
	switch c.DType.Kind {
	case frame.KindInt:
		return series.Int
	case frame.KindFloat:
		return series.Float
	case frame.KindBool:
		return series.Bool
	}
	return series.String
}

// toGotaElem maps a cell to a value gota elements accept; nil is read as NaN.
func toGotaElem(v any, typ series.Type) any {
	if frame.IsNA(v) {
		return nil
	}
	switch x := v.(type) {
	case int64:
		if typ == series.Int {
			return int(x)
		}
		return float64(x)
	case float64, bool:
		return x
	}
	return frame.Format(v)
}
