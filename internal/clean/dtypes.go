package clean

import (
	"math"

	"github.com/spf13/cast"

	"github.com/nao1215/tabclean/internal/frame"
)

// ConvertOptions configures ConvertDatatypes.
type ConvertOptions struct {
	// Category enables conversion of low-cardinality text columns to category.
	Category bool `json:"category"`

	// CatThreshold is the largest ratio of distinct values to rows for which
	// a column is converted to category. Missing counts as one value.
	CatThreshold float64 `json:"cat_threshold" validate:"gte=0,lte=1"`

	// CatExclude lists columns, by name or position, that never become category.
	CatExclude []frame.ColumnRef `json:"-"`
}

// DefaultConvertOptions returns the converter defaults.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Category:     true,
		CatThreshold: 0.05,
	}
}

// ConvertDatatypes converts every column to the most compact dtype able to
// hold its values without loss. Columns are handled independently and the
// result is idempotent.
//
// Integer columns shrink to the narrowest signed width. Numeric columns with
// a fractional value become float32 when every value survives the round trip,
// float64 otherwise. Columns of booleans without gaps become bool. Text and
// mixed columns become category when their distinct ratio is at most
// CatThreshold, string when every present value is text and object otherwise.
func ConvertDatatypes(t *frame.Table, opts ConvertOptions) (*frame.Table, error) {
	if err := requireTable(t); err != nil {
		return nil, err
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}

	excluded := frame.ResolveAll(t, opts.CatExclude)
	out := t.Clone()
	for j, c := range t.Columns() {
		converted := convertColumn(c, t.NumRows(), opts.Category && !excluded[j], opts.CatThreshold)
		var err error
		if out, err = out.WithColumn(j, converted); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// valueClass tallies the Go types found among the present cells of a column.
type valueClass struct {
	present, ints, floats, bools, strs int
	missing                            int
}

func classify(values []any) valueClass {
	var vc valueClass
	for _, v := range values {
		switch v.(type) {
		case int64:
			vc.ints++
		case float64:
			vc.floats++
		case bool:
			vc.bools++
		case string:
			vc.strs++
		default:
			if frame.IsNA(v) {
				vc.missing++
				continue
			}
		}
		vc.present++
	}
	return vc
}

func convertColumn(c *frame.Column, rows int, category bool, threshold float64) *frame.Column {
	vc := classify(c.Values)

	switch {
	case vc.present > 0 && vc.ints == vc.present:
		return frame.NewTypedColumn(c.Name, frame.Int(intBits(c.Values)), cloneValues(c.Values))
	case vc.present > 0 && vc.ints+vc.floats == vc.present:
		values := make([]any, len(c.Values))
		for i, v := range c.Values {
			switch n := v.(type) {
			case int64:
				values[i] = float64(n)
			default:
				values[i] = v
			}
		}
		return frame.NewTypedColumn(c.Name, frame.Float(floatBits(values)), values)
	case vc.missing == 0 && vc.present > 0 && vc.bools == vc.present:
		return frame.NewTypedColumn(c.Name, frame.Bool(), cloneValues(c.Values))
	}

	if vc.missing == 0 && vc.present > 0 && vc.strs == vc.present {
		if values, ok := parseBools(c.Values); ok {
			return frame.NewTypedColumn(c.Name, frame.Bool(), values)
		}
	}

	if category && rows > 0 && ratio(distinctCount(c), rows) <= threshold {
		return frame.NewTypedColumn(c.Name, frame.Category(categoriesOf(c.Values)), cloneValues(c.Values))
	}
	if vc.present > 0 && vc.strs == vc.present {
		return frame.NewTypedColumn(c.Name, frame.String(), cloneValues(c.Values))
	}
	return frame.NewTypedColumn(c.Name, frame.Object(), cloneValues(c.Values))
}

// intBits returns the narrowest signed width holding every integer in values.
func intBits(values []any) int {
	var lo, hi int64
	for _, v := range values {
		if n, ok := v.(int64); ok {
			lo = min(lo, n)
			hi = max(hi, n)
		}
	}
	switch {
	case lo >= math.MinInt8 && hi <= math.MaxInt8:
		return 8
	case lo >= math.MinInt16 && hi <= math.MaxInt16:
		return 16
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		return 32
	default:
		return 64
	}
}

// floatBits returns 32 when every float in values is exactly representable
// as a float32.
func floatBits(values []any) int {
	for _, v := range values {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		if float64(float32(f)) != f {
			return 64
		}
	}
	return 32
}

// parseBools converts a column of boolean words. It gives up on the first
// value cast cannot read or when more than two distinct words appear.
func parseBools(values []any) ([]any, bool) {
	out := make([]any, len(values))
	words := make(map[string]struct{}, 2)
	for i, v := range values {
		s, _ := v.(string)
		if s == "" {
			return nil, false
		}
		b, err := cast.ToBoolE(s)
		if err != nil {
			return nil, false
		}
		words[s] = struct{}{}
		if len(words) > 2 {
			return nil, false
		}
		out[i] = b
	}
	return out, true
}

// categoriesOf lists distinct present values in first-seen order.
func categoriesOf(values []any) []string {
	seen := make(map[string]struct{})
	cats := []string{}
	for _, v := range values {
		if frame.IsNA(v) {
			continue
		}
		s := frame.Format(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		cats = append(cats, s)
	}
	return cats
}

func cloneValues(values []any) []any {
	out := make([]any, len(values))
	copy(out, values)
	return out
}
