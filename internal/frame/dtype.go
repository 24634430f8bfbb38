package frame

import (
	"slices"
	"strconv"
)

// Kind enumerates the logical column types.
type Kind int

const (
	// KindObject holds arbitrary or mixed values.
	KindObject Kind = iota
	// KindBool holds booleans.
	KindBool
	// KindInt holds signed integers of a fixed width.
	KindInt
	// KindFloat holds floating point numbers of a fixed width.
	KindFloat
	// KindString holds text.
	KindString
	// KindCategory holds repeated text encoded against a set of categories.
	KindCategory
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindCategory:
		return "category"
	default:
		return "object"
	}
}

// DType describes how a column stores its cells.
// Bits is only meaningful for KindInt (8, 16, 32, 64) and KindFloat (32, 64).
// Categories is only meaningful for KindCategory and lists the distinct
// non-missing values in first-seen order.
type DType struct {
	Kind       Kind     `json:"kind"`
	Bits       int      `json:"bits,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Object returns the generic object type.
func Object() DType { return DType{Kind: KindObject} }

// Bool returns the boolean type.
func Bool() DType { return DType{Kind: KindBool} }

// Int returns a signed integer type of the given width.
func Int(bits int) DType { return DType{Kind: KindInt, Bits: bits} }

// Float returns a floating point type of the given width.
func Float(bits int) DType { return DType{Kind: KindFloat, Bits: bits} }

// String returns the text type.
func String() DType { return DType{Kind: KindString} }

// Category returns a categorical type over the given categories.
func Category(categories []string) DType {
	return DType{Kind: KindCategory, Categories: slices.Clone(categories)}
}

// Name renders the dtype the way reports print it, e.g. "int8" or "category".
func (d DType) Name() string {
	switch d.Kind {
	case KindInt:
		return "int" + strconv.Itoa(d.bits(64))
	case KindFloat:
		return "float" + strconv.Itoa(d.bits(64))
	default:
		return d.Kind.String()
	}
}

// String implements fmt.Stringer.
func (d DType) String() string { return d.Name() }

// Equal reports whether two dtypes are identical, categories included.
func (d DType) Equal(o DType) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case KindInt, KindFloat:
		return d.bits(64) == o.bits(64)
	case KindCategory:
		return slices.Equal(d.Categories, o.Categories)
	}
	return true
}

// IsNumeric reports whether the dtype is an integer or float type.
func (d DType) IsNumeric() bool {
	return d.Kind == KindInt || d.Kind == KindFloat
}

// CellSize returns the storage size of a single cell in bytes, not counting
// the heap data referenced by strings and objects.
func (d DType) CellSize() int {
	switch d.Kind {
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return d.bits(64) / 8
	case KindCategory:
		return categoryCodeSize(len(d.Categories))
	default:
		return 8
	}
}

func (d DType) bits(def int) int {
	if d.Bits == 0 {
		return def
	}
	return d.Bits
}

// categoryCodeSize is the width of the smallest code able to index n categories.
func categoryCodeSize(n int) int {
	switch {
	case n < 1<<7:
		return 1
	case n < 1<<15:
		return 2
	default:
		return 4
	}
}

// Infer returns the dtype a freshly ingested column would have.
// Integers give int64, numbers with at least one float give float64, all
// booleans give bool; strings and anything mixed or empty stay object, the
// same way a dataframe reader leaves text columns untyped until they are
// converted explicitly.
func Infer(values []any) DType {
	var ints, floats, bools, others, present int
	for _, v := range values {
		switch v.(type) {
		case na:
			continue
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		default:
			others++
		}
		present++
	}
	switch {
	case present == 0 || others > 0:
		return Object()
	case bools == present:
		return Bool()
	case ints == present:
		return Int(64)
	case ints+floats == present:
		return Float(64)
	}
	return Object()
}
