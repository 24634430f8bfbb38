// Package frame defines the in-memory table model used by tabclean.
//
// A Table is an ordered set of named columns. Every column holds one cell per
// row and a DType describing how the cells are stored. Rows carry integer
// labels (the index) that survive every subsetting operation, so a cleaned
// table can always be related back to the rows it came from.
//
// # Missing values
//
// The package has exactly one missing marker, NA. NewColumn normalizes the
// other representations a reader may hand over (nil, NaN floats, the zero
// time.Time) to NA, and every comparison downstream uses IsNA.
//
// # Cell values
//
// Cells are stored in a canonical form:
//
//	bool, int64, float64, string, time.Time, []any (list cells)
//
// Any other value is kept as an opaque object. Narrow integer and float types
// are widened on ingestion; the DType records the logical width instead.
//
// Tables are treated as immutable: every operation returns a new Table and
// never modifies its receiver.
package frame
