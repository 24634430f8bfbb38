// Package clean implements the table cleaning operations of tabclean.
//
// Every function in this package is pure: it validates its options, reads the
// input table and returns a new table (or a read-only report) without touching
// the input. Invalid options are rejected with an *InvalidInputError before any
// work is done; nothing is ever clamped silently.
//
// The operations are:
//
//   - AnalyzeMissing: per-row and per-column missing counts and ratios
//   - DropMissing: drop columns, then rows, whose missing ratio exceeds a threshold
//   - DetectDuplicates: drop repeated rows and report which rows they repeat
//   - DropSingleValued: drop columns holding a single distinct value
//   - ConvertDatatypes: downcast numbers, detect booleans and categoricals
//   - PoolDuplicateSubsets: fold a highly duplicated column subset into one
//     list-valued column
//
// The cleaning orchestrator composing these operations lives in the pipeline
// package.
package clean
