// Package colname turns arbitrary column headers into lowercase snake_case
// identifiers.
//
// Cleaning is deterministic and safe to repeat: cleaning an already clean
// name returns it unchanged. Names that collide after cleaning are made
// unique by appending their column position, and names that end up longer
// than LongNameLimit characters are reported so they can be shortened by hand.
//
// Typical use:
//
//	cleaner := colname.New(colname.WithLogger(logger))
//	table, result, err := cleaner.Apply(table)
package colname
