// Package main provides the entry point for the tabclean CLI.
//
// tabclean cleans tabular data: it normalizes column names, drops empty and
// single-valued columns, rows with too many missing values and duplicate
// rows, and converts every column to its most compact datatype.
//
// Usage:
//
//	tabclean clean data.csv -o cleaned.csv
//	tabclean inspect data.xlsx
//
// See --help for all available options.
package main

func main() {
	Execute()
}
