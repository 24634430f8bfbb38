// Package tableio reads and writes tables.
//
// Supported sources are delimited text (CSV, TSV), Excel workbooks, HTML
// tables, SQLite database files and PostgreSQL connection strings. Text
// sources may be compressed with gzip, zstd or LZ4; the compression is taken
// from the last file extension, e.g. "data.csv.zst".
//
// Text cells are typed per column: a column is read as integers, floats or
// booleans only when every present cell parses as such, otherwise it stays
// text. Cells matching one of the NA tokens become missing.
//
// The package also converts to and from gota dataframes so cleaned tables
// can be handed to code built on that library.
package tableio
