// Package database stores the history of cleaning runs in SQLite.
//
// Each finished run is kept as JSON together with the columns needed to
// list and filter runs: source, start time, fingerprints and shapes. The
// tables themselves are not stored; the fingerprints tell whether two runs
// read or produced the same data.
//
// The database is a single file (tabclean.db) opened through the CGO-free
// modernc.org/sqlite driver.
package database
