// Package model defines the records produced by a cleaning run.
//
// This package contains the following main types:
//   - Run: one cleaning of one table, with everything the steps changed
//   - Summary: the before/after comparison of a run
//   - Finding: a remark about the cleaned data with a severity
//
// The models are serializable to JSON for report output and for the run
// history database. Tables themselves are not serialized; a run stores
// their fingerprints instead.
package model
