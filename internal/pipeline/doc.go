// Package pipeline runs the cleaning stages over a table.
//
// Each stage is a Step that receives the current model.Run, replaces
// run.Output with its result and records what it removed or changed.
// Clean assembles the standard order of steps from Options:
// column names, single-valued columns, missing values, duplicate rows,
// datatypes and, optionally, pooling of duplicated column subsets.
//
// BatchProcessor reads and cleans many sources concurrently with a bounded
// errgroup.
package pipeline
