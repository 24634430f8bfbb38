package report

import (
	"io"

	"github.com/nao1215/tabclean/internal/model"
)

// Writer defines the interface for report output.
// Implementations write cleaning results in various formats.
type Writer interface {
	// Write outputs the report of a cleaning run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.Run) (int, error)

	// WriteProfile outputs the profile of a table that was not cleaned.
	WriteProfile(profile *Profile) (int, error)

	// WriteComparison outputs the comparison of two runs of the same source.
	WriteComparison(cmp *Comparison) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(run) })
}

// WriteProfile outputs the profile to all configured Writers.
func (m *MultiWriter) WriteProfile(profile *Profile) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteProfile(profile) })
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(cmp *Comparison) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteComparison(cmp) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severityOrder lists severities from most to least severe.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// runStatus returns the status text of a run.
func runStatus(run *model.Run) string {
	switch {
	case run.TimedOut:
		return "TIMED OUT (partial results)"
	case run.ErrorMessage != "":
		return "ERROR - " + run.ErrorMessage
	default:
		return "Complete"
	}
}
