package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/tabclean/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to show are printed.
	showEmpty bool

	// verbose adds impact and recommendation to every finding.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "TABCLEAN REPORT")
	fmt.Fprintf(&sb, "Source:     %s\n", run.Source)
	fmt.Fprintf(&sb, "Run ID:     %s\n", run.ID)
	fmt.Fprintf(&sb, "Started:    %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Duration:   %s\n", run.Duration)
	fmt.Fprintf(&sb, "Status:     %s\n\n", runStatus(run))

	if run.Summary != nil {
		w.writeSummary(&sb, run.Summary)
	}
	w.writeChanges(&sb, run)
	w.writeFindings(&sb, run)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeSummary writes the before/after comparison of the run.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s *model.Summary) {
	w.writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Shape:           (%d, %d) -> (%d, %d)\n", s.RowsBefore, s.ColsBefore, s.RowsAfter, s.ColsAfter)
	fmt.Fprintf(sb, "  Missing values:  %d -> %d\n", s.MissingBefore, s.MissingAfter)
	fmt.Fprintf(sb, "  Dropped rows:    %d (%d duplicates)\n", s.DroppedRows, s.DroppedDuplicateRows)
	fmt.Fprintf(sb, "  Dropped columns: %d (%d single-valued)\n", s.DroppedColumns, s.DroppedSingleValued)
	fmt.Fprintf(sb, "  Dropped missing: %d\n", s.DroppedMissing)

	saved, pct := s.MemoryReduction()
	fmt.Fprintf(sb, "  Memory:          %.2f MB -> %.2f MB (%.2f MB, %.1f%% saved)\n",
		model.MB(s.MemoryBefore), model.MB(s.MemoryAfter), model.MB(saved), pct)
	sb.WriteString("\n")

	sb.WriteString("  Datatypes:       before  after\n")
	for _, name := range s.DTypeNames() {
		fmt.Fprintf(sb, "    %-14s %6d %6d\n", name, s.DTypesBefore[name], s.DTypesAfter[name])
	}
	sb.WriteString("\n")
}

// writeChanges lists what the steps removed or renamed.
func (w *SimpleWriter) writeChanges(sb *strings.Builder, run *model.Run) {
	empty := len(run.RenamedColumns) == 0 && len(run.SingleValuedColumns) == 0 &&
		len(run.MissingColumns) == 0 && len(run.MissingRows) == 0 &&
		len(run.DuplicateRows) == 0 && run.Pool == nil
	if empty && !w.showEmpty {
		return
	}

	w.writeSection(sb, "CHANGES")
	if empty {
		sb.WriteString("  No changes\n\n")
		return
	}

	for _, r := range run.RenamedColumns {
		fmt.Fprintf(sb, "  [~] renamed #%d %q -> %q\n", r.Position, r.From, r.To)
	}
	for _, name := range run.SingleValuedColumns {
		fmt.Fprintf(sb, "  [-] column %s (single value)\n", name)
	}
	for _, name := range run.MissingColumns {
		fmt.Fprintf(sb, "  [-] column %s (missing values)\n", name)
	}
	if len(run.MissingRows) > 0 {
		fmt.Fprintf(sb, "  [-] %d rows (missing values): %s\n", len(run.MissingRows), formatLabels(run.MissingRows, 20))
	}
	if len(run.DuplicateRows) > 0 {
		fmt.Fprintf(sb, "  [-] %d rows (duplicates): %s\n", len(run.DuplicateRows), formatLabels(run.DuplicateRows, 20))
	}
	if run.Pool != nil {
		fmt.Fprintf(sb, "  [+] column %s pooled from %s (duplicate ratio %.2f)\n",
			run.Pool.Column, strings.Join(run.Pool.Subset, ", "), run.Pool.DuplicateRatio)
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, run *model.Run) {
	if len(run.Findings) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "FINDINGS")

	for _, severity := range severityOrder {
		findings := run.FindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), severity.String())

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, f := range findings {
		fmt.Fprintf(sb, "  * %s\n", f.Title)
		if f.Value != "" {
			fmt.Fprintf(sb, "    Value: %s\n", f.Value)
		}
		if w.verbose {
			fmt.Fprintf(sb, "    Impact: %s\n", f.Impact)
			fmt.Fprintf(sb, "    Recommendation: %s\n", f.Recommendation)
		}
	}
	sb.WriteString("\n")
}

// WriteProfile outputs a table profile in human-readable format.
func (w *SimpleWriter) WriteProfile(p *Profile) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "TABLE PROFILE")
	fmt.Fprintf(&sb, "Source:         %s\n", p.Source)
	fmt.Fprintf(&sb, "Shape:          (%d, %d)\n", p.Rows, p.Cols)
	fmt.Fprintf(&sb, "Missing values: %d\n", p.Missing)
	fmt.Fprintf(&sb, "Complete rows:  %d\n", p.CompleteRows)
	fmt.Fprintf(&sb, "Duplicate rows: %d\n", p.DuplicateRows)
	fmt.Fprintf(&sb, "Memory:         %.2f MB\n\n", model.MB(p.Memory))

	w.writeSection(&sb, "COLUMNS")
	fmt.Fprintf(&sb, "  %-28s %-10s %8s %8s %8s\n", "NAME", "DTYPE", "MISSING", "RATIO", "DISTINCT")
	for _, c := range p.Columns {
		fmt.Fprintf(&sb, "  %-28s %-10s %8d %8.3f %8d\n",
			truncateString(c.Name, 28), c.DType, c.Missing, c.MissingRatio, c.Distinct)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteComparison outputs the comparison of two runs in human-readable format.
func (w *SimpleWriter) WriteComparison(c *Comparison) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "RUN COMPARISON")
	fmt.Fprintf(&sb, "Source:   %s\n", c.Source)
	fmt.Fprintf(&sb, "Previous: %s (%s)\n", c.Previous.ID, c.Previous.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current:  %s (%s)\n", c.Current.ID, c.Current.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Input:    %s\n", changedText(c.InputChanged))
	fmt.Fprintf(&sb, "Output:   %s\n\n", changedText(c.OutputChanged))

	w.writeSection(&sb, "METRICS")
	for _, m := range c.Metrics {
		if m.Change() == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(&sb, "  %-30s %10d -> %10d (%+d)\n", m.Name, m.Previous, m.Current, m.Change())
	}
	if !c.Changed() {
		sb.WriteString("  No differences\n")
	}
	sb.WriteString("\n")

	if len(c.NewFindings) > 0 || len(c.ResolvedFindings) > 0 {
		w.writeSection(&sb, "FINDINGS")
		for _, f := range c.NewFindings {
			fmt.Fprintf(&sb, "  [+] %s: %s (%s)\n", f.SeverityText, f.Title, f.Value)
		}
		for _, f := range c.ResolvedFindings {
			fmt.Fprintf(&sb, "  [-] %s: %s (%s)\n", f.SeverityText, f.Title, f.Value)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeTitle(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	pad := max((70-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, name string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(name + "\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func changedText(changed bool) string {
	if changed {
		return "changed"
	}
	return "unchanged"
}
