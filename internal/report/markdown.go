package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/tabclean/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing. Datatype distributions are drawn as mermaid pie charts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	if run.Summary != nil {
		w.writeSummary(md, run.Summary)
		w.writeDTypes(md, run.Summary)
	}
	w.writeChanges(md, run)
	w.writeFindings(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Tabclean Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + run.Source + "`"},
			{"Run ID", "`" + run.ID + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration.String()},
			{"Steps", strings.Join(run.PerformedSteps, ", ")},
			{"Status", w.getStatusText(run)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run *model.Run) string {
	if run.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if run.ErrorMessage != "" {
		return "❌ Error - " + run.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the before/after table.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	saved, pct := s.MemoryReduction()
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Before", "After"},
		Rows: [][]string{
			{"Rows", strconv.Itoa(s.RowsBefore), strconv.Itoa(s.RowsAfter)},
			{"Columns", strconv.Itoa(s.ColsBefore), strconv.Itoa(s.ColsAfter)},
			{"Missing values", strconv.Itoa(s.MissingBefore), strconv.Itoa(s.MissingAfter)},
			{"Memory (MB)", fmt.Sprintf("%.2f", model.MB(s.MemoryBefore)), fmt.Sprintf("%.2f", model.MB(s.MemoryAfter))},
		},
	})
	md.PlainText("")

	md.BulletList(
		fmt.Sprintf("Dropped rows: %d (of which %d duplicates)", s.DroppedRows, s.DroppedDuplicateRows),
		fmt.Sprintf("Dropped columns: %d (of which %d single-valued)", s.DroppedColumns, s.DroppedSingleValued),
		fmt.Sprintf("Dropped missing values: %d", s.DroppedMissing),
		fmt.Sprintf("Memory reduction: %.2f MB (%.1f%%)", model.MB(saved), pct),
	)
	md.PlainText("")
}

// writeDTypes writes the dtype counts and a pie chart of the result.
func (w *MarkdownWriter) writeDTypes(md *markdown.Markdown, s *model.Summary) {
	names := s.DTypeNames()
	if len(names) == 0 {
		return
	}

	md.H2("Datatypes")
	md.PlainText("")

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{"`" + name + "`", strconv.Itoa(s.DTypesBefore[name]), strconv.Itoa(s.DTypesAfter[name])}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Datatype", "Before", "After"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(s.DTypesAfter) > 0 {
		w.writePieChart(md, "Datatypes After Cleaning", names, s.DTypesAfter)
	}
}

// writePieChart writes a mermaid pie chart of counts in label order.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, title string, labels []string, counts map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(title),
		piechart.WithShowData(true),
	)
	for _, label := range labels {
		if n := counts[label]; n > 0 {
			chart.LabelAndIntValue(label, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeChanges writes what the steps renamed, dropped and pooled.
func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, run *model.Run) {
	md.H2("Changes")
	md.PlainText("")

	if len(run.RenamedColumns) > 0 {
		md.H3("Renamed Columns")
		md.PlainText("")
		rows := make([][]string, len(run.RenamedColumns))
		for i, r := range run.RenamedColumns {
			rows[i] = []string{strconv.Itoa(r.Position), "`" + r.From + "`", "`" + r.To + "`"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Position", "From", "To"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	var dropped []string
	for _, name := range run.SingleValuedColumns {
		dropped = append(dropped, "`"+name+"` (single value)")
	}
	for _, name := range run.MissingColumns {
		dropped = append(dropped, "`"+name+"` (missing values)")
	}
	if len(dropped) > 0 {
		md.H3("Dropped Columns")
		md.PlainText("")
		md.BulletList(dropped...)
		md.PlainText("")
	}

	if len(run.MissingRows) > 0 || len(run.DuplicateRows) > 0 {
		md.H3("Dropped Rows")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Reason", "Count", "Labels"},
			Rows: [][]string{
				{"Missing values", strconv.Itoa(len(run.MissingRows)), formatLabels(run.MissingRows, 30)},
				{"Duplicates", strconv.Itoa(len(run.DuplicateRows)), formatLabels(run.DuplicateRows, 30)},
			},
		})
		md.PlainText("")
	}

	if run.Pool != nil {
		md.H3("Pooled Columns")
		md.PlainText("")
		md.PlainTextf("Columns %s were pooled into `%s` (duplicate ratio %.2f, %d row groups).",
			"`"+strings.Join(run.Pool.Subset, "`, `")+"`", run.Pool.Column, run.Pool.DuplicateRatio, run.Pool.Groups)
		md.PlainText("")
	}

	if len(run.RenamedColumns) == 0 && len(dropped) == 0 && len(run.MissingRows) == 0 &&
		len(run.DuplicateRows) == 0 && run.Pool == nil {
		md.PlainText("The table needed no changes.")
		md.PlainText("")
	}
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, run *model.Run) {
	md.H2("Findings")
	md.PlainText("")

	w.writeAlert(md, run)

	if len(run.Findings) == 0 {
		return
	}

	headers := map[model.Severity]string{
		model.SeverityCritical: "### 🔴 Critical",
		model.SeverityHigh:     "### 🟠 High",
		model.SeverityMedium:   "### 🟡 Medium",
		model.SeverityLow:      "### 🔵 Low",
		model.SeverityInfo:     "### ⚪ Info",
	}
	for _, sev := range severityOrder {
		findings := run.FindingsBySeverity(sev)
		if len(findings) == 0 {
			continue
		}
		md.PlainText(headers[sev])
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeAlert writes an alert matching the highest severity.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.Run) {
	critical := len(run.FindingsBySeverity(model.SeverityCritical))
	high := len(run.FindingsBySeverity(model.SeverityHigh))
	medium := len(run.FindingsBySeverity(model.SeverityMedium))

	switch {
	case critical > 0:
		md.Cautionf("Cleaning left nothing usable. %d critical finding(s) need attention.", critical)
	case high > 0:
		md.Warningf("%d column(s) are still mostly missing after cleaning.", high)
	case medium > 0:
		md.Importantf("%d finding(s) may need handling before analysis.", medium)
	case len(run.Findings) > 0:
		md.Note("Only low severity and informational findings.")
	default:
		md.Tip("No findings.")
	}
	md.PlainText("")
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		value := f.Value
		if value == "" {
			value = "-"
		}
		rows[i] = []string{
			f.Title,
			truncateString(value, 50),
			truncateString(f.Recommendation, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Value", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Impact != "" {
			md.Details(f.Title+": "+f.Value, f.Impact)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [tabclean](https://github.com/nao1215/tabclean)*")
}

// WriteProfile outputs a table profile in Markdown format.
func (w *MarkdownWriter) WriteProfile(p *Profile) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Table Profile")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + p.Source + "`"},
			{"Shape", fmt.Sprintf("(%d, %d)", p.Rows, p.Cols)},
			{"Missing values", strconv.Itoa(p.Missing)},
			{"Complete rows", strconv.Itoa(p.CompleteRows)},
			{"Duplicate rows", strconv.Itoa(p.DuplicateRows)},
			{"Memory (MB)", fmt.Sprintf("%.2f", model.MB(p.Memory))},
		},
	})
	md.PlainText("")

	md.H2("Columns")
	md.PlainText("")
	rows := make([][]string, len(p.Columns))
	counts := make(map[string]int)
	var labels []string
	for i, c := range p.Columns {
		rows[i] = []string{
			"`" + c.Name + "`",
			c.DType,
			strconv.Itoa(c.Missing),
			fmt.Sprintf("%.3f", c.MissingRatio),
			strconv.Itoa(c.Distinct),
		}
		if counts[c.DType] == 0 {
			labels = append(labels, c.DType)
		}
		counts[c.DType]++
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Datatype", "Missing", "Ratio", "Distinct"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(labels) > 0 {
		w.writePieChart(md, "Datatypes", labels, counts)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteComparison outputs the comparison of two runs in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Previous", "Current"},
		Rows: [][]string{
			{"Run ID", "`" + c.Previous.ID + "`", "`" + c.Current.ID + "`"},
			{"Started", c.Previous.StartedAt.Format("2006-01-02 15:04:05"), c.Current.StartedAt.Format("2006-01-02 15:04:05")},
		},
	})
	md.PlainText("")
	md.BulletList(
		"Source: `"+c.Source+"`",
		"Input: "+changedText(c.InputChanged),
		"Output: "+changedText(c.OutputChanged),
	)
	md.PlainText("")

	md.H2("Metrics")
	md.PlainText("")
	rows := make([][]string, len(c.Metrics))
	for i, m := range c.Metrics {
		rows[i] = []string{m.Name, strconv.FormatInt(m.Previous, 10), strconv.FormatInt(m.Current, 10), fmt.Sprintf("%+d", m.Change())}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(c.NewFindings) > 0 || len(c.ResolvedFindings) > 0 {
		md.H2("Findings")
		md.PlainText("")
		var items []string
		for _, f := range c.NewFindings {
			items = append(items, fmt.Sprintf("New %s: %s (`%s`)", f.SeverityText, f.Title, f.Value))
		}
		for _, f := range c.ResolvedFindings {
			items = append(items, fmt.Sprintf("Resolved %s: %s (`%s`)", f.SeverityText, f.Title, f.Value))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatLabels joins row labels, listing at most limit of them.
func formatLabels(labels []int, limit int) string {
	if len(labels) == 0 {
		return "-"
	}
	shown := labels[:min(len(labels), limit)]
	parts := make([]string, len(shown))
	for i, l := range shown {
		parts[i] = strconv.Itoa(l)
	}
	out := strings.Join(parts, ", ")
	if rest := len(labels) - len(shown); rest > 0 {
		out += fmt.Sprintf(" (+%d more)", rest)
	}
	return out
}
