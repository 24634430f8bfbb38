package report

import (
	"errors"
	"slices"

	"github.com/nao1215/tabclean/internal/model"
)

// ErrNoSummary is returned when a run to compare was never finished.
var ErrNoSummary = errors.New("run has no summary")

// Comparison puts two runs of the same source side by side.
type Comparison struct {
	Source   string     `json:"source"`
	Previous *model.Run `json:"previous"`
	Current  *model.Run `json:"current"`

	// InputChanged is true when the two runs read different data.
	InputChanged bool `json:"input_changed"`

	// OutputChanged is true when the two runs produced different tables.
	OutputChanged bool `json:"output_changed"`

	// Metrics holds the summary values of both runs.
	Metrics []Metric `json:"metrics"`

	// NewFindings lists findings of the current run the previous one lacked.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings lists findings of the previous run that are gone.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`
}

// Metric is one summary value in both runs.
type Metric struct {
	Name     string `json:"name"`
	Previous int64  `json:"previous"`
	Current  int64  `json:"current"`
}

// Change returns Current - Previous.
func (m Metric) Change() int64 { return m.Current - m.Previous }

// NewComparison compares prev against curr.
func NewComparison(prev, curr *model.Run) (*Comparison, error) {
	if prev.Summary == nil || curr.Summary == nil {
		return nil, ErrNoSummary
	}
	p, c := prev.Summary, curr.Summary
	cmp := &Comparison{
		Source:        curr.Source,
		Previous:      prev,
		Current:       curr,
		InputChanged:  prev.InputFingerprint != curr.InputFingerprint,
		OutputChanged: prev.OutputFingerprint != curr.OutputFingerprint,
		Metrics: []Metric{
			{"rows before", int64(p.RowsBefore), int64(c.RowsBefore)},
			{"columns before", int64(p.ColsBefore), int64(c.ColsBefore)},
			{"rows after", int64(p.RowsAfter), int64(c.RowsAfter)},
			{"columns after", int64(p.ColsAfter), int64(c.ColsAfter)},
			{"missing before", int64(p.MissingBefore), int64(c.MissingBefore)},
			{"missing after", int64(p.MissingAfter), int64(c.MissingAfter)},
			{"dropped duplicate rows", int64(p.DroppedDuplicateRows), int64(c.DroppedDuplicateRows)},
			{"dropped single-valued columns", int64(p.DroppedSingleValued), int64(c.DroppedSingleValued)},
			{"memory after", p.MemoryAfter, c.MemoryAfter},
			{"findings", int64(len(prev.Findings)), int64(len(curr.Findings))},
		},
	}

	for _, f := range curr.Findings {
		if !containsFinding(prev.Findings, f) {
			cmp.NewFindings = append(cmp.NewFindings, f)
		}
	}
	for _, f := range prev.Findings {
		if !containsFinding(curr.Findings, f) {
			cmp.ResolvedFindings = append(cmp.ResolvedFindings, f)
		}
	}
	return cmp, nil
}

// Changed reports whether any metric differs between the runs.
func (c *Comparison) Changed() bool {
	return slices.ContainsFunc(c.Metrics, func(m Metric) bool { return m.Change() != 0 })
}

func containsFinding(findings []model.Finding, f model.Finding) bool {
	return slices.ContainsFunc(findings, func(o model.Finding) bool {
		return o.Type == f.Type && o.Value == f.Value
	})
}
