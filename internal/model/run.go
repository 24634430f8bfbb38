package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/tabclean/internal/frame"
)

// Run records one cleaning of one table.
// Pipeline steps read the current table from Output and replace it with
// their result, adding what they changed to the run.
type Run struct {
	// === Basic Information ===

	// ID identifies the run in the history database.
	ID string `json:"id"`

	// Source is the path or connection string the table was read from.
	Source string `json:"source"`

	// StartedAt is when cleaning began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long cleaning took.
	Duration time.Duration `json:"duration"`

	// === Tables ===

	// Input is the table as read. It is never modified.
	Input *frame.Table `json:"-"`

	// Output is the table after the steps executed so far.
	Output *frame.Table `json:"-"`

	// InputFingerprint and OutputFingerprint identify the content of the
	// tables so identical runs can be recognized.
	InputFingerprint  string `json:"input_fingerprint,omitempty"`
	OutputFingerprint string `json:"output_fingerprint,omitempty"`

	// === Changes ===

	// RenamedColumns lists the headers changed by name cleaning.
	RenamedColumns []RenamedColumn `json:"renamed_columns,omitempty"`

	// LongColumnNames lists cleaned names that are hard to read.
	LongColumnNames []string `json:"long_column_names,omitempty"`

	// SingleValuedColumns lists columns dropped for holding one value.
	SingleValuedColumns []string `json:"single_valued_columns,omitempty"`

	// MissingColumns lists columns dropped by the missing-value thresholds.
	MissingColumns []string `json:"missing_columns,omitempty"`

	// MissingRows lists the labels of rows dropped by the missing-value thresholds.
	MissingRows []int `json:"missing_rows,omitempty"`

	// DuplicateRows lists the labels of dropped duplicate rows.
	DuplicateRows []int `json:"duplicate_rows,omitempty"`

	// Pool describes the pooled column subset, if any.
	Pool *PoolInfo `json:"pool,omitempty"`

	// === Results ===

	// Summary compares the input and output tables.
	Summary *Summary `json:"summary,omitempty"`

	// Findings are the remarks collected while cleaning.
	Findings []Finding `json:"findings,omitempty"`

	// === Run State ===

	// TimedOut is true if the run was cancelled before all steps finished.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains the error that stopped the run.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// RenamedColumn records a header changed by name cleaning.
type RenamedColumn struct {
	Position int    `json:"position"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// PoolInfo describes a pooled column subset.
type PoolInfo struct {
	// Column is the name of the list-valued column.
	Column string `json:"column"`

	// Subset lists the pooled columns.
	Subset []string `json:"subset"`

	// DuplicateRatio is the row duplicate ratio of the subset.
	DuplicateRatio float64 `json:"duplicate_ratio"`

	// Groups is the number of row groups sharing pooled values.
	Groups int `json:"groups"`
}

// Finding is a single remark about a cleaning run.
type Finding struct {
	// Type is the finding type identifier, one of the Finding* constants.
	Type string `json:"type"`

	// Severity is the level of attention needed.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Impact explains what the finding means for the data.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the column or label the finding is about.
	Value string `json:"value,omitempty"`
}

// NewRun creates a run for the given source and input table.
func NewRun(source string, input *frame.Table) *Run {
	r := &Run{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now(),
		Input:     input,
		Output:    input,
	}
	if input != nil {
		r.InputFingerprint = frame.Fingerprint(input)
	}
	return r
}

// AddFinding records a finding, filling severity, impact and recommendation
// from the finding type. A finding with the same type and value is only
// recorded once.
func (r *Run) AddFinding(findingType, title, value string) {
	for _, f := range r.Findings {
		if f.Type == findingType && f.Value == value {
			return
		}
	}
	info := GetFindingInfo(findingType)
	r.Findings = append(r.Findings, Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
	})
}

// FindingsBySeverity returns findings filtered by severity.
func (r *Run) FindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// HighestSeverity returns the most severe finding level, or SeverityInfo
// when there are no findings.
func (r *Run) HighestSeverity() Severity {
	highest := SeverityInfo
	for _, f := range r.Findings {
		highest = max(highest, f.Severity)
	}
	return highest
}

// Finish records the end of the run: the duration, the output fingerprint,
// the summary and the error, if any. A nil err keeps an error recorded
// earlier by a step.
func (r *Run) Finish(err error) {
	r.Duration = time.Since(r.StartedAt)
	if r.Output != nil {
		r.OutputFingerprint = frame.Fingerprint(r.Output)
		r.Summary = NewSummary(r)
	}
	if err != nil {
		r.Error = err
		r.ErrorMessage = err.Error()
	}
}
