package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Severity represents the severity of a single finding
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Status represents the outcome of an analyzer run
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Violation represents one discrete finding reported by an analyzer.
// File may be empty and Line may be 0 for project-level findings.
type Violation struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Type     string   `json:"type"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
}

// MetricValue holds a single analyzer-defined metric, either numeric or
// textual. It serializes to a bare JSON number or string so that report
// round-trips stay lossless.
type MetricValue struct {
	Number  float64
	Text    string
	Numeric bool
}

// Metric creates a numeric metric value
func Metric(v float64) MetricValue {
	return MetricValue{Number: v, Numeric: true}
}

// MetricText creates a textual metric value
func MetricText(s string) MetricValue {
	return MetricValue{Text: s}
}

// String returns the metric rendered for human-readable output
func (m MetricValue) String() string {
	if m.Numeric {
		return strconv.FormatFloat(m.Number, 'f', -1, 64)
	}
	return m.Text
}

// MarshalJSON implements json.Marshaler
func (m MetricValue) MarshalJSON() ([]byte, error) {
	if m.Numeric {
		return json.Marshal(m.Number)
	}
	return json.Marshal(m.Text)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *MetricValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MetricValue{Number: n, Numeric: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("metric value must be a number or a string: %w", err)
	}
	*m = MetricValue{Text: s}
	return nil
}

// AnalysisResult represents the normalized output of one analyzer run.
// A result with StatusSkipped carries no violations and no metrics; a result
// with StatusError carries the failure cause in Summary.
type AnalysisResult struct {
	// Type is the analyzer identifier, unique within a report
	Type string `json:"type"`

	// Status is the normalized outcome of the run
	Status Status `json:"status"`

	// Summary is human-readable text and may contain light markup
	Summary string `json:"summary"`

	// Violations are the individual findings, in the order produced
	Violations []Violation `json:"violations"`

	// Metrics maps metric names to analyzer-defined values
	Metrics map[string]MetricValue `json:"metrics"`

	// CompletedAt is the RFC3339 timestamp of run completion
	CompletedAt string `json:"completed_at"`

	// DurationMS is the wall-clock duration of the run
	DurationMS int64 `json:"duration_ms"`
}

// NewSkippedResult creates a synthetic result for an analyzer that was not run
func NewSkippedResult(analyzerType, reason string) *AnalysisResult {
	return &AnalysisResult{
		Type:        analyzerType,
		Status:      StatusSkipped,
		Summary:     reason,
		Violations:  []Violation{},
		CompletedAt: time.Now().Format(time.RFC3339),
	}
}

// NewErrorResult creates a result for an analyzer that failed internally.
// The cause is recorded in the summary so it survives serialization.
func NewErrorResult(analyzerType, cause string) *AnalysisResult {
	return &AnalysisResult{
		Type:        analyzerType,
		Status:      StatusError,
		Summary:     cause,
		Violations:  []Violation{},
		CompletedAt: time.Now().Format(time.RFC3339),
	}
}

// CountBySeverity returns the number of violations with the given severity
func (r *AnalysisResult) CountBySeverity(sev Severity) int {
	count := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			count++
		}
	}
	return count
}

// QualityReport represents the aggregate outcome of one orchestration run.
// OverallStatus is always derived from Results via CombineStatuses; callers
// mutate Results only through Append so the two can never drift apart.
type QualityReport struct {
	GeneratedAt    string           `json:"generated_at"`
	ProjectPath    string           `json:"project_path"`
	ProjectName    string           `json:"project_name,omitempty"`
	Revision       string           `json:"revision,omitempty"`
	Branch         string           `json:"branch,omitempty"`
	OverallStatus  Status           `json:"overall_status"`
	IgnoreFailures bool             `json:"ignore_failures"`
	Results        []AnalysisResult `json:"results"`
	Version        string           `json:"version"`
}

// NewQualityReport creates an empty report for the given project
func NewQualityReport(projectPath string, ignoreFailures bool) *QualityReport {
	return &QualityReport{
		GeneratedAt:    time.Now().Format(time.RFC3339),
		ProjectPath:    projectPath,
		OverallStatus:  StatusPass,
		IgnoreFailures: ignoreFailures,
		Results:        []AnalysisResult{},
	}
}

// Append adds a result and recomputes the overall status
func (r *QualityReport) Append(result AnalysisResult) {
	r.Results = append(r.Results, result)
	r.OverallStatus = r.Recompute()
}

// Recompute folds the per-result statuses into the overall status
func (r *QualityReport) Recompute() Status {
	statuses := make([]Status, 0, len(r.Results))
	for _, res := range r.Results {
		statuses = append(statuses, res.Status)
	}
	return CombineStatuses(statuses, r.IgnoreFailures)
}

// TotalViolations returns the violation count across all results
func (r *QualityReport) TotalViolations() int {
	total := 0
	for _, res := range r.Results {
		total += len(res.Violations)
	}
	return total
}

// CombineStatuses folds a sequence of per-result statuses into one overall
// status. The fold is a pure function of the multiset of statuses: it is
// order-independent and yields the same answer on every re-run.
//
//   - any error => fail (warning when ignoreFailures)
//   - else any fail => fail (warning when ignoreFailures)
//   - else any warning => warning
//   - else (pass/skipped only) => pass
func CombineStatuses(statuses []Status, ignoreFailures bool) Status {
	hasError := false
	hasFail := false
	hasWarning := false
	for _, s := range statuses {
		switch s {
		case StatusError:
			hasError = true
		case StatusFail:
			hasFail = true
		case StatusWarning:
			hasWarning = true
		}
	}

	if hasError || hasFail {
		if ignoreFailures {
			return StatusWarning
		}
		return StatusFail
	}
	if hasWarning {
		return StatusWarning
	}
	return StatusPass
}
