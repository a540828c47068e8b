package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/resolver"
)

func TestHTMLFormatterRenders(t *testing.T) {
	var buf bytes.Buffer
	f := NewHTMLFormatter(resolver.BuildSystemMaven)
	if err := f.Render(sampleReport(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("output is not an HTML document")
	}
	if !strings.Contains(out, "demo") {
		t.Error("project name missing")
	}
	for _, tool := range []string{"checkstyle", "archunit", "sequential-gemini", "spotbugs"} {
		if !strings.Contains(out, tool) {
			t.Errorf("result card for %s missing", tool)
		}
	}
}

func TestHTMLInlineViolationPolicy(t *testing.T) {
	f := NewHTMLFormatter(resolver.BuildSystemMaven)

	// checkstyle: warnings only, and the tool publishes its own report.
	// One error, two warnings: the error is inline, the warnings are not.
	result := domain.AnalysisResult{
		Type:   "checkstyle",
		Status: domain.StatusFail,
		Violations: []domain.Violation{
			{Severity: domain.SeverityError, Message: "broken thing", File: "A.java", Line: 1},
			{Severity: domain.SeverityWarning, Message: "minor thing one", File: "A.java", Line: 2},
			{Severity: domain.SeverityWarning, Message: "minor thing two", File: "A.java", Line: 3},
		},
	}

	rv := f.buildResultView(&result)
	if len(rv.Errors) != 1 {
		t.Errorf("got %d inline errors, want exactly 1", len(rv.Errors))
	}
	if len(rv.Warnings) != 0 {
		t.Errorf("got %d inline warnings, want 0 (checkstyle links its own report)", len(rv.Warnings))
	}
	if rv.DetailLink == "" {
		t.Error("checkstyle must link its detail report")
	}
}

func TestHTMLInlineWarningsWithoutDetailReport(t *testing.T) {
	f := NewHTMLFormatter(resolver.BuildSystemGradle)

	// archunit publishes no report of its own: warnings go inline
	result := domain.AnalysisResult{
		Type:   "archunit",
		Status: domain.StatusWarning,
		Violations: []domain.Violation{
			{Severity: domain.SeverityWarning, Message: "soft rule broken"},
		},
	}

	rv := f.buildResultView(&result)
	if len(rv.Warnings) != 1 {
		t.Errorf("got %d inline warnings, want 1", len(rv.Warnings))
	}
	if rv.DetailLink != "" {
		t.Errorf("DetailLink = %q, want empty", rv.DetailLink)
	}
}

func TestHTMLUnknownTypeNeverDropsErrors(t *testing.T) {
	f := NewHTMLFormatter(resolver.BuildSystemUnknown)

	result := domain.AnalysisResult{
		Type:   "some-future-analyzer",
		Status: domain.StatusFail,
		Violations: []domain.Violation{
			{Severity: domain.SeverityError, Message: "critical finding"},
			{Severity: domain.SeverityWarning, Message: "lesser finding"},
		},
	}

	rv := f.buildResultView(&result)
	if len(rv.Errors) != 1 {
		t.Errorf("got %d inline errors, want 1", len(rv.Errors))
	}
	if len(rv.Warnings) != 1 {
		t.Errorf("got %d inline warnings, want 1 (no detail report to defer to)", len(rv.Warnings))
	}
	if rv.IsGemini {
		t.Error("unknown type must render as a generic card")
	}
}

func TestHTMLGeminiBlock(t *testing.T) {
	f := NewHTMLFormatter(resolver.BuildSystemMaven)

	result := domain.AnalysisResult{
		Type:    "sequential-gemini",
		Status:  domain.StatusWarning,
		Summary: "## style\n\nall fine\n\n## security\n\n_review failed: review timed out_",
		Metrics: map[string]domain.MetricValue{
			"totalGuides":      domain.Metric(2),
			"successfulGuides": domain.Metric(1),
			"failedGuides":     domain.Metric(1),
			"executionTimeMs":  domain.Metric(5120),
		},
	}

	rv := f.buildResultView(&result)
	if !rv.IsGemini {
		t.Fatal("gemini result must use the dedicated block")
	}
	if rv.TotalGuides != "2" || rv.SuccessfulGuides != "1" || rv.FailedGuides != "1" {
		t.Errorf("guide metrics = %s/%s/%s, want 2/1/1", rv.TotalGuides, rv.SuccessfulGuides, rv.FailedGuides)
	}

	detail := string(rv.GuideDetailHTML)
	if !strings.Contains(detail, "<h4>style</h4>") {
		t.Errorf("guide heading not converted:\n%s", detail)
	}
	if !strings.Contains(detail, "<em>review failed: review timed out</em>") {
		t.Errorf("failure marker not converted:\n%s", detail)
	}
}

func TestHTMLMixedRunScenario(t *testing.T) {
	// Three analyzers: one clean, one warning with a single error-severity
	// finding, one skipped. The rendered document carries exactly one inline
	// error entry.
	report := domain.NewQualityReport("/work/demo", false)
	report.Append(domain.AnalysisResult{
		Type: "archunit", Status: domain.StatusPass, Violations: []domain.Violation{},
	})
	report.Append(domain.AnalysisResult{
		Type: "checkstyle", Status: domain.StatusWarning,
		Violations: []domain.Violation{
			{Severity: domain.SeverityError, Message: "only inline finding", File: "B.java", Line: 5},
		},
	})
	report.Append(*domain.NewSkippedResult("pmd", "pmd is not available on this system"))

	if report.OverallStatus != domain.StatusWarning {
		t.Fatalf("overall = %v, want warning", report.OverallStatus)
	}

	var buf bytes.Buffer
	if err := NewHTMLFormatter(resolver.BuildSystemMaven).Render(report, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	// Error entries render as plain <li>; warning entries carry a class
	if got := strings.Count(out, "<li>"); got != 1 {
		t.Errorf("found %d inline error entries, want exactly 1", got)
	}
	if !strings.Contains(out, "only inline finding") {
		t.Error("the error-severity violation is missing from the document")
	}
	if !strings.Contains(out, "pmd") {
		t.Error("skipped analyzer card missing")
	}
}

func TestMarkupToHTMLEscapes(t *testing.T) {
	html := string(markupToHTML("## <script>alert(1)</script>\n\nuse a < b"))
	if strings.Contains(html, "<script>") {
		t.Errorf("markup left unescaped content:\n%s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("heading content not escaped:\n%s", html)
	}
}

func TestFormatLocation(t *testing.T) {
	tests := []struct {
		v    domain.Violation
		want string
	}{
		{domain.Violation{File: "A.java", Line: 12}, "A.java:12"},
		{domain.Violation{File: "A.java"}, "A.java"},
		{domain.Violation{}, ""},
	}
	for _, tt := range tests {
		if got := formatLocation(tt.v); got != tt.want {
			t.Errorf("formatLocation(%+v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   string
	}{
		{domain.StatusPass, "status-pass"},
		{domain.StatusWarning, "status-warning"},
		{domain.StatusFail, "status-fail"},
		{domain.StatusError, "status-fail"},
		{domain.StatusSkipped, "status-skipped"},
	}
	for _, tt := range tests {
		if got := statusClass(tt.status); got != tt.want {
			t.Errorf("statusClass(%v) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
