package service

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/qgate-dev/qgate/domain"
)

func sampleReport() *domain.QualityReport {
	return &domain.QualityReport{
		GeneratedAt:   "2026-08-30T10:00:00Z",
		ProjectPath:   "/work/demo",
		ProjectName:   "demo",
		Revision:      "0123456789abcdef",
		Branch:        "main",
		OverallStatus: domain.StatusFail,
		Results: []domain.AnalysisResult{
			{
				Type:    "checkstyle",
				Status:  domain.StatusWarning,
				Summary: "Checkstyle found 2 violation(s) across 1 file(s).",
				Violations: []domain.Violation{
					{Severity: domain.SeverityWarning, Message: "line too long", Type: "LineLength", File: "A.java", Line: 3},
					{Severity: domain.SeverityWarning, Message: "tab character", Type: "FileTabCharacter", File: "A.java", Line: 9},
				},
				Metrics:     map[string]domain.MetricValue{"violations": domain.Metric(2)},
				CompletedAt: "2026-08-30T10:00:01Z",
				DurationMS:  87,
			},
			{
				Type:    "archunit",
				Status:  domain.StatusFail,
				Summary: "1 architecture rule violation(s).",
				Violations: []domain.Violation{
					{Severity: domain.SeverityError, Message: "service depends on web", Type: "layering"},
				},
				Metrics:     map[string]domain.MetricValue{"ruleViolations": domain.Metric(1)},
				CompletedAt: "2026-08-30T10:00:02Z",
				DurationMS:  412,
			},
			{
				Type:        "sequential-gemini",
				Status:      domain.StatusWarning,
				Summary:     "## style\n\nreview text\n\n## security\n\n_review failed: review timed out_",
				Violations:  []domain.Violation{},
				Metrics: map[string]domain.MetricValue{
					"totalGuides":      domain.Metric(2),
					"successfulGuides": domain.Metric(1),
					"failedGuides":     domain.Metric(1),
					"executionTimeMs":  domain.Metric(9001),
				},
				CompletedAt: "2026-08-30T10:00:12Z",
				DurationMS:  9001,
			},
			{
				Type:        "spotbugs",
				Status:      domain.StatusSkipped,
				Summary:     "spotbugs is not available on this system",
				Violations:  []domain.Violation{},
				CompletedAt: "2026-08-30T10:00:12Z",
			},
		},
		Version: "1.0.0",
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	if err := NewJSONFormatter().Render(report, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}

	back, err := ReadReport(&buf)
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}

	if !reflect.DeepEqual(report, back) {
		t.Errorf("round trip changed the report:\n got: %+v\nwant: %+v", back, report)
	}
}

func TestJSONFormatterOutputShape(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().Render(sampleReport(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`"overall_status": "fail"`,
		`"type": "checkstyle"`,
		`"totalGuides": 2`,
		`"project_path": "/work/demo"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestReadReportMalformed(t *testing.T) {
	if _, err := ReadReport(strings.NewReader("{broken")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
