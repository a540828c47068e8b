package analyzer

import (
	"testing"

	"github.com/qgate-dev/qgate/domain"
)

const samplePMDXML = `<?xml version="1.0" encoding="UTF-8"?>
<pmd xmlns="http://pmd.sourceforge.net/report/2.0.0" version="7.0.0">
<file name="src/main/java/com/example/App.java">
<violation beginline="15" endline="15" begincolumn="9" endcolumn="20" rule="UnusedLocalVariable" ruleset="Best Practices" priority="3">
Avoid unused local variables such as 'tmp'.
</violation>
<violation beginline="30" endline="42" rule="CyclomaticComplexity" ruleset="Design" priority="2">
The method 'process' has a cyclomatic complexity of 15.
</violation>
</file>
</pmd>`

func TestParsePMDXML(t *testing.T) {
	violations, err := parsePMDXML([]byte(samplePMDXML))
	if err != nil {
		t.Fatalf("parsePMDXML: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("got %d violations, want 2", len(violations))
	}

	first := violations[0]
	if first.Type != "UnusedLocalVariable" {
		t.Errorf("violations[0].Type = %q", first.Type)
	}
	if first.Severity != domain.SeverityWarning {
		t.Errorf("violations[0].Severity = %v, want warning", first.Severity)
	}
	if first.Message != "Avoid unused local variables such as 'tmp'." {
		t.Errorf("violations[0].Message = %q", first.Message)
	}
	if first.Line != 15 {
		t.Errorf("violations[0].Line = %d, want 15", first.Line)
	}

	if violations[1].Severity != domain.SeverityError {
		t.Errorf("priority 2 violation maps to %v, want error", violations[1].Severity)
	}
}

func TestParsePMDXMLMalformed(t *testing.T) {
	if _, err := parsePMDXML([]byte("<pmd>")); err == nil {
		t.Error("expected error for truncated report")
	}
}

func TestPMDSeverity(t *testing.T) {
	tests := []struct {
		priority int
		want     domain.Severity
	}{
		{1, domain.SeverityError},
		{2, domain.SeverityError},
		{3, domain.SeverityWarning},
		{4, domain.SeverityInfo},
		{5, domain.SeverityInfo},
	}
	for _, tt := range tests {
		if got := pmdSeverity(tt.priority); got != tt.want {
			t.Errorf("pmdSeverity(%d) = %v, want %v", tt.priority, got, tt.want)
		}
	}
}
