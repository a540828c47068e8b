package analyzer

import (
	"testing"

	"github.com/qgate-dev/qgate/domain"
)

func TestParseArchUnitOutput(t *testing.T) {
	out := `Scanning classes under /proj
VIOLATION layered-architecture: Service layer must not depend on web layer
VIOLATION no-cycles: Cycle detected between com.example.a and com.example.b
some unrelated log line
VIOLATION freestanding description without rule id separator
`
	violations := parseArchUnitOutput([]byte(out))
	if len(violations) != 3 {
		t.Fatalf("got %d violations, want 3", len(violations))
	}

	first := violations[0]
	if first.Type != "layered-architecture" {
		t.Errorf("violations[0].Type = %q", first.Type)
	}
	if first.Message != "Service layer must not depend on web layer" {
		t.Errorf("violations[0].Message = %q", first.Message)
	}
	if first.Severity != domain.SeverityError {
		t.Errorf("violations[0].Severity = %v, want error", first.Severity)
	}
	if first.File != "" || first.Line != 0 {
		t.Error("architecture violations are project-level, not tied to a file")
	}

	// Without a colon the whole rest of the line is both rule and message
	if violations[2].Type != "freestanding description without rule id separator" {
		t.Errorf("violations[2].Type = %q", violations[2].Type)
	}
}

func TestParseArchUnitOutputClean(t *testing.T) {
	out := "Scanning classes under /proj\nAll rules satisfied\n"
	if got := parseArchUnitOutput([]byte(out)); len(got) != 0 {
		t.Errorf("clean output yields %d violations, want 0", len(got))
	}
}
