package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
)

func writeGuides(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadGuides(t *testing.T) {
	dir := t.TempDir()
	writeGuides(t, dir, map[string]string{
		"02-security.md":   "Review authentication and input handling.",
		"01-style.yaml":    "name: style\nprompt: Review naming and formatting.\n",
		"03-tests.txt":     "Review test coverage gaps.",
		"ignored-file.pdf": "not a guide",
	})

	guides, err := LoadGuides(dir)
	if err != nil {
		t.Fatalf("LoadGuides: %v", err)
	}
	if len(guides) != 3 {
		t.Fatalf("got %d guides, want 3", len(guides))
	}

	// Lexical order by file name
	wantNames := []string{"style", "02-security", "03-tests"}
	for i, g := range guides {
		if g.Name != wantNames[i] {
			t.Errorf("guides[%d].Name = %q, want %q", i, g.Name, wantNames[i])
		}
		if g.Prompt == "" {
			t.Errorf("guides[%d] has an empty prompt", i)
		}
	}
}

func TestLoadGuidesMissingDir(t *testing.T) {
	guides, err := LoadGuides(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not be an error, got %v", err)
	}
	if len(guides) != 0 {
		t.Errorf("got %d guides, want 0", len(guides))
	}
}

func TestLoadGuidesMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeGuides(t, dir, map[string]string{"bad.yaml": "prompt: [unclosed"})
	if _, err := LoadGuides(dir); err == nil {
		t.Error("expected error for malformed guide")
	}
}

func geminiForTest(t *testing.T, guides map[string]string, run Runner) *GeminiAnalyzer {
	t.Helper()
	dir := t.TempDir()
	writeGuides(t, dir, guides)

	cfg := config.DefaultConfig()
	cfg.AI.Gemini.GuidesDir = dir
	return NewGeminiAnalyzer(cfg, dir, run)
}

func TestGeminiAnalyzePartialFailure(t *testing.T) {
	guides := map[string]string{
		"01-style.md":    "check style",
		"02-security.md": "check security",
		"03-tests.md":    "check tests",
	}

	// The runner fails on exactly the second guide
	run := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		prompt := args[len(args)-1]
		if strings.Contains(prompt, "security") {
			return nil, fmt.Errorf("exit status 1")
		}
		return []byte("review output for: " + prompt), nil
	}

	a := geminiForTest(t, guides, run)
	result := a.Analyze(context.Background(), "/proj")

	if result.Status != domain.StatusWarning {
		t.Errorf("Status = %v, want warning for a partial failure", result.Status)
	}

	checks := map[string]float64{
		"totalGuides":      3,
		"successfulGuides": 2,
		"failedGuides":     1,
	}
	for name, want := range checks {
		got, ok := result.Metrics[name]
		if !ok {
			t.Errorf("metric %s missing", name)
			continue
		}
		if !got.Numeric || got.Number != want {
			t.Errorf("metric %s = %v, want %v", name, got, want)
		}
	}
	if _, ok := result.Metrics["executionTimeMs"]; !ok {
		t.Error("metric executionTimeMs missing")
	}

	// Per-guide sections appear in input order; the failed guide is marked
	idxStyle := strings.Index(result.Summary, "## 01-style")
	idxSecurity := strings.Index(result.Summary, "## 02-security")
	idxTests := strings.Index(result.Summary, "## 03-tests")
	if idxStyle < 0 || idxSecurity < 0 || idxTests < 0 {
		t.Fatalf("summary missing guide sections:\n%s", result.Summary)
	}
	if !(idxStyle < idxSecurity && idxSecurity < idxTests) {
		t.Errorf("guide sections out of input order:\n%s", result.Summary)
	}
	if !strings.Contains(result.Summary, "_review failed:") {
		t.Errorf("failed guide not marked in summary:\n%s", result.Summary)
	}
}

func TestGeminiAnalyzeAllPass(t *testing.T) {
	guides := map[string]string{"01-style.md": "check style"}
	a := geminiForTest(t, guides, stubRunner("all good", nil))

	result := a.Analyze(context.Background(), "/proj")
	if result.Status != domain.StatusPass {
		t.Errorf("Status = %v, want pass", result.Status)
	}
	if !strings.Contains(result.Summary, "all good") {
		t.Errorf("summary does not carry the review output:\n%s", result.Summary)
	}
}

func TestGeminiAnalyzeAllFail(t *testing.T) {
	guides := map[string]string{
		"01-style.md": "check style",
		"02-tests.md": "check tests",
	}
	a := geminiForTest(t, guides, stubRunner("", fmt.Errorf("boom")))

	result := a.Analyze(context.Background(), "/proj")
	if result.Status != domain.StatusError {
		t.Errorf("Status = %v, want error when every guide fails", result.Status)
	}
	if !strings.Contains(result.Summary, "all guide reviews failed") {
		t.Errorf("summary does not carry the failure cause:\n%s", result.Summary)
	}
}

func TestGeminiAnalyzeNoGuides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.Gemini.GuidesDir = t.TempDir()
	a := NewGeminiAnalyzer(cfg, "/proj", stubRunner("", nil))

	result := a.Analyze(context.Background(), "/proj")
	if result.Status != domain.StatusError {
		t.Errorf("Status = %v, want error when no guides exist", result.Status)
	}
}

func TestGuideStatus(t *testing.T) {
	tests := []struct {
		successful, failed int
		want               domain.Status
	}{
		{3, 0, domain.StatusPass},
		{2, 1, domain.StatusWarning},
		{0, 3, domain.StatusError},
	}
	for _, tt := range tests {
		if got := guideStatus(tt.successful, tt.failed); got != tt.want {
			t.Errorf("guideStatus(%d, %d) = %v, want %v", tt.successful, tt.failed, got, tt.want)
		}
	}
}
