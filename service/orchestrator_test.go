package service

import (
	"context"
	"testing"
	"time"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
)

// fakeAnalyzer drives the orchestrator's failure boundary in tests
type fakeAnalyzer struct {
	name      string
	available bool
	analyze   func(ctx context.Context, projectRoot string) *domain.AnalysisResult
}

func (f *fakeAnalyzer) Name() string      { return f.name }
func (f *fakeAnalyzer) IsAvailable() bool { return f.available }
func (f *fakeAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	return f.analyze(ctx, projectRoot)
}

func resultOf(name string, status domain.Status) func(context.Context, string) *domain.AnalysisResult {
	return func(ctx context.Context, projectRoot string) *domain.AnalysisResult {
		return &domain.AnalysisResult{
			Type:        name,
			Status:      status,
			Violations:  []domain.Violation{},
			CompletedAt: time.Now().Format(time.RFC3339),
		}
	}
}

func TestRunCandidatesMixedOutcomes(t *testing.T) {
	cfg := config.DefaultConfig()
	o := NewOrchestrator(cfg)

	// A succeeds, B warns, C is unavailable
	candidates := []domain.Analyzer{
		&fakeAnalyzer{name: "a", available: true, analyze: resultOf("a", domain.StatusPass)},
		&fakeAnalyzer{name: "b", available: true, analyze: resultOf("b", domain.StatusWarning)},
		&fakeAnalyzer{name: "c", available: false},
	}

	results := o.runCandidates(context.Background(), candidates, "/proj")

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (one per candidate)", len(results))
	}
	wantTypes := []string{"a", "b", "c"}
	for i, r := range results {
		if r.Type != wantTypes[i] {
			t.Errorf("results[%d].Type = %q, want %q (catalog order)", i, r.Type, wantTypes[i])
		}
	}
	if results[2].Status != domain.StatusSkipped {
		t.Errorf("unavailable analyzer status = %v, want skipped", results[2].Status)
	}

	report := domain.NewQualityReport("/proj", cfg.IgnoreFailures)
	for _, r := range results {
		report.Append(r)
	}
	if report.OverallStatus != domain.StatusWarning {
		t.Errorf("overall = %v, want warning (skipped does not mask the warning)", report.OverallStatus)
	}
}

func TestRunOneUnavailableStrictMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SkipUnavailableAnalyzers = false
	o := NewOrchestrator(cfg)

	result := o.runOne(context.Background(), &fakeAnalyzer{name: "c", available: false}, "/proj")
	if result.Status != domain.StatusError {
		t.Errorf("Status = %v, want error when skipping is disabled", result.Status)
	}
	if result.Summary == "" {
		t.Error("error result must say why")
	}
}

func TestRunOnePanicIsolated(t *testing.T) {
	cfg := config.DefaultConfig()
	o := NewOrchestrator(cfg)

	panicking := &fakeAnalyzer{
		name:      "bad",
		available: true,
		analyze: func(ctx context.Context, projectRoot string) *domain.AnalysisResult {
			panic("index out of range")
		},
	}

	result := o.runOne(context.Background(), panicking, "/proj")
	if result.Status != domain.StatusError {
		t.Errorf("Status = %v, want error", result.Status)
	}
	if result.Type != "bad" {
		t.Errorf("Type = %q, want the analyzer's name", result.Type)
	}
}

func TestRunCandidatesPanicDoesNotAbortSiblings(t *testing.T) {
	cfg := config.DefaultConfig()
	o := NewOrchestrator(cfg)

	candidates := []domain.Analyzer{
		&fakeAnalyzer{name: "first", available: true, analyze: resultOf("first", domain.StatusPass)},
		&fakeAnalyzer{name: "boom", available: true, analyze: func(ctx context.Context, projectRoot string) *domain.AnalysisResult {
			panic("kaboom")
		}},
		&fakeAnalyzer{name: "last", available: true, analyze: resultOf("last", domain.StatusPass)},
	}

	results := o.runCandidates(context.Background(), candidates, "/proj")
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[1].Status != domain.StatusError {
		t.Errorf("panicking analyzer status = %v, want error", results[1].Status)
	}
	if results[2].Status != domain.StatusPass {
		t.Errorf("sibling after panic status = %v, want pass", results[2].Status)
	}
}

func TestRunOneNilResult(t *testing.T) {
	cfg := config.DefaultConfig()
	o := NewOrchestrator(cfg)

	broken := &fakeAnalyzer{
		name:      "nil",
		available: true,
		analyze: func(ctx context.Context, projectRoot string) *domain.AnalysisResult {
			return nil
		},
	}

	result := o.runOne(context.Background(), broken, "/proj")
	if result == nil {
		t.Fatal("runOne returned nil")
	}
	if result.Status != domain.StatusError {
		t.Errorf("Status = %v, want error", result.Status)
	}
}

func TestRunOnePanickingAvailabilityCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	o := NewOrchestrator(cfg)

	result := o.runOne(context.Background(), &panicOnAvailable{}, "/proj")
	if result.Status != domain.StatusSkipped {
		t.Errorf("Status = %v, want skipped (panic counts as unavailable)", result.Status)
	}
}

type panicOnAvailable struct{}

func (p *panicOnAvailable) Name() string      { return "panicky" }
func (p *panicOnAvailable) IsAvailable() bool { panic("no") }
func (p *panicOnAvailable) Analyze(ctx context.Context, root string) *domain.AnalysisResult {
	return nil
}

func TestRunCandidatesParallelKeepsOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.Parallel = true
	cfg.Performance.MaxConcurrency = 3
	o := NewOrchestrator(cfg)

	// Earlier candidates finish later to expose reordering bugs
	delays := []time.Duration{30 * time.Millisecond, 15 * time.Millisecond, 0}
	names := []string{"slow", "medium", "fast"}
	candidates := make([]domain.Analyzer, len(names))
	for i, name := range names {
		delay := delays[i]
		candidates[i] = &fakeAnalyzer{
			name:      name,
			available: true,
			analyze: func(ctx context.Context, projectRoot string) *domain.AnalysisResult {
				time.Sleep(delay)
				return &domain.AnalysisResult{Type: name, Status: domain.StatusPass, Violations: []domain.Violation{}}
			},
		}
	}

	results := o.runCandidates(context.Background(), candidates, "/proj")
	for i, r := range results {
		if r.Type != names[i] {
			t.Errorf("results[%d].Type = %q, want %q", i, r.Type, names[i])
		}
	}
}

func TestOrchestratorRunRejectsBadProjectRoot(t *testing.T) {
	cfg := config.DefaultConfig()
	o := NewOrchestrator(cfg)

	if _, err := o.Run(context.Background(), "/definitely/not/here", ""); err == nil {
		t.Error("expected error for a missing project root")
	}
}

func TestOrchestratorRunAssemblesReport(t *testing.T) {
	cfg := config.DefaultConfig()
	// Keep the run hermetic: no tool lookups, no reviewer invocation
	cfg.Static.Enabled = false
	cfg.Coverage.Enabled = false
	cfg.ArchUnit.Enabled = false
	cfg.AI.Enabled = false
	o := NewOrchestrator(cfg)

	root := t.TempDir()
	report, err := o.Run(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ProjectPath != root {
		t.Errorf("ProjectPath = %q, want %q", report.ProjectPath, root)
	}
	if len(report.Results) != 0 {
		t.Errorf("got %d results with every analyzer disabled, want 0", len(report.Results))
	}
	if report.OverallStatus != domain.StatusPass {
		t.Errorf("empty report overall = %v, want pass", report.OverallStatus)
	}
}
