package service

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/analyzer"
	"github.com/qgate-dev/qgate/internal/config"
	"github.com/qgate-dev/qgate/internal/resolver"
	"github.com/qgate-dev/qgate/internal/version"
)

// Orchestrator selects enabled analyzers, runs each under a failure
// boundary, and folds their results into one QualityReport.
//
// The run-level contract: one analyzer's fault can never abort the run.
// Unavailability, internal faults, and panics are all downgraded to
// result-level statuses; the only errors Run itself returns are pre-flight
// faults (unreadable project root, unwritable output root).
type Orchestrator struct {
	cfg      *config.Config
	progress domain.ProgressManager
}

// NewOrchestrator creates an orchestrator for one configuration snapshot
func NewOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{cfg: cfg, progress: silentProgress{}}
}

// NewOrchestratorWithProgress creates an orchestrator with progress tracking
func NewOrchestratorWithProgress(cfg *config.Config, pm domain.ProgressManager) *Orchestrator {
	return &Orchestrator{cfg: cfg, progress: pm}
}

// Run executes all enabled analyzers against projectRoot and assembles the
// report. outputRoot is created if missing; report files themselves are
// written by the caller.
func (o *Orchestrator) Run(ctx context.Context, projectRoot, outputRoot string) (*domain.QualityReport, error) {
	info, err := os.Stat(projectRoot)
	if err != nil {
		return nil, domain.NewProjectAccessError(projectRoot, err)
	}
	if !info.IsDir() {
		return nil, domain.NewProjectAccessError(projectRoot, fmt.Errorf("not a directory"))
	}

	if outputRoot != "" {
		if err := os.MkdirAll(outputRoot, 0750); err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeInvalidInput, "cannot create output directory", err)
		}
	}

	proj := resolver.Detect(projectRoot)
	candidates := analyzer.Catalog(o.cfg, proj, projectRoot, nil)

	results := o.runCandidates(ctx, candidates, projectRoot)

	report := domain.NewQualityReport(projectRoot, o.cfg.IgnoreFailures)
	report.ProjectName = proj.Name
	report.Revision = proj.Revision
	report.Branch = proj.Branch
	report.Version = version.Version
	for _, r := range results {
		report.Append(r)
	}
	return report, nil
}

// runCandidates produces one result per candidate, in catalog order.
// Sequential by default; with performance.parallel the candidates fan out
// under an errgroup and results are re-slotted into catalog order so report
// ordering stays deterministic regardless of completion order.
func (o *Orchestrator) runCandidates(ctx context.Context, candidates []domain.Analyzer, projectRoot string) []domain.AnalysisResult {
	task := o.progress.StartTask("Running analyzers", len(candidates))
	defer task.Complete()

	results := make([]domain.AnalysisResult, len(candidates))

	if !o.cfg.Performance.Parallel {
		for i, a := range candidates {
			task.Describe(a.Name())
			results[i] = *o.runOne(ctx, a, projectRoot)
			task.Increment(1)
		}
		return results
	}

	g, gCtx := errgroup.WithContext(ctx)
	limit := o.cfg.Performance.MaxConcurrency
	if limit <= 0 {
		limit = config.DefaultMaxConcurrency
	}
	g.SetLimit(limit)

	for i, a := range candidates {
		g.Go(func() error {
			results[i] = *o.runOne(gCtx, a, projectRoot)
			task.Increment(1)
			// Always nil: faults are already downgraded to result
			// statuses and must not cancel sibling analyzers.
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runOne applies the skip-vs-run decision and the failure boundary for a
// single analyzer
func (o *Orchestrator) runOne(ctx context.Context, a domain.Analyzer, projectRoot string) *domain.AnalysisResult {
	if !isAvailableSafe(a) {
		if o.cfg.SkipUnavailableAnalyzers {
			return domain.NewSkippedResult(a.Name(), fmt.Sprintf("%s is not available on this system", a.Name()))
		}
		return domain.NewErrorResult(a.Name(), fmt.Sprintf("%s is not available and skipUnavailableAnalyzers is disabled", a.Name()))
	}
	return analyzeSafe(ctx, a, projectRoot)
}

// isAvailableSafe shields the orchestrator from a misbehaving availability
// check: a panic counts as unavailable
func isAvailableSafe(a domain.Analyzer) (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()
	return a.IsAvailable()
}

// analyzeSafe is the failure boundary around Analyze. Variants already
// normalize their own faults; this converts anything that still escapes,
// including panics and nil results, into a StatusError result.
func analyzeSafe(ctx context.Context, a domain.Analyzer, projectRoot string) (result *domain.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.NewErrorResult(a.Name(), fmt.Sprintf("analyzer panicked: %v", r))
		}
	}()

	result = a.Analyze(ctx, projectRoot)
	if result == nil {
		result = domain.NewErrorResult(a.Name(), "analyzer returned no result")
	}
	return result
}
