package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
)

// TypeArchUnit is the catalog identifier of the architecture rule analyzer
const TypeArchUnit = "archunit"

// ArchUnitAnalyzer runs a packaged architecture-rules runner against the
// project. Violations are project-level: they name a broken rule, not a
// single file and line.
type ArchUnitAnalyzer struct {
	cfg         *config.Config
	projectRoot string
	run         Runner
}

// NewArchUnitAnalyzer creates an architecture rule analyzer
func NewArchUnitAnalyzer(cfg *config.Config, projectRoot string, run Runner) *ArchUnitAnalyzer {
	return &ArchUnitAnalyzer{cfg: cfg, projectRoot: projectRoot, run: run}
}

// Name implements domain.Analyzer
func (a *ArchUnitAnalyzer) Name() string { return TypeArchUnit }

// IsAvailable implements domain.Analyzer
func (a *ArchUnitAnalyzer) IsAvailable() bool {
	if !toolOnPath("java") {
		return false
	}
	return a.rulesJar() != ""
}

func (a *ArchUnitAnalyzer) rulesJar() string {
	jar := a.cfg.ArchUnit.RulesJar
	if jar == "" {
		return ""
	}
	if !filepath.IsAbs(jar) {
		jar = filepath.Join(a.projectRoot, jar)
	}
	if _, err := os.Stat(jar); err != nil {
		return ""
	}
	return jar
}

// Analyze implements domain.Analyzer
func (a *ArchUnitAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	started := time.Now()

	jar := a.rulesJar()
	if jar == "" {
		return finish(domain.NewErrorResult(TypeArchUnit, "architecture rules jar not found"), started)
	}

	runCtx, cancel := timeoutContext(ctx, a.cfg.ArchUnit.TimeoutSeconds)
	defer cancel()

	out, err := a.run(runCtx, projectRoot, "java", "-jar", jar, projectRoot)
	violations := parseArchUnitOutput(out)

	// A nonzero exit with reported violations is the expected failure mode;
	// a nonzero exit without any is a runner fault.
	if err != nil && len(violations) == 0 {
		return finish(domain.NewErrorResult(TypeArchUnit, errorCause(runCtx, "archunit runner", err)), started)
	}

	status := domain.StatusPass
	summary := "All architecture rules passed."
	if len(violations) > 0 {
		status = domain.StatusFail
		summary = fmt.Sprintf("%d architecture rule violation(s).", len(violations))
	}

	result := &domain.AnalysisResult{
		Type:       TypeArchUnit,
		Status:     status,
		Summary:    summary,
		Violations: violations,
		Metrics: map[string]domain.MetricValue{
			"ruleViolations": domain.Metric(float64(len(violations))),
		},
	}
	return finish(result, started)
}

// parseArchUnitOutput extracts rule violations from the runner's line-based
// output. Lines look like "VIOLATION <rule-id>: <description>".
func parseArchUnitOutput(out []byte) []domain.Violation {
	violations := []domain.Violation{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "VIOLATION ")
		if !ok {
			continue
		}
		rule := rest
		message := rest
		if id, desc, found := strings.Cut(rest, ":"); found {
			rule = strings.TrimSpace(id)
			message = strings.TrimSpace(desc)
		}
		violations = append(violations, domain.Violation{
			Severity: domain.SeverityError,
			Message:  message,
			Type:     rule,
		})
	}
	return violations
}
