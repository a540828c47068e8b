package analyzer

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
	"github.com/qgate-dev/qgate/internal/resolver"
)

// TypePMD is the catalog identifier of the PMD analyzer
const TypePMD = "pmd"

// PMDAnalyzer normalizes PMD's native XML report
type PMDAnalyzer struct {
	cfg         *config.Config
	proj        resolver.ProjectInfo
	projectRoot string
	run         Runner
}

// NewPMDAnalyzer creates a PMD analyzer
func NewPMDAnalyzer(cfg *config.Config, proj resolver.ProjectInfo, projectRoot string, run Runner) *PMDAnalyzer {
	return &PMDAnalyzer{cfg: cfg, proj: proj, projectRoot: projectRoot, run: run}
}

// Name implements domain.Analyzer
func (a *PMDAnalyzer) Name() string { return TypePMD }

// IsAvailable implements domain.Analyzer
func (a *PMDAnalyzer) IsAvailable() bool {
	if toolOnPath("pmd") {
		return true
	}
	report := resolver.ResolveReportFile(a.cfg.Static.PMD.ReportFile, a.projectRoot, a.proj.BuildSystem, TypePMD)
	return report != "" && readable(report)
}

// Analyze implements domain.Analyzer
func (a *PMDAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	started := time.Now()

	data, cause := a.reportData(ctx, projectRoot)
	if cause != "" {
		return finish(domain.NewErrorResult(TypePMD, cause), started)
	}

	violations, err := parsePMDXML(data)
	if err != nil {
		return finish(domain.NewErrorResult(TypePMD, fmt.Sprintf("malformed PMD report: %v", err)), started)
	}

	result := &domain.AnalysisResult{
		Type:       TypePMD,
		Status:     violationStatus(violations),
		Summary:    fmt.Sprintf("PMD found %d violation(s).", len(violations)),
		Violations: violations,
		Metrics: map[string]domain.MetricValue{
			"violations": domain.Metric(float64(len(violations))),
		},
	}
	return finish(result, started)
}

func (a *PMDAnalyzer) reportData(ctx context.Context, projectRoot string) ([]byte, string) {
	if toolOnPath("pmd") {
		runCtx, cancel := timeoutContext(ctx, a.cfg.Static.PMD.TimeoutSeconds)
		defer cancel()

		ruleset := a.cfg.Static.PMD.Ruleset
		if ruleset == "" {
			ruleset = "rulesets/java/quickstart.xml"
		}
		sources := strings.Join(javaSources(projectRoot), ",")
		args := []string{"check", "-d", sources, "-R", ruleset, "-f", "xml", "--no-progress"}

		// pmd exits with code 4 when it finds violations
		out, err := a.run(runCtx, projectRoot, "pmd", args...)
		return cliReport(runCtx, "pmd", out, err)
	}

	report := resolver.ResolveReportFile(a.cfg.Static.PMD.ReportFile, projectRoot, a.proj.BuildSystem, TypePMD)
	data, err := os.ReadFile(report)
	if err != nil {
		return nil, fmt.Sprintf("PMD report not readable: %v", err)
	}
	return data, ""
}

type pmdXML struct {
	Files []struct {
		Name       string `xml:"name,attr"`
		Violations []struct {
			BeginLine int    `xml:"beginline,attr"`
			Priority  int    `xml:"priority,attr"`
			Rule      string `xml:"rule,attr"`
			Text      string `xml:",chardata"`
		} `xml:"violation"`
	} `xml:"file"`
}

func parsePMDXML(data []byte) ([]domain.Violation, error) {
	var report pmdXML
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	violations := []domain.Violation{}
	for _, file := range report.Files {
		for _, v := range file.Violations {
			violations = append(violations, domain.Violation{
				Severity: pmdSeverity(v.Priority),
				Message:  strings.TrimSpace(v.Text),
				Type:     v.Rule,
				File:     file.Name,
				Line:     v.BeginLine,
			})
		}
	}
	return violations, nil
}

// pmdSeverity maps PMD priority (1 highest .. 5 lowest) to severity
func pmdSeverity(priority int) domain.Severity {
	switch {
	case priority <= 2:
		return domain.SeverityError
	case priority == 3:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
