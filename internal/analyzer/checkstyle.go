package analyzer

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
	"github.com/qgate-dev/qgate/internal/resolver"
)

// TypeCheckstyle is the catalog identifier of the checkstyle analyzer
const TypeCheckstyle = "checkstyle"

// CheckstyleAnalyzer normalizes checkstyle's native XML report.
// When the checkstyle CLI is on PATH the analyzer runs it itself; otherwise
// it reads the report the build already produced.
type CheckstyleAnalyzer struct {
	cfg         *config.Config
	proj        resolver.ProjectInfo
	projectRoot string
	run         Runner
}

// NewCheckstyleAnalyzer creates a checkstyle analyzer
func NewCheckstyleAnalyzer(cfg *config.Config, proj resolver.ProjectInfo, projectRoot string, run Runner) *CheckstyleAnalyzer {
	return &CheckstyleAnalyzer{cfg: cfg, proj: proj, projectRoot: projectRoot, run: run}
}

// Name implements domain.Analyzer
func (a *CheckstyleAnalyzer) Name() string { return TypeCheckstyle }

// IsAvailable implements domain.Analyzer
func (a *CheckstyleAnalyzer) IsAvailable() bool {
	if toolOnPath("checkstyle") {
		return true
	}
	report := resolver.ResolveReportFile(a.cfg.Static.Checkstyle.ReportFile, a.projectRoot, a.proj.BuildSystem, TypeCheckstyle)
	return report != "" && readable(report)
}

// Analyze implements domain.Analyzer
func (a *CheckstyleAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	started := time.Now()

	data, cause := a.reportData(ctx, projectRoot)
	if cause != "" {
		return finish(domain.NewErrorResult(TypeCheckstyle, cause), started)
	}

	violations, fileCount, err := parseCheckstyleXML(data)
	if err != nil {
		return finish(domain.NewErrorResult(TypeCheckstyle, fmt.Sprintf("malformed checkstyle report: %v", err)), started)
	}

	result := &domain.AnalysisResult{
		Type:       TypeCheckstyle,
		Status:     violationStatus(violations),
		Summary:    fmt.Sprintf("Checkstyle found %d violation(s) across %d file(s).", len(violations), fileCount),
		Violations: violations,
		Metrics: map[string]domain.MetricValue{
			"files":      domain.Metric(float64(fileCount)),
			"violations": domain.Metric(float64(len(violations))),
		},
	}
	return finish(result, started)
}

// reportData obtains the native XML report, running the CLI when possible
func (a *CheckstyleAnalyzer) reportData(ctx context.Context, projectRoot string) ([]byte, string) {
	report := resolver.ResolveReportFile(a.cfg.Static.Checkstyle.ReportFile, projectRoot, a.proj.BuildSystem, TypeCheckstyle)

	if toolOnPath("checkstyle") {
		runCtx, cancel := timeoutContext(ctx, a.cfg.Static.Checkstyle.TimeoutSeconds)
		defer cancel()

		args := []string{"-f", "xml"}
		if a.cfg.Static.Checkstyle.ConfigFile != "" {
			args = append(args, "-c", a.cfg.Static.Checkstyle.ConfigFile)
		} else {
			args = append(args, "-c", "/google_checks.xml")
		}
		args = append(args, javaSources(projectRoot)...)

		out, err := a.run(runCtx, projectRoot, "checkstyle", args...)
		return cliReport(runCtx, "checkstyle", out, err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		return nil, fmt.Sprintf("checkstyle report not readable: %v", err)
	}
	return data, ""
}

type checkstyleXML struct {
	Files []struct {
		Name   string `xml:"name,attr"`
		Errors []struct {
			Line     int    `xml:"line,attr"`
			Severity string `xml:"severity,attr"`
			Message  string `xml:"message,attr"`
			Source   string `xml:"source,attr"`
		} `xml:"error"`
	} `xml:"file"`
}

func parseCheckstyleXML(data []byte) ([]domain.Violation, int, error) {
	var report checkstyleXML
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, 0, err
	}

	violations := []domain.Violation{}
	for _, file := range report.Files {
		for _, e := range file.Errors {
			violations = append(violations, domain.Violation{
				Severity: checkstyleSeverity(e.Severity),
				Message:  e.Message,
				Type:     e.Source,
				File:     file.Name,
				Line:     e.Line,
			})
		}
	}
	return violations, len(report.Files), nil
}

func checkstyleSeverity(s string) domain.Severity {
	switch s {
	case "error":
		return domain.SeverityError
	case "warning":
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
