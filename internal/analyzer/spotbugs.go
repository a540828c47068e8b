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

// TypeSpotBugs is the catalog identifier of the SpotBugs analyzer
const TypeSpotBugs = "spotbugs"

// SpotBugsAnalyzer normalizes SpotBugs' native XML report. SpotBugs analyzes
// compiled bytecode, so unlike the other static tools it is never run here:
// the analyzer only consumes the report the build produced.
type SpotBugsAnalyzer struct {
	cfg         *config.Config
	proj        resolver.ProjectInfo
	projectRoot string
}

// NewSpotBugsAnalyzer creates a SpotBugs analyzer
func NewSpotBugsAnalyzer(cfg *config.Config, proj resolver.ProjectInfo, projectRoot string) *SpotBugsAnalyzer {
	return &SpotBugsAnalyzer{cfg: cfg, proj: proj, projectRoot: projectRoot}
}

// Name implements domain.Analyzer
func (a *SpotBugsAnalyzer) Name() string { return TypeSpotBugs }

// IsAvailable implements domain.Analyzer
func (a *SpotBugsAnalyzer) IsAvailable() bool {
	report := resolver.ResolveReportFile(a.cfg.Static.SpotBugs.ReportFile, a.projectRoot, a.proj.BuildSystem, TypeSpotBugs)
	return report != "" && readable(report)
}

// Analyze implements domain.Analyzer
func (a *SpotBugsAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	started := time.Now()

	report := resolver.ResolveReportFile(a.cfg.Static.SpotBugs.ReportFile, projectRoot, a.proj.BuildSystem, TypeSpotBugs)
	data, err := os.ReadFile(report)
	if err != nil {
		return finish(domain.NewErrorResult(TypeSpotBugs, fmt.Sprintf("SpotBugs report not readable: %v", err)), started)
	}

	violations, err := parseSpotBugsXML(data)
	if err != nil {
		return finish(domain.NewErrorResult(TypeSpotBugs, fmt.Sprintf("malformed SpotBugs report: %v", err)), started)
	}

	result := &domain.AnalysisResult{
		Type:       TypeSpotBugs,
		Status:     violationStatus(violations),
		Summary:    fmt.Sprintf("SpotBugs found %d bug(s).", len(violations)),
		Violations: violations,
		Metrics: map[string]domain.MetricValue{
			"bugs": domain.Metric(float64(len(violations))),
		},
	}
	return finish(result, started)
}

type spotBugsXML struct {
	BugInstances []struct {
		Type     string `xml:"type,attr"`
		Priority int    `xml:"priority,attr"`
		Message  string `xml:"LongMessage"`
		Line     struct {
			SourcePath string `xml:"sourcepath,attr"`
			Start      int    `xml:"start,attr"`
		} `xml:"SourceLine"`
	} `xml:"BugInstance"`
}

func parseSpotBugsXML(data []byte) ([]domain.Violation, error) {
	var report spotBugsXML
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	violations := []domain.Violation{}
	for _, bug := range report.BugInstances {
		message := bug.Message
		if message == "" {
			message = bug.Type
		}
		violations = append(violations, domain.Violation{
			Severity: spotBugsSeverity(bug.Priority),
			Message:  message,
			Type:     bug.Type,
			File:     bug.Line.SourcePath,
			Line:     bug.Line.Start,
		})
	}
	return violations, nil
}

// spotBugsSeverity maps SpotBugs rank priority (1 highest) to severity
func spotBugsSeverity(priority int) domain.Severity {
	switch priority {
	case 1:
		return domain.SeverityError
	case 2:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
