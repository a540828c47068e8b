package analyzer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
	"github.com/qgate-dev/qgate/internal/resolver"
)

// TypeJaCoCo is the catalog identifier of the coverage analyzer
const TypeJaCoCo = "jacoco"

// JaCoCoAnalyzer normalizes the JaCoCo CSV summary produced by the build.
// Coverage is measured during the test run itself, so this analyzer only
// aggregates the numbers and applies the optional minimum-coverage gate.
type JaCoCoAnalyzer struct {
	cfg         *config.Config
	proj        resolver.ProjectInfo
	projectRoot string
}

// NewJaCoCoAnalyzer creates a coverage analyzer
func NewJaCoCoAnalyzer(cfg *config.Config, proj resolver.ProjectInfo, projectRoot string) *JaCoCoAnalyzer {
	return &JaCoCoAnalyzer{cfg: cfg, proj: proj, projectRoot: projectRoot}
}

// Name implements domain.Analyzer
func (a *JaCoCoAnalyzer) Name() string { return TypeJaCoCo }

// IsAvailable implements domain.Analyzer
func (a *JaCoCoAnalyzer) IsAvailable() bool {
	report := resolver.ResolveReportFile(a.cfg.Coverage.JaCoCo.ReportFile, a.projectRoot, a.proj.BuildSystem, TypeJaCoCo)
	return report != "" && readable(report)
}

// Analyze implements domain.Analyzer
func (a *JaCoCoAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	started := time.Now()

	report := resolver.ResolveReportFile(a.cfg.Coverage.JaCoCo.ReportFile, projectRoot, a.proj.BuildSystem, TypeJaCoCo)
	data, err := os.ReadFile(report)
	if err != nil {
		return finish(domain.NewErrorResult(TypeJaCoCo, fmt.Sprintf("JaCoCo report not readable: %v", err)), started)
	}

	cov, err := parseJaCoCoCSV(data)
	if err != nil {
		return finish(domain.NewErrorResult(TypeJaCoCo, fmt.Sprintf("malformed JaCoCo report: %v", err)), started)
	}

	status := domain.StatusPass
	violations := []domain.Violation{}
	minimum := a.cfg.Coverage.Minimum
	if minimum > 0 && cov.linePercent() < minimum {
		status = domain.StatusWarning
		violations = append(violations, domain.Violation{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("line coverage %.1f%% is below the required %.1f%%", cov.linePercent(), minimum),
			Type:     "coverage-minimum",
		})
	}

	result := &domain.AnalysisResult{
		Type:   TypeJaCoCo,
		Status: status,
		Summary: fmt.Sprintf("Line coverage %.1f%%, branch coverage %.1f%% (%d of %d lines covered).",
			cov.linePercent(), cov.branchPercent(), cov.linesCovered, cov.linesCovered+cov.linesMissed),
		Violations: violations,
		Metrics: map[string]domain.MetricValue{
			"lineCoverage":        domain.Metric(cov.linePercent()),
			"branchCoverage":      domain.Metric(cov.branchPercent()),
			"instructionsCovered": domain.Metric(float64(cov.instructionsCovered)),
			"instructionsMissed":  domain.Metric(float64(cov.instructionsMissed)),
		},
	}
	return finish(result, started)
}

type coverageTotals struct {
	instructionsMissed  int
	instructionsCovered int
	branchesMissed      int
	branchesCovered     int
	linesMissed         int
	linesCovered        int
}

func (c coverageTotals) linePercent() float64 {
	return percent(c.linesCovered, c.linesMissed)
}

func (c coverageTotals) branchPercent() float64 {
	return percent(c.branchesCovered, c.branchesMissed)
}

func percent(covered, missed int) float64 {
	total := covered + missed
	if total == 0 {
		return 100
	}
	return float64(covered) / float64(total) * 100
}

// parseJaCoCoCSV sums the per-class rows of a JaCoCo CSV summary.
// Column layout: GROUP,PACKAGE,CLASS,INSTRUCTION_MISSED,INSTRUCTION_COVERED,
// BRANCH_MISSED,BRANCH_COVERED,LINE_MISSED,LINE_COVERED,...
func parseJaCoCoCSV(data []byte) (coverageTotals, error) {
	var totals coverageTotals

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return totals, err
	}
	if len(records) < 2 {
		return totals, fmt.Errorf("report contains no class rows")
	}

	for _, row := range records[1:] {
		if len(row) < 9 {
			return totals, fmt.Errorf("row has %d columns, want at least 9", len(row))
		}
		cols, err := atoiAll(row[3:9])
		if err != nil {
			return totals, err
		}
		totals.instructionsMissed += cols[0]
		totals.instructionsCovered += cols[1]
		totals.branchesMissed += cols[2]
		totals.branchesCovered += cols[3]
		totals.linesMissed += cols[4]
		totals.linesCovered += cols[5]
	}
	return totals, nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("non-numeric coverage cell %q", f)
		}
		out[i] = n
	}
	return out, nil
}
