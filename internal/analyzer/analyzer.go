// Package analyzer implements one variant per supported quality tool plus
// the fixed catalog the orchestrator selects from. Every variant satisfies
// domain.Analyzer: availability checks never fail, and Analyze converts any
// internal fault into a result with StatusError instead of letting it escape.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
	"github.com/qgate-dev/qgate/internal/resolver"
)

// Runner executes an external command in dir and returns its combined
// output. Variants take a Runner so tests can substitute tool invocations.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner is the production Runner backed by os/exec
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// toolOnPath reports whether an executable is resolvable, and never panics
func toolOnPath(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// finish stamps completion metadata on a result
func finish(result *domain.AnalysisResult, started time.Time) *domain.AnalysisResult {
	result.CompletedAt = time.Now().Format(time.RFC3339)
	result.DurationMS = time.Since(started).Milliseconds()
	return result
}

// timeoutContext derives a bounded context from the variant's configured
// timeout. A non-positive timeout leaves the parent context unchanged.
func timeoutContext(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

// javaSources resolves the Java files a CLI tool should scan, honoring
// .gitignore and skipping build output. Falls back to the project root when
// resolution finds nothing, so the tool still scans with its own discovery.
func javaSources(projectRoot string) []string {
	files, err := resolver.SourceFiles(projectRoot, []string{".java"})
	if err != nil || len(files) == 0 {
		return []string{projectRoot}
	}
	return files
}

// xmlOutput reports whether tool output can be treated as an XML report
// rather than error text
func xmlOutput(out []byte) bool {
	trimmed := bytes.TrimSpace(out)
	return len(trimmed) > 0 && trimmed[0] == '<'
}

// cliReport decides whether a CLI tool's output is a usable report. A nonzero
// exit with a report on stdout means violations were found; a timeout, or
// error text where the XML should be, is a tool failure.
func cliReport(ctx context.Context, tool string, out []byte, err error) ([]byte, string) {
	if err != nil && (ctx.Err() == context.DeadlineExceeded || !xmlOutput(out)) {
		return nil, errorCause(ctx, tool, err)
	}
	return out, ""
}

// errorCause describes a tool failure, folding a context timeout into the text
func errorCause(ctx context.Context, tool string, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("%s timed out", tool)
	}
	return fmt.Sprintf("%s failed: %v", tool, err)
}

// violationStatus derives a result status from the violations a tool reported
func violationStatus(violations []domain.Violation) domain.Status {
	status := domain.StatusPass
	for _, v := range violations {
		switch v.Severity {
		case domain.SeverityError:
			return domain.StatusFail
		case domain.SeverityWarning:
			status = domain.StatusWarning
		}
	}
	return status
}

// Catalog returns the fixed, ordered list of analyzers enabled by the
// configuration. Catalog order is report order.
func Catalog(cfg *config.Config, proj resolver.ProjectInfo, projectRoot string, run Runner) []domain.Analyzer {
	if run == nil {
		run = ExecRunner
	}

	var analyzers []domain.Analyzer
	if cfg.CheckstyleEnabled() {
		analyzers = append(analyzers, NewCheckstyleAnalyzer(cfg, proj, projectRoot, run))
	}
	if cfg.PMDEnabled() {
		analyzers = append(analyzers, NewPMDAnalyzer(cfg, proj, projectRoot, run))
	}
	if cfg.SpotBugsEnabled() {
		analyzers = append(analyzers, NewSpotBugsAnalyzer(cfg, proj, projectRoot))
	}
	if cfg.JaCoCoEnabled() {
		analyzers = append(analyzers, NewJaCoCoAnalyzer(cfg, proj, projectRoot))
	}
	if cfg.ArchUnitEnabled() {
		analyzers = append(analyzers, NewArchUnitAnalyzer(cfg, projectRoot, run))
	}
	if cfg.GeminiEnabled() {
		analyzers = append(analyzers, NewGeminiAnalyzer(cfg, projectRoot, run))
	}
	return analyzers
}
