package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
)

// TypeGemini is the catalog identifier of the sequential AI reviewer
const TypeGemini = "sequential-gemini"

// Guide is one independent review instruction for the AI reviewer
type Guide struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// GeminiAnalyzer iterates an ordered sequence of review guides and invokes
// the reviewer CLI once per guide. Guides run sequentially, never in
// parallel, and a single guide's failure is recorded as a partial failure
// without aborting the remaining guides. Per-guide outputs are appended to
// the summary in input order so summaries stay reproducible.
type GeminiAnalyzer struct {
	cfg         *config.Config
	projectRoot string
	run         Runner
}

// NewGeminiAnalyzer creates the sequential AI reviewer
func NewGeminiAnalyzer(cfg *config.Config, projectRoot string, run Runner) *GeminiAnalyzer {
	return &GeminiAnalyzer{cfg: cfg, projectRoot: projectRoot, run: run}
}

// Name implements domain.Analyzer
func (a *GeminiAnalyzer) Name() string { return TypeGemini }

// IsAvailable implements domain.Analyzer
func (a *GeminiAnalyzer) IsAvailable() bool {
	if !toolOnPath(a.cfg.AI.Gemini.Command) {
		return false
	}
	guides, err := LoadGuides(a.guidesDir())
	return err == nil && len(guides) > 0
}

func (a *GeminiAnalyzer) guidesDir() string {
	dir := a.cfg.AI.Gemini.GuidesDir
	if dir == "" {
		dir = config.DefaultGuidesDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.projectRoot, dir)
	}
	return dir
}

// Analyze implements domain.Analyzer
func (a *GeminiAnalyzer) Analyze(ctx context.Context, projectRoot string) *domain.AnalysisResult {
	started := time.Now()

	guides, err := LoadGuides(a.guidesDir())
	if err != nil {
		return finish(domain.NewErrorResult(TypeGemini, fmt.Sprintf("cannot load review guides: %v", err)), started)
	}
	if len(guides) == 0 {
		return finish(domain.NewErrorResult(TypeGemini, "no review guides found"), started)
	}

	var summary strings.Builder
	successful := 0
	failed := 0
	var firstCause string

	for _, guide := range guides {
		output, guideErr := a.reviewGuide(ctx, projectRoot, guide)

		summary.WriteString("## " + guide.Name + "\n\n")
		if guideErr != nil {
			failed++
			cause := guideErr.Error()
			if firstCause == "" {
				firstCause = fmt.Sprintf("guide %q: %s", guide.Name, cause)
			}
			summary.WriteString("_review failed: " + cause + "_\n\n")
			continue
		}
		successful++
		summary.WriteString(strings.TrimSpace(output) + "\n\n")
	}

	result := &domain.AnalysisResult{
		Type:       TypeGemini,
		Status:     guideStatus(successful, failed),
		Summary:    strings.TrimSpace(summary.String()),
		Violations: []domain.Violation{},
		Metrics: map[string]domain.MetricValue{
			"totalGuides":      domain.Metric(float64(len(guides))),
			"successfulGuides": domain.Metric(float64(successful)),
			"failedGuides":     domain.Metric(float64(failed)),
			"executionTimeMs":  domain.Metric(float64(time.Since(started).Milliseconds())),
		},
	}

	// A fully failed review behaves like any other analyzer fault: the
	// summary must carry the cause.
	if failed == len(guides) && firstCause != "" {
		result.Summary = "all guide reviews failed; first failure: " + firstCause + "\n\n" + result.Summary
	}

	return finish(result, started)
}

// reviewGuide invokes the reviewer CLI for one guide, bounded by the
// configured per-guide timeout
func (a *GeminiAnalyzer) reviewGuide(ctx context.Context, projectRoot string, guide Guide) (string, error) {
	runCtx, cancel := timeoutContext(ctx, a.cfg.AI.Gemini.TimeoutSeconds)
	defer cancel()

	out, err := a.run(runCtx, projectRoot, a.cfg.AI.Gemini.Command, "-p", guide.Prompt)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("review timed out")
		}
		return "", fmt.Errorf("reviewer exited with error: %v", err)
	}
	return string(out), nil
}

func guideStatus(successful, failed int) domain.Status {
	switch {
	case failed == 0:
		return domain.StatusPass
	case successful == 0:
		return domain.StatusError
	default:
		return domain.StatusWarning
	}
}

// LoadGuides reads guide files from dir in lexical order. YAML files carry
// an explicit name and prompt; markdown and text files use the file name as
// the guide name and the content as the prompt.
func LoadGuides(dir string) ([]Guide, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".md", ".txt":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	guides := make([]Guide, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read guide %s: %w", name, err)
		}

		ext := filepath.Ext(name)
		if ext == ".yaml" || ext == ".yml" {
			var guide Guide
			if err := yaml.Unmarshal(data, &guide); err != nil {
				return nil, fmt.Errorf("malformed guide %s: %w", name, err)
			}
			if guide.Name == "" {
				guide.Name = strings.TrimSuffix(name, ext)
			}
			guides = append(guides, guide)
			continue
		}

		guides = append(guides, Guide{
			Name:   strings.TrimSuffix(name, ext),
			Prompt: string(data),
		})
	}
	return guides, nil
}
