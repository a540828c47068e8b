package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/config"
	"github.com/qgate-dev/qgate/internal/history"
	"github.com/qgate-dev/qgate/internal/resolver"
	"github.com/qgate-dev/qgate/service"
)

var (
	runConfigPath     string
	runOutputRoot     string
	runParallel       bool
	runIgnoreFailures bool
	runJSONStdout     bool
	runNoHistory      bool
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Run all enabled analyzers and produce a quality report",
		Long: `Run the quality gate against a project.

Exit codes:
  0 - Overall status is pass or warning
  1 - Overall status is fail
  2 - The run could not start (bad project root, broken config, render failure)

Examples:
  # Run against the current directory
  qgate run

  # Run against a project with an explicit config file
  qgate run --config qa/qgate.yaml /path/to/project

  # Machine-readable output on stdout
  qgate run --json .`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runQualityGate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&runOutputRoot, "output", "o", "build/reports/quality", "Directory for report artifacts")
	cmd.Flags().BoolVar(&runParallel, "parallel", false, "Run independent analyzers concurrently")
	cmd.Flags().BoolVar(&runIgnoreFailures, "ignore-failures", false, "Downgrade an overall fail to warning")
	cmd.Flags().BoolVar(&runJSONStdout, "json", false, "Print the JSON report to stdout instead of the summary")
	cmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Skip recording this run in the history store")

	return cmd
}

func runQualityGate(cmd *cobra.Command, args []string) error {
	projectRoot := "."
	if len(args) > 0 {
		projectRoot = args[0]
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return &RunExitError{Code: 2, Message: fmt.Sprintf("invalid project path: %v", err)}
	}

	cfg, err := config.LoadConfigWithTarget(runConfigPath, absRoot)
	if err != nil {
		return &RunExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}
	if cmd.Flags().Changed("ignore-failures") {
		cfg.IgnoreFailures = runIgnoreFailures
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Performance.Parallel = runParallel
	}

	pm := service.NewProgressManager(!runJSONStdout)
	defer pm.Close()

	orchestrator := service.NewOrchestratorWithProgress(cfg, pm)
	report, err := orchestrator.Run(context.Background(), absRoot, runOutputRoot)
	if err != nil {
		return &RunExitError{Code: 2, Message: err.Error()}
	}

	if err := writeReports(cfg, report, absRoot); err != nil {
		return &RunExitError{Code: 2, Message: err.Error()}
	}

	recordHistory(cfg, report)

	if runJSONStdout {
		if err := service.NewJSONFormatter().Render(report, os.Stdout); err != nil {
			return &RunExitError{Code: 2, Message: err.Error()}
		}
	} else {
		fmt.Println(service.RenderConsoleSummary(report))
		fmt.Printf("Reports written to %s\n", runOutputRoot)
	}

	if report.OverallStatus == domain.StatusFail {
		return &RunExitError{Code: 1, Message: ""}
	}
	return nil
}

// writeReports renders every enabled artifact under the output root.
// A renderer failure is a hard failure of the run.
func writeReports(cfg *config.Config, report *domain.QualityReport, projectRoot string) error {
	bs := resolver.Detect(projectRoot).BuildSystem

	renderers := []struct {
		enabled  bool
		filename string
		renderer domain.ReportRenderer
	}{
		{cfg.Reports.JSON.Enabled, "report.json", service.NewJSONFormatter()},
		{cfg.Reports.HTML.Enabled, "report.html", service.NewHTMLFormatter(bs)},
		{cfg.Reports.Markdown.Enabled, "report.md", service.NewMarkdownFormatter()},
	}

	for _, r := range renderers {
		if !r.enabled {
			continue
		}
		path := filepath.Join(runOutputRoot, r.filename)
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", path, err)
		}
		renderErr := r.renderer.Render(report, file)
		closeErr := file.Close()
		if renderErr != nil {
			return renderErr
		}
		if closeErr != nil {
			return fmt.Errorf("cannot write %s: %w", path, closeErr)
		}
	}
	return nil
}

// recordHistory persists the run summary when the store is enabled.
// History faults never fail the run.
func recordHistory(cfg *config.Config, report *domain.QualityReport) {
	if !cfg.History.Enabled || runNoHistory {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history store unavailable: %v\n", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Record(report); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
	}
}
