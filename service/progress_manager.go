package service

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/qgate-dev/qgate/domain"
)

// NewProgressManager returns the progress manager for a quality run.
// Progress is drawn only when enabled and stderr is an interactive terminal;
// JSON output and CI runs stay silent.
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return &runProgress{out: os.Stderr}
	}
	return silentProgress{}
}

// IsInteractiveEnvironment reports whether progress output makes sense:
// stderr is a terminal and we are not running under CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// runProgress draws one bar per task of the quality run, on stderr so report
// output on stdout stays clean
type runProgress struct {
	out  io.Writer
	bars []*progressbar.ProgressBar
}

// StartTask begins a bar for one sweep over total analyzers
func (p *runProgress) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(24),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	p.bars = append(p.bars, bar)
	return &analyzerSweep{bar: bar, label: description}
}

func (p *runProgress) IsInteractive() bool { return true }

// Close finishes any bar still running so the terminal line is released
func (p *runProgress) Close() {
	for _, bar := range p.bars {
		_ = bar.Finish()
	}
	p.bars = nil
}

// analyzerSweep tracks one pass over the analyzer catalog. Describe names
// the analyzer currently running next to the sweep label.
type analyzerSweep struct {
	bar   *progressbar.ProgressBar
	label string
}

func (s *analyzerSweep) Increment(n int) {
	_ = s.bar.Add(n)
}

func (s *analyzerSweep) Describe(analyzerName string) {
	s.bar.Describe(fmt.Sprintf("%s: %s", s.label, analyzerName))
}

func (s *analyzerSweep) Complete() {
	_ = s.bar.Finish()
}

// silentProgress discards all progress updates
type silentProgress struct{}

func (silentProgress) StartTask(string, int) domain.TaskProgress { return silentTask{} }
func (silentProgress) IsInteractive() bool                       { return false }
func (silentProgress) Close()                                    {}

type silentTask struct{}

func (silentTask) Increment(int)   {}
func (silentTask) Describe(string) {}
func (silentTask) Complete()       {}
