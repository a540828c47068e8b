package domain

import (
	"context"
	"io"
)

// Analyzer is the capability contract every quality tool variant implements.
//
// Analyze must return a normalized result even on internal failure: a variant
// converts any fault it hits into a result with StatusError and the cause in
// Summary, and never lets a panic or raw error cross this boundary. One
// analyzer failing can therefore never abort the run.
type Analyzer interface {
	// Name returns the catalog identifier, which is also the result Type
	Name() string

	// IsAvailable reports whether the underlying tool can run. It must be
	// fast, side-effect-free, and return false rather than fail when
	// availability cannot be determined.
	IsAvailable() bool

	// Analyze runs the tool against the project root and returns a
	// normalized result. It never returns nil.
	Analyze(ctx context.Context, projectRoot string) *AnalysisResult
}

// ProgressManager manages progress reporting during an orchestration run
type ProgressManager interface {
	// StartTask begins tracking a task with a total number of steps
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress output is being displayed
	IsInteractive() bool

	// Close cleans up all progress output
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	// Increment advances progress by n steps
	Increment(n int)

	// Describe updates the description of the current step
	Describe(description string)

	// Complete marks the task as finished
	Complete()
}

// ReportRenderer turns an assembled report into one output artifact.
// Renderers are pure: the only side effect is the write into w performed on
// the caller's behalf. A renderer error is a hard failure of the run.
type ReportRenderer interface {
	// Render writes the report to w
	Render(report *QualityReport, w io.Writer) error
}
