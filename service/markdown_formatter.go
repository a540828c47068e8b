package service

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/qgate-dev/qgate/domain"
)

// MarkdownFormatter renders a QualityReport as a Markdown document suitable
// for sharing and for pasting into code review threads.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a Markdown report renderer
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Render implements domain.ReportRenderer
func (f *MarkdownFormatter) Render(report *domain.QualityReport, w io.Writer) error {
	md := markdown.NewMarkdown(w)

	md.H1("Quality Report")
	md.PlainText("")

	rows := [][]string{
		{"Project", report.ProjectPath},
		{"Generated", report.GeneratedAt},
		{"Overall Status", statusEmoji(report.OverallStatus) + " " + string(report.OverallStatus)},
	}
	if report.Branch != "" {
		rows = append(rows, []string{"Branch", report.Branch})
	}
	if report.Revision != "" {
		rows = append(rows, []string{"Revision", "`" + shortRevision(report.Revision) + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	f.writeResultsTable(md, report)

	for i := range report.Results {
		f.writeResultSection(md, &report.Results[i])
	}

	if err := md.Build(); err != nil {
		return domain.NewRenderError("markdown", err)
	}
	return nil
}

func (f *MarkdownFormatter) writeResultsTable(md *markdown.Markdown, report *domain.QualityReport) {
	md.H2("Analyzers")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			r.Type,
			statusEmoji(r.Status) + " " + string(r.Status),
			strconv.Itoa(len(r.Violations)),
			strconv.FormatInt(r.DurationMS, 10) + " ms",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Analyzer", "Status", "Violations", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (f *MarkdownFormatter) writeResultSection(md *markdown.Markdown, result *domain.AnalysisResult) {
	if result.Status == domain.StatusSkipped {
		return
	}

	md.H2(result.Type)
	md.PlainText("")
	md.PlainText(result.Summary)
	md.PlainText("")

	if len(result.Violations) > 0 {
		items := make([]string, 0, len(result.Violations))
		for _, v := range result.Violations {
			item := fmt.Sprintf("**%s** %s", v.Severity, v.Message)
			if loc := formatLocation(v); loc != "" {
				item += " (`" + loc + "`)"
			}
			items = append(items, item)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}

func statusEmoji(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return "✅"
	case domain.StatusWarning:
		return "⚠️"
	case domain.StatusFail, domain.StatusError:
		return "❌"
	case domain.StatusSkipped:
		return "⏭️"
	default:
		return ""
	}
}
