package service

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/analyzer"
	"github.com/qgate-dev/qgate/internal/resolver"
)

// HTMLFormatter renders a QualityReport as a human-readable document.
//
// Rendering rules: results of type "sequential-gemini" go through a distinct
// summary block showing the four aggregate guide metrics plus a collapsible
// detail panel; every other type renders as a generic card with a status
// badge and an inline list of error-severity violations. Warnings are shown
// inline only for analyzer types that publish no detailed report of their
// own; tool types that do get a link to it instead. The renderer never omits
// an error-severity violation and never fails on unknown analyzer types.
type HTMLFormatter struct {
	buildSystem resolver.BuildSystem
}

// NewHTMLFormatter creates an HTML report renderer. The build system is used
// to resolve links to tool-specific detail reports.
func NewHTMLFormatter(bs resolver.BuildSystem) *HTMLFormatter {
	return &HTMLFormatter{buildSystem: bs}
}

// Render implements domain.ReportRenderer
func (f *HTMLFormatter) Render(report *domain.QualityReport, w io.Writer) error {
	data := f.buildView(report)
	funcMap := template.FuncMap{
		"loc": formatLocation,
	}
	tmpl := template.Must(template.New("report").Funcs(funcMap).Parse(htmlReportTemplate))
	if err := tmpl.Execute(w, data); err != nil {
		return domain.NewRenderError("html", err)
	}
	return nil
}

type htmlView struct {
	GeneratedAt   string
	ProjectName   string
	ProjectPath   string
	Revision      string
	Branch        string
	Version       string
	OverallStatus string
	OverallClass  string
	Results       []htmlResultView
}

type htmlResultView struct {
	Type        string
	Status      string
	StatusClass string
	SummaryHTML template.HTML
	DurationMS  int64
	Metrics     []htmlMetricView

	// Generic card fields
	Errors     []domain.Violation
	Warnings   []domain.Violation
	DetailLink string

	// Gemini block fields
	IsGemini         bool
	TotalGuides      string
	SuccessfulGuides string
	FailedGuides     string
	ExecutionTime    string
	GuideDetailHTML  template.HTML
}

type htmlMetricView struct {
	Name  string
	Value string
}

func (f *HTMLFormatter) buildView(report *domain.QualityReport) htmlView {
	view := htmlView{
		GeneratedAt:   report.GeneratedAt,
		ProjectName:   report.ProjectName,
		ProjectPath:   report.ProjectPath,
		Revision:      shortRevision(report.Revision),
		Branch:        report.Branch,
		Version:       report.Version,
		OverallStatus: string(report.OverallStatus),
		OverallClass:  statusClass(report.OverallStatus),
	}
	if view.ProjectName == "" {
		view.ProjectName = report.ProjectPath
	}

	for i := range report.Results {
		view.Results = append(view.Results, f.buildResultView(&report.Results[i]))
	}
	return view
}

func (f *HTMLFormatter) buildResultView(result *domain.AnalysisResult) htmlResultView {
	rv := htmlResultView{
		Type:        result.Type,
		Status:      string(result.Status),
		StatusClass: statusClass(result.Status),
		DurationMS:  result.DurationMS,
		Metrics:     metricViews(result.Metrics),
	}

	if result.Type == analyzer.TypeGemini {
		rv.IsGemini = true
		rv.TotalGuides = metricString(result.Metrics, "totalGuides")
		rv.SuccessfulGuides = metricString(result.Metrics, "successfulGuides")
		rv.FailedGuides = metricString(result.Metrics, "failedGuides")
		rv.ExecutionTime = metricString(result.Metrics, "executionTimeMs")
		rv.GuideDetailHTML = markupToHTML(result.Summary)
		return rv
	}

	rv.SummaryHTML = markupToHTML(result.Summary)

	// Error-severity violations always appear inline
	for _, v := range result.Violations {
		if v.Severity == domain.SeverityError {
			rv.Errors = append(rv.Errors, v)
		}
	}

	// Known tool types surface warnings through their own detail report;
	// types without one get warnings inline so they are never invisible
	rv.DetailLink = resolver.DetailReportLink(result.Type, f.buildSystem)
	if rv.DetailLink == "" {
		for _, v := range result.Violations {
			if v.Severity == domain.SeverityWarning {
				rv.Warnings = append(rv.Warnings, v)
			}
		}
	}
	return rv
}

func metricViews(metrics map[string]domain.MetricValue) []htmlMetricView {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]htmlMetricView, 0, len(names))
	for _, name := range names {
		views = append(views, htmlMetricView{Name: name, Value: metrics[name].String()})
	}
	return views
}

func metricString(metrics map[string]domain.MetricValue, name string) string {
	if v, ok := metrics[name]; ok {
		return v.String()
	}
	return "-"
}

func statusClass(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return "status-pass"
	case domain.StatusWarning:
		return "status-warning"
	case domain.StatusFail, domain.StatusError:
		return "status-fail"
	default:
		return "status-skipped"
	}
}

func shortRevision(rev string) string {
	if len(rev) > 10 {
		return rev[:10]
	}
	return rev
}

// markupToHTML converts the light markup analyzers use in summaries
// ("## heading" lines, "_italic_" lines, blank-line paragraphs) into HTML.
// All content is escaped before markup conversion.
func markupToHTML(summary string) template.HTML {
	var b strings.Builder
	var paragraph []string

	flush := func() {
		if len(paragraph) > 0 {
			b.WriteString("<p>" + strings.Join(paragraph, "<br>") + "</p>\n")
			paragraph = nil
		}
	}

	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "## "):
			flush()
			b.WriteString("<h4>" + template.HTMLEscapeString(strings.TrimPrefix(line, "## ")) + "</h4>\n")
		case len(line) > 2 && strings.HasPrefix(line, "_") && strings.HasSuffix(line, "_"):
			flush()
			b.WriteString("<em>" + template.HTMLEscapeString(strings.Trim(line, "_")) + "</em>\n")
		default:
			paragraph = append(paragraph, template.HTMLEscapeString(line))
		}
	}
	flush()

	return template.HTML(b.String())
}

// formatLocation renders a violation location for display
func formatLocation(v domain.Violation) string {
	if v.File == "" {
		return ""
	}
	if v.Line > 0 {
		return fmt.Sprintf("%s:%d", v.File, v.Line)
	}
	return v.File
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Quality Report - {{.ProjectName}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
        }
        .container { max-width: 1100px; margin: 0 auto; padding: 20px; }
        .header {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .header h1 { color: #667eea; margin-bottom: 10px; }
        .header .subtitle { color: #666; font-size: 14px; }
        .status-badge {
            display: inline-block;
            padding: 6px 16px;
            border-radius: 16px;
            font-size: 14px;
            font-weight: 700;
            color: white;
            text-transform: uppercase;
        }
        .status-pass { background: #4caf50; }
        .status-warning { background: #ff9800; }
        .status-fail { background: #f44336; }
        .status-skipped { background: #9e9e9e; }

        .card {
            background: white;
            border-radius: 10px;
            padding: 24px;
            margin-bottom: 16px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .card-header {
            display: flex;
            align-items: center;
            justify-content: space-between;
            margin-bottom: 12px;
            padding-bottom: 10px;
            border-bottom: 1px solid #e0e0e0;
        }
        .card-header h2 { font-size: 18px; color: #2c3e50; }
        .summary { color: #444; margin-bottom: 12px; }
        .summary h4 { margin: 12px 0 4px; color: #2c3e50; }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(140px, 1fr));
            gap: 12px;
            margin: 12px 0;
        }
        .metric-card {
            background: #f8f9fa;
            padding: 12px;
            border-radius: 8px;
            text-align: center;
        }
        .metric-value { font-size: 22px; font-weight: bold; color: #667eea; }
        .metric-label { color: #666; font-size: 12px; }

        .violation-list { list-style: none; margin: 8px 0; }
        .violation-list li {
            padding: 8px 12px;
            margin-bottom: 6px;
            border-left: 4px solid #f44336;
            background: #fff5f5;
            border-radius: 0 6px 6px 0;
            font-size: 14px;
        }
        .violation-list li.warning {
            border-left-color: #ff9800;
            background: #fffaf0;
        }
        .violation-loc { color: #888; font-size: 12px; }
        .detail-link { font-size: 13px; }
        details { margin-top: 10px; }
        details summary { cursor: pointer; color: #667eea; font-weight: 600; }
        .guide-detail { padding: 10px 14px; background: #f8f9fa; border-radius: 8px; margin-top: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Quality Report</h1>
            <p class="subtitle">
                {{.ProjectName}}{{if .Branch}} | {{.Branch}}{{if .Revision}}@{{.Revision}}{{end}}{{end}}
                | Generated: {{.GeneratedAt}}{{if .Version}} | qgate {{.Version}}{{end}}
            </p>
            <p style="margin-top: 10px;">
                <span class="status-badge {{.OverallClass}}">{{.OverallStatus}}</span>
            </p>
        </div>

        {{range .Results}}
        {{if .IsGemini}}
        <div class="card">
            <div class="card-header">
                <h2>AI Review ({{.Type}})</h2>
                <span class="status-badge {{.StatusClass}}">{{.Status}}</span>
            </div>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-value">{{.TotalGuides}}</div>
                    <div class="metric-label">Guides</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.SuccessfulGuides}}</div>
                    <div class="metric-label">Successful</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.FailedGuides}}</div>
                    <div class="metric-label">Failed</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.ExecutionTime}}</div>
                    <div class="metric-label">Execution ms</div>
                </div>
            </div>
            <details>
                <summary>Review details</summary>
                <div class="guide-detail">{{.GuideDetailHTML}}</div>
            </details>
        </div>
        {{else}}
        <div class="card">
            <div class="card-header">
                <h2>{{.Type}}</h2>
                <span class="status-badge {{.StatusClass}}">{{.Status}}</span>
            </div>
            <div class="summary">{{.SummaryHTML}}</div>
            {{if .Metrics}}
            <div class="metric-grid">
                {{range .Metrics}}
                <div class="metric-card">
                    <div class="metric-value">{{.Value}}</div>
                    <div class="metric-label">{{.Name}}</div>
                </div>
                {{end}}
            </div>
            {{end}}
            {{if .Errors}}
            <ul class="violation-list">
                {{range .Errors}}
                <li>{{.Message}}{{with loc .}} <span class="violation-loc">{{.}}</span>{{end}}</li>
                {{end}}
            </ul>
            {{end}}
            {{if .Warnings}}
            <ul class="violation-list">
                {{range .Warnings}}
                <li class="warning">{{.Message}}{{with loc .}} <span class="violation-loc">{{.}}</span>{{end}}</li>
                {{end}}
            </ul>
            {{end}}
            {{if .DetailLink}}
            <p class="detail-link"><a href="{{.DetailLink}}">Detailed {{.Type}} report</a></p>
            {{end}}
        </div>
        {{end}}
        {{end}}
    </div>
</body>
</html>`
