package service

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qgate-dev/qgate/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
)

// RenderConsoleSummary renders a QualityReport as a styled terminal string
func RenderConsoleSummary(report *domain.QualityReport) string {
	var b strings.Builder

	header := titleStyle.Render("Quality Gate") + "  " + styledStatus(report.OverallStatus)
	project := dimStyle.Render(report.ProjectPath)
	if report.Branch != "" {
		project += dimStyle.Render(fmt.Sprintf("  (%s@%s)", report.Branch, shortRevision(report.Revision)))
	}
	b.WriteString(boxStyle.Render(header + "\n" + project))
	b.WriteString("\n\n")

	for _, result := range report.Results {
		line := fmt.Sprintf("  %s %-18s", statusDot(result.Status), result.Type)
		line += styledStatus(result.Status)
		if n := len(result.Violations); n > 0 {
			line += dimStyle.Render(fmt.Sprintf("  %d violation(s)", n))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + dimStyle.Render(fmt.Sprintf("%d analyzer(s), %d violation(s) total",
		len(report.Results), report.TotalViolations())))
	b.WriteString("\n")

	return b.String()
}

func styledStatus(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return passStyle.Render("PASS")
	case domain.StatusWarning:
		return warnStyle.Render("WARN")
	case domain.StatusFail:
		return failStyle.Render("FAIL")
	case domain.StatusError:
		return failStyle.Render("ERROR")
	case domain.StatusSkipped:
		return skippedStyle.Render("SKIPPED")
	default:
		return string(s)
	}
}

func statusDot(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return passStyle.Render("●")
	case domain.StatusWarning:
		return warnStyle.Render("●")
	case domain.StatusFail, domain.StatusError:
		return failStyle.Render("●")
	default:
		return skippedStyle.Render("○")
	}
}
