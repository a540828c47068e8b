package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/qgate-dev/qgate/domain"
	"github.com/qgate-dev/qgate/internal/history"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [project-path]",
		Short: "List recent quality runs",
		Long: `List recent quality runs recorded in the local history store.

With a project path, only runs for that project are listed. Without
one, runs for the current directory are listed; use --all for every
recorded project.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")
	cmd.Flags().Bool("all", false, "List runs for all projects")
	cmd.Flags().String("db", "", "History database path (default: XDG data directory)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")
	dbPath, _ := cmd.Flags().GetString("db")

	projectPath := ""
	if !all {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		abs, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("invalid project path: %w", err)
		}
		projectPath = abs
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(projectPath, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	printHistory(cmd.OutOrStdout(), entries, all)
	return nil
}

var historyDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

func printHistory(w io.Writer, entries []history.Entry, showProject bool) {
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s  %d violations",
			e.RecordedAt, historyStatus(e.OverallStatus), e.Violations)
		if e.Revision != "" {
			line += historyDimStyle.Render("  @" + shortRevision(e.Revision))
		}
		fmt.Fprintln(w, line)
		if showProject {
			fmt.Fprintln(w, historyDimStyle.Render("  "+e.ProjectPath))
		}
		fmt.Fprintln(w, historyDimStyle.Render("  "+formatStatuses(e.Statuses)))
	}
}

func historyStatus(s domain.Status) string {
	var style lipgloss.Style
	switch s {
	case domain.StatusPass:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	case domain.StatusWarning:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	case domain.StatusFail, domain.StatusError:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		style = historyDimStyle
	}
	return style.Render(strings.ToUpper(string(s)))
}

func formatStatuses(statuses map[string]string) string {
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+statuses[name])
	}
	return strings.Join(parts, " ")
}

func shortRevision(rev string) string {
	if len(rev) > 10 {
		return rev[:10]
	}
	return rev
}
