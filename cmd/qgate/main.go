package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qgate-dev/qgate/internal/version"
)

// RunExitError carries an explicit process exit code out of a command
type RunExitError struct {
	Code    int
	Message string
}

func (e *RunExitError) Error() string {
	return e.Message
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "qgate",
		Short: "qgate - unified code quality gate",
		Long: `qgate runs a catalog of code-quality analyzers (style checkers,
bug-pattern detectors, coverage, architecture rules, and an AI reviewer)
against one project and folds their results into a single quality verdict
with HTML, JSON, and Markdown reports.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*RunExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("qgate version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
