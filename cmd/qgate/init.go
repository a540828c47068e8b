package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/qgate-dev/qgate/internal/config"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a qgate configuration file",
		Long: `Generate a documented qgate.yaml with sensible defaults.

Examples:
  # Create qgate.yaml in the current directory
  qgate init

  # Overwrite an existing file
  qgate init --force

  # Generate a smaller config with essential options only
  qgate init --minimal

  # Interactive setup wizard
  qgate init --interactive`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", "qgate.yaml", "Output path for the config file")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
	cmd.Flags().Bool("minimal", false, "Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false, "Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if interactive {
		var err error
		configPath, minimal, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	content := config.GetFullConfigTemplate()
	if minimal {
		content = config.GetMinimalConfigTemplate()
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}

// runInteractiveSetup walks the user through the init options
func runInteractiveSetup(defaultPath string) (configPath string, minimal bool, err error) {
	pathPrompt := promptui.Prompt{
		Label:   "Config file path",
		Default: defaultPath,
	}
	configPath, err = pathPrompt.Run()
	if err != nil {
		return "", false, fmt.Errorf("setup aborted: %w", err)
	}

	stylePrompt := promptui.Select{
		Label: "Config style",
		Items: []string{"full (documented, all options)", "minimal (essential options only)"},
	}
	idx, _, err := stylePrompt.Run()
	if err != nil {
		return "", false, fmt.Errorf("setup aborted: %w", err)
	}

	return configPath, idx == 1, nil
}
