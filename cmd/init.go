package cmd

import (
	"fmt"
	"os"

	"excavator/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var forceFlag bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Generate a sample configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  generateConfig,
}

func init() {
	initCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing configuration file")
}

func generateConfig(cmd *cobra.Command, args []string) error {
	configPath := ".excavator.yml"
	if len(args) == 1 {
		configPath = args[0]
	}
	if _, err := os.Stat(configPath); err == nil && !forceFlag {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}
	if err := config.GenerateConfig(configPath); err != nil {
		return fmt.Errorf("failed to generate config file: %w", err)
	}
	color.Green("✅ Generated sample configuration file: %s\n", configPath)
	color.Cyan("📝 Edit this file to customize excavator behavior\n")
	color.Cyan("🚀 Run 'excavator analyze --config=%s .' to use it\n", configPath)
	return nil
}
