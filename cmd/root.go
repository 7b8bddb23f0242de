package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"excavator/internal/config"
	"excavator/internal/logging"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configFlag   string
	logLevelFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "excavator",
	Short: "A structural analyzer for Python sources with golden-file contracts",
	Long: `excavator extracts the declarations of Python modules, measures every
function (cyclomatic complexity, length, message chains, exception handling)
and checks the canonical report against stored golden files.

Examples:
  excavator analyze .                          # Analyze current directory
  excavator analyze --format=canonical app.py  # Print the canonical report
  excavator verify testdata/contract           # Compare against golden files
  excavator verify --update sample.py          # Regenerate golden files
  excavator init                               # Generate sample config file`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(initCmd)
}

// loadConfig reads the configuration and installs the logger it describes.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if err := logging.Init(os.Stderr, cfg.Logging); err != nil {
		return nil, fmt.Errorf("error configuring logging: %w", err)
	}
	return cfg, nil
}

// collectPythonFiles recursively finds all .py files in the given path
func collectPythonFiles(path string, cfg *config.Config) ([]string, error) {
	var files []string

	err := filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if filePath != path && skipDir(info.Name(), cfg) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(filePath, ".py") {
			files = append(files, filePath)
		}
		return nil
	})

	return files, err
}

func skipDir(name string, cfg *config.Config) bool {
	switch name {
	case ".git", ".venv", "venv", "__pycache__", "node_modules":
		return true
	}
	for _, pattern := range cfg.Files.Exclude {
		if matched, _ := filepath.Match(strings.TrimSuffix(pattern, "/**"), name); matched {
			return true
		}
	}
	return false
}

func collectAll(args []string, cfg *config.Config) []string {
	var files []string
	for _, arg := range args {
		found, err := collectPythonFiles(arg, cfg)
		if err != nil {
			color.Red("Error collecting files from %s: %v\n", arg, err)
			continue
		}
		files = append(files, found...)
	}
	return files
}
