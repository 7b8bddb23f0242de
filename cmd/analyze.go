package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"excavator/internal/analyzer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var formatFlag string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files or directories]",
	Short: "Analyze Python sources and print a report",
	RunE:  runAnalysis,
}

func init() {
	analyzeCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json, canonical)")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files := collectAll(args, cfg)
	if len(files) == 0 {
		color.Yellow("⚠️  No Python files found to analyze\n")
		return nil
	}

	analyzerEngine, err := analyzer.NewAnalyzerWithConfig(cfg)
	if err != nil {
		return err
	}
	reportGen := analyzer.NewReportGeneratorWithConfig(cfg)

	// status lines would corrupt machine-readable output
	chatty := cfg.Output.Format == "console" && cfg.Output.OutputFile == ""
	if chatty && cfg.Output.Verbose {
		color.Cyan("🔍 Analyzing %d Python files with %d detectors...\n", len(files), len(analyzerEngine.GetDetectorNames()))
		if configFlag != "" {
			color.Cyan("📋 Using configuration: %s\n", configFlag)
		}
	} else if chatty {
		color.Cyan("🔍 Analyzing %d Python files...\n\n", len(files))
	}

	result, err := analyzerEngine.AnalyzeFiles(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report, err := reportGen.Generate(result)
	if err != nil {
		return err
	}

	if cfg.Output.OutputFile != "" {
		if err := writeReportToFile(report, cfg.Output.OutputFile); err != nil {
			return fmt.Errorf("failed to write report to file: %w", err)
		}
		color.Green("📄 Report saved to: %s\n", cfg.Output.OutputFile)
		return nil
	}
	fmt.Print(report)
	return nil
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, []byte(report), 0644)
}
