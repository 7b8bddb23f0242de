package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"excavator/internal/analyzer"
	"excavator/internal/config"
	"excavator/internal/golden"
	"excavator/internal/watcher"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	updateFlag bool
	watchFlag  bool
)

// errVerifyFailed is returned once every source has been reported.
var errVerifyFailed = errors.New("golden verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify [sources or directories]",
	Short: "Compare canonical reports with their golden files",
	Long: `verify runs the analysis pipeline on each source and compares the
canonical report byte for byte with the source's golden file.

Exit status is 0 only when every source matches. A missing golden file is
a failure; pass --update to (re)generate golden files.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVarP(&updateFlag, "update", "u", false, "Rewrite golden files from the current output")
	verifyCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-verify when sources or golden files change")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if updateFlag && watchFlag {
		return errors.New("--update and --watch cannot be combined: updating rewrites the watched golden files")
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	sources := collectAll(args, cfg)
	if len(sources) == 0 {
		color.Yellow("⚠️  No Python files found to verify\n")
		return nil
	}

	engine, err := analyzer.NewAnalyzerWithConfig(cfg)
	if err != nil {
		return err
	}
	mode := golden.ModeRead
	if updateFlag {
		mode = golden.ModeUpdate
	}
	harness := golden.NewFromConfig(cfg.Golden, mode)

	if !watchFlag {
		return verifyAll(cmd.Context(), harness, engine, sources, cfg)
	}
	return watchVerify(cmd.Context(), harness, engine, args, cfg)
}

func verifyAll(ctx context.Context, harness *golden.Harness, engine *analyzer.Analyzer, sources []string, cfg *config.Config) error {
	failed := 0
	for _, source := range sources {
		res, err := harness.Verify(ctx, source, engine.Canonical)
		if err != nil {
			color.Red("❌ %v\n", err)
			failed++
			continue
		}
		printResult(res, cfg.Output.Colors)
		if res.Err() != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d sources", errVerifyFailed, failed, len(sources))
	}
	color.Green("✅ %d sources verified\n", len(sources))
	return nil
}

func printResult(res golden.Result, useColors bool) {
	switch res.Status {
	case golden.StatusMatch:
		if res.Updated {
			color.Green("📝 updated %s\n", res.GoldenPath)
		} else {
			color.Green("✅ %s\n", res.SourceID)
		}
	case golden.StatusGoldenMissing:
		color.Yellow("⚠️  %s: golden file %s is missing (run with --update to create it)\n", res.SourceID, res.GoldenPath)
	case golden.StatusMismatch:
		color.Red("❌ %s differs from %s\n", res.SourceID, res.GoldenPath)
		fmt.Print(colorDiff(res.Diff, useColors))
	}
}

func colorDiff(diff string, useColors bool) string {
	if !useColors {
		return diff
	}
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(color.WhiteString("%s", line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(color.RedString("%s", line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(color.CyanString("%s", line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

// watchVerify verifies once, then again after every settled burst of
// changes, until interrupted.
func watchVerify(ctx context.Context, harness *golden.Harness, engine *analyzer.Analyzer, args []string, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		sources := collectAll(args, cfg)
		if err := verifyAll(ctx, harness, engine, sources, cfg); err != nil {
			color.Red("%v\n", err)
		}
	}
	run()

	fw, err := watcher.NewFileWatcher(cfg, watcher.DefaultDelay)
	if err != nil {
		return err
	}
	defer fw.Close()

	err = fw.Watch(args, func(changed []string) error {
		color.Cyan("\n🔄 %d file(s) changed, re-verifying...\n", len(changed))
		run()
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan("👀 Watching %d directories (Ctrl+C to stop)\n", len(fw.GetWatchedPaths()))
	<-ctx.Done()
	return nil
}
