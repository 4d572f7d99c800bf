package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sempr/localjudge/internal/judge"
	"github.com/sempr/localjudge/internal/lang"
	"github.com/sempr/localjudge/internal/watch"
	"github.com/sempr/localjudge/pkg/models"
	"github.com/spf13/cobra"
)

var testArgs models.TestArgs

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test [problem-dir]",
	Aliases: []string{"run"},
	Short:   "Run the solution against every recorded test case",
	Long: `Compile (if the language needs it) and run solution.<ext> against every test
case of the problem directory, then print a verdict per case and a summary.

The time limit per case is --timeout, else timeLimitMs or timeLimit from
meta.json, else 5000ms. With --watch the tests rerun whenever the solution
or a test file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		testArgs.ProblemDir = "."
		if len(args) > 0 {
			testArgs.ProblemDir = args[0]
		}
		return runTests(cmd.Context(), &testArgs)
	},
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testArgs.Language, "lang", "l", "", "language name, alias or extension (default: detected from solution.<ext>)")
	testCmd.Flags().IntVarP(&testArgs.TimeoutMs, "timeout", "t", 0, "time limit per case in ms (overrides meta.json)")
	testCmd.Flags().BoolVarP(&testArgs.Watch, "watch", "w", false, "rerun on solution or test file changes")
	testCmd.Flags().BoolVar(&testArgs.JSON, "json", false, "print the report as JSON")
}

func runTests(parent context.Context, args *models.TestArgs) error {
	dir, err := filepath.Abs(args.ProblemDir)
	if err != nil {
		return err
	}
	profile, err := resolveProfile(dir, args.Language)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(parent)
	defer stop()

	engine := judge.NewEngine(nil)
	opts := judge.Options{ProblemDir: dir, Profile: profile, TimeoutMs: args.TimeoutMs}
	run := func(ctx context.Context) (*models.Report, error) {
		return engine.RunAll(ctx, opts)
	}

	if args.Watch {
		c := watch.New(dir, run,
			watch.WithDebounce(cfg.Debounce()),
			watch.WithSolutionFile(filepath.Base(profile.SolutionPath(dir))),
			watch.WithReporter(func(report *models.Report, err error) {
				fmt.Fprintf(os.Stdout, "\n== %s ==\n", time.Now().Format("15:04:05"))
				if err != nil {
					fmt.Fprintf(os.Stdout, "error: %v\n", err)
					return
				}
				printReport(os.Stdout, report, args.JSON)
			}),
		)
		return c.Run(ctx)
	}

	report, err := run(ctx)
	if err != nil {
		return err
	}
	if err := printReport(os.Stdout, report, args.JSON); err != nil {
		return err
	}
	if !report.AllPassed() {
		return errCasesFailed
	}
	return nil
}

// resolveProfile prefers an explicit --lang, then the solution file found in
// dir, then the configured default language.
func resolveProfile(dir, name string) (lang.Profile, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return lang.Profile{}, err
	}
	if name != "" {
		return registry.Lookup(name)
	}
	profile, err := registry.Detect(dir)
	if err == nil {
		return profile, nil
	}
	if cfg.Language != "" {
		slog.Debug("solution detection failed, using configured language", "language", cfg.Language, "err", err)
		return registry.Lookup(cfg.Language)
	}
	return lang.Profile{}, err
}

// signalContext is cancelled on the first SIGINT or SIGTERM. A second signal
// gets the default behaviour and terminates the process.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-stop:
			slog.Info("stop signal received, shutting down...")
			signal.Stop(stop)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(stop)
		cancel()
	}
}
