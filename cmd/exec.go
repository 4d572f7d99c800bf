package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sempr/localjudge/internal/judge"
	"github.com/spf13/cobra"
)

var execArgs struct {
	Language  string
	TimeoutMs int
	Input     string
}

// execCmd runs the solution once, without comparing.
var execCmd = &cobra.Command{
	Use:   "exec [problem-dir]",
	Short: "Run the solution once against an input file and print its output",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		dir, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		profile, err := resolveProfile(dir, execArgs.Language)
		if err != nil {
			return err
		}
		if _, err := os.Stat(profile.SolutionPath(dir)); err != nil {
			return fmt.Errorf("solution %s: %w", profile.SolutionPath(dir), err)
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		timeoutMs := judge.ResolveTimeLimit(dir, execArgs.TimeoutMs)
		res, err := judge.NewRunner(nil).Execute(ctx, dir, profile, execArgs.Input, time.Duration(timeoutMs)*time.Millisecond)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, res.Stdout)
		fmt.Fprint(os.Stderr, res.Stderr)
		fmt.Fprintf(os.Stderr, "[%s] %dms\n", describeExit(res, timeoutMs), res.Duration.Milliseconds())
		if !res.Success() {
			return errCasesFailed
		}
		return nil
	},
}

func describeExit(res judge.ProcessResult, timeoutMs int) string {
	switch {
	case res.TimedOut:
		return fmt.Sprintf("timeout %dms", timeoutMs)
	case res.Err != nil:
		return res.Err.Error()
	case res.Signal != "":
		return "killed by " + res.Signal
	case res.ExitCode != nil:
		return fmt.Sprintf("exit code %d", *res.ExitCode)
	}
	return "unknown"
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVarP(&execArgs.Language, "lang", "l", "", "language name, alias or extension")
	execCmd.Flags().IntVarP(&execArgs.TimeoutMs, "timeout", "t", 0, "time limit in ms (overrides meta.json)")
	execCmd.Flags().StringVarP(&execArgs.Input, "input", "i", "", "input file fed to stdin")
	_ = execCmd.MarkFlagRequired("input")
}
