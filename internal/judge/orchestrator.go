package judge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sempr/localjudge/internal/lang"
	"github.com/sempr/localjudge/internal/runlock"
	"github.com/sempr/localjudge/pkg/constants"
	"github.com/sempr/localjudge/pkg/models"
)

// Options describe one full run over a problem directory.
type Options struct {
	ProblemDir string
	Profile    lang.Profile
	// TimeoutMs overrides meta.json and the default when positive.
	TimeoutMs int
}

// Engine drives discovery, execution and comparison for every test case.
type Engine struct {
	runner *Runner
	// NoLock skips the cross-process run lock.
	NoLock bool
}

func NewEngine(exec Executor) *Engine {
	return &Engine{runner: NewRunner(exec)}
}

func (e *Engine) Runner() *Runner {
	return e.runner
}

// RunAll runs every discovered case in order. Per-case problems end up in
// the report; only an unreadable problem directory, a missing solution or a
// failed compile step are returned as errors.
func (e *Engine) RunAll(ctx context.Context, opts Options) (*models.Report, error) {
	dir, err := filepath.Abs(opts.ProblemDir)
	if err != nil {
		return nil, fmt.Errorf("resolve problem directory %s: %w", opts.ProblemDir, err)
	}
	opts.ProblemDir = dir

	timeoutMs := ResolveTimeLimit(opts.ProblemDir, opts.TimeoutMs)
	timeout := time.Duration(timeoutMs) * time.Millisecond

	cases, err := Discover(opts.ProblemDir)
	if err != nil {
		return nil, err
	}

	solution := opts.Profile.SolutionPath(opts.ProblemDir)
	if _, err := os.Stat(solution); err != nil {
		return nil, fmt.Errorf("%w: %s (%v)", lang.ErrNoSolution, solution, err)
	}

	if !e.NoLock {
		lock, err := runlock.Acquire(ctx, opts.ProblemDir)
		if err != nil {
			return nil, fmt.Errorf("lock problem directory: %w", err)
		}
		defer lock.Release()
	}

	slog.Info("running tests", "dir", opts.ProblemDir, "language", opts.Profile.Name,
		"cases", len(cases), "timeout_ms", timeoutMs)

	if err := e.runner.Compile(ctx, opts.ProblemDir, opts.Profile, timeout); err != nil {
		return nil, err
	}

	results := make([]models.RunResult, 0, len(cases))
	for _, tc := range cases {
		r := e.runCase(ctx, opts, tc, timeoutMs)
		slog.Debug("case finished", "case", r.CaseID, "status", r.Status, "duration_ms", r.DurationMs)
		results = append(results, r)
	}

	report := &models.Report{
		Results:   results,
		Summary:   models.Summarize(results),
		TimeoutMs: timeoutMs,
	}
	slog.Info("run finished", "total", report.Summary.Total, "passed", report.Summary.Passed,
		"failed", report.Summary.Failed, "errored", report.Summary.Errored)
	return report, nil
}

func (e *Engine) runCase(ctx context.Context, opts Options, tc models.TestCase, timeoutMs int) models.RunResult {
	if !tc.HasExpected {
		return models.RunResult{
			CaseID: tc.ID,
			Status: constants.StatusError,
			Error:  fmt.Sprintf("missing expected output: %s", tc.OutputPath),
		}
	}

	timeout := time.Duration(timeoutMs) * time.Millisecond
	res := e.runner.RunCase(ctx, opts.ProblemDir, opts.Profile, tc.InputPath, timeout)
	result := models.RunResult{
		CaseID:     tc.ID,
		DurationMs: res.Duration.Milliseconds(),
		TimedOut:   res.TimedOut,
	}

	if !res.Success() {
		result.Status = constants.StatusError
		result.Actual = res.Stdout
		result.Error = executionMessage(res, timeoutMs)
		return result
	}

	c := Compare(tc.Expected, res.Stdout)
	result.Expected = c.Expected
	result.Actual = c.Actual
	if c.Pass {
		result.Status = constants.StatusPass
		return result
	}
	result.Status = constants.StatusFail
	if c.WhitespaceOnly {
		result.Error = "output differs only in whitespace"
	}
	return result
}

func executionMessage(res ProcessResult, timeoutMs int) string {
	if res.TimedOut {
		return fmt.Sprintf("시간 초과 (timeout %dms)", timeoutMs)
	}
	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		return stderr
	}
	switch {
	case res.Err != nil:
		return fmt.Sprintf("failed to run solution: %v", res.Err)
	case res.Signal != "":
		return fmt.Sprintf("runtime error (killed by %s)", res.Signal)
	case res.ExitCode != nil:
		return fmt.Sprintf("runtime error (exit code %d)", *res.ExitCode)
	}
	return "runtime error"
}
