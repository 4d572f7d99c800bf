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
	"github.com/sempr/localjudge/pkg/constants"
)

// CompileError means the compile step failed; every case of the run depends on it.
type CompileError struct {
	Language string
	Argv     []string
	ExitCode *int
	TimedOut bool
	Output   string
	Err      error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compile %s failed", e.Language)
	switch {
	case e.TimedOut:
		b.WriteString(" (timed out)")
	case e.ExitCode != nil:
		fmt.Fprintf(&b, " (exit code %d)", *e.ExitCode)
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString(":\n")
		b.WriteString(out)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Runner turns a language profile into compile and run invocations.
type Runner struct {
	exec Executor
}

func NewRunner(exec Executor) *Runner {
	if exec == nil {
		exec = NewOSExecutor()
	}
	return &Runner{exec: exec}
}

func effectiveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return constants.DefaultTimeLimitMs * time.Millisecond
	}
	return timeout
}

// Compile runs the profile's compile step in problemDir. Profiles without
// one succeed immediately.
func (r *Runner) Compile(ctx context.Context, problemDir string, profile lang.Profile, timeout time.Duration) error {
	problemDir, err := filepath.Abs(problemDir)
	if err != nil {
		return fmt.Errorf("resolve problem directory: %w", err)
	}
	argv, err := profile.CompileArgs(problemDir)
	if err != nil {
		return err
	}
	if argv == nil {
		return nil
	}
	slog.Info("compiling", "language", profile.Name, "cmd", strings.Join(argv, " "))
	res := r.exec.Compile(ctx, argv, problemDir, profile.Env, effectiveTimeout(timeout))
	if res.Success() {
		slog.Debug("compile finished", "duration", res.Duration)
		return nil
	}
	return &CompileError{
		Language: profile.Name,
		Argv:     argv,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
		Output:   strings.TrimSpace(res.Stdout + "\n" + res.Stderr),
		Err:      res.Err,
	}
}

// RunCase feeds inputPath to the solution's standard input. A relative
// problemDir is resolved against the working directory before the child is
// started there. Failures are reported inside the ProcessResult, never as an
// error.
func (r *Runner) RunCase(ctx context.Context, problemDir string, profile lang.Profile, inputPath string, timeout time.Duration) ProcessResult {
	input, err := os.ReadFile(inputPath)
	if err != nil {
		err = fmt.Errorf("read input %s: %w", inputPath, err)
		return ProcessResult{Stderr: err.Error(), Err: err}
	}
	problemDir, err = filepath.Abs(problemDir)
	if err != nil {
		err = fmt.Errorf("resolve problem directory: %w", err)
		return ProcessResult{Stderr: err.Error(), Err: err}
	}
	argv, err := profile.RunArgs(problemDir)
	if err != nil {
		return ProcessResult{Stderr: err.Error(), Err: err}
	}
	return r.exec.Run(ctx, argv, problemDir, profile.Env, input, effectiveTimeout(timeout))
}

// Execute compiles (when needed) and runs the solution once against inputPath.
// Only a compile failure is returned as an error.
func (r *Runner) Execute(ctx context.Context, problemDir string, profile lang.Profile, inputPath string, timeout time.Duration) (ProcessResult, error) {
	if err := r.Compile(ctx, problemDir, profile, timeout); err != nil {
		return ProcessResult{}, err
	}
	return r.RunCase(ctx, problemDir, profile, inputPath, timeout), nil
}
