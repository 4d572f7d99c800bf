package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sempr/localjudge/pkg/constants"
)

// waitDelay bounds how long Wait keeps draining pipes after the process
// exits or is killed.
const waitDelay = 200 * time.Millisecond

// ProcessResult is what one child process left behind. ExitCode is nil when
// the process could not be started, was cancelled, or timed out.
type ProcessResult struct {
	Stdout   string
	Stderr   string
	ExitCode *int
	Signal   string
	TimedOut bool
	Duration time.Duration
	Err      error
}

func (r ProcessResult) Success() bool {
	return !r.TimedOut && r.ExitCode != nil && *r.ExitCode == 0
}

// Executor runs external processes from argument vectors. It never goes
// through a shell, so test input cannot be interpreted as shell syntax.
type Executor interface {
	Compile(ctx context.Context, argv []string, dir string, env []string, timeout time.Duration) ProcessResult
	Run(ctx context.Context, argv []string, dir string, env []string, input []byte, timeout time.Duration) ProcessResult
}

// OSExecutor is the Executor backed by os/exec.
type OSExecutor struct {
	// MaxOutput caps captured bytes per stream; zero means constants.MaxCaptureBytes.
	MaxOutput int
}

func NewOSExecutor() *OSExecutor {
	return &OSExecutor{MaxOutput: constants.MaxCaptureBytes}
}

func (e *OSExecutor) Compile(ctx context.Context, argv []string, dir string, env []string, timeout time.Duration) ProcessResult {
	return e.execute(ctx, argv, dir, env, nil, timeout)
}

func (e *OSExecutor) Run(ctx context.Context, argv []string, dir string, env []string, input []byte, timeout time.Duration) ProcessResult {
	return e.execute(ctx, argv, dir, env, input, timeout)
}

func (e *OSExecutor) execute(parent context.Context, argv []string, dir string, env []string, input []byte, timeout time.Duration) ProcessResult {
	if len(argv) == 0 {
		err := errors.New("empty command")
		return ProcessResult{Stderr: err.Error(), Err: err}
	}
	if timeout <= 0 {
		timeout = constants.DefaultTimeLimitMs * time.Millisecond
	}
	limit := e.MaxOutput
	if limit <= 0 {
		limit = constants.MaxCaptureBytes
	}

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}
	stdout := &cappedBuffer{limit: limit}
	stderr := &cappedBuffer{limit: limit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	start := time.Now()
	runErr := cmd.Run()
	res := ProcessResult{Duration: time.Since(start)}
	reapProcessGroup(cmd)

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	switch {
	case cmd.ProcessState == nil:
		res.Err = fmt.Errorf("start %s: %w", argv[0], runErr)
		res.Stderr = appendDiagnostic(res.Stderr, res.Err.Error())
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil && !cmd.ProcessState.Success():
		res.TimedOut = true
	case parent.Err() != nil:
		res.Err = fmt.Errorf("run %s: %w", argv[0], parent.Err())
		res.Stderr = appendDiagnostic(res.Stderr, res.Err.Error())
	default:
		code := cmd.ProcessState.ExitCode()
		res.ExitCode = &code
		res.Signal = exitSignal(cmd.ProcessState)
		if runErr != nil && !errors.Is(runErr, exec.ErrWaitDelay) {
			var ee *exec.ExitError
			if !errors.As(runErr, &ee) {
				res.Err = runErr
			}
		}
	}
	return res
}

func appendDiagnostic(stderr, msg string) string {
	if stderr == "" {
		return msg
	}
	return stderr + "\n" + msg
}

// cappedBuffer keeps the first limit bytes and silently discards the rest,
// so a chatty child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n[output truncated]"
	}
	return b.buf.String()
}
