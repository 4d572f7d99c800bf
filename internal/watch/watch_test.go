package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sempr/localjudge/pkg/models"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// countingRun records how many runs happened and the peak concurrency.
type countingRun struct {
	calls   atomic.Int64
	active  atomic.Int64
	peak    atomic.Int64
	release chan struct{}
}

func (r *countingRun) run(ctx context.Context) (*models.Report, error) {
	r.calls.Add(1)
	n := r.active.Add(1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer r.active.Add(-1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
		}
	}
	return &models.Report{}, nil
}

func startController(t *testing.T, c *Controller) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errc:
		case <-time.After(5 * time.Second):
			t.Error("controller did not stop")
		}
	})
	return cancel, errc
}

func TestInitialRun(t *testing.T) {
	dir := t.TempDir()
	r := &countingRun{}
	var reports atomic.Int64
	c := New(dir, r.run, WithReporter(func(*models.Report, error) { reports.Add(1) }))
	startController(t, c)

	waitFor(t, "initial run", func() bool { return c.Runs() == 1 })
	if reports.Load() != 1 {
		t.Errorf("reporter called %d times, want 1", reports.Load())
	}
}

func TestRequestsCoalesceWhileRunning(t *testing.T) {
	dir := t.TempDir()
	r := &countingRun{release: make(chan struct{})}
	c := New(dir, r.run)
	startController(t, c)

	waitFor(t, "first run to start", func() bool { return c.Running() })

	if !c.Request() {
		t.Error("first request while running should be queued")
	}
	for i := 0; i < 5; i++ {
		if c.Request() {
			t.Error("extra request should merge into the pending one")
		}
	}

	r.release <- struct{}{}
	waitFor(t, "queued run to start", func() bool { return r.calls.Load() == 2 })
	r.release <- struct{}{}
	waitFor(t, "queued run to finish", func() bool { return c.Runs() == 2 })

	time.Sleep(100 * time.Millisecond)
	if got := r.calls.Load(); got != 2 {
		t.Errorf("got %d runs, want 2", got)
	}
	if r.peak.Load() != 1 {
		t.Errorf("peak concurrency %d, want 1", r.peak.Load())
	}
}

func TestFileChangesTriggerRerun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "solution.py"), "print(1)\n")
	writeFile(t, filepath.Join(dir, "testcases", "1", "input.txt"), "1\n")

	r := &countingRun{}
	c := New(dir, r.run, WithDebounce(20*time.Millisecond), WithSolutionFile("solution.py"))
	startController(t, c)
	waitFor(t, "initial run", func() bool { return c.Runs() == 1 })

	writeFile(t, filepath.Join(dir, "testcases", "1", "input.txt"), "2\n")
	waitFor(t, "rerun after input change", func() bool { return c.Runs() >= 2 })

	before := c.Runs()
	writeFile(t, filepath.Join(dir, "solution.py"), "print(2)\n")
	waitFor(t, "rerun after solution change", func() bool { return c.Runs() > before })

	before = c.Runs()
	writeFile(t, filepath.Join(dir, "testcases", "7", "output.txt"), "x\n")
	waitFor(t, "rerun after new case directory", func() bool { return c.Runs() > before })

	before = c.Runs()
	writeFile(t, filepath.Join(dir, "testcases", "7", "input.txt"), "y\n")
	waitFor(t, "rerun after write in new directory", func() bool { return c.Runs() > before })
}

func TestBurstCollapses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "solution.py"), "")

	r := &countingRun{}
	c := New(dir, r.run, WithDebounce(200*time.Millisecond))
	startController(t, c)
	waitFor(t, "initial run", func() bool { return c.Runs() == 1 })

	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(dir, "solution.py"), "print(1)\n")
	}
	waitFor(t, "rerun", func() bool { return c.Runs() == 2 })
	time.Sleep(400 * time.Millisecond)
	if got := c.Runs(); got != 2 {
		t.Errorf("burst produced %d runs, want 2", got)
	}
}

func TestRelevant(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "p")
	c := New(dir, nil)
	tests := []struct {
		path string
		want bool
	}{
		{"solution.cpp", true},
		{"solution.py", true},
		{"solution", false},
		{"meta.json", true},
		{"input3.txt", true},
		{"output12.txt", true},
		{"notes.md", false},
		{"testcases/1/input.txt", true},
		{"testcases/10/output.txt", true},
		{"testcases/1/input.txt~", false},
		{"testcases/1/.input.txt.swp", false},
		{"other/1/input.txt", false},
	}
	for _, tt := range tests {
		got := c.Relevant(filepath.Join(dir, filepath.FromSlash(tt.path)))
		if got != tt.want {
			t.Errorf("Relevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if c.Relevant(filepath.Join(string(filepath.Separator), "elsewhere", "solution.cpp")) {
		t.Error("paths outside the problem directory are not relevant")
	}

	exact := New(dir, nil, WithSolutionFile("solution.kt"))
	if exact.Relevant(filepath.Join(dir, "solution.jar")) {
		t.Error("build artifact should be ignored when the solution file is known")
	}
	if !exact.Relevant(filepath.Join(dir, "solution.kt")) {
		t.Error("solution file should be relevant")
	}
}

func TestStopLetsRunComplete(t *testing.T) {
	dir := t.TempDir()
	release := make(chan struct{})
	var runErr atomic.Value
	var mu sync.Mutex
	finished := false
	run := func(ctx context.Context) (*models.Report, error) {
		<-release
		if err := ctx.Err(); err != nil {
			runErr.Store(err)
		}
		mu.Lock()
		finished = true
		mu.Unlock()
		return &models.Report{}, nil
	}
	c := New(dir, run)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	waitFor(t, "run to start", func() bool { return c.Running() })
	cancel()
	select {
	case <-errc:
		t.Fatal("Run returned while a run was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	mu.Lock()
	defer mu.Unlock()
	if !finished {
		t.Error("Run returned before the in-flight run finished")
	}
	if err := runErr.Load(); err != nil {
		t.Errorf("in-flight run saw cancelled context: %v", err)
	}
	if c.Runs() != 1 {
		t.Errorf("got %d runs, want 1", c.Runs())
	}
}
