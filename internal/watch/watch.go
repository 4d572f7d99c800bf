// Package watch reruns the judge whenever the solution or the test data of a
// problem directory changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sempr/localjudge/pkg/constants"
	"github.com/sempr/localjudge/pkg/models"
)

const DefaultDebounce = 150 * time.Millisecond

var flatCaseRe = regexp.MustCompile(`^(input|output)\d+\.txt$`)

// RunFunc performs one full run over every test case.
type RunFunc func(ctx context.Context) (*models.Report, error)

// ReportFunc receives the outcome of every run.
type ReportFunc func(report *models.Report, err error)

// Controller owns at most one in-flight run for a problem directory.
// Rerun requests share a single slot: any number of requests made while a
// run is in flight result in exactly one follow-up run.
type Controller struct {
	dir          string
	solutionFile string
	run          RunFunc
	onReport     ReportFunc
	debounce     time.Duration

	requests chan struct{}
	running  atomic.Bool
	runs     atomic.Int64
}

type Option func(*Controller)

// WithDebounce sets how long events must be quiet before a rerun is requested.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

func WithReporter(fn ReportFunc) Option {
	return func(c *Controller) { c.onReport = fn }
}

// WithSolutionFile restricts solution matching to one file name instead of
// any solution.* file, so build artifacts such as solution.jar are ignored.
func WithSolutionFile(name string) Option {
	return func(c *Controller) { c.solutionFile = name }
}

func New(problemDir string, run RunFunc, opts ...Option) *Controller {
	c := &Controller{
		dir:      filepath.Clean(problemDir),
		run:      run,
		debounce: DefaultDebounce,
		requests: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request asks for a full rerun. It returns false when a request was
// already pending, in which case the two are merged.
func (c *Controller) Request() bool {
	select {
	case c.requests <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether a run is in flight.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// Runs returns how many runs have completed.
func (c *Controller) Runs() int64 {
	return c.runs.Load()
}

// Run performs an initial full run, then reruns on relevant file changes
// until ctx is done. Runs are not cancelled by ctx: the in-flight run, if
// any, completes and is reported before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(c.dir); err != nil {
		return fmt.Errorf("watch %s: %w", c.dir, err)
	}
	c.watchTree(w, filepath.Join(c.dir, constants.TestcasesDir))

	done := make(chan struct{})
	go c.worker(ctx, done)
	c.Request()

	slog.Info("watching for changes", "dir", c.dir)
	c.eventLoop(ctx, w)
	<-done
	slog.Info("watch stopped", "dir", c.dir)
	return nil
}

func (c *Controller) worker(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.requests:
			if ctx.Err() != nil {
				return
			}
			c.execute(ctx)
		}
	}
}

func (c *Controller) execute(ctx context.Context) {
	c.running.Store(true)
	defer c.running.Store(false)

	report, err := c.run(context.WithoutCancel(ctx))
	c.runs.Add(1)
	if c.onReport != nil {
		c.onReport(report, err)
	}
}

func (c *Controller) eventLoop(ctx context.Context, w *fsnotify.Watcher) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fire:
			fire = nil
			c.Request()
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !c.handleEvent(w, ev) {
				continue
			}
			slog.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if c.debounce <= 0 {
				c.Request()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Stop()
				timer.Reset(c.debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "err", err)
		}
	}
}

// handleEvent keeps the watch set in sync with new test directories and
// reports whether the event should trigger a rerun.
func (c *Controller) handleEvent(w *fsnotify.Watcher, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if ev.Has(fsnotify.Create) && c.underTestcases(ev.Name) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			c.watchTree(w, ev.Name)
			return true
		}
	}
	return c.Relevant(ev.Name)
}

// Relevant reports whether a change to path affects the judge result.
func (c *Controller) Relevant(path string) bool {
	rel, err := filepath.Rel(c.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if !strings.Contains(rel, "/") {
		switch {
		case c.solutionFile != "":
			if rel == c.solutionFile {
				return true
			}
		case strings.HasPrefix(rel, constants.SolutionStem+"."):
			return true
		}
		return rel == constants.MetaFileName || flatCaseRe.MatchString(rel)
	}
	return strings.HasPrefix(rel, constants.TestcasesDir+"/") && strings.HasSuffix(rel, ".txt")
}

func (c *Controller) underTestcases(path string) bool {
	rel, err := filepath.Rel(c.dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == constants.TestcasesDir || strings.HasPrefix(rel, constants.TestcasesDir+"/")
}

// watchTree adds root and every directory below it; fsnotify is not recursive.
func (c *Controller) watchTree(w *fsnotify.Watcher, root string) {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			slog.Warn("cannot watch directory", "path", path, "err", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("cannot walk directory", "path", root, "err", err)
	}
}
