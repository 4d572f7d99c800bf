// Package runlock serializes judge runs on the same problem directory across
// processes, since every run rewrites the shared compiled artifact.
package runlock

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const retryInterval = 50 * time.Millisecond

var errLocked = errors.New("lock is held by another process")

// Lock is a held advisory lock on a problem directory.
type Lock struct {
	f    *os.File
	path string
}

// PathFor returns the lock file used for problemDir. It lives in the
// system temp directory so the problem directory stays untouched.
func PathFor(problemDir string) (string, error) {
	abs, err := filepath.Abs(problemDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", problemDir, err)
	}
	sum := sha1.Sum([]byte(abs))
	return filepath.Join(os.TempDir(), "localjudge-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// Acquire blocks until the lock for problemDir is free or ctx is done.
func Acquire(ctx context.Context, problemDir string) (*Lock, error) {
	path, err := PathFor(problemDir)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	logged := false
	for {
		err := tryLock(f)
		if err == nil {
			break
		}
		if !errors.Is(err, errLocked) {
			f.Close()
			return nil, fmt.Errorf("could not lock file %s: %w", path, err)
		}
		if !logged {
			slog.Info("waiting for another run on the same problem", "dir", problemDir, "lock", path)
			logged = true
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	// Write the current PID to the file.
	if err := f.Truncate(0); err == nil {
		f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
	}
	return &Lock{f: f, path: path}, nil
}

// Release unlocks and closes the lock file. It is safe to call twice.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
