//go:build !unix

package runlock

import "os"

// No flock here; runs are serialized in-process only.
func tryLock(f *os.File) error {
	return nil
}

func unlock(f *os.File) error {
	return nil
}
