//go:build !unix

package judge

import (
	"os"
	"os/exec"
)

// Process groups are not available here; the default Cancel kills the direct child only.
func configureProcess(cmd *exec.Cmd) {}

func reapProcessGroup(cmd *exec.Cmd) {}

func exitSignal(ps *os.ProcessState) string {
	return ""
}
