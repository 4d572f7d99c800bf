// Package lang describes how a solution in a given language is compiled and run.
package lang

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/sempr/localjudge/pkg/constants"
)

const (
	placeholderSrc = "{src}"
	placeholderBin = "{bin}"
	placeholderDir = "{dir}"
)

// Profile is one language entry. Compile is optional; Run is required.
type Profile struct {
	Name      string   `toml:"name"`
	Extension string   `toml:"suffix"`
	Aliases   []string `toml:"aliases"`
	Compile   string   `toml:"compile"`
	Run       string   `toml:"run"`
	Env       []string `toml:"env"`
}

func (p Profile) NeedsCompile() bool {
	return strings.TrimSpace(p.Compile) != ""
}

// SolutionPath returns <problemDir>/solution<ext>.
func (p Profile) SolutionPath(problemDir string) string {
	return filepath.Join(problemDir, constants.SolutionStem+p.Extension)
}

// BinaryPath is the fixed-name build artifact shared by every case of a run.
func (p Profile) BinaryPath(problemDir string) string {
	return filepath.Join(problemDir, constants.SolutionStem)
}

// CompileArgs expands the compile template into an argument vector.
// It returns nil when the profile has no compile step.
func (p Profile) CompileArgs(problemDir string) ([]string, error) {
	if !p.NeedsCompile() {
		return nil, nil
	}
	return p.expand(p.Compile, problemDir, false)
}

// RunArgs expands the run template. A template without {src} or {bin}
// gets the solution path appended as the last argument.
func (p Profile) RunArgs(problemDir string) ([]string, error) {
	return p.expand(p.Run, problemDir, true)
}

func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("language profile without name")
	}
	if !strings.HasPrefix(p.Extension, ".") {
		return fmt.Errorf("language %s: suffix %q must start with '.'", p.Name, p.Extension)
	}
	if strings.TrimSpace(p.Run) == "" {
		return fmt.Errorf("language %s: run command is required", p.Name)
	}
	if _, err := shlex.Split(p.Run); err != nil {
		return fmt.Errorf("language %s: parse run command: %w", p.Name, err)
	}
	if p.NeedsCompile() {
		if _, err := shlex.Split(p.Compile); err != nil {
			return fmt.Errorf("language %s: parse compile command: %w", p.Name, err)
		}
	}
	return nil
}

// expand splits the template first and substitutes afterwards, so a path
// containing spaces always stays a single argument.
func (p Profile) expand(tpl, problemDir string, appendSrc bool) ([]string, error) {
	fields, err := shlex.Split(tpl)
	if err != nil {
		return nil, fmt.Errorf("language %s: parse command template %q: %w", p.Name, tpl, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("language %s: command template is empty", p.Name)
	}
	replacer := strings.NewReplacer(
		placeholderSrc, p.SolutionPath(problemDir),
		placeholderBin, p.BinaryPath(problemDir),
		placeholderDir, problemDir,
	)
	referenced := false
	args := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if strings.Contains(f, placeholderSrc) || strings.Contains(f, placeholderBin) {
			referenced = true
		}
		args = append(args, replacer.Replace(f))
	}
	if appendSrc && !referenced {
		args = append(args, p.SolutionPath(problemDir))
	}
	return args, nil
}
