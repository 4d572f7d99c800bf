package lang

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sempr/localjudge/pkg/constants"
)

//go:embed langs.toml
var builtinLangs []byte

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrNoSolution      = errors.New("no solution file found")
)

type langConfigs struct {
	Lang []Profile `toml:"lang"`
}

// Registry holds the known language profiles, in declaration order.
type Registry struct {
	profiles []Profile
}

// Builtin returns the registry parsed from the embedded langs.toml.
func Builtin() (*Registry, error) {
	return Parse(builtinLangs)
}

// Parse reads a `[[lang]]` TOML document.
func Parse(data []byte) (*Registry, error) {
	var cfg langConfigs
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse language table: %w", err)
	}
	r := &Registry{}
	if err := r.Merge(cfg.Lang); err != nil {
		return nil, err
	}
	return r, nil
}

// Merge adds profiles, replacing any existing one with the same name.
func (r *Registry) Merge(profiles []Profile) error {
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		if i := r.index(p.Name); i >= 0 {
			r.profiles[i] = p
			continue
		}
		r.profiles = append(r.profiles, p)
	}
	return nil
}

func (r *Registry) index(name string) int {
	for i, p := range r.profiles {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

func (r *Registry) Profiles() []Profile {
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Lookup resolves a name, an alias or an extension (".cpp" or "cpp").
func (r *Registry) Lookup(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range r.profiles {
		if strings.ToLower(p.Name) == key {
			return p, nil
		}
		for _, a := range p.Aliases {
			if strings.ToLower(a) == key {
				return p, nil
			}
		}
	}
	if p, ok := r.ByExtension(key); ok {
		return p, nil
	}
	if p, ok := r.ByExtension("." + key); ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
}

func (r *Registry) ByExtension(ext string) (Profile, bool) {
	for _, p := range r.profiles {
		if strings.EqualFold(p.Extension, ext) {
			return p, true
		}
	}
	return Profile{}, false
}

// Detect picks the profile matching the single solution.<ext> file in problemDir.
func (r *Registry) Detect(problemDir string) (Profile, error) {
	entries, err := os.ReadDir(problemDir)
	if err != nil {
		return Profile{}, fmt.Errorf("read problem directory %s: %w", problemDir, err)
	}
	var found []Profile
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.TrimPrefix(name, constants.SolutionStem)
		if ext == name || !strings.HasPrefix(ext, ".") {
			continue
		}
		if p, ok := r.ByExtension(ext); ok {
			found = append(found, p)
			names = append(names, name)
		}
	}
	switch len(found) {
	case 0:
		return Profile{}, fmt.Errorf("%w in %s (expected solution.<ext>)", ErrNoSolution, problemDir)
	case 1:
		return found[0], nil
	}
	sort.Strings(names)
	return Profile{}, fmt.Errorf("multiple solution files in %s: %s; choose one with --lang",
		problemDir, strings.Join(names, ", "))
}
