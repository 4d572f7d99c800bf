package judge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/sempr/localjudge/pkg/constants"
	"github.com/sempr/localjudge/pkg/models"
)

var (
	legacyInputRe = regexp.MustCompile(`^input(\d+)\.txt$`)
	numericDirRe  = regexp.MustCompile(`^\d+$`)
	decimalRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Discover lists the test cases of a problem directory in numeric order.
// It reads testcases/<n>/{input.txt,output.txt}, or the flat
// input<n>.txt/output<n>.txt layout when testcases/ does not exist.
func Discover(problemDir string) ([]models.TestCase, error) {
	info, err := os.Stat(problemDir)
	if err != nil {
		return nil, fmt.Errorf("problem directory %s is not readable: %w", problemDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("problem directory %s is not a directory", problemDir)
	}

	tcDir := filepath.Join(problemDir, constants.TestcasesDir)
	entries, err := os.ReadDir(tcDir)
	if os.IsNotExist(err) {
		slog.Debug("testcases directory not found, using flat layout", "dir", problemDir)
		return discoverFlat(problemDir)
	}
	if err != nil {
		return nil, fmt.Errorf("read testcases directory %s: %w", tcDir, err)
	}

	var cases []models.TestCase
	for _, entry := range entries {
		if !entry.IsDir() || !numericDirRe.MatchString(entry.Name()) {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil || id <= 0 {
			continue
		}
		caseDir := filepath.Join(tcDir, entry.Name())
		inPath := filepath.Join(caseDir, constants.InputFileName)
		if _, err := os.Stat(inPath); err != nil {
			slog.Warn("skipping test case without input", "case", id, "path", inPath, "err", err)
			continue
		}
		cases = append(cases, loadCase(id, inPath, filepath.Join(caseDir, constants.OutputFileName)))
	}
	sortCases(cases)
	slog.Debug("test cases discovered", "dir", problemDir, "count", len(cases))
	return cases, nil
}

func discoverFlat(problemDir string) ([]models.TestCase, error) {
	entries, err := os.ReadDir(problemDir)
	if err != nil {
		return nil, fmt.Errorf("read problem directory %s: %w", problemDir, err)
	}
	var cases []models.TestCase
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := legacyInputRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id <= 0 {
			continue
		}
		inPath := filepath.Join(problemDir, entry.Name())
		outPath := filepath.Join(problemDir, fmt.Sprintf("output%s.txt", m[1]))
		cases = append(cases, loadCase(id, inPath, outPath))
	}
	sortCases(cases)
	return cases, nil
}

func loadCase(id int, inPath, outPath string) models.TestCase {
	tc := models.TestCase{ID: id, InputPath: inPath, OutputPath: outPath}
	data, err := os.ReadFile(outPath)
	switch {
	case err == nil:
		tc.Expected = string(data)
		tc.HasExpected = true
	case os.IsNotExist(err):
	default:
		slog.Warn("cannot read expected output", "case", id, "path", outPath, "err", err)
	}
	return tc
}

// sortCases orders by numeric id so "2" comes before "10".
func sortCases(cases []models.TestCase) {
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].ID != cases[j].ID {
			return cases[i].ID < cases[j].ID
		}
		return cases[i].InputPath < cases[j].InputPath
	})
}

// ResolveTimeLimit returns the effective per-case time limit in milliseconds:
// the override if positive, then meta.json timeLimitMs, then the first number
// of meta.json timeLimit read as seconds, then the default.
func ResolveTimeLimit(problemDir string, overrideMs int) int {
	if overrideMs > 0 {
		return overrideMs
	}
	meta := readMeta(problemDir)
	if raw, ok := meta["timeLimitMs"]; ok {
		var ms float64
		if err := json.Unmarshal(raw, &ms); err == nil {
			if v, ok := limitMs(ms); ok {
				return v
			}
		}
		slog.Debug("ignoring invalid timeLimitMs", "value", string(raw))
	}
	if raw, ok := meta["timeLimit"]; ok {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			if ms, ok := ParseTimeLimitText(text); ok {
				return ms
			}
		}
		slog.Debug("ignoring invalid timeLimit", "value", string(raw))
	}
	return constants.DefaultTimeLimitMs
}

// ParseTimeLimitText extracts the first decimal number of a free text limit
// such as "2 초" or "1.5s" and reads it as seconds. Limits that round to
// less than 1ms or exceed MaxTimeLimitMs are rejected.
func ParseTimeLimitText(text string) (int, bool) {
	tok := decimalRe.FindString(text)
	if tok == "" {
		return 0, false
	}
	sec, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return limitMs(sec * 1000)
}

// limitMs rounds ms and rejects values outside [1, MaxTimeLimitMs].
func limitMs(ms float64) (int, bool) {
	r := math.Round(ms)
	if r < 1 || r > constants.MaxTimeLimitMs {
		return 0, false
	}
	return int(r), true
}

func readMeta(problemDir string) map[string]json.RawMessage {
	path := filepath.Join(problemDir, constants.MetaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("cannot read meta file", "path", path, "err", err)
		}
		return nil
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Debug("cannot parse meta file", "path", path, "err", err)
		return nil
	}
	return meta
}
