package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sempr/localjudge/pkg/models"
)

func sampleReport() *models.Report {
	results := []models.RunResult{
		{CaseID: 1, Status: "pass", Expected: "3", Actual: "3", DurationMs: 4},
		{CaseID: 2, Status: "fail", Expected: "3\n4", Actual: "3\n5", DurationMs: 5},
		{CaseID: 3, Status: "error", Error: "시간 초과 (timeout 1000ms)", TimedOut: true},
	}
	return &models.Report{Results: results, Summary: models.Summarize(results), TimeoutMs: 1000}
}

func TestPrintReportText(t *testing.T) {
	var buf bytes.Buffer
	if err := printReport(&buf, sampleReport(), false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"[1] PASS (4ms)\n",
		"[2] FAIL (5ms)\n",
		"  expected:\n    3\n    4\n",
		"  actual:\n    3\n    5\n",
		"[3] ERROR (0ms)\n  error: 시간 초과 (timeout 1000ms)\n",
		"1/3 passed, 1 failed, 1 errors (time limit 1000ms)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printReport(&buf, sampleReport(), true); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Results []map[string]any `json:"results"`
		Summary models.Summary   `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got.Results) != 3 || got.Results[2]["status"] != "error" {
		t.Errorf("results = %v", got.Results)
	}
	if got.Summary != (models.Summary{Total: 3, Passed: 1, Failed: 1, Errored: 1}) {
		t.Errorf("summary = %+v", got.Summary)
	}
}
