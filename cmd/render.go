package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sempr/localjudge/pkg/constants"
	"github.com/sempr/localjudge/pkg/models"
)

// printReport writes one line per case followed by a summary line, or the
// whole report as indented JSON.
func printReport(w io.Writer, report *models.Report, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	if len(report.Results) == 0 {
		fmt.Fprintln(w, "no test cases found")
	}
	for _, r := range report.Results {
		fmt.Fprintf(w, "[%d] %s (%dms)\n", r.CaseID, constants.GetStatusName(r.Status), r.DurationMs)
		switch r.Status {
		case constants.StatusFail:
			if r.Error != "" {
				fmt.Fprintf(w, "  note: %s\n", r.Error)
			}
			writeBlock(w, "expected", r.Expected)
			writeBlock(w, "actual", r.Actual)
		case constants.StatusError:
			writeBlock(w, "error", r.Error)
		}
	}
	s := report.Summary
	_, err := fmt.Fprintf(w, "%d/%d passed, %d failed, %d errors (time limit %dms)\n",
		s.Passed, s.Total, s.Failed, s.Errored, report.TimeoutMs)
	return err
}

func writeBlock(w io.Writer, label, text string) {
	text = strings.TrimRight(text, "\n")
	if !strings.Contains(text, "\n") {
		fmt.Fprintf(w, "  %s: %s\n", label, text)
		return
	}
	fmt.Fprintf(w, "  %s:\n", label)
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}
