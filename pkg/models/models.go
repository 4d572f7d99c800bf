package models

import "github.com/sempr/localjudge/pkg/constants"

// TestCase 是一次运行中单个测试点的只读快照。
type TestCase struct {
	// ID 是测试点编号（正整数），决定运行顺序。
	ID         int
	InputPath  string
	OutputPath string
	// Expected 是期望输出的原始内容；HasExpected 为 false 时没有 output 文件。
	Expected    string
	HasExpected bool
}

// RunResult 存储单个测试点的判题结果。
type RunResult struct {
	CaseID int    `json:"caseId"`
	Status string `json:"status"`
	// Expected 和 Actual 是规范化之后的文本，用于展示。
	Expected   string `json:"expected,omitempty"`
	Actual     string `json:"actual,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	TimedOut   bool   `json:"timedOut,omitempty"`
}

// Summary 是对 RunResult 列表的计数，只能由 Summarize 生成。
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// Report 聚合一次完整运行的所有测试点结果。
type Report struct {
	Results   []RunResult `json:"results"`
	Summary   Summary     `json:"summary"`
	TimeoutMs int         `json:"timeoutMs"`
}

// AllPassed reports whether every case passed. An empty report does not count as passed.
func (r *Report) AllPassed() bool {
	return r.Summary.Total > 0 && r.Summary.Passed == r.Summary.Total
}

func Summarize(results []RunResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case constants.StatusPass:
			s.Passed++
		case constants.StatusFail:
			s.Failed++
		default:
			s.Errored++
		}
	}
	return s
}
