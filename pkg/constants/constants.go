package constants

const (
	StatusPass  = "pass"  // 输出一致
	StatusFail  = "fail"  // 输出不一致
	StatusError = "error" // 超时、运行错误或缺少期望输出
)

const (
	DefaultTimeLimitMs = 5000
	// MaxTimeLimitMs bounds limits read from meta.json; larger values are ignored.
	MaxTimeLimitMs = 10 * 60 * 1000
	MaxCaptureBytes    = 64 << 20
)

// problem directory layout
const (
	TestcasesDir   = "testcases"
	InputFileName  = "input.txt"
	OutputFileName = "output.txt"
	MetaFileName   = "meta.json"
	SolutionStem   = "solution"
)

func GetStatusName(status string) string {
	switch status {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusError:
		return "ERROR"
	}
	return "OT"
}
