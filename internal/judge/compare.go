package judge

import (
	"strings"
	"unicode"
)

// Comparison is the verdict of Compare along with the normalized texts.
type Comparison struct {
	Pass     bool
	Expected string
	Actual   string
	// WhitespaceOnly is set on a failed comparison whose outputs agree once
	// every whitespace character is ignored.
	WhitespaceOnly bool
}

// Normalize converts CRLF to LF, strips trailing whitespace from every line
// and drops trailing blank lines.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Compare normalizes both outputs and reports whether they match.
func Compare(expected, actual string) Comparison {
	e := Normalize(expected)
	a := Normalize(actual)
	c := Comparison{Pass: e == a, Expected: e, Actual: a}
	if !c.Pass {
		c.WhitespaceOnly = extractVisibleChars(e) == extractVisibleChars(a)
	}
	return c
}

// extractVisibleChars 从字符串中提取所有可见字符。
func extractVisibleChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
