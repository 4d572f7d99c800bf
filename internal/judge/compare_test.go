package judge

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "7", "7"},
		{"trailing newline", "7\n", "7"},
		{"crlf", "1 2\r\n3 4\r\n", "1 2\n3 4"},
		{"trailing spaces per line", "a  \nb\t\n", "a\nb"},
		{"trailing blank lines", "a\n\n\n  \n", "a"},
		{"inner blank line kept", "a\n\nb", "a\n\nb"},
		{"leading spaces kept", "  a", "  a"},
		{"empty", "", ""},
		{"only whitespace", " \n\t\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name           string
		expected       string
		actual         string
		wantPass       bool
		wantWhitespace bool
	}{
		{"identical", "7\n", "7\n", true, false},
		{"missing final newline", "7\n", "7", true, false},
		{"crlf vs lf", "1\r\n2\r\n", "1\n2\n", true, false},
		{"trailing spaces", "1 2 3\n", "1 2 3   \n\n", true, false},
		{"different value", "3", "2", false, false},
		{"inner spacing differs", "1 2", "1  2", false, true},
		{"line break vs space", "1\n2", "1 2", false, true},
		{"extra line", "1", "1\n2", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.expected, tt.actual)
			if c.Pass != tt.wantPass {
				t.Errorf("Pass = %v, want %v (expected %q, actual %q)", c.Pass, tt.wantPass, c.Expected, c.Actual)
			}
			if c.WhitespaceOnly != tt.wantWhitespace {
				t.Errorf("WhitespaceOnly = %v, want %v", c.WhitespaceOnly, tt.wantWhitespace)
			}
			if c.Expected != Normalize(tt.expected) || c.Actual != Normalize(tt.actual) {
				t.Errorf("comparison does not carry normalized text: %+v", c)
			}
		})
	}
}
