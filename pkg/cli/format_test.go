package cli

import (
	"strings"
	"testing"
)

func TestDotPad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"normal case", "get-hostname", 20, "get-hostname " + strings.Repeat(".", 7)},
		{"name equals width minus one", "abcde", 6, "abcde"},
		{"name longer than width", "set-interface-description", 5, "set-interface-description"},
		{"zero width", "ping", 0, "ping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DotPad(tt.input, tt.width); got != tt.expected {
				t.Errorf("DotPad(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
		})
	}
}

func TestColors(t *testing.T) {
	prev := colorEnabled
	defer SetColor(prev)

	SetColor(false)
	if got := Green("ok"); got != "ok" {
		t.Errorf("Green() with color disabled = %q", got)
	}

	SetColor(true)
	if got := Red("fail"); got != "\033[31mfail\033[0m" {
		t.Errorf("Red() = %q", got)
	}
	if got := Bold("x"); !strings.HasPrefix(got, "\033[1m") {
		t.Errorf("Bold() = %q", got)
	}
}
