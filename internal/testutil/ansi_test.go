package testutil

import "testing"

func TestStripAnsiCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no codes", "3.14159", "3.14159"},
		{"simple color", "\x1b[31mRed\x1b[0m", "Red"},
		{"bold and color", "\x1b[1;32mGreen Bold\x1b[0m", "Green Bold"},
		{"256 colors", "\x1b[38;5;82m3.14\x1b[0m", "3.14"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		if got := StripAnsiCodes(tt.input); got != tt.expected {
			t.Errorf("%s: StripAnsiCodes(%q) = %q, want %q", tt.name, tt.input, got, tt.expected)
		}
	}
}

func TestLines(t *testing.T) {
	t.Parallel()
	got := Lines("Calculating\n\x1b[1mTime: 0.0001s\x1b[0m\n3.14\n")
	want := []string{"Calculating", "Time: 0.0001s", "3.14"}
	if len(got) != len(want) {
		t.Fatalf("Lines returned %d lines, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	if Lines("") != nil {
		t.Error("Lines of empty output should be nil")
	}
}

func TestLastLine(t *testing.T) {
	t.Parallel()
	if got := LastLine("a\nb\n\n  \n"); got != "b" {
		t.Errorf("LastLine = %q, want %q", got, "b")
	}
	if got := LastLine(""); got != "" {
		t.Errorf("LastLine of empty output = %q", got)
	}
}
