// Package testutil holds helpers shared by the CLI-facing tests.
package testutil

import (
	"regexp"
	"strings"
)

// ansiRegex matches CSI escape sequences (ESC [ ... letter).
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from s.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// Lines splits output into lines without escape codes, dropping the empty
// line after a trailing newline.
func Lines(output string) []string {
	clean := strings.TrimRight(StripAnsiCodes(output), "\n")
	if clean == "" {
		return nil
	}
	return strings.Split(clean, "\n")
}

// LastLine returns the last non-empty line of output without escape codes.
func LastLine(output string) string {
	lines := Lines(output)
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
