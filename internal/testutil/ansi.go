// Package testutil provides helpers shared by the CLI and application tests.
package testutil

import (
	"regexp"
	"strings"
	"testing"
)

// ansiRegex matches CSI escape sequences (ESC [ ... letter).
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from s.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// AssertContainsPlain fails the test unless output, once stripped of colour
// codes, contains every one of wants.
func AssertContainsPlain(t testing.TB, output string, wants ...string) {
	t.Helper()
	plain := StripAnsiCodes(output)
	for _, want := range wants {
		if !strings.Contains(plain, want) {
			t.Errorf("output does not contain %q:\n%s", want, plain)
		}
	}
}
