package app

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestHasVersionFlag(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"empty", []string{}, false},
		{"no version flag", []string{"-d", "100"}, false},
		{"long", []string{"--version"}, true},
		{"short", []string{"-V"}, true},
		{"in the middle", []string{"-d", "100", "--version", "--algo", "fft"}, true},
		{"after a positional", []string{"1K", "-V"}, true},
		{"after terminator", []string{"--", "--version"}, false},
		{"similar flag", []string{"--verbose"}, false},
		{"lower-case short is verbose", []string{"-v"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasVersionFlag(tc.args); got != tc.expected {
				t.Errorf("HasVersionFlag(%v) = %v, want %v", tc.args, got, tc.expected)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintVersion(&buf)
	output := buf.String()

	if !strings.HasPrefix(output, "picalc "+Version+"\n") {
		t.Errorf("first line = %q", strings.SplitN(output, "\n", 2)[0])
	}
	for _, want := range []string{"commit " + Commit, "built " + BuildDate, runtime.Version(), runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(output, want) {
			t.Errorf("PrintVersion output missing %q", want)
		}
	}
}

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()
	info := GetVersionInfo()
	if info.Version != Version || info.Commit != Commit || info.BuildDate != BuildDate {
		t.Errorf("GetVersionInfo() = %+v", info)
	}
	if info.GoVersion != runtime.Version() || info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("runtime fields = %+v", info)
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"build_date"`) {
		t.Errorf("JSON = %s", data)
	}
}
