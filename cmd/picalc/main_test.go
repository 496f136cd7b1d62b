package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI builds the binary and checks the process-level contract: the
// stdout shape, stderr diagnostics and exit codes.
func TestCLI(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	binName := "picalc"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	build := exec.Command("go", "build", "-o", binPath, ".")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("Failed to build picalc: %v", err)
	}

	profile := filepath.Join(t.TempDir(), "profile.json")

	tests := []struct {
		name       string
		args       []string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{
			name:       "Positional digits",
			args:       []string{"20", "--no-color"},
			wantStdout: "3.14159265358979323846\n",
		},
		{
			name:       "Suffix",
			args:       []string{"-d", "1k", "--quiet"},
			wantStdout: "3.1415926535",
		},
		{
			name:       "JSON",
			args:       []string{"-d", "5", "--json"},
			wantStdout: `"result": "3.14159"`,
		},
		{
			name:       "Invalid spec",
			args:       []string{"-d", "e5"},
			wantStderr: "Invalid scientific notation",
			wantCode:   4,
		},
		{
			name:       "Help",
			args:       []string{"--help"},
			wantStderr: "usage",
		},
		{
			name:       "Version",
			args:       []string{"--version"},
			wantStdout: "picalc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, append(tt.args, "--calibration-profile", profile)...)
			var stdout, stderr strings.Builder
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			err := cmd.Run()

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr:\n%s", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if !strings.Contains(strings.ToLower(stderr.String()), strings.ToLower(tt.wantStderr)) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}
