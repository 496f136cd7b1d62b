// Package app wires configuration, calculation backends and the output
// modes of the picalc command together.
package app

import (
	"fmt"
	"io"
	"runtime"
)

// Set at link time, for example:
//
//	go build -ldflags="-X github.com/agbru/picalc/internal/app.Version=v1.2.3 -X github.com/agbru/picalc/internal/app.Commit=$(git rev-parse --short HEAD)" ./cmd/picalc
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request the version, in any
// position. Arguments after a "--" terminator are not flags.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "--version", "-V":
			return true
		}
	}
	return false
}

// VersionData describes the running binary.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// PrintVersion writes the block shown by --version. The first line is
// "picalc <version>".
func PrintVersion(out io.Writer) {
	v := GetVersionInfo()
	fmt.Fprintf(out, "picalc %s\n  commit %s, built %s\n  %s %s\n",
		v.Version, v.Commit, v.BuildDate, v.GoVersion, v.Platform)
}
