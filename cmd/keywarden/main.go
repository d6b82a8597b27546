// Package main is the entry point for the Keywarden CLI.
package main

import (
	"os"

	"github.com/keywarden/keywarden/internal/cli"
)

// Build metadata injected via -ldflags at release time.
//
//nolint:gochecknoglobals // Linker-injected build metadata
var (
	version   string
	commit    string
	buildDate string
)

func main() {
	if err := cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: buildDate}); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
