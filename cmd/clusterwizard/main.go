// Package main is the entry point for the clusterwizard CLI.
//
// clusterwizard walks the user through creating an UnDistro Cluster and its
// DefaultPolicies, then submits both to the management cluster or writes
// them out as YAML.
//
// Commands: create, catalog, version, completion.
//
// For detailed usage information, run:
//
//	clusterwizard --help
package main

import (
	"fmt"
	"os"

	"github.com/undistro/clusterwizard/cmd/clusterwizard/commands"
)

// Version information set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
