// Package main is the entry point for the pingwatch CLI.
//
// pingwatch can be embedded as a library or run as a standalone binary
// against a configuration source. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	pingwatch serve -c config.yaml     # Watch a config file and probe
//	pingwatch serve --url https://...  # Watch a remote config document
//	pingwatch validate -c config.yaml  # Validate a config document
//	pingwatch check -c config.yaml     # Probe every entry once
//	pingwatch version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "pingwatch",
	Short: "A dynamically reconfigurable URL health-prober",
	Long: `pingwatch probes a set of HTTP endpoints, each on its own interval,
and follows a live configuration source: whenever the configuration
changes, the entire running task set is replaced. An endpoint is never
probed concurrently with itself.

Quick start:
  1. Create a config file (pingwatch.yaml)
  2. Run: pingwatch serve -c pingwatch.yaml

Example config:
  verbosity: all
  paths:
    - method: GET
      path: https://api.example.com/health
      interval_minutes: 1
    - method: GET
      path: https://example.com
      interval_minutes: 5`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this pingwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pingwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
