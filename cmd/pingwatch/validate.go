package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingwatch/pingwatch"
	"github.com/pingwatch/pingwatch/config"
)

// validateCmd validates a config document without probing anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config document",
	Long: `Validate a pingwatch configuration document without probing anything.

This command parses the YAML, expands environment variables, and reports
which entries would actually run. Entries that fail validation (bad
method, non-http(s) URL, non-positive interval, empty header names or
values) would be silently dropped by a running prober; this command makes
them visible. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Document parses (dropped entries are reported but not fatal)
  1 - Document is structurally invalid (error details printed to stderr)

Example:
  pingwatch validate -c pingwatch.yaml
  pingwatch validate --config /etc/pingwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	doc, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	snap := config.BuildSnapshot(doc)
	valid := pingwatch.FilterValid(snap)

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Verbosity:     %s\n", doc.Verbosity)
	fmt.Printf("  Probe timeout: %s\n", doc.DefaultTimeout.Duration())
	fmt.Printf("  Paths:         %d total, %d would run, %d would be dropped\n",
		len(snap), len(valid), len(snap)-len(valid))

	if len(snap) > len(valid) {
		fmt.Println()
		fmt.Println("Dropped entries:")
		for i, p := range snap {
			if pingwatch.IsValid(p) {
				continue
			}
			fmt.Printf("  paths[%d]: %s %s (interval %.4g min): %s\n",
				i, p.Method, p.Path, p.IntervalMinutes, pingwatch.InvalidReason(p))
		}
	}

	return nil
}
