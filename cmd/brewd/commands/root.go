// Package commands implements the brewd command line interface.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "brewd",
		Short: "openbrew - instrumented coffee menu service",
		Long: `openbrew serves a minimal coffee menu resource API instrumented with
distributed tracing, structured log forwarding to an external collector,
and Prometheus metrics.

Endpoints:
  - CRUD on /coffees and /coffees/{id}
  - POST /order to place a (stateless) coffee order
  - GET /metrics for Prometheus scraping
  - GET /docs for the OpenAPI document`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(newServeCommand(version))

	return rootCmd
}
