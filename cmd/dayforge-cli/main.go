// Command dayforge-cli is the operator tool for one-off administrative
// commands against a dayforge deployment: running a retention sweep
// on-demand, scheduling a day, or triggering a calendar sync outside the
// regular cron cadence.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dayforge-cli",
	Short: "Operator CLI for the dayforge planner backend",
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "path to configuration directory")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
