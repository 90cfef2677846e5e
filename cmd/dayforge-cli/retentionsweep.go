package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/config"
	"github.com/dayforge/dayforge/internal/database"
)

var retentionSweepCmd = &cobra.Command{
	Use:   "retention-sweep",
	Short: "Run the §9 soft-delete retention sweep immediately, outside its cron cadence",
	RunE:  runRetentionSweep,
}

func init() {
	rootCmd.AddCommand(retentionSweepCmd)
}

func runRetentionSweep(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	ctx := cmd.Context()

	cfg, err := config.Initialize(configDir)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbClient.Close()

	count, err := commands.SoftDeleteOldDays(ctx, dbClient.Client, cfg.Retention.DayRetentionDays, time.Now())
	if err != nil {
		return fmt.Errorf("run retention sweep: %w", err)
	}

	fmt.Printf("soft-deleted %d day(s) older than %d days\n", count, cfg.Retention.DayRetentionDays)
	return nil
}
