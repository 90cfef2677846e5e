package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/config"
	"github.com/dayforge/dayforge/internal/database"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

var scheduleDayCmd = &cobra.Command{
	Use:   "schedule-day --user <user-id> --date <YYYY-MM-DD> [--template <template-id>]",
	Short: "Manually trigger ScheduleDay (§4.3) for one user/date outside the normal client flow",
	RunE:  runScheduleDay,
}

func init() {
	scheduleDayCmd.Flags().String("user", "", "user id (required)")
	scheduleDayCmd.Flags().String("date", "", "ISO 8601 date, YYYY-MM-DD (required)")
	scheduleDayCmd.Flags().String("template", "", "day template id; defaults to the user's configured default")
	_ = scheduleDayCmd.MarkFlagRequired("user")
	_ = scheduleDayCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(scheduleDayCmd)
}

func runScheduleDay(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	userID, _ := cmd.Flags().GetString("user")
	date, _ := cmd.Flags().GetString("date")
	templateID, _ := cmd.Flags().GetString("template")
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

	userRow, err := dbClient.Client.User.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}
	user := commands.UserFromEnt(userRow)

	dispatcher := events.NewDispatcher()
	publisher := pubsub.NewPGPublisher(dbClient.DB())
	store := worker.NewDBStore(dbClient.Client)
	factory := uow.NewFactory(dbClient.Client, dispatcher, publisher, store, masking.NewService())

	u, err := factory.New(ctx, userID)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}

	var templateIDPtr *string
	if templateID != "" {
		templateIDPtr = &templateID
	}
	day, err := commands.ScheduleDay(ctx, u, user, commands.ScheduleDayInput{
		UserID: userID, Date: date, TemplateID: templateIDPtr,
	})
	if err != nil {
		_ = u.Rollback()
		return fmt.Errorf("schedule day: %w", err)
	}
	if err := u.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("scheduled day %s for user %s (status %s)\n", day.ID, userID, day.Status)
	return nil
}
