package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/config"
	"github.com/dayforge/dayforge/internal/database"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/gateway"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

var syncCalendarCmd = &cobra.Command{
	Use:   "sync-calendar --user <user-id> --calendar <calendar-id>",
	Short: "Manually trigger SyncCalendar (§4.4) for one calendar outside the normal reconciliation job",
	RunE:  runSyncCalendar,
}

func init() {
	syncCalendarCmd.Flags().String("user", "", "user id (required)")
	syncCalendarCmd.Flags().String("calendar", "", "calendar id (required)")
	syncCalendarCmd.Flags().String("calendar-api-base-url", "", "override CALENDAR_API_BASE_URL")
	syncCalendarCmd.Flags().String("calendar-token-url", "", "override CALENDAR_TOKEN_URL")
	_ = syncCalendarCmd.MarkFlagRequired("user")
	_ = syncCalendarCmd.MarkFlagRequired("calendar")
	rootCmd.AddCommand(syncCalendarCmd)
}

func runSyncCalendar(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	userID, _ := cmd.Flags().GetString("user")
	calendarID, _ := cmd.Flags().GetString("calendar")
	apiBaseURL, _ := cmd.Flags().GetString("calendar-api-base-url")
	tokenURL, _ := cmd.Flags().GetString("calendar-token-url")
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

	calendarGateway := gateway.NewHTTPCalendarGateway(apiBaseURL, tokenURL, os.Getenv("CALENDAR_CLIENT_ID"), os.Getenv("CALENDAR_CLIENT_SECRET"))

	dispatcher := events.NewDispatcher()
	publisher := pubsub.NewPGPublisher(dbClient.DB())
	store := worker.NewDBStore(dbClient.Client)
	factory := uow.NewFactory(dbClient.Client, dispatcher, publisher, store, masking.NewService())

	u, err := factory.New(ctx, userID)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	if err := commands.SyncCalendar(ctx, u, calendarGateway, commands.SyncCalendarInput{
		UserID: userID, CalendarID: calendarID,
	}, time.Now()); err != nil {
		_ = u.Rollback()
		return fmt.Errorf("sync calendar: %w", err)
	}
	if err := u.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("synced calendar %s for user %s\n", calendarID, userID)
	return nil
}
