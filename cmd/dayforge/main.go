// Command dayforge runs the planner's orchestrator: the HTTP/WebSocket
// sync fabric (§4.8), the per-minute/per-bucket reactive cron fan-out
// (§6.3), and the deferred worker pool (§4.7).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/calendar"
	"github.com/dayforge/dayforge/internal/api"
	"github.com/dayforge/dayforge/internal/config"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/database"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/gateway"
	"github.com/dayforge/dayforge/internal/jobs"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/notify/slack"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/reactive"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "path to configuration directory")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		slog.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	listenPool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		slog.Error("failed to open listen pool", "error", err)
		os.Exit(1)
	}
	defer listenPool.Close()

	publisher := pubsub.NewPGPublisher(dbClient.DB())
	listener := pubsub.NewListener(listenPool)
	go func() {
		if err := listener.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("pubsub listener exited", "error", err)
		}
	}()

	masker := masking.NewService()

	pushGateway := gateway.NewHTTPPushGateway()
	smsGateway := gateway.NewHTTPSMSGateway(
		getEnv("SMS_API_BASE_URL", "https://api.twilio.com/2010-04-01"),
		os.Getenv("SMS_ACCOUNT_SID"),
		os.Getenv("SMS_AUTH_TOKEN"),
		os.Getenv("SMS_FROM_NUMBER"),
	)
	calendarGateway := gateway.NewHTTPCalendarGateway(
		getEnv("CALENDAR_API_BASE_URL", ""),
		getEnv("CALENDAR_TOKEN_URL", ""),
		os.Getenv("CALENDAR_CLIENT_ID"),
		os.Getenv("CALENDAR_CLIENT_SECRET"),
	)
	var llmGateway commands.LLMGateway
	if provider, ok := cfg.LLM["default"]; ok && provider.BaseURL != "" {
		grpcGateway, err := gateway.NewGRPCLLMGateway(provider.BaseURL)
		if err != nil {
			slog.Error("failed to dial LLM gateway", "error", err)
			os.Exit(1)
		}
		defer grpcGateway.Close()
		llmGateway = grpcGateway
	} else {
		slog.Warn("no default LLM provider configured; LLM-driven jobs will no-op")
	}

	opsNotifier := slack.NewService(slack.ServiceConfig{
		Token:   os.Getenv("SLACK_OPS_TOKEN"),
		Channel: os.Getenv("SLACK_OPS_CHANNEL"),
	})

	dispatcher := events.NewDispatcher()

	store := worker.NewDBStore(dbClient.Client)
	factory := uow.NewFactory(dbClient.Client, dispatcher, publisher, store, masker)
	pool := worker.NewPool("dayforge-0", store, jobs.Handlers(factory, dbClient.Client, llmGateway, smsGateway, pushGateway, calendarGateway), cfg.Queue.WorkerCount, cfg.Queue.PollEvery)

	dispatcher.Register(reactive.NewAlarmDispatchHandler(factory, pushGateway, publisher))

	pool.Start(ctx)
	defer pool.Stop()

	loc := time.Local
	syncManager := api.NewSyncManager(dbClient.Client, listener, loc)
	server := api.NewServer(dbClient, syncManager, cfg.Server.AllowedWSOrigins)

	scheduleCron(ctx, cfg, dbClient.Client, factory, smsGateway, pushGateway, llmGateway, publisher, opsNotifier)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("dayforge starting", "listen_addr", cfg.Server.ListenAddr)
	if err := server.Start(cfg.Server.ListenAddr); err != nil && ctx.Err() == nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// scheduleCron wires the §6.3 cadences onto robfig/cron, each tick fanning
// out over every known user. There is no per-user scheduler in this
// planner (unlike a multi-tenant SaaS with tenant-scoped workers), so a
// single process-wide cron.Cron iterates the user table per tick — fine at
// the scale this is built for; a busier deployment would shard by user_id
// hash across pods instead.
func scheduleCron(
	ctx context.Context,
	cfg *config.Config,
	client *ent.Client,
	factory *uow.Factory,
	smsGateway commands.SMSGateway,
	pushGateway commands.PushGateway,
	llmGateway commands.LLMGateway,
	publisher pubsub.Publisher,
	opsNotifier *slack.Service,
) {
	c := cron.New()

	mustAdd := func(spec string, job func(now time.Time)) {
		_, err := c.AddFunc(spec, func() { job(time.Now()) })
		if err != nil {
			slog.Error("failed to register cron job", "spec", spec, "error", err)
		}
	}

	mustAdd(cfg.Cron.PerMinute, func(now time.Time) {
		forEachUser(ctx, client, func(userID string) {
			if err := reactive.AlarmTrigger(ctx, factory, client, userID, now); err != nil {
				slog.Error("alarm_trigger failed", "user_id", userID, "error", err)
			}
			if err := reactive.CalendarEntryNotifications(ctx, factory, client, smsGateway, pushGateway, userID, now); err != nil {
				slog.Error("calendar_entry_notifications failed", "user_id", userID, "error", err)
			}
			if err := reactive.TimingStatus(ctx, factory, client, userID, now); err != nil {
				slog.Error("timing_status failed", "user_id", userID, "error", err)
			}
		})
	})

	mustAdd(cfg.Cron.SmartNotification, func(now time.Time) {
		forEachUser(ctx, client, func(userID string) {
			if err := reactive.SmartNotification(ctx, factory, client, llmGateway, pushGateway, cfg.SmartNotifications.Enabled, userID, now); err != nil {
				slog.Error("smart_notification failed", "user_id", userID, "error", err)
			}
			if err := reactive.KioskNotification(ctx, client, llmGateway, publisher, cfg.SmartNotifications.Enabled, userID, now); err != nil {
				slog.Error("kiosk_notification failed", "user_id", userID, "error", err)
			}
		})
	})

	mustAdd(cfg.Cron.MorningOverview, func(now time.Time) {
		forEachUser(ctx, client, func(userID string) {
			if err := reactive.MorningOverview(ctx, factory, client, llmGateway, pushGateway, userID, now); err != nil {
				slog.Error("morning_overview failed", "user_id", userID, "error", err)
			}
		})
	})

	mustAdd(cfg.Cron.RetentionSweep, func(now time.Time) {
		count, err := commands.SoftDeleteOldDays(ctx, client, cfg.Retention.DayRetentionDays, now)
		if err != nil {
			slog.Error("retention sweep failed", "error", err)
			opsNotifier.NotifyOpsEvent(ctx, slack.OpsEvent{Kind: "retention_sweep", Err: err.Error()})
			return
		}
		if count > 0 {
			slog.Info("retention sweep soft-deleted days", "count", count)
			opsNotifier.NotifyOpsEvent(ctx, slack.OpsEvent{
				Kind:   "retention_sweep",
				Detail: fmt.Sprintf("soft-deleted %d day(s) past the retention window", count),
			})
		}
	})

	mustAdd(cfg.Cron.CalendarSync, func(now time.Time) {
		scheduled := scheduleCalendarSyncs(ctx, client, factory)
		if scheduled > 0 {
			opsNotifier.NotifyOpsEvent(ctx, slack.OpsEvent{
				Kind:   "calendar_sync",
				Detail: fmt.Sprintf("scheduled %d calendar sync job(s)", scheduled),
			})
		}
	})

	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
}

// scheduleCalendarSyncs fans out over every linked calendar that isn't
// stuck needing re-auth and defers a sync job per calendar through the
// WorkersToSchedule collector, batched behind one UoW commit per user so a
// user with several linked calendars submits one transaction rather than
// one per calendar.
func scheduleCalendarSyncs(ctx context.Context, client *ent.Client, factory *uow.Factory) int {
	calRows, err := client.Calendar.Query().Where(calendar.NeedsReauth(false)).All(ctx)
	if err != nil {
		slog.Error("failed to list calendars for sync fan-out", "error", err)
		return 0
	}

	byUser := make(map[string][]string)
	for _, row := range calRows {
		byUser[row.UserID] = append(byUser[row.UserID], row.ID)
	}

	scheduled := 0
	for userID, calendarIDs := range byUser {
		u, err := factory.New(ctx, userID)
		if err != nil {
			slog.Error("calendar_sync: failed to open uow", "user_id", userID, "error", err)
			continue
		}
		for _, calendarID := range calendarIDs {
			u.Workers().ScheduleSyncCalendar(userID, calendarID)
		}
		if err := u.Commit(); err != nil {
			slog.Error("calendar_sync: failed to commit deferred sync jobs", "user_id", userID, "error", err)
			continue
		}
		scheduled += len(calendarIDs)
	}
	return scheduled
}

func forEachUser(ctx context.Context, client *ent.Client, fn func(userID string)) {
	rows, err := client.User.Query().All(ctx)
	if err != nil {
		slog.Error("failed to list users for cron fan-out", "error", err)
		return
	}
	for _, row := range rows {
		fn(row.ID)
	}
}
