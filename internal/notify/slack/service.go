package slack

import (
	"context"
	"log/slog"
	"time"
)

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token   string
	Channel string
}

// Service posts ops-visibility notifications to Slack.
// Nil-safe: all methods are no-ops when service is nil, so callers can wire
// it unconditionally and let an unconfigured deployment simply skip Slack.
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService creates a new Slack notification service.
// Returns nil if Token or Channel is empty.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		client: NewClient(cfg.Token, cfg.Channel),
		logger: slog.Default().With("component", "slack-ops-service"),
	}
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client) *Service {
	return &Service{client: client, logger: slog.Default().With("component", "slack-ops-service")}
}

// NotifyOpsEvent posts evt to the configured channel. Fail-open: delivery
// errors are logged, never returned — an ops ping failing must never take
// down the cron tick it's reporting on.
func (s *Service) NotifyOpsEvent(ctx context.Context, evt OpsEvent) {
	if s == nil {
		return
	}
	blocks := BuildOpsMessage(evt)
	if err := s.client.PostMessage(ctx, blocks, 5*time.Second); err != nil {
		s.logger.Error("failed to post ops notification", "kind", evt.Kind, "error", err)
	}
}
