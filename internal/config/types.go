package config

import "time"

// Config is the fully resolved, ready-to-use configuration returned by
// Initialize.
type Config struct {
	configDir string

	Database              DatabaseConfig
	Server                ServerConfig
	Queue                 QueueConfig
	Retention             RetentionConfig
	SmartNotifications    SmartNotificationsConfig
	LLM                   map[string]LLMProviderConfig
	Cron                  CronConfig
}

// ConfigDir returns the directory Config was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// ServerConfig holds the API server's listen address and WebSocket origin
// allowlist.
type ServerConfig struct {
	ListenAddr       string   `yaml:"listen_addr"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
}

// QueueConfig controls the deferred-job worker pool (§4.7).
type QueueConfig struct {
	WorkerCount int           `yaml:"worker_count"`
	PollEvery   time.Duration `yaml:"poll_every"`
}

// DefaultQueueConfig returns the built-in worker pool defaults.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{WorkerCount: 5, PollEvery: 1 * time.Second}
}

// RetentionConfig controls the soft-delete retention sweep (§9 supplemented
// feature 6).
type RetentionConfig struct {
	DayRetentionDays int           `yaml:"day_retention_days"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{DayRetentionDays: 180, CleanupInterval: 24 * time.Hour}
}

// SmartNotificationsConfig gates §4.5.3/§4.5.6's LLM-driven notification
// jobs globally rather than per-user.
type SmartNotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LLMProviderConfig describes one configured LLM provider endpoint.
type LLMProviderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

// CronConfig lets an operator override the §6.3 job cadences without a
// redeploy.
type CronConfig struct {
	PerMinute         string `yaml:"per_minute"`
	SmartNotification string `yaml:"smart_notification"`
	MorningOverview   string `yaml:"morning_overview"`
	RetentionSweep    string `yaml:"retention_sweep"`
	CalendarSync      string `yaml:"calendar_sync"`
}

// DefaultCronConfig returns the §6.3 default cadences.
func DefaultCronConfig() CronConfig {
	return CronConfig{
		PerMinute:         "* * * * *",
		SmartNotification: "0,19,20,30,50 * * * *",
		MorningOverview:   "*/15 * * * *",
		RetentionSweep:    "0 3 * * *",
		CalendarSync:      "*/10 * * * *",
	}
}

// yamlConfig mirrors dayforge.yaml's on-disk shape before defaults/env
// expansion are applied.
type yamlConfig struct {
	Database           *DatabaseConfig              `yaml:"database"`
	Server             *ServerConfig                `yaml:"server"`
	Queue              *QueueConfig                 `yaml:"queue"`
	Retention          *RetentionConfig              `yaml:"retention"`
	SmartNotifications *SmartNotificationsConfig    `yaml:"smart_notifications"`
	LLM                map[string]LLMProviderConfig `yaml:"llm_providers"`
	Cron               *CronConfig                  `yaml:"cron"`
}
