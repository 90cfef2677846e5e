package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Initialize loads dayforge.yaml from configDir, expands environment
// variables, merges it over the built-in defaults, validates the result,
// and returns a ready-to-use Config. A .env file in configDir is loaded
// first (if present) so ${VAR} references in the YAML can resolve without
// the operator exporting everything into the shell.
func Initialize(configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)

	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to load .env", "path", envPath, "error", err)
	}

	yc, err := loadYAML(configDir)
	if err != nil {
		return nil, NewLoadError("dayforge.yaml", err)
	}

	cfg := &Config{
		configDir:          configDir,
		Queue:              DefaultQueueConfig(),
		Retention:          DefaultRetentionConfig(),
		Cron:               DefaultCronConfig(),
		SmartNotifications: SmartNotificationsConfig{Enabled: false},
		LLM:                map[string]LLMProviderConfig{},
	}

	if yc.Database != nil {
		cfg.Database = *yc.Database
	}
	if yc.Server != nil {
		cfg.Server = *yc.Server
	}
	if yc.Queue != nil {
		if err := mergo.Merge(&cfg.Queue, *yc.Queue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge queue config: %w", err)
		}
	}
	if yc.Retention != nil {
		if err := mergo.Merge(&cfg.Retention, *yc.Retention, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge retention config: %w", err)
		}
	}
	if yc.SmartNotifications != nil {
		cfg.SmartNotifications = *yc.SmartNotifications
	}
	if yc.Cron != nil {
		if err := mergo.Merge(&cfg.Cron, *yc.Cron, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge cron config: %w", err)
		}
	}
	if len(yc.LLM) > 0 {
		cfg.LLM = yc.LLM
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	log.Info("configuration initialized", "llm_providers", len(cfg.LLM), "smart_notifications_enabled", cfg.SmartNotifications.Enabled)
	return cfg, nil
}

func loadYAML(configDir string) (*yamlConfig, error) {
	path := filepath.Join(configDir, "dayforge.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	data = ExpandEnv(data)

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &yc, nil
}

func validate(cfg *Config) error {
	if cfg.Database.DSN == "" {
		return &ValidationError{Field: "database.dsn", Err: ErrMissingRequiredField}
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	return nil
}
