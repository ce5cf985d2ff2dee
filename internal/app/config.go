package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/safetywatch-backend/internal/jobs/scheduler"
	"github.com/yungbote/safetywatch-backend/internal/platform/jsonbin"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"safetywatch"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"./safety.db"`

	JSONBinMasterKey       string `env:"JSONBIN_MASTER_KEY"`
	JSONBinBinID           string `env:"JSONBIN_BIN_ID"`
	JSONBinBaseURL         string `env:"JSONBIN_BASE_URL" envDefault:"https://api.jsonbin.io/v3"`
	JSONBinCollectionField string `env:"JSONBIN_COLLECTION_FIELD" envDefault:"observations"`
	JSONBinTimeoutSeconds  int    `env:"JSONBIN_TIMEOUT_SECONDS" envDefault:"15"`

	NotifyTo      []string      `env:"NOTIFY_TO" envSeparator:","`
	NotifyFrom    string        `env:"NOTIFY_FROM"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"30s"`

	OverdueEnabled   bool   `env:"OVERDUE_ENABLED" envDefault:"true"`
	OverdueCron      string `env:"OVERDUE_CRON" envDefault:"0 8 * * 1"`
	OverdueAfterDays int    `env:"OVERDUE_AFTER_DAYS" envDefault:"7"`

	StaticDir       string        `env:"STATIC_DIR" envDefault:"./public"`
	CORSOrigins     []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if c.Port == "" {
		return c, fmt.Errorf("PORT must not be empty")
	}
	if strings.TrimSpace(c.OverdueCron) == "" {
		c.OverdueCron = scheduler.DefaultOverdueSpec
	}
	if c.OverdueAfterDays < 0 {
		return c, fmt.Errorf("OVERDUE_AFTER_DAYS must be >= 0, got %d", c.OverdueAfterDays)
	}
	if c.ShutdownTimeout <= 0 {
		return c, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return c, nil
}

func (c Config) Addr() string { return ":" + c.Port }

func (c Config) JSONBin() jsonbin.Config {
	return jsonbin.Config{
		MasterKey: c.JSONBinMasterKey,
		BinID:     c.JSONBinBinID,
		BaseURL:   c.JSONBinBaseURL,
		Timeout:   time.Duration(c.JSONBinTimeoutSeconds) * time.Second,
	}
}
