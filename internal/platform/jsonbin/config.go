package jsonbin

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.jsonbin.io/v3"

type Config struct {
	MasterKey string
	BinID     string
	BaseURL   string
	Timeout   time.Duration
}

// Present reports whether both credentials needed to reach a bin are set.
func (c Config) Present() bool {
	return strings.TrimSpace(c.MasterKey) != "" && strings.TrimSpace(c.BinID) != ""
}

type ConfigErrorCode string

const (
	ConfigErrorMissingMasterKey ConfigErrorCode = "missing_master_key"
	ConfigErrorMissingBinID     ConfigErrorCode = "missing_bin_id"
	ConfigErrorInvalidBaseURL   ConfigErrorCode = "invalid_base_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid jsonbin config"
	}
	switch e.Code {
	case ConfigErrorMissingMasterKey:
		return "JSONBIN_MASTER_KEY is required"
	case ConfigErrorMissingBinID:
		return "JSONBIN_BIN_ID is required"
	case ConfigErrorInvalidBaseURL:
		return fmt.Sprintf("invalid JSONBIN_BASE_URL=%q; expected absolute URL like %s", e.Value, DefaultBaseURL)
	default:
		return "invalid jsonbin config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ValidateConfig fills defaults and rejects configs that cannot address a bin.
func ValidateConfig(cfg Config) (Config, error) {
	cfg.MasterKey = strings.TrimSpace(cfg.MasterKey)
	cfg.BinID = strings.TrimSpace(cfg.BinID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	if cfg.MasterKey == "" {
		return cfg, &ConfigError{Code: ConfigErrorMissingMasterKey}
	}
	if cfg.BinID == "" {
		return cfg, &ConfigError{Code: ConfigErrorMissingBinID}
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return cfg, &ConfigError{Code: ConfigErrorInvalidBaseURL, Value: cfg.BaseURL, Cause: err}
	}
	return cfg, nil
}
