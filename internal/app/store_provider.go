package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/safetywatch-backend/internal/data/db"
	"github.com/yungbote/safetywatch-backend/internal/data/repos"
	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/jsonbin"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

var (
	newSQLiteService = db.NewSQLiteService
	newJSONBinClient = jsonbin.New
)

type StoreBootstrapErrorCode string

const (
	StoreBootstrapErrorInvalidConfig StoreBootstrapErrorCode = "invalid_config"
	StoreBootstrapErrorOpenFailed    StoreBootstrapErrorCode = "open_failed"
	StoreBootstrapErrorMigrateFailed StoreBootstrapErrorCode = "migrate_failed"
)

type StoreBootstrapError struct {
	Code    StoreBootstrapErrorCode
	Backend string
	Cause   error
}

func (e *StoreBootstrapError) Error() string {
	if e == nil {
		return "observation store bootstrap failed"
	}
	return fmt.Sprintf("observation store bootstrap failed (code=%s backend=%s): %v", e.Code, e.Backend, e.Cause)
}

func (e *StoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Store is the observation backend chosen at start, plus whatever handle it owns.
type Store struct {
	Backend string
	Repo    repos.ObservationRepo
	close   func() error
}

func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// resolveObservationStore picks the hosted bin when both bin credentials are set and the
// embedded SQLite file otherwise. The choice is made once per process.
func resolveObservationStore(log *logger.Logger, cfg Config, metrics *observability.Metrics) (*Store, error) {
	binCfg := cfg.JSONBin()
	if binCfg.Present() {
		return openBinStore(log, cfg, binCfg, metrics)
	}
	if strings.TrimSpace(binCfg.MasterKey) != "" || strings.TrimSpace(binCfg.BinID) != "" {
		log.Warn("Only one of JSONBIN_MASTER_KEY / JSONBIN_BIN_ID is set; using SQLite",
			"has_master_key", strings.TrimSpace(binCfg.MasterKey) != "",
			"has_bin_id", strings.TrimSpace(binCfg.BinID) != "",
		)
	}
	return openSQLiteStore(log, cfg, metrics)
}

func openBinStore(log *logger.Logger, cfg Config, binCfg jsonbin.Config, metrics *observability.Metrics) (*Store, error) {
	client, err := newJSONBinClient(log, binCfg)
	if err != nil {
		return nil, classifyStoreBootstrapError(repos.BackendJSONBin, err)
	}
	repo := repos.NewBinObservationRepo(client, cfg.JSONBinCollectionField, log)
	log.Info("Observation store selected",
		"backend", repos.BackendJSONBin,
		"base_url", strings.TrimSpace(cfg.JSONBinBaseURL),
		"collection_field", cfg.JSONBinCollectionField,
	)
	return &Store{
		Backend: repos.BackendJSONBin,
		Repo:    instrumentObservationRepo(repo, metrics),
	}, nil
}

func openSQLiteStore(log *logger.Logger, cfg Config, metrics *observability.Metrics) (*Store, error) {
	svc, err := newSQLiteService(log, cfg.SQLitePath)
	if err != nil {
		return nil, &StoreBootstrapError{Code: StoreBootstrapErrorOpenFailed, Backend: repos.BackendSQLite, Cause: err}
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, &StoreBootstrapError{Code: StoreBootstrapErrorMigrateFailed, Backend: repos.BackendSQLite, Cause: err}
	}
	log.Info("Observation store selected", "backend", repos.BackendSQLite, "path", svc.Path())
	return &Store{
		Backend: repos.BackendSQLite,
		Repo:    instrumentObservationRepo(repos.NewSQLiteObservationRepo(svc.DB(), log), metrics),
		close:   svc.Close,
	}, nil
}

func classifyStoreBootstrapError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *jsonbin.ConfigError
	if errors.As(err, &cfgErr) {
		return &StoreBootstrapError{Code: StoreBootstrapErrorInvalidConfig, Backend: backend, Cause: err}
	}
	return &StoreBootstrapError{Code: StoreBootstrapErrorOpenFailed, Backend: backend, Cause: err}
}
