package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

const DefaultSQLitePath = "./safety.db"

// SQLiteService owns the process-wide handle to the embedded observation database.
type SQLiteService struct {
	db   *gorm.DB
	log  *logger.Logger
	path string
}

func NewSQLiteService(logg *logger.Logger, path string) (*SQLiteService, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultSQLitePath
	}
	serviceLog := logg.With("service", "SQLiteService", "path", path)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	serviceLog.Info("Opening SQLite database...")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access SQLite handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to reach SQLite database %q: %w", path, err)
	}

	return &SQLiteService{db: db, log: serviceLog, path: path}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

func (s *SQLiteService) Path() string { return s.path }

func (s *SQLiteService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("Closing SQLite database")
	return sqlDB.Close()
}
