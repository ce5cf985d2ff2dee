package testutil

import (
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/safetywatch-backend/internal/data/db"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a migrated SQLite database in a per-test temp dir.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	svc, err := db.NewSQLiteService(Logger(tb), filepath.Join(tb.TempDir(), "safety.db"))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return svc.DB()
}
