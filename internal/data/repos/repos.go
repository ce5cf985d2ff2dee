package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/safetywatch-backend/internal/data/repos/observation"
	"github.com/yungbote/safetywatch-backend/internal/platform/jsonbin"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

type ObservationRepo = observation.Repo

const (
	BackendSQLite  = observation.BackendSQLite
	BackendJSONBin = observation.BackendJSONBin
)

func NewSQLiteObservationRepo(db *gorm.DB, log *logger.Logger) ObservationRepo {
	return observation.NewSQLiteRepo(db, log)
}

func NewBinObservationRepo(client jsonbin.Client, collectionField string, log *logger.Logger) ObservationRepo {
	return observation.NewBinRepo(client, collectionField, log)
}
