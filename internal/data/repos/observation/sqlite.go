package observation

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

type sqliteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &sqliteRepo{db: db, log: baseLog.With("repo", "SQLiteObservationRepo")}
}

func (r *sqliteRepo) Backend() string { return BackendSQLite }

func (r *sqliteRepo) ListAll(ctx context.Context) ([]*domain.Observation, error) {
	results := []*domain.Observation{}
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sqliteRepo) ListOpen(ctx context.Context) ([]*domain.Observation, error) {
	results := []*domain.Observation{}
	if err := r.db.WithContext(ctx).
		Where("status <> ?", domain.StatusClosed).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sqliteRepo) Insert(ctx context.Context, obs *domain.Observation) error {
	if obs == nil {
		return fmt.Errorf("nil observation")
	}
	row := *obs
	row.ID = 0
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *sqliteRepo) Update(ctx context.Context, id int64, status, fix string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Observation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": status,
			"fix":    fix,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("Update matched no observation", "observation_id", id)
	}
	return nil
}
