package repository

import (
	"crowdpulse/pkg/models"

	"gorm.io/gorm"
)

// FetchLogRepository appends run outcomes. The table is insert-only:
// no update or delete path exists.
type FetchLogRepository interface {
	Create(log *models.FetchLog) error
	Recent(limit int) ([]*models.FetchLog, error)
	Count() (int64, error)
}

type fetchLogRepository struct {
	db *gorm.DB
}

func NewFetchLogRepository(db *gorm.DB) FetchLogRepository {
	return &fetchLogRepository{db: db}
}

func (r *fetchLogRepository) Create(log *models.FetchLog) error {
	return r.db.Create(log).Error
}

func (r *fetchLogRepository) Recent(limit int) ([]*models.FetchLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*models.FetchLog
	err := r.db.Order("completed_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *fetchLogRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.FetchLog{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
