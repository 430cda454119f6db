package repository

import (
	"context"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Record(ctx context.Context, e *domain.ActivityEvent) error
}

type GormActivityRepo struct {
	db *gorm.DB
}

func NewGormActivityRepo(db *gorm.DB) *GormActivityRepo {
	return &GormActivityRepo{db: db}
}

func (r *GormActivityRepo) Record(ctx context.Context, e *domain.ActivityEvent) error {
	model := activityModelFromDomain(e)
	if model == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(model).Error
}
