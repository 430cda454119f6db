package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	List(ctx context.Context) ([]domain.Schedule, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type GormScheduleRepo struct {
	db *gorm.DB
}

func NewGormScheduleRepo(db *gorm.DB) *GormScheduleRepo {
	return &GormScheduleRepo{db: db}
}

func (r *GormScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	model, steps := scheduleModelFromDomain(s)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormScheduleRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	var model ScheduleModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	steps, err := r.stepsFor(ctx, model.ID)
	if err != nil {
		return nil, err
	}

	return scheduleModelToDomain(&model, steps), nil
}

func (r *GormScheduleRepo) List(ctx context.Context) ([]domain.Schedule, error) {
	var models []ScheduleModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	schedules := make([]domain.Schedule, 0, len(models))
	for i := range models {
		steps, err := r.stepsFor(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *scheduleModelToDomain(&models[i], steps))
	}

	return schedules, nil
}

func (r *GormScheduleRepo) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&ScheduleModel{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a schedule together with its steps and every attempt
// materialized from it, so no attempt row is left pointing at a missing
// schedule.
func (r *GormScheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&ScheduleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Delete(&ScheduleStepModel{}, "schedule_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&AttemptModel{}, "schedule_id = ?", id).Error
	})
}

func (r *GormScheduleRepo) stepsFor(ctx context.Context, scheduleID string) ([]ScheduleStepModel, error) {
	var steps []ScheduleStepModel
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("attempt_number ASC").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}
