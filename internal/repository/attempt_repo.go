package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	CreateBatch(ctx context.Context, attempts []*domain.Attempt) error
	GetByID(ctx context.Context, id string) (*domain.Attempt, error)
	// GetDue returns scheduled attempts whose due time has elapsed, oldest
	// first, bounded by limit.
	GetDue(ctx context.Context, now time.Time, limit int) ([]domain.Attempt, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time, transportMessageID string) error
	MarkFailed(ctx context.Context, id string, errorMessage string) error
	MarkSkipped(ctx context.Context, id string) error
	CountSent(ctx context.Context, scheduleID, contactID string) (int64, error)
	// CancelForContact bulk-transitions a contact's remaining scheduled
	// attempts to SKIPPED and returns how many rows changed.
	CancelForContact(ctx context.Context, scheduleID, contactID string) (int64, error)
	ListForContact(ctx context.Context, scheduleID, contactID string) ([]domain.Attempt, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) CreateBatch(ctx context.Context, attempts []*domain.Attempt) error {
	models := make([]AttemptModel, 0, len(attempts))
	modelIndexes := make([]int, 0, len(attempts))
	for i, a := range attempts {
		model := attemptModelFromDomain(a)
		if model != nil {
			models = append(models, *model)
			modelIndexes = append(modelIndexes, i)
		}
	}

	if len(models) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&models, 100).Error; err != nil {
		return err
	}

	for i := range models {
		idx := modelIndexes[i]
		if idx < len(attempts) && attempts[idx] != nil {
			*attempts[idx] = *attemptModelToDomain(&models[i])
		}
	}

	return nil
}

func (r *GormAttemptRepo) GetByID(ctx context.Context, id string) (*domain.Attempt, error) {
	var model AttemptModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return attemptModelToDomain(&model), nil
}

func (r *GormAttemptRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]domain.Attempt, error) {
	var models []AttemptModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", domain.AttemptStatusScheduled, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.Attempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *attemptModelToDomain(&models[i]))
	}

	return attempts, nil
}

func (r *GormAttemptRepo) MarkSent(ctx context.Context, id string, sentAt time.Time, transportMessageID string) error {
	updates := map[string]any{
		"status":  domain.AttemptStatusSent,
		"sent_at": sentAt,
	}
	if transportMessageID != "" {
		updates["transport_message_id"] = transportMessageID
	}
	return r.transitionFromScheduled(ctx, id, updates)
}

func (r *GormAttemptRepo) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	return r.transitionFromScheduled(ctx, id, map[string]any{
		"status":        domain.AttemptStatusFailed,
		"error_message": errorMessage,
	})
}

func (r *GormAttemptRepo) MarkSkipped(ctx context.Context, id string) error {
	return r.transitionFromScheduled(ctx, id, map[string]any{
		"status": domain.AttemptStatusSkipped,
	})
}

// transitionFromScheduled enforces the one-way lifecycle: the update only
// lands while the row is still SCHEDULED.
func (r *GormAttemptRepo) transitionFromScheduled(ctx context.Context, id string, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&AttemptModel{}).
		Where("id = ? AND status = ?", id, domain.AttemptStatusScheduled).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&AttemptModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *GormAttemptRepo) CountSent(ctx context.Context, scheduleID, contactID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AttemptModel{}).
		Where("schedule_id = ? AND contact_id = ? AND status = ?",
			scheduleID, contactID, domain.AttemptStatusSent).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAttemptRepo) CancelForContact(ctx context.Context, scheduleID, contactID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&AttemptModel{}).
		Where("schedule_id = ? AND contact_id = ? AND status = ?",
			scheduleID, contactID, domain.AttemptStatusScheduled).
		Update("status", domain.AttemptStatusSkipped)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormAttemptRepo) ListForContact(ctx context.Context, scheduleID, contactID string) ([]domain.Attempt, error) {
	var models []AttemptModel
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND contact_id = ?", scheduleID, contactID).
		Order("attempt_number ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.Attempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *attemptModelToDomain(&models[i]))
	}

	return attempts, nil
}
