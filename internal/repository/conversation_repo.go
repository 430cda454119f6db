package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	UpdateStatus(ctx context.Context, id string, status domain.ConversationStatus) error
}

type GormConversationRepo struct {
	db *gorm.DB
}

func NewGormConversationRepo(db *gorm.DB) *GormConversationRepo {
	return &GormConversationRepo{db: db}
}

func (r *GormConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var model ConversationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conversationModelToDomain(&model), nil
}

func (r *GormConversationRepo) UpdateStatus(ctx context.Context, id string, status domain.ConversationStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid conversation status %q", domain.ErrValidation, status)
	}

	result := r.db.WithContext(ctx).
		Model(&ConversationModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
