package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

// ContactRepository is the engine's read-only view of platform contacts.
type ContactRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
}

type GormContactRepo struct {
	db *gorm.DB
}

func NewGormContactRepo(db *gorm.DB) *GormContactRepo {
	return &GormContactRepo{db: db}
}

func (r *GormContactRepo) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	var model ContactModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contactModelToDomain(&model), nil
}
