package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByOrganization(ctx context.Context, organizationID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		First(&account, "organization_id = ?", organizationID).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *AccountRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Account{}, "organization_id = ?", organizationID).Error
}
