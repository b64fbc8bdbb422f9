package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetByEmail finds a contact by email address
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Contact{}, "id = ?", id).Error
}

func (r *ContactRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("last_name, first_name").
		Find(&contacts).Error
	return contacts, err
}

// ListByIDs fetches a batch of contacts in a single query
func (r *ContactRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&contacts).Error
	return contacts, err
}

// DeleteByOrganization removes all contacts belonging to an organization
func (r *ContactRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Contact{}, "organization_id = ?", organizationID).Error
}
