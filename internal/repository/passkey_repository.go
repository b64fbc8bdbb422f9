package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

// PasskeyCredentialRepository persists registered passkey credentials
type PasskeyCredentialRepository struct {
	db *gorm.DB
}

func NewPasskeyCredentialRepository(db *gorm.DB) *PasskeyCredentialRepository {
	return &PasskeyCredentialRepository{db: db}
}

func (r *PasskeyCredentialRepository) Create(ctx context.Context, cred *domain.PasskeyCredential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *PasskeyCredentialRepository) ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.PasskeyCredential, error) {
	var creds []domain.PasskeyCredential
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at").
		Find(&creds).Error
	return creds, err
}

func (r *PasskeyCredentialRepository) CountByContact(ctx context.Context, contactID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PasskeyCredential{}).
		Where("contact_id = ?", contactID).
		Count(&count).Error
	return count, err
}

func (r *PasskeyCredentialRepository) UpdateSignCount(ctx context.Context, credentialID []byte, signCount uint32) error {
	return r.db.WithContext(ctx).Model(&domain.PasskeyCredential{}).
		Where("credential_id = ?", credentialID).
		Update("sign_count", signCount).Error
}

func (r *PasskeyCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PasskeyCredential{}, "id = ?", id).Error
}

// WebauthnSessionRepository holds ceremony challenge state between the
// start and finish calls
type WebauthnSessionRepository struct {
	db *gorm.DB
}

func NewWebauthnSessionRepository(db *gorm.DB) *WebauthnSessionRepository {
	return &WebauthnSessionRepository{db: db}
}

func (r *WebauthnSessionRepository) Create(ctx context.Context, session *domain.WebauthnSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *WebauthnSessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.WebauthnSession, error) {
	var session domain.WebauthnSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *WebauthnSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.WebauthnSession{}, "id = ?", id).Error
}

// DeleteExpired removes ceremony sessions past their expiry, returning
// the number of rows swept
func (r *WebauthnSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.WebauthnSession{})
	return result.RowsAffected, result.Error
}
