package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

// LinkedInSessionRepository stores captured browser sessions used by
// the profile enrichment scraper
type LinkedInSessionRepository struct {
	db *gorm.DB
}

func NewLinkedInSessionRepository(db *gorm.DB) *LinkedInSessionRepository {
	return &LinkedInSessionRepository{db: db}
}

// Save replaces any previous session for the contact with the new one
func (r *LinkedInSessionRepository) Save(ctx context.Context, session *domain.LinkedInSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", session.ContactID).
			Delete(&domain.LinkedInSession{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

// GetFresh returns the contact's session if it has not expired
func (r *LinkedInSessionRepository) GetFresh(ctx context.Context, contactID uuid.UUID, now time.Time) (*domain.LinkedInSession, error) {
	var session domain.LinkedInSession
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND expires_at > ?", contactID, now).
		Order("captured_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteExpired removes sessions past their expiry, returning the
// number of rows swept
func (r *LinkedInSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.LinkedInSession{})
	return result.RowsAffected, result.Error
}
