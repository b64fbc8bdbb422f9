package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Add inserts a membership row. The composite unique index on
// (team_id, team_type, contact_id) rejects concurrent duplicates that
// slip past the existence pre-check.
func (r *TeamRepository) Add(ctx context.Context, member *domain.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *TeamRepository) Remove(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType, contactID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND team_type = ? AND contact_id = ?", teamID, teamType, contactID).
		Delete(&domain.TeamMember{})
	return result.RowsAffected, result.Error
}

func (r *TeamRepository) Exists(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType, contactID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TeamMember{}).
		Where("team_id = ? AND team_type = ? AND contact_id = ?", teamID, teamType, contactID).
		Count(&count).Error
	return count > 0, err
}

func (r *TeamRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND team_type = ?", teamID, teamType).
		Order("created_at").
		Find(&members).Error
	return members, err
}

func (r *TeamRepository) ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Find(&members).Error
	return members, err
}

// DeleteByTeam removes all memberships for a team scope, used when the
// underlying entity is deleted
func (r *TeamRepository) DeleteByTeam(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND team_type = ?", teamID, teamType).
		Delete(&domain.TeamMember{}).Error
}

// DeleteByContact removes all memberships held by a contact
func (r *TeamRepository) DeleteByContact(ctx context.Context, contactID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Delete(&domain.TeamMember{}).Error
}
