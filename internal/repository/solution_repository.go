package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type SolutionRepository struct {
	db *gorm.DB
}

func NewSolutionRepository(db *gorm.DB) *SolutionRepository {
	return &SolutionRepository{db: db}
}

func (r *SolutionRepository) Create(ctx context.Context, solution *domain.Solution) error {
	return r.db.WithContext(ctx).Create(solution).Error
}

func (r *SolutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Solution, error) {
	var solution domain.Solution
	err := r.db.WithContext(ctx).First(&solution, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &solution, nil
}

func (r *SolutionRepository) Update(ctx context.Context, solution *domain.Solution) error {
	return r.db.WithContext(ctx).Save(solution).Error
}

func (r *SolutionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Solution{}, "id = ?", id).Error
}

func (r *SolutionRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, status domain.SolutionStatus) ([]domain.Solution, error) {
	query := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var solutions []domain.Solution
	err := query.Order("updated_at DESC").Find(&solutions).Error
	return solutions, err
}
