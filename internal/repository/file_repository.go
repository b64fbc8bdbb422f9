package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.UploadedFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	var file domain.UploadedFile
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UploadedFile{}, "id = ?", id).Error
}

func (r *FileRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.UploadedFile, error) {
	var files []domain.UploadedFile
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]domain.UploadedFile, error) {
	var files []domain.UploadedFile
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}
