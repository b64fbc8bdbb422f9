package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/mapper"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/proposalhub/proposalhub-api/internal/storage"
	"go.uber.org/zap"
)

// FileService stores uploaded files and their metadata records. Files
// are scoped to the tenant's organization and optionally attached to a
// proposal.
type FileService struct {
	fileRepo     *repository.FileRepository
	proposalRepo *repository.ProposalRepository
	store        storage.Storage
	maxSize      int64
	logger       *zap.Logger
}

func NewFileService(
	fileRepo *repository.FileRepository,
	proposalRepo *repository.ProposalRepository,
	store storage.Storage,
	maxUploadSizeMB int64,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		fileRepo:     fileRepo,
		proposalRepo: proposalRepo,
		store:        store,
		maxSize:      maxUploadSizeMB * 1024 * 1024,
		logger:       logger,
	}
}

// MaxUploadSize returns the upload limit in bytes
func (s *FileService) MaxUploadSize() int64 {
	return s.maxSize
}

func (s *FileService) Upload(ctx context.Context, proposalID *uuid.UUID, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	tenant := auth.MustFromContext(ctx)

	if proposalID != nil {
		if err := s.requireTenantProposal(ctx, *proposalID); err != nil {
			return nil, err
		}
	}

	// The handler caps the request body, this guards direct callers
	limited := io.LimitReader(data, s.maxSize+1)

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, limited)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if size > s.maxSize {
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up oversized upload",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("%w: file exceeds upload limit", ErrConflict)
	}

	file := &domain.UploadedFile{
		OrganizationID: tenant.OrganizationID,
		ProposalID:     proposalID,
		FileName:       filename,
		ContentType:    contentType,
		Size:           size,
		StoragePath:    storagePath,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned upload",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.logger.Info("file uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("file_name", file.FileName),
		zap.Int64("size", file.Size),
	)

	dto := mapper.ToFileDTO(file, s.downloadURL(file.ID))
	return &dto, nil
}

// Download returns the file metadata and a reader over its content.
// The caller must close the reader.
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, io.ReadCloser, error) {
	file, err := s.tenantFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}
	return file, body, nil
}

func (s *FileService) List(ctx context.Context, proposalID *uuid.UUID) ([]domain.FileDTO, error) {
	tenant := auth.MustFromContext(ctx)

	var files []domain.UploadedFile
	var err error
	if proposalID != nil {
		if err := s.requireTenantProposal(ctx, *proposalID); err != nil {
			return nil, err
		}
		files, err = s.fileRepo.ListByProposal(ctx, *proposalID)
	} else {
		files, err = s.fileRepo.ListByOrganization(ctx, tenant.OrganizationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	dtos := make([]domain.FileDTO, len(files))
	for i, file := range files {
		dtos[i] = mapper.ToFileDTO(&file, s.downloadURL(file.ID))
	}
	return dtos, nil
}

func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.tenantFile(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	s.logger.Info("file deleted",
		zap.String("file_id", id.String()),
	)
	return nil
}

func (s *FileService) tenantFile(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	tenant := auth.MustFromContext(ctx)

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if file.OrganizationID != tenant.OrganizationID {
		return nil, ErrNotFound
	}
	return file, nil
}

func (s *FileService) requireTenantProposal(ctx context.Context, proposalID uuid.UUID) error {
	tenant := auth.MustFromContext(ctx)

	ownerOrgID, err := s.proposalRepo.GetOwnerOrganizationID(ctx, proposalID)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get proposal: %w", err)
	}
	if ownerOrgID != tenant.OrganizationID {
		return ErrNotFound
	}
	return nil
}

func (s *FileService) downloadURL(id uuid.UUID) string {
	return "/api/v1/files/" + id.String() + "/download"
}
