package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/mapper"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"go.uber.org/zap"
)

// SolutionService manages the tenant's reusable solution library
type SolutionService struct {
	solutionRepo *repository.SolutionRepository
	teamRepo     *repository.TeamRepository
	logger       *zap.Logger
}

func NewSolutionService(
	solutionRepo *repository.SolutionRepository,
	teamRepo *repository.TeamRepository,
	logger *zap.Logger,
) *SolutionService {
	return &SolutionService{
		solutionRepo: solutionRepo,
		teamRepo:     teamRepo,
		logger:       logger,
	}
}

func (s *SolutionService) Create(ctx context.Context, req *domain.CreateSolutionRequest) (*domain.SolutionDTO, error) {
	tenant := auth.MustFromContext(ctx)

	solution := &domain.Solution{
		OrganizationID: tenant.OrganizationID,
		Title:          req.Title,
		Status:         domain.SolutionStatusDraft,
		Sections:       req.Sections,
	}

	if err := s.solutionRepo.Create(ctx, solution); err != nil {
		return nil, fmt.Errorf("failed to create solution: %w", err)
	}

	s.logger.Info("solution created",
		zap.String("solution_id", solution.ID.String()),
		zap.String("organization_id", tenant.OrganizationID.String()),
	)

	dto := mapper.ToSolutionDTO(solution)
	return &dto, nil
}

func (s *SolutionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SolutionDTO, error) {
	solution, err := s.tenantSolution(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToSolutionDTO(solution)
	return &dto, nil
}

func (s *SolutionService) List(ctx context.Context, status domain.SolutionStatus) ([]domain.SolutionDTO, error) {
	tenant := auth.MustFromContext(ctx)

	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrConflict, status)
	}

	solutions, err := s.solutionRepo.ListByOrganization(ctx, tenant.OrganizationID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}

	dtos := make([]domain.SolutionDTO, len(solutions))
	for i, solution := range solutions {
		dtos[i] = mapper.ToSolutionDTO(&solution)
	}
	return dtos, nil
}

func (s *SolutionService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSolutionRequest) (*domain.SolutionDTO, error) {
	solution, err := s.tenantSolution(ctx, id)
	if err != nil {
		return nil, err
	}

	solution.Title = req.Title
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrConflict, req.Status)
		}
		solution.Status = req.Status
	}
	solution.Sections = req.Sections
	if req.MediaAssets != nil {
		solution.MediaAssets = req.MediaAssets
	}

	if err := s.solutionRepo.Update(ctx, solution); err != nil {
		return nil, fmt.Errorf("failed to update solution: %w", err)
	}

	dto := mapper.ToSolutionDTO(solution)
	return &dto, nil
}

func (s *SolutionService) Delete(ctx context.Context, id uuid.UUID) error {
	solution, err := s.tenantSolution(ctx, id)
	if err != nil {
		return err
	}

	if err := s.teamRepo.DeleteByTeam(ctx, solution.ID, domain.TeamTypeSolution); err != nil {
		return fmt.Errorf("failed to delete solution team: %w", err)
	}
	if err := s.solutionRepo.Delete(ctx, solution.ID); err != nil {
		return fmt.Errorf("failed to delete solution: %w", err)
	}

	s.logger.Info("solution deleted",
		zap.String("solution_id", id.String()),
	)
	return nil
}

func (s *SolutionService) tenantSolution(ctx context.Context, id uuid.UUID) (*domain.Solution, error) {
	tenant := auth.MustFromContext(ctx)

	solution, err := s.solutionRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get solution: %w", err)
	}
	if solution.OrganizationID != tenant.OrganizationID {
		return nil, ErrNotFound
	}
	return solution, nil
}
