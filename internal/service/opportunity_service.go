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

// OpportunityService tracks inbound RFPs and leads for the tenant
type OpportunityService struct {
	opportunityRepo *repository.OpportunityRepository
	teamRepo        *repository.TeamRepository
	logger          *zap.Logger
}

func NewOpportunityService(
	opportunityRepo *repository.OpportunityRepository,
	teamRepo *repository.TeamRepository,
	logger *zap.Logger,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		teamRepo:        teamRepo,
		logger:          logger,
	}
}

func (s *OpportunityService) Create(ctx context.Context, req *domain.CreateOpportunityRequest) (*domain.OpportunityDTO, error) {
	tenant := auth.MustFromContext(ctx)

	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: invalid source %q", ErrConflict, req.Source)
	}
	if req.Source == domain.OpportunitySourceURL && req.SourceURL == "" {
		return nil, fmt.Errorf("%w: source url required for url opportunities", ErrConflict)
	}

	opportunity := &domain.Opportunity{
		OrganizationID: tenant.OrganizationID,
		Status:         domain.OpportunityStatusDraft,
		Source:         req.Source,
		SourceURL:      req.SourceURL,
		Title:          req.Title,
		Summary:        req.Summary,
		Requirements:   req.Requirements,
		Deadline:       req.Deadline,
	}

	if err := s.opportunityRepo.Create(ctx, opportunity); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.logger.Info("opportunity created",
		zap.String("opportunity_id", opportunity.ID.String()),
		zap.String("source", string(opportunity.Source)),
	)

	dto := mapper.ToOpportunityDTO(opportunity)
	return &dto, nil
}

func (s *OpportunityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OpportunityDTO, error) {
	opportunity, err := s.tenantOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToOpportunityDTO(opportunity)
	return &dto, nil
}

func (s *OpportunityService) List(ctx context.Context, status domain.OpportunityStatus) ([]domain.OpportunityDTO, error) {
	tenant := auth.MustFromContext(ctx)

	opportunities, err := s.opportunityRepo.ListByOrganization(ctx, tenant.OrganizationID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	dtos := make([]domain.OpportunityDTO, len(opportunities))
	for i, opportunity := range opportunities {
		dtos[i] = mapper.ToOpportunityDTO(&opportunity)
	}
	return dtos, nil
}

func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOpportunityRequest) (*domain.OpportunityDTO, error) {
	opportunity, err := s.tenantOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != "" {
		opportunity.Status = req.Status
	}
	opportunity.Title = req.Title
	opportunity.Summary = req.Summary
	opportunity.Requirements = req.Requirements
	opportunity.Deadline = req.Deadline

	if err := s.opportunityRepo.Update(ctx, opportunity); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	dto := mapper.ToOpportunityDTO(opportunity)
	return &dto, nil
}

func (s *OpportunityService) Delete(ctx context.Context, id uuid.UUID) error {
	opportunity, err := s.tenantOpportunity(ctx, id)
	if err != nil {
		return err
	}

	if err := s.teamRepo.DeleteByTeam(ctx, opportunity.ID, domain.TeamTypeOpportunity); err != nil {
		return fmt.Errorf("failed to delete opportunity team: %w", err)
	}
	if err := s.opportunityRepo.Delete(ctx, opportunity.ID); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	s.logger.Info("opportunity deleted",
		zap.String("opportunity_id", id.String()),
	)
	return nil
}

func (s *OpportunityService) tenantOpportunity(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	tenant := auth.MustFromContext(ctx)

	opportunity, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	if opportunity.OrganizationID != tenant.OrganizationID {
		return nil, ErrNotFound
	}
	return opportunity, nil
}
