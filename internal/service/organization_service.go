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

// OrganizationService manages the customer organizations a tenant
// keeps records on. Every operation is scoped to the caller's tenant:
// an organization owned by another tenant is off limits.
type OrganizationService struct {
	orgRepo  *repository.OrganizationRepository
	resolver *auth.Resolver
	logger   *zap.Logger
}

func NewOrganizationService(
	orgRepo *repository.OrganizationRepository,
	resolver *auth.Resolver,
	logger *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *OrganizationService) Create(ctx context.Context, req *domain.CreateOrganizationRequest) (*domain.OrganizationDTO, error) {
	tenant := auth.MustFromContext(ctx)

	org := &domain.Organization{
		Name:                req.Name,
		OwnerOrganizationID: &tenant.OrganizationID,
		Website:             req.Website,
		Sector:              req.Sector,
		Size:                req.Size,
		LogoURL:             req.LogoURL,
		PrimaryColor:        req.PrimaryColor,
		SecondaryColor:      req.SecondaryColor,
		Address:             req.Address,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.Info("organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("owner_organization_id", tenant.OrganizationID.String()),
	)

	dto := mapper.ToOrganizationDTO(org)
	return &dto, nil
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrganizationDTO, error) {
	org, err := s.visibleOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToOrganizationDTO(org)
	return &dto, nil
}

func (s *OrganizationService) List(ctx context.Context, page, pageSize int) ([]domain.OrganizationWithStatsDTO, int64, error) {
	tenant := auth.MustFromContext(ctx)

	orgs, total, err := s.orgRepo.ListByOwner(ctx, tenant.OrganizationID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}

	ids := make([]uuid.UUID, len(orgs))
	for i, org := range orgs {
		ids[i] = org.ID
	}

	// One grouped query per stat instead of a pair of counts per row
	contactCounts, err := s.orgRepo.ContactCountsByOrganization(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	proposalCounts, err := s.orgRepo.ProposalCountsByOrganization(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	dtos := make([]domain.OrganizationWithStatsDTO, len(orgs))
	for i, org := range orgs {
		dtos[i] = domain.OrganizationWithStatsDTO{
			OrganizationDTO: mapper.ToOrganizationDTO(&org),
			ContactCount:    contactCounts[org.ID],
			ProposalCount:   proposalCounts[org.ID],
		}
	}
	return dtos, total, nil
}

// Search finds owned organizations by case-insensitive name prefix
func (s *OrganizationService) Search(ctx context.Context, query string, limit int) ([]domain.OrganizationDTO, error) {
	tenant := auth.MustFromContext(ctx)

	if limit <= 0 || limit > 50 {
		limit = 20
	}

	orgs, err := s.orgRepo.SearchByNamePrefix(ctx, tenant.OrganizationID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search organizations: %w", err)
	}

	dtos := make([]domain.OrganizationDTO, len(orgs))
	for i, org := range orgs {
		dtos[i] = mapper.ToOrganizationDTO(&org)
	}
	return dtos, nil
}

func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrganizationRequest) (*domain.OrganizationDTO, error) {
	org, err := s.visibleOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	// Partial update: only fields present in the request change
	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Website != nil {
		org.Website = *req.Website
	}
	if req.Sector != nil {
		org.Sector = *req.Sector
	}
	if req.Size != nil {
		org.Size = *req.Size
	}
	if req.LogoURL != nil {
		org.LogoURL = *req.LogoURL
	}
	if req.PrimaryColor != nil {
		org.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		org.SecondaryColor = *req.SecondaryColor
	}
	if req.Address != nil {
		org.Address = *req.Address
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	dto := mapper.ToOrganizationDTO(org)
	return &dto, nil
}

// UpdateBranding writes enrichment results onto an owned organization
func (s *OrganizationService) UpdateBranding(ctx context.Context, id uuid.UUID, logoURL, primaryColor, secondaryColor string) error {
	org, err := s.visibleOrganization(ctx, id)
	if err != nil {
		return err
	}

	if logoURL != "" {
		org.LogoURL = logoURL
	}
	if primaryColor != "" {
		org.PrimaryColor = primaryColor
	}
	if secondaryColor != "" {
		org.SecondaryColor = secondaryColor
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to update organization branding: %w", err)
	}
	return nil
}

// Delete removes an owned organization and everything hanging off it
func (s *OrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	org, err := s.visibleOrganization(ctx, id)
	if err != nil {
		return err
	}

	tenant := auth.MustFromContext(ctx)
	if err := s.resolver.RequireOrganizationRole(ctx, tenant.ContactID, tenant.OrganizationID, domain.RoleAdmin); err != nil {
		return ErrForbidden
	}

	if err := s.orgRepo.DeleteCascade(ctx, org.ID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.logger.Info("organization deleted",
		zap.String("organization_id", id.String()),
	)
	return nil
}

// visibleOrganization loads an organization the tenant may touch: its
// own organization or a customer organization it owns. An organization
// held by another tenant is forbidden, not hidden.
func (s *OrganizationService) visibleOrganization(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	tenant := auth.MustFromContext(ctx)

	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if org.ID == tenant.OrganizationID {
		return org, nil
	}
	if org.OwnerOrganizationID != nil && *org.OwnerOrganizationID == tenant.OrganizationID {
		return org, nil
	}
	return nil, ErrForbidden
}
