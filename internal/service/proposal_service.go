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

// ProposalService manages proposals and their section lists. The
// creator becomes the proposal's lead; section edits require team
// access and destructive operations require the lead.
type ProposalService struct {
	proposalRepo   *repository.ProposalRepository
	permissionRepo *repository.PermissionRepository
	contactRepo    *repository.ContactRepository
	resolver       *auth.Resolver
	logger         *zap.Logger
}

func NewProposalService(
	proposalRepo *repository.ProposalRepository,
	permissionRepo *repository.PermissionRepository,
	contactRepo *repository.ContactRepository,
	resolver *auth.Resolver,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		proposalRepo:   proposalRepo,
		permissionRepo: permissionRepo,
		contactRepo:    contactRepo,
		resolver:       resolver,
		logger:         logger,
	}
}

func (s *ProposalService) Create(ctx context.Context, req *domain.CreateProposalRequest) (*domain.ProposalDTO, error) {
	tenant := auth.MustFromContext(ctx)

	proposal := &domain.Proposal{
		Title:               req.Title,
		Status:              domain.ProposalStatusDraft,
		OwnerOrganizationID: tenant.OrganizationID,
		ForOrganizationID:   req.ForOrganizationID,
		ForContactID:        req.ForContactID,
		Sections:            domain.ProposalSections{},
	}

	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	// The creator leads the new proposal
	lead := &domain.Permission{
		PermittedEntity:   domain.PermittedEntityContact,
		PermittedEntityID: tenant.ContactID,
		TargetEntity:      domain.TargetProposal,
		TargetEntityID:    proposal.ID,
		Role:              domain.RoleLead,
	}
	if err := s.permissionRepo.Upsert(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to grant lead role: %w", err)
	}

	s.logger.Info("proposal created",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("owner_organization_id", tenant.OrganizationID.String()),
	)

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

func (s *ProposalService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	proposal, err := s.requireProposal(ctx, id, domain.RoleViewer)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

// List returns proposals in the tenant's organization the caller can
// at least view
func (s *ProposalService) List(ctx context.Context, page, pageSize int) ([]domain.ProposalSummaryDTO, int64, error) {
	tenant := auth.MustFromContext(ctx)

	proposals, total, err := s.proposalRepo.ListByOwnerOrganization(ctx, tenant.OrganizationID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list proposals: %w", err)
	}

	dtos := make([]domain.ProposalSummaryDTO, len(proposals))
	for i, proposal := range proposals {
		dtos[i] = mapper.ToProposalSummaryDTO(&proposal)
	}
	return dtos, total, nil
}

func (s *ProposalService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProposalRequest) (*domain.ProposalDTO, error) {
	proposal, err := s.requireProposal(ctx, id, domain.RoleTeam)
	if err != nil {
		return nil, err
	}

	proposal.Title = req.Title
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrConflict, req.Status)
		}
		proposal.Status = req.Status
	}
	proposal.ForOrganizationID = req.ForOrganizationID
	proposal.ForContactID = req.ForContactID

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

// Delete removes a proposal and everything hanging off it. Only the
// lead may delete.
func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.requireProposal(ctx, id, domain.RoleLead); err != nil {
		return err
	}

	if err := s.proposalRepo.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}

	s.logger.Info("proposal deleted",
		zap.String("proposal_id", id.String()),
	)
	return nil
}

// Sections

func (s *ProposalService) AddSection(ctx context.Context, proposalID uuid.UUID, req *domain.AddSectionRequest) (*domain.ProposalDTO, error) {
	proposal, err := s.requireProposal(ctx, proposalID, domain.RoleTeam)
	if err != nil {
		return nil, err
	}

	section := domain.ProposalSection{
		ID:      uuid.NewString(),
		Title:   req.Title,
		Type:    req.Type,
		Content: req.Content,
		Images:  req.Images,
	}

	if req.Position == nil || *req.Position >= len(proposal.Sections) {
		proposal.Sections = append(proposal.Sections, section)
	} else {
		pos := *req.Position
		proposal.Sections = append(proposal.Sections[:pos],
			append(domain.ProposalSections{section}, proposal.Sections[pos:]...)...)
	}

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to add section: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

func (s *ProposalService) UpdateSection(ctx context.Context, proposalID uuid.UUID, sectionID string, req *domain.UpdateSectionRequest) (*domain.ProposalDTO, error) {
	proposal, err := s.requireProposal(ctx, proposalID, domain.RoleTeam)
	if err != nil {
		return nil, err
	}

	idx := proposal.SectionByID(sectionID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	proposal.Sections[idx].Title = req.Title
	proposal.Sections[idx].Content = req.Content
	proposal.Sections[idx].Images = req.Images

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

func (s *ProposalService) RemoveSection(ctx context.Context, proposalID uuid.UUID, sectionID string) (*domain.ProposalDTO, error) {
	proposal, err := s.requireProposal(ctx, proposalID, domain.RoleTeam)
	if err != nil {
		return nil, err
	}

	idx := proposal.SectionByID(sectionID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	proposal.Sections = append(proposal.Sections[:idx], proposal.Sections[idx+1:]...)

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to remove section: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

// ReorderSections rewrites the section order. The id list must be a
// permutation of the current sections.
func (s *ProposalService) ReorderSections(ctx context.Context, proposalID uuid.UUID, req *domain.ReorderSectionsRequest) (*domain.ProposalDTO, error) {
	proposal, err := s.requireProposal(ctx, proposalID, domain.RoleTeam)
	if err != nil {
		return nil, err
	}

	if len(req.OrderedIDs) != len(proposal.Sections) {
		return nil, fmt.Errorf("%w: ordered ids must cover all sections", ErrConflict)
	}

	byID := make(map[string]domain.ProposalSection, len(proposal.Sections))
	for _, section := range proposal.Sections {
		byID[section.ID] = section
	}

	reordered := make(domain.ProposalSections, 0, len(req.OrderedIDs))
	for _, id := range req.OrderedIDs {
		section, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown section id %q", ErrConflict, id)
		}
		delete(byID, id)
		reordered = append(reordered, section)
	}

	proposal.Sections = reordered
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to reorder sections: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

// Messages

func (s *ProposalService) AddMessage(ctx context.Context, proposalID uuid.UUID, req *domain.CreateProposalMessageRequest) (*domain.ProposalMessageDTO, error) {
	if _, err := s.requireProposal(ctx, proposalID, domain.RoleViewer); err != nil {
		return nil, err
	}
	tenant := auth.MustFromContext(ctx)

	message := &domain.ProposalMessage{
		ProposalID: proposalID,
		ContactID:  tenant.ContactID,
		Body:       req.Body,
	}
	if err := s.proposalRepo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	author, _ := s.contactRepo.GetByID(ctx, tenant.ContactID)
	dto := mapper.ToProposalMessageDTO(message, author)
	return &dto, nil
}

func (s *ProposalService) ListMessages(ctx context.Context, proposalID uuid.UUID) ([]domain.ProposalMessageDTO, error) {
	if _, err := s.requireProposal(ctx, proposalID, domain.RoleViewer); err != nil {
		return nil, err
	}

	messages, err := s.proposalRepo.ListMessages(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	authorIDs := make([]uuid.UUID, len(messages))
	for i, m := range messages {
		authorIDs[i] = m.ContactID
	}
	authors, err := s.contactRepo.ListByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Contact, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}

	dtos := make([]domain.ProposalMessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = mapper.ToProposalMessageDTO(&m, byID[m.ContactID])
	}
	return dtos, nil
}

// Views

// RecordView logs that someone opened the proposal. Anonymous views
// from a shared link carry no contact id.
func (s *ProposalService) RecordView(ctx context.Context, proposalID uuid.UUID) error {
	if _, err := s.proposalRepo.GetOwnerOrganizationID(ctx, proposalID); err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get proposal: %w", err)
	}

	view := &domain.ProposalView{ProposalID: proposalID}
	if tenant, ok := auth.FromContext(ctx); ok {
		view.ContactID = &tenant.ContactID
	}

	if err := s.proposalRepo.CreateView(ctx, view); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

func (s *ProposalService) ListViews(ctx context.Context, proposalID uuid.UUID, limit int) ([]domain.ProposalViewDTO, int64, error) {
	if _, err := s.requireProposal(ctx, proposalID, domain.RoleTeam); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	views, err := s.proposalRepo.ListViews(ctx, proposalID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list views: %w", err)
	}
	total, err := s.proposalRepo.CountViews(ctx, proposalID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count views: %w", err)
	}

	dtos := make([]domain.ProposalViewDTO, len(views))
	for i, view := range views {
		dtos[i] = mapper.ToProposalViewDTO(&view)
	}
	return dtos, total, nil
}

// requireProposal loads a proposal after verifying it belongs to the
// tenant and the caller holds at least minRole on it
func (s *ProposalService) requireProposal(ctx context.Context, id uuid.UUID, minRole string) (*domain.Proposal, error) {
	tenant := auth.MustFromContext(ctx)

	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal.OwnerOrganizationID != tenant.OrganizationID {
		return nil, ErrNotFound
	}

	if err := s.resolver.RequireProposalRole(ctx, tenant.ContactID, id, minRole); err != nil {
		return nil, ErrForbidden
	}
	return proposal, nil
}
