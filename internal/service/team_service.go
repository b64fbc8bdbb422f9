package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/mapper"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeamService manages team membership across the entity kinds that
// carry teams (organizations, proposals, solutions, opportunities)
type TeamService struct {
	teamRepo        *repository.TeamRepository
	contactRepo     *repository.ContactRepository
	orgRepo         *repository.OrganizationRepository
	proposalRepo    *repository.ProposalRepository
	solutionRepo    *repository.SolutionRepository
	opportunityRepo *repository.OpportunityRepository
	resolver        *auth.Resolver
	logger          *zap.Logger
}

func NewTeamService(
	teamRepo *repository.TeamRepository,
	contactRepo *repository.ContactRepository,
	orgRepo *repository.OrganizationRepository,
	proposalRepo *repository.ProposalRepository,
	solutionRepo *repository.SolutionRepository,
	opportunityRepo *repository.OpportunityRepository,
	resolver *auth.Resolver,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:        teamRepo,
		contactRepo:     contactRepo,
		orgRepo:         orgRepo,
		proposalRepo:    proposalRepo,
		solutionRepo:    solutionRepo,
		opportunityRepo: opportunityRepo,
		resolver:        resolver,
		logger:          logger,
	}
}

// AddMember adds a contact to a team. A friendly conflict answer
// comes from the existence pre-check; the composite unique index
// backstops the race where two requests pass the check together.
func (s *TeamService) AddMember(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType, req *domain.AddTeamMemberRequest) (*domain.TeamMemberDTO, error) {
	if !teamType.IsValid() {
		return nil, fmt.Errorf("%w: unknown team type %q", ErrConflict, teamType)
	}
	if err := s.requireTeamWrite(ctx, teamID, teamType); err != nil {
		return nil, err
	}

	contact, err := s.contactRepo.GetByID(ctx, req.ContactID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	exists, err := s.teamRepo.Exists(ctx, teamID, teamType, req.ContactID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if exists {
		return nil, ErrAlreadyMember
	}

	member := &domain.TeamMember{
		TeamID:    teamID,
		TeamType:  teamType,
		ContactID: req.ContactID,
	}
	if err := s.teamRepo.Add(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	s.logger.Info("team member added",
		zap.String("team_id", teamID.String()),
		zap.String("team_type", string(teamType)),
		zap.String("contact_id", req.ContactID.String()),
	)

	dto := mapper.ToTeamMemberDTO(member, contact)
	return &dto, nil
}

// RemoveMember deletes a membership row; removing someone who is not
// on the team reads as not found
func (s *TeamService) RemoveMember(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType, contactID uuid.UUID) error {
	if !teamType.IsValid() {
		return ErrNotFound
	}
	if err := s.requireTeamWrite(ctx, teamID, teamType); err != nil {
		return err
	}

	rows, err := s.teamRepo.Remove(ctx, teamID, teamType, contactID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Info("team member removed",
		zap.String("team_id", teamID.String()),
		zap.String("team_type", string(teamType)),
		zap.String("contact_id", contactID.String()),
	)
	return nil
}

// ListMembers returns the team roster with contact display fields
// resolved through a single batched lookup
func (s *TeamService) ListMembers(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType) ([]domain.TeamMemberDTO, error) {
	if !teamType.IsValid() {
		return nil, ErrNotFound
	}
	if err := s.requireTeamRead(ctx, teamID, teamType); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListByTeam(ctx, teamID, teamType)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	contactIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		contactIDs[i] = m.ContactID
	}
	contacts, err := s.contactRepo.ListByIDs(ctx, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load member contacts: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Contact, len(contacts))
	for i := range contacts {
		byID[contacts[i].ID] = &contacts[i]
	}

	dtos := make([]domain.TeamMemberDTO, len(members))
	for i, m := range members {
		dtos[i] = mapper.ToTeamMemberDTO(&m, byID[m.ContactID])
	}
	return dtos, nil
}

// requireTeamWrite verifies the team's underlying entity is visible to
// the tenant and the caller may change its roster
func (s *TeamService) requireTeamWrite(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType) error {
	tenant := auth.MustFromContext(ctx)

	switch teamType {
	case domain.TeamTypeOrganization:
		if err := s.requireVisibleOrganization(ctx, teamID); err != nil {
			return err
		}
		if err := s.resolver.RequireOrganizationRole(ctx, tenant.ContactID, tenant.OrganizationID, domain.RoleAdmin); err != nil {
			return ErrForbidden
		}
	case domain.TeamTypeProposal:
		if err := s.requireTenantProposal(ctx, teamID); err != nil {
			return err
		}
		if err := s.resolver.RequireProposalRole(ctx, tenant.ContactID, teamID, domain.RoleLead); err != nil {
			return ErrForbidden
		}
	case domain.TeamTypeSolution, domain.TeamTypeOpportunity:
		if err := s.requireTenantEntity(ctx, teamID, teamType); err != nil {
			return err
		}
		if err := s.resolver.RequireOrganizationRole(ctx, tenant.ContactID, tenant.OrganizationID, domain.RoleMember); err != nil {
			return ErrForbidden
		}
	}
	return nil
}

func (s *TeamService) requireTeamRead(ctx context.Context, teamID uuid.UUID, teamType domain.TeamType) error {
	tenant := auth.MustFromContext(ctx)

	switch teamType {
	case domain.TeamTypeOrganization:
		return s.requireVisibleOrganization(ctx, teamID)
	case domain.TeamTypeProposal:
		if err := s.requireTenantProposal(ctx, teamID); err != nil {
			return err
		}
		if err := s.resolver.RequireProposalRole(ctx, tenant.ContactID, teamID, domain.RoleViewer); err != nil {
			return ErrForbidden
		}
		return nil
	case domain.TeamTypeSolution, domain.TeamTypeOpportunity:
		return s.requireTenantEntity(ctx, teamID, teamType)
	}
	return nil
}

func (s *TeamService) requireVisibleOrganization(ctx context.Context, organizationID uuid.UUID) error {
	tenant := auth.MustFromContext(ctx)

	if organizationID == tenant.OrganizationID {
		return nil
	}
	org, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org.OwnerOrganizationID == nil || *org.OwnerOrganizationID != tenant.OrganizationID {
		return ErrForbidden
	}
	return nil
}

func (s *TeamService) requireTenantProposal(ctx context.Context, proposalID uuid.UUID) error {
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

func (s *TeamService) requireTenantEntity(ctx context.Context, entityID uuid.UUID, teamType domain.TeamType) error {
	tenant := auth.MustFromContext(ctx)

	var organizationID uuid.UUID
	switch teamType {
	case domain.TeamTypeSolution:
		solution, err := s.solutionRepo.GetByID(ctx, entityID)
		if err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get solution: %w", err)
		}
		organizationID = solution.OrganizationID
	case domain.TeamTypeOpportunity:
		opp, err := s.opportunityRepo.GetByID(ctx, entityID)
		if err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get opportunity: %w", err)
		}
		organizationID = opp.OrganizationID
	}

	if organizationID != tenant.OrganizationID {
		return ErrNotFound
	}
	return nil
}
