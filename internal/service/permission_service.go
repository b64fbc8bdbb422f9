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

// PermissionService manages role edges between contacts and targets.
// Writes go through an upsert keyed by the edge's unique index, and
// proposals are guaranteed to keep exactly one lead: the last lead
// cannot be removed or demoted, and assigning a new lead atomically
// demotes the old one.
type PermissionService struct {
	permissionRepo *repository.PermissionRepository
	proposalRepo   *repository.ProposalRepository
	resolver       *auth.Resolver
	logger         *zap.Logger
}

func NewPermissionService(
	permissionRepo *repository.PermissionRepository,
	proposalRepo *repository.ProposalRepository,
	resolver *auth.Resolver,
	logger *zap.Logger,
) *PermissionService {
	return &PermissionService{
		permissionRepo: permissionRepo,
		proposalRepo:   proposalRepo,
		resolver:       resolver,
		logger:         logger,
	}
}

// Set writes a role edge. Writing an existing (contact, target) pair
// updates the role in place rather than creating a second edge.
func (s *PermissionService) Set(ctx context.Context, req *domain.SetPermissionRequest) (*domain.PermissionDTO, error) {
	if err := validateRoleForTarget(req.TargetEntity, req.Role); err != nil {
		return nil, err
	}
	if err := s.requireGrantAuthority(ctx, req.TargetEntity, req.TargetEntityID); err != nil {
		return nil, err
	}

	// Assigning a proposal lead demotes the current lead in the same
	// transaction so the proposal never has two leads
	if req.TargetEntity == domain.TargetProposal && req.Role == domain.RoleLead {
		if err := s.permissionRepo.ReassignLead(ctx, req.TargetEntity, req.TargetEntityID, req.PermittedEntityID); err != nil {
			return nil, fmt.Errorf("failed to reassign lead: %w", err)
		}
		perm, err := s.permissionRepo.GetByEdge(ctx, domain.PermittedEntityContact, req.PermittedEntityID, req.TargetEntity, req.TargetEntityID)
		if err != nil {
			return nil, fmt.Errorf("failed to load permission: %w", err)
		}
		dto := mapper.ToPermissionDTO(perm)
		return &dto, nil
	}

	// Demoting the sole lead without naming a successor is rejected
	if req.TargetEntity == domain.TargetProposal {
		protected, err := s.isSoleLead(ctx, req.TargetEntityID, req.PermittedEntityID)
		if err != nil {
			return nil, err
		}
		if protected {
			return nil, ErrLeadProtected
		}
	}

	perm := &domain.Permission{
		PermittedEntity:   domain.PermittedEntityContact,
		PermittedEntityID: req.PermittedEntityID,
		TargetEntity:      req.TargetEntity,
		TargetEntityID:    req.TargetEntityID,
		Role:              req.Role,
	}
	if err := s.permissionRepo.Upsert(ctx, perm); err != nil {
		return nil, fmt.Errorf("failed to set permission: %w", err)
	}

	s.logger.Info("permission set",
		zap.String("contact_id", req.PermittedEntityID.String()),
		zap.String("target_entity", req.TargetEntity),
		zap.String("target_entity_id", req.TargetEntityID.String()),
		zap.String("role", req.Role),
	)

	stored, err := s.permissionRepo.GetByEdge(ctx, domain.PermittedEntityContact, req.PermittedEntityID, req.TargetEntity, req.TargetEntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission: %w", err)
	}
	dto := mapper.ToPermissionDTO(stored)
	return &dto, nil
}

// Remove deletes a role edge. The sole lead of a proposal cannot be
// removed; a new lead must be assigned first.
func (s *PermissionService) Remove(ctx context.Context, permittedEntityID uuid.UUID, targetEntity string, targetEntityID uuid.UUID) error {
	if err := s.requireGrantAuthority(ctx, targetEntity, targetEntityID); err != nil {
		return err
	}

	if targetEntity == domain.TargetProposal {
		protected, err := s.isSoleLead(ctx, targetEntityID, permittedEntityID)
		if err != nil {
			return err
		}
		if protected {
			return ErrLeadProtected
		}
	}

	rows, err := s.permissionRepo.DeleteEdge(ctx, domain.PermittedEntityContact, permittedEntityID, targetEntity, targetEntityID)
	if err != nil {
		return fmt.Errorf("failed to remove permission: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Info("permission removed",
		zap.String("contact_id", permittedEntityID.String()),
		zap.String("target_entity", targetEntity),
		zap.String("target_entity_id", targetEntityID.String()),
	)
	return nil
}

// ListByTarget returns all role edges on a target
func (s *PermissionService) ListByTarget(ctx context.Context, targetEntity string, targetEntityID uuid.UUID) ([]domain.PermissionDTO, error) {
	if err := s.requireReadAuthority(ctx, targetEntity, targetEntityID); err != nil {
		return nil, err
	}

	perms, err := s.permissionRepo.ListByTarget(ctx, targetEntity, targetEntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	dtos := make([]domain.PermissionDTO, len(perms))
	for i, perm := range perms {
		dtos[i] = mapper.ToPermissionDTO(&perm)
	}
	return dtos, nil
}

// isSoleLead reports whether the contact holds the only lead edge on
// the proposal
func (s *PermissionService) isSoleLead(ctx context.Context, proposalID, contactID uuid.UUID) (bool, error) {
	leads, err := s.permissionRepo.FindByTargetAndRole(ctx, domain.TargetProposal, proposalID, domain.RoleLead)
	if err != nil {
		return false, fmt.Errorf("failed to find leads: %w", err)
	}
	if len(leads) != 1 {
		return false, nil
	}
	return leads[0].PermittedEntityID == contactID, nil
}

func (s *PermissionService) requireGrantAuthority(ctx context.Context, targetEntity string, targetEntityID uuid.UUID) error {
	tenant := auth.MustFromContext(ctx)

	switch targetEntity {
	case domain.TargetOrganization:
		if err := s.resolver.RequireOrganizationRole(ctx, tenant.ContactID, targetEntityID, domain.RoleAdmin); err != nil {
			return ErrForbidden
		}
	case domain.TargetProposal:
		if err := s.resolver.RequireProposalRole(ctx, tenant.ContactID, targetEntityID, domain.RoleLead); err != nil {
			return ErrForbidden
		}
	default:
		return fmt.Errorf("%w: unknown target entity %q", ErrConflict, targetEntity)
	}
	return nil
}

func (s *PermissionService) requireReadAuthority(ctx context.Context, targetEntity string, targetEntityID uuid.UUID) error {
	tenant := auth.MustFromContext(ctx)

	switch targetEntity {
	case domain.TargetOrganization:
		if err := s.resolver.RequireOrganizationRole(ctx, tenant.ContactID, targetEntityID, domain.RoleMember); err != nil {
			return ErrForbidden
		}
	case domain.TargetProposal:
		if err := s.resolver.RequireProposalRole(ctx, tenant.ContactID, targetEntityID, domain.RoleViewer); err != nil {
			return ErrForbidden
		}
	default:
		return fmt.Errorf("%w: unknown target entity %q", ErrConflict, targetEntity)
	}
	return nil
}

func validateRoleForTarget(targetEntity, role string) error {
	switch targetEntity {
	case domain.TargetOrganization:
		switch role {
		case domain.RoleOwner, domain.RoleAdmin, domain.RoleMember:
			return nil
		}
	case domain.TargetProposal:
		switch role {
		case domain.RoleLead, domain.RoleTeam, domain.RoleViewer:
			return nil
		}
	}
	return fmt.Errorf("%w: role %q not valid for target %q", ErrConflict, role, targetEntity)
}
