package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
)

// ErrNoAccess is returned when no permission edge grants the contact
// any role on the target
var ErrNoAccess = errors.New("no role on target")

// PermissionReader is the slice of the permission repository the
// resolver needs. Keeping it an interface here avoids a dependency on
// the repository package and lets tests stub role lookups.
type PermissionReader interface {
	FindRole(ctx context.Context, permittedEntity string, permittedEntityID uuid.UUID, targetEntity string, targetEntityID uuid.UUID) (string, error)
}

// ProposalOwnerReader resolves a proposal to its owning organization
type ProposalOwnerReader interface {
	GetOwnerOrganizationID(ctx context.Context, proposalID uuid.UUID) (uuid.UUID, error)
}

// Organization roles ranked from weakest to strongest
var organizationRoleRank = map[string]int{
	domain.RoleMember: 1,
	domain.RoleAdmin:  2,
	domain.RoleOwner:  3,
}

// Proposal roles ranked from weakest to strongest
var proposalRoleRank = map[string]int{
	domain.RoleViewer: 1,
	domain.RoleTeam:   2,
	domain.RoleLead:   3,
}

// OrganizationRoleAtLeast reports whether have meets or exceeds want
func OrganizationRoleAtLeast(have, want string) bool {
	return organizationRoleRank[have] >= organizationRoleRank[want] && organizationRoleRank[have] > 0
}

// ProposalRoleAtLeast reports whether have meets or exceeds want
func ProposalRoleAtLeast(have, want string) bool {
	return proposalRoleRank[have] >= proposalRoleRank[want] && proposalRoleRank[have] > 0
}

// Resolver answers "what role does this contact hold on this target"
// questions for services enforcing access rules
type Resolver struct {
	permissions PermissionReader
	proposals   ProposalOwnerReader
}

// NewResolver creates a role resolver
func NewResolver(permissions PermissionReader, proposals ProposalOwnerReader) *Resolver {
	return &Resolver{permissions: permissions, proposals: proposals}
}

// OrganizationRole returns the contact's role on an organization, or
// ErrNoAccess when no edge exists
func (r *Resolver) OrganizationRole(ctx context.Context, contactID, organizationID uuid.UUID) (string, error) {
	role, err := r.permissions.FindRole(ctx, domain.PermittedEntityContact, contactID, domain.TargetOrganization, organizationID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", ErrNoAccess
	}
	return role, nil
}

// ProposalRole returns the contact's effective role on a proposal.
// A direct proposal edge wins; otherwise an admin or owner role on the
// owning organization grants lead-equivalent access.
func (r *Resolver) ProposalRole(ctx context.Context, contactID, proposalID uuid.UUID) (string, error) {
	role, err := r.permissions.FindRole(ctx, domain.PermittedEntityContact, contactID, domain.TargetProposal, proposalID)
	if err != nil {
		return "", err
	}
	if role != "" {
		return role, nil
	}

	ownerOrgID, err := r.proposals.GetOwnerOrganizationID(ctx, proposalID)
	if err != nil {
		return "", err
	}
	orgRole, err := r.permissions.FindRole(ctx, domain.PermittedEntityContact, contactID, domain.TargetOrganization, ownerOrgID)
	if err != nil {
		return "", err
	}
	if OrganizationRoleAtLeast(orgRole, domain.RoleAdmin) {
		return domain.RoleLead, nil
	}
	return "", ErrNoAccess
}

// RequireOrganizationRole errors unless the contact holds at least the
// given role on the organization
func (r *Resolver) RequireOrganizationRole(ctx context.Context, contactID, organizationID uuid.UUID, minRole string) error {
	role, err := r.OrganizationRole(ctx, contactID, organizationID)
	if err != nil {
		return err
	}
	if !OrganizationRoleAtLeast(role, minRole) {
		return ErrNoAccess
	}
	return nil
}

// RequireProposalRole errors unless the contact holds at least the
// given role on the proposal
func (r *Resolver) RequireProposalRole(ctx context.Context, contactID, proposalID uuid.UUID, minRole string) error {
	role, err := r.ProposalRole(ctx, contactID, proposalID)
	if err != nil {
		return err
	}
	if !ProposalRoleAtLeast(role, minRole) {
		return ErrNoAccess
	}
	return nil
}
