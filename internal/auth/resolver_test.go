package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupResolver(t *testing.T) (*auth.Resolver, *repository.PermissionRepository, *repository.ProposalRepository) {
	db := testutil.SetupTestDB(t)
	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	return auth.NewResolver(permissionRepo, proposalRepo), permissionRepo, proposalRepo
}

func TestResolver_OrganizationRole(t *testing.T) {
	resolver, permissionRepo, _ := setupResolver(t)
	ctx := context.Background()

	contactID := uuid.New()
	orgID := uuid.New()

	require.NoError(t, permissionRepo.Upsert(ctx, &domain.Permission{
		PermittedEntity:   domain.PermittedEntityContact,
		PermittedEntityID: contactID,
		TargetEntity:      domain.TargetOrganization,
		TargetEntityID:    orgID,
		Role:              domain.RoleAdmin,
	}))

	role, err := resolver.OrganizationRole(ctx, contactID, orgID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestResolver_OrganizationRole_NoEdge(t *testing.T) {
	resolver, _, _ := setupResolver(t)

	_, err := resolver.OrganizationRole(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, auth.ErrNoAccess)
}

func TestResolver_ProposalRole_DirectEdgeWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	resolver := auth.NewResolver(permissionRepo, proposalRepo)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Acme")
	contact := testutil.CreateTestContact(t, db, org.ID, "Alice", "Ames", "alice@acme.test")
	proposal := testutil.CreateTestProposal(t, db, org.ID, "Q3 Pitch")

	// Org admin would grant lead-equivalent access, but a direct viewer
	// edge takes precedence
	testutil.GrantRole(t, db, contact.ID, domain.TargetOrganization, org.ID, domain.RoleAdmin)
	testutil.GrantRole(t, db, contact.ID, domain.TargetProposal, proposal.ID, domain.RoleViewer)

	role, err := resolver.ProposalRole(ctx, contact.ID, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, role)
}

func TestResolver_ProposalRole_OrgAdminGetsLead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	resolver := auth.NewResolver(permissionRepo, proposalRepo)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Acme")
	contact := testutil.CreateTestContact(t, db, org.ID, "Alice", "Ames", "alice@acme.test")
	proposal := testutil.CreateTestProposal(t, db, org.ID, "Q3 Pitch")

	testutil.GrantRole(t, db, contact.ID, domain.TargetOrganization, org.ID, domain.RoleAdmin)

	role, err := resolver.ProposalRole(ctx, contact.ID, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLead, role)
}

func TestResolver_ProposalRole_OrgMemberGetsNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	resolver := auth.NewResolver(permissionRepo, proposalRepo)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Acme")
	contact := testutil.CreateTestContact(t, db, org.ID, "Bob", "Berg", "bob@acme.test")
	proposal := testutil.CreateTestProposal(t, db, org.ID, "Q3 Pitch")

	testutil.GrantRole(t, db, contact.ID, domain.TargetOrganization, org.ID, domain.RoleMember)

	_, err := resolver.ProposalRole(ctx, contact.ID, proposal.ID)
	assert.ErrorIs(t, err, auth.ErrNoAccess)
}

func TestRequireProposalRole_RanksRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	resolver := auth.NewResolver(permissionRepo, proposalRepo)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Acme")
	contact := testutil.CreateTestContact(t, db, org.ID, "Cara", "Crane", "cara@acme.test")
	proposal := testutil.CreateTestProposal(t, db, org.ID, "Q3 Pitch")

	testutil.GrantRole(t, db, contact.ID, domain.TargetProposal, proposal.ID, domain.RoleTeam)

	assert.NoError(t, resolver.RequireProposalRole(ctx, contact.ID, proposal.ID, domain.RoleViewer))
	assert.NoError(t, resolver.RequireProposalRole(ctx, contact.ID, proposal.ID, domain.RoleTeam))
	assert.ErrorIs(t, resolver.RequireProposalRole(ctx, contact.ID, proposal.ID, domain.RoleLead), auth.ErrNoAccess)
}

func TestOrganizationRoleAtLeast(t *testing.T) {
	assert.True(t, auth.OrganizationRoleAtLeast(domain.RoleOwner, domain.RoleAdmin))
	assert.True(t, auth.OrganizationRoleAtLeast(domain.RoleAdmin, domain.RoleAdmin))
	assert.False(t, auth.OrganizationRoleAtLeast(domain.RoleMember, domain.RoleAdmin))
	assert.False(t, auth.OrganizationRoleAtLeast("", domain.RoleMember))
	assert.False(t, auth.OrganizationRoleAtLeast("bogus", "bogus"))
}
