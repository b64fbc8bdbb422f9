package service_test

import (
	"testing"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPermissionService(f *tenantFixture) *service.PermissionService {
	return service.NewPermissionService(f.permissionRepo, f.proposalRepo, f.resolver, zap.NewNop())
}

func TestPermissionService_SetUpdatesEdgeInPlace(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	first, err := svc.Set(f.ctx(), &domain.SetPermissionRequest{
		PermittedEntityID: member.ID,
		TargetEntity:      domain.TargetOrganization,
		TargetEntityID:    f.org.ID,
		Role:              domain.RoleMember,
	})
	require.NoError(t, err)

	second, err := svc.Set(f.ctx(), &domain.SetPermissionRequest{
		PermittedEntityID: member.ID,
		TargetEntity:      domain.TargetOrganization,
		TargetEntityID:    f.org.ID,
		Role:              domain.RoleAdmin,
	})
	require.NoError(t, err)

	// Same edge row, updated role
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.RoleAdmin, second.Role)

	var count int64
	require.NoError(t, f.db.Model(&domain.Permission{}).
		Where("permitted_entity_id = ? AND target_entity_id = ?", member.ID, f.org.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPermissionService_SetRejectsInvalidRoleForTarget(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	_, err := svc.Set(f.ctx(), &domain.SetPermissionRequest{
		PermittedEntityID: member.ID,
		TargetEntity:      domain.TargetOrganization,
		TargetEntityID:    f.org.ID,
		Role:              domain.RoleLead,
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestPermissionService_SetRequiresGrantAuthority(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newPermissionService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	_, err := svc.Set(f.ctx(), &domain.SetPermissionRequest{
		PermittedEntityID: member.ID,
		TargetEntity:      domain.TargetOrganization,
		TargetEntityID:    f.org.ID,
		Role:              domain.RoleMember,
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestPermissionService_SoleLeadCannotBeDemoted(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	proposal := testutil.CreateTestProposal(t, f.db, f.org.ID, "Q3 Pitch")
	lead := testutil.CreateTestContact(t, f.db, f.org.ID, "Lena", "Lead", "lena@tenant.test")
	testutil.GrantRole(t, f.db, lead.ID, domain.TargetProposal, proposal.ID, domain.RoleLead)

	_, err := svc.Set(f.ctx(), &domain.SetPermissionRequest{
		PermittedEntityID: lead.ID,
		TargetEntity:      domain.TargetProposal,
		TargetEntityID:    proposal.ID,
		Role:              domain.RoleViewer,
	})
	assert.ErrorIs(t, err, service.ErrLeadProtected)
}

func TestPermissionService_SoleLeadCannotBeRemoved(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	proposal := testutil.CreateTestProposal(t, f.db, f.org.ID, "Q3 Pitch")
	lead := testutil.CreateTestContact(t, f.db, f.org.ID, "Lena", "Lead", "lena@tenant.test")
	testutil.GrantRole(t, f.db, lead.ID, domain.TargetProposal, proposal.ID, domain.RoleLead)

	err := svc.Remove(f.ctx(), lead.ID, domain.TargetProposal, proposal.ID)
	assert.ErrorIs(t, err, service.ErrLeadProtected)
}

func TestPermissionService_AssigningNewLeadDemotesOld(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	proposal := testutil.CreateTestProposal(t, f.db, f.org.ID, "Q3 Pitch")
	oldLead := testutil.CreateTestContact(t, f.db, f.org.ID, "Lena", "Lead", "lena@tenant.test")
	newLead := testutil.CreateTestContact(t, f.db, f.org.ID, "Nils", "Next", "nils@tenant.test")
	testutil.GrantRole(t, f.db, oldLead.ID, domain.TargetProposal, proposal.ID, domain.RoleLead)

	dto, err := svc.Set(f.ctx(), &domain.SetPermissionRequest{
		PermittedEntityID: newLead.ID,
		TargetEntity:      domain.TargetProposal,
		TargetEntityID:    proposal.ID,
		Role:              domain.RoleLead,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLead, dto.Role)

	// The old lead is now team, and exactly one lead remains
	oldEdge, err := f.permissionRepo.GetByEdge(f.ctx(), domain.PermittedEntityContact, oldLead.ID, domain.TargetProposal, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeam, oldEdge.Role)

	leads, err := f.permissionRepo.FindByTargetAndRole(f.ctx(), domain.TargetProposal, proposal.ID, domain.RoleLead)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, newLead.ID, leads[0].PermittedEntityID)
}

func TestPermissionService_RemoveMissingEdgeIsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	err := svc.Remove(f.ctx(), member.ID, domain.TargetOrganization, f.org.ID)
	// Bob has no edge on the org (only Alice does)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPermissionService_ListByTarget(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newPermissionService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	testutil.GrantRole(t, f.db, member.ID, domain.TargetOrganization, f.org.ID, domain.RoleMember)

	perms, err := svc.ListByTarget(f.ctx(), domain.TargetOrganization, f.org.ID)
	require.NoError(t, err)
	assert.Len(t, perms, 2)
}
