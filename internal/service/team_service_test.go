package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTeamService(f *tenantFixture) *service.TeamService {
	return service.NewTeamService(
		f.teamRepo,
		f.contactRepo,
		f.orgRepo,
		f.proposalRepo,
		f.solutionRepo,
		f.opportunityRepo,
		f.resolver,
		zap.NewNop(),
	)
}

func TestTeamService_AddMember(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	dto, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, &domain.AddTeamMemberRequest{
		ContactID: member.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, dto.ContactID)
	assert.Equal(t, "Bob Berg", dto.FullName)
}

func TestTeamService_AddMemberTwiceConflicts(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	req := &domain.AddTeamMemberRequest{ContactID: member.ID}

	_, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, req)
	require.NoError(t, err)

	_, err = svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, req)
	assert.ErrorIs(t, err, service.ErrAlreadyMember)
}

func TestTeamService_DuplicateInsertHitsUniqueIndex(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	// Two inserts racing past the existence pre-check: the second must
	// fail on the unique index and translate to a duplicated-key error
	first := &domain.TeamMember{TeamID: f.org.ID, TeamType: domain.TeamTypeOrganization, ContactID: member.ID}
	require.NoError(t, f.teamRepo.Add(f.ctx(), first))

	second := &domain.TeamMember{TeamID: f.org.ID, TeamType: domain.TeamTypeOrganization, ContactID: member.ID}
	err := f.teamRepo.Add(f.ctx(), second)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, f.db.Model(&domain.TeamMember{}).
		Where("team_id = ? AND contact_id = ?", f.org.ID, member.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTeamService_AddMemberAfterDirectInsertConflicts(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	require.NoError(t, f.db.Create(&domain.TeamMember{
		TeamID:    f.org.ID,
		TeamType:  domain.TeamTypeOrganization,
		ContactID: member.ID,
	}).Error)

	_, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, &domain.AddTeamMemberRequest{
		ContactID: member.ID,
	})
	assert.ErrorIs(t, err, service.ErrAlreadyMember)
}

func TestTeamService_AddMemberUnknownContact(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	_, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, &domain.AddTeamMemberRequest{
		ContactID: uuid.New(),
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTeamService_AddMemberRequiresAdmin(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newTeamService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	_, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, &domain.AddTeamMemberRequest{
		ContactID: member.ID,
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestTeamService_RemoveMember(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	_, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, &domain.AddTeamMemberRequest{
		ContactID: member.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, member.ID))

	members, err := svc.ListMembers(f.ctx(), f.org.ID, domain.TeamTypeOrganization)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestTeamService_RemoveMissingMemberIsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	err := svc.RemoveMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTeamService_ListMembersResolvesContacts(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	bob := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	cara := testutil.CreateTestContact(t, f.db, f.org.ID, "Cara", "Crane", "cara@tenant.test")

	for _, id := range []uuid.UUID{bob.ID, cara.ID} {
		_, err := svc.AddMember(f.ctx(), f.org.ID, domain.TeamTypeOrganization, &domain.AddTeamMemberRequest{ContactID: id})
		require.NoError(t, err)
	}

	members, err := svc.ListMembers(f.ctx(), f.org.ID, domain.TeamTypeOrganization)
	require.NoError(t, err)
	require.Len(t, members, 2)

	names := []string{members[0].FullName, members[1].FullName}
	assert.Contains(t, names, "Bob Berg")
	assert.Contains(t, names, "Cara Crane")
}

func TestTeamService_ProposalTeamScopedToTenant(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newTeamService(f)

	// A proposal owned by a different tenant reads as not found
	otherOrg := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	foreign := testutil.CreateTestProposal(t, f.db, otherOrg.ID, "Foreign Pitch")

	member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	_, err := svc.AddMember(f.ctx(), foreign.ID, domain.TeamTypeProposal, &domain.AddTeamMemberRequest{
		ContactID: member.ID,
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
