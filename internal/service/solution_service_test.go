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
)

func newSolutionService(f *tenantFixture) *service.SolutionService {
	return service.NewSolutionService(f.solutionRepo, f.teamRepo, zap.NewNop())
}

func TestSolutionService_CreateStartsAsDraft(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newSolutionService(f)

	dto, err := svc.Create(f.ctx(), &domain.CreateSolutionRequest{
		Title: "Managed Hosting",
		Sections: domain.SolutionSections{
			Description: "Fully managed hosting for regulated industries",
			Benefits:    "No ops burden",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SolutionStatusDraft, dto.Status)
	assert.Equal(t, "Managed Hosting", dto.Title)
	assert.Equal(t, "No ops burden", dto.Sections.Benefits)
}

func TestSolutionService_UpdateRejectsInvalidStatus(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newSolutionService(f)

	dto, err := svc.Create(f.ctx(), &domain.CreateSolutionRequest{Title: "Managed Hosting"})
	require.NoError(t, err)

	_, err = svc.Update(f.ctx(), dto.ID, &domain.UpdateSolutionRequest{
		Title:  "Managed Hosting",
		Status: domain.SolutionStatus("bogus"),
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestSolutionService_ListFiltersByStatus(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newSolutionService(f)

	draft, err := svc.Create(f.ctx(), &domain.CreateSolutionRequest{Title: "Draft Offering"})
	require.NoError(t, err)
	published, err := svc.Create(f.ctx(), &domain.CreateSolutionRequest{Title: "Published Offering"})
	require.NoError(t, err)
	_, err = svc.Update(f.ctx(), published.ID, &domain.UpdateSolutionRequest{
		Title:  "Published Offering",
		Status: domain.SolutionStatusPublished,
	})
	require.NoError(t, err)

	all, err := svc.List(f.ctx(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := svc.List(f.ctx(), domain.SolutionStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)

	_, err = svc.List(f.ctx(), domain.SolutionStatus("bogus"))
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestSolutionService_CrossTenantReadsAsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newSolutionService(f)

	otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	foreign := &domain.Solution{
		OrganizationID: otherTenant.ID,
		Title:          "Foreign Offering",
		Status:         domain.SolutionStatusDraft,
	}
	require.NoError(t, f.db.Create(foreign).Error)

	_, err := svc.GetByID(f.ctx(), foreign.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(f.ctx(), foreign.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSolutionService_DeleteRemovesTeam(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newSolutionService(f)

	dto, err := svc.Create(f.ctx(), &domain.CreateSolutionRequest{Title: "Managed Hosting"})
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&domain.TeamMember{
		TeamID:    dto.ID,
		TeamType:  domain.TeamTypeSolution,
		ContactID: f.contact.ID,
	}).Error)

	require.NoError(t, svc.Delete(f.ctx(), dto.ID))

	_, err = svc.GetByID(f.ctx(), dto.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var memberships int64
	require.NoError(t, f.db.Model(&domain.TeamMember{}).
		Where("team_id = ?", dto.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)
}

func TestSolutionService_GetUnknownIsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newSolutionService(f)

	_, err := svc.GetByID(f.ctx(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
