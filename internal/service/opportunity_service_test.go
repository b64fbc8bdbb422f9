package service_test

import (
	"testing"
	"time"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpportunityService(f *tenantFixture) *service.OpportunityService {
	return service.NewOpportunityService(f.opportunityRepo, f.teamRepo, zap.NewNop())
}

func TestOpportunityService_CreateManual(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newOpportunityService(f)

	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	dto, err := svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source:   domain.OpportunitySourceManual,
		Title:    "Regional infrastructure RFP",
		Summary:  "Five year managed hosting contract",
		Deadline: &deadline,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityStatusDraft, dto.Status)
	assert.Equal(t, domain.OpportunitySourceManual, dto.Source)
	require.NotNil(t, dto.Deadline)
}

func TestOpportunityService_CreateRejectsInvalidSource(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newOpportunityService(f)

	_, err := svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source: domain.OpportunitySource("carrier pigeon"),
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestOpportunityService_URLSourceRequiresURL(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newOpportunityService(f)

	_, err := svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source: domain.OpportunitySourceURL,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	dto, err := svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source:    domain.OpportunitySourceURL,
		SourceURL: "https://tenders.example.test/rfp/42",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://tenders.example.test/rfp/42", dto.SourceURL)
}

func TestOpportunityService_UpdateStatus(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newOpportunityService(f)

	dto, err := svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source: domain.OpportunitySourceManual,
		Title:  "Regional infrastructure RFP",
	})
	require.NoError(t, err)

	updated, err := svc.Update(f.ctx(), dto.ID, &domain.UpdateOpportunityRequest{
		Status: domain.OpportunityStatusActive,
		Title:  "Regional infrastructure RFP",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityStatusActive, updated.Status)
}

func TestOpportunityService_ListFiltersByStatus(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newOpportunityService(f)

	first, err := svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source: domain.OpportunitySourceManual,
		Title:  "First",
	})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx(), &domain.CreateOpportunityRequest{
		Source: domain.OpportunitySourceManual,
		Title:  "Second",
	})
	require.NoError(t, err)

	_, err = svc.Update(f.ctx(), first.ID, &domain.UpdateOpportunityRequest{
		Status: domain.OpportunityStatusArchived,
		Title:  "First",
	})
	require.NoError(t, err)

	archived, err := svc.List(f.ctx(), domain.OpportunityStatusArchived)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "First", archived[0].Title)
}

func TestOpportunityService_CrossTenantReadsAsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newOpportunityService(f)

	otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	foreign := &domain.Opportunity{
		OrganizationID: otherTenant.ID,
		Status:         domain.OpportunityStatusDraft,
		Source:         domain.OpportunitySourceManual,
		Title:          "Foreign RFP",
	}
	require.NoError(t, f.db.Create(foreign).Error)

	_, err := svc.GetByID(f.ctx(), foreign.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(f.ctx(), foreign.ID, &domain.UpdateOpportunityRequest{Title: "Hijack"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
