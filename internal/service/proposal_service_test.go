package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProposalService(f *tenantFixture) *service.ProposalService {
	return service.NewProposalService(f.proposalRepo, f.permissionRepo, f.contactRepo, f.resolver, zap.NewNop())
}

func TestProposalService_CreateGrantsLead(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusDraft, created.Status)
	assert.Empty(t, created.Sections)

	role, err := f.resolver.ProposalRole(f.ctx(), f.contact.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLead, role)
}

func TestProposalService_ViewerCannotEdit(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	viewer := testutil.CreateTestContact(t, f.db, f.org.ID, "Vera", "Views", "vera@tenant.test")
	testutil.GrantRole(t, f.db, viewer.ID, domain.TargetProposal, created.ID, domain.RoleViewer)

	_, err = svc.GetByID(f.ctxAs(viewer), created.ID)
	assert.NoError(t, err)

	_, err = svc.Update(f.ctxAs(viewer), created.ID, &domain.UpdateProposalRequest{Title: "Hijack"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = svc.Delete(f.ctxAs(viewer), created.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestProposalService_CrossTenantReadsAsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newProposalService(f)

	otherOrg := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	foreign := testutil.CreateTestProposal(t, f.db, otherOrg.ID, "Foreign Pitch")

	_, err := svc.GetByID(f.ctx(), foreign.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProposalService_UpdateRejectsInvalidStatus(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	_, err = svc.Update(f.ctx(), created.ID, &domain.UpdateProposalRequest{
		Title:  "Q3 Pitch",
		Status: domain.ProposalStatus("bogus"),
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestProposalService_SectionLifecycle(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	// Append two sections
	withIntro, err := svc.AddSection(f.ctx(), created.ID, &domain.AddSectionRequest{
		Title: "Introduction", Type: domain.SectionTypeText, Content: "Hello",
	})
	require.NoError(t, err)
	withPricing, err := svc.AddSection(f.ctx(), created.ID, &domain.AddSectionRequest{
		Title: "Pricing", Type: domain.SectionTypeText,
	})
	require.NoError(t, err)
	require.Len(t, withPricing.Sections, 2)

	// Insert at position 1
	pos := 1
	withScope, err := svc.AddSection(f.ctx(), created.ID, &domain.AddSectionRequest{
		Title: "Scope", Type: domain.SectionTypeText, Position: &pos,
	})
	require.NoError(t, err)
	require.Len(t, withScope.Sections, 3)
	assert.Equal(t, "Introduction", withScope.Sections[0].Title)
	assert.Equal(t, "Scope", withScope.Sections[1].Title)
	assert.Equal(t, "Pricing", withScope.Sections[2].Title)

	// Update one section's content
	introID := withIntro.Sections[0].ID
	updated, err := svc.UpdateSection(f.ctx(), created.ID, introID, &domain.UpdateSectionRequest{
		Title: "Introduction", Content: "Revised",
	})
	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Sections[0].Content)

	// Remove the middle section
	scopeID := withScope.Sections[1].ID
	trimmed, err := svc.RemoveSection(f.ctx(), created.ID, scopeID)
	require.NoError(t, err)
	require.Len(t, trimmed.Sections, 2)
	assert.Equal(t, "Introduction", trimmed.Sections[0].Title)
	assert.Equal(t, "Pricing", trimmed.Sections[1].Title)
}

func TestProposalService_UpdateUnknownSectionIsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	_, err = svc.UpdateSection(f.ctx(), created.ID, uuid.NewString(), &domain.UpdateSectionRequest{Title: "X"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProposalService_ReorderSections(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	var dto *domain.ProposalDTO
	for _, title := range []string{"A", "B", "C"} {
		dto, err = svc.AddSection(f.ctx(), created.ID, &domain.AddSectionRequest{
			Title: title, Type: domain.SectionTypeText,
		})
		require.NoError(t, err)
	}
	require.Len(t, dto.Sections, 3)

	reordered, err := svc.ReorderSections(f.ctx(), created.ID, &domain.ReorderSectionsRequest{
		OrderedIDs: []string{dto.Sections[2].ID, dto.Sections[0].ID, dto.Sections[1].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "C", reordered.Sections[0].Title)
	assert.Equal(t, "A", reordered.Sections[1].Title)
	assert.Equal(t, "B", reordered.Sections[2].Title)
}

func TestProposalService_ReorderRejectsPartialOrUnknownIDs(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	dto, err := svc.AddSection(f.ctx(), created.ID, &domain.AddSectionRequest{
		Title: "A", Type: domain.SectionTypeText,
	})
	require.NoError(t, err)
	dto, err = svc.AddSection(f.ctx(), created.ID, &domain.AddSectionRequest{
		Title: "B", Type: domain.SectionTypeText,
	})
	require.NoError(t, err)

	// Too few ids
	_, err = svc.ReorderSections(f.ctx(), created.ID, &domain.ReorderSectionsRequest{
		OrderedIDs: []string{dto.Sections[0].ID},
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Right length, unknown id
	_, err = svc.ReorderSections(f.ctx(), created.ID, &domain.ReorderSectionsRequest{
		OrderedIDs: []string{dto.Sections[0].ID, uuid.NewString()},
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Right length, duplicated id
	_, err = svc.ReorderSections(f.ctx(), created.ID, &domain.ReorderSectionsRequest{
		OrderedIDs: []string{dto.Sections[0].ID, dto.Sections[0].ID},
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestProposalService_DeleteCascadesPermissionsAndMessages(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	_, err = svc.AddMessage(f.ctx(), created.ID, &domain.CreateProposalMessageRequest{Body: "Looks good"})
	require.NoError(t, err)
	require.NoError(t, svc.RecordView(f.ctx(), created.ID))

	require.NoError(t, svc.Delete(f.ctx(), created.ID))

	var perms, messages, views int64
	require.NoError(t, f.db.Model(&domain.Permission{}).
		Where("target_entity = ? AND target_entity_id = ?", domain.TargetProposal, created.ID).
		Count(&perms).Error)
	require.NoError(t, f.db.Model(&domain.ProposalMessage{}).
		Where("proposal_id = ?", created.ID).Count(&messages).Error)
	require.NoError(t, f.db.Model(&domain.ProposalView{}).
		Where("proposal_id = ?", created.ID).Count(&views).Error)
	assert.Zero(t, perms)
	assert.Zero(t, messages)
	assert.Zero(t, views)
}

func TestProposalService_MessagesCarryAuthorNames(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	msg, err := svc.AddMessage(f.ctx(), created.ID, &domain.CreateProposalMessageRequest{Body: "First"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Ames", msg.AuthorName)

	messages, err := svc.ListMessages(f.ctx(), created.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "First", messages[0].Body)
	assert.Equal(t, "Alice Ames", messages[0].AuthorName)
}

func TestProposalService_AnonymousViewRecorded(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	created, err := svc.Create(f.ctx(), &domain.CreateProposalRequest{Title: "Q3 Pitch"})
	require.NoError(t, err)

	// No tenant context: a shared-link open
	require.NoError(t, svc.RecordView(context.Background(), created.ID))

	views, total, err := svc.ListViews(f.ctx(), created.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].ContactID)
}

func TestProposalService_RecordViewUnknownProposal(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newProposalService(f)

	err := svc.RecordView(f.ctx(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
