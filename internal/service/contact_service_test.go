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

func newContactService(f *tenantFixture) *service.ContactService {
	return service.NewContactService(f.contactRepo, f.orgRepo, f.teamRepo, f.permissionRepo, zap.NewNop())
}

func TestContactService_CreateInOwnOrganization(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	dto, err := svc.Create(f.ctx(), &domain.CreateContactRequest{
		OrganizationID: f.org.ID,
		Email:          "bob@tenant.test",
		FirstName:      "Bob",
		LastName:       "Berg",
		Title:          "CTO",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob Berg", dto.FullName)
	assert.Equal(t, "CTO", dto.Title)
}

func TestContactService_CreateInOwnedCustomerOrganization(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	customer := testutil.CreateTestCustomerOrganization(t, f.db, "Acme Corp", f.org.ID)

	dto, err := svc.Create(f.ctx(), &domain.CreateContactRequest{
		OrganizationID: customer.ID,
		Email:          "buyer@acme.test",
		FirstName:      "Cara",
		LastName:       "Crane",
	})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, dto.OrganizationID)
}

func TestContactService_CreateInForeignOrganization(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")

	_, err := svc.Create(f.ctx(), &domain.CreateContactRequest{
		OrganizationID: otherTenant.ID,
		Email:          "sneaky@other.test",
		FirstName:      "Sal",
		LastName:       "Sneak",
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestContactService_ForeignContactIsForbidden(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	foreign := testutil.CreateTestContact(t, f.db, otherTenant.ID, "Fred", "Far", "fred@other.test")

	_, err := svc.GetByID(f.ctx(), foreign.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestContactService_Update(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	bob := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	dto, err := svc.Update(f.ctx(), bob.ID, &domain.UpdateContactRequest{
		Email:     "bob@tenant.test",
		FirstName: "Robert",
		LastName:  "Berg",
		Title:     "VP Engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert Berg", dto.FullName)
	assert.Equal(t, "VP Engineering", dto.Title)
}

func TestContactService_UpdateEnrichmentKeepsExistingFields(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	bob := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	_, err := svc.Update(f.ctx(), bob.ID, &domain.UpdateContactRequest{
		Email:     bob.Email,
		FirstName: bob.FirstName,
		LastName:  bob.LastName,
		Title:     "CTO",
	})
	require.NoError(t, err)

	// An empty title from the enricher must not wipe the stored one
	require.NoError(t, svc.UpdateEnrichment(f.ctx(), bob.ID, "", "Ten years in infrastructure", ""))

	dto, err := svc.GetByID(f.ctx(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "CTO", dto.Title)
	assert.Equal(t, "Ten years in infrastructure", dto.Background)
}

func TestContactService_DeleteRemovesMembershipsAndEdges(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newContactService(f)

	bob := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")
	testutil.GrantRole(t, f.db, bob.ID, domain.TargetOrganization, f.org.ID, domain.RoleMember)
	require.NoError(t, f.db.Create(&domain.TeamMember{
		TeamID:    f.org.ID,
		TeamType:  domain.TeamTypeOrganization,
		ContactID: bob.ID,
	}).Error)

	require.NoError(t, svc.Delete(f.ctx(), bob.ID))

	var memberships, edges int64
	require.NoError(t, f.db.Model(&domain.TeamMember{}).
		Where("contact_id = ?", bob.ID).Count(&memberships).Error)
	require.NoError(t, f.db.Model(&domain.Permission{}).
		Where("permitted_entity_id = ?", bob.ID).Count(&edges).Error)
	assert.Zero(t, memberships)
	assert.Zero(t, edges)
}

func TestContactService_CannotDeleteSelf(t *testing.T) {
	f := setupTenant(t, domain.RoleAdmin)
	svc := newContactService(f)

	err := svc.Delete(f.ctx(), f.contact.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestContactService_ListByOrganization(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newContactService(f)

	testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

	contacts, err := svc.ListByOrganization(f.ctx(), f.org.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	_, err = svc.ListByOrganization(f.ctx(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
