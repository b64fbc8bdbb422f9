package service_test

import (
	"context"
	"testing"

	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"gorm.io/gorm"
)

// tenantFixture is a tenant organization with one contact signed in,
// plus the repositories and resolver the services under test are
// wired with
type tenantFixture struct {
	db       *gorm.DB
	org      *domain.Organization
	contact  *domain.Contact
	resolver *auth.Resolver

	orgRepo         *repository.OrganizationRepository
	contactRepo     *repository.ContactRepository
	teamRepo        *repository.TeamRepository
	permissionRepo  *repository.PermissionRepository
	proposalRepo    *repository.ProposalRepository
	solutionRepo    *repository.SolutionRepository
	opportunityRepo *repository.OpportunityRepository
}

// setupTenant builds a fresh database with one tenant whose contact
// holds the given organization role
func setupTenant(t *testing.T, role string) *tenantFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Tenant Org")
	contact := testutil.CreateTestContact(t, db, org.ID, "Alice", "Ames", "alice@tenant.test")
	testutil.GrantRole(t, db, contact.ID, domain.TargetOrganization, org.ID, role)

	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)

	return &tenantFixture{
		db:              db,
		org:             org,
		contact:         contact,
		resolver:        auth.NewResolver(permissionRepo, proposalRepo),
		orgRepo:         repository.NewOrganizationRepository(db),
		contactRepo:     repository.NewContactRepository(db),
		teamRepo:        repository.NewTeamRepository(db),
		permissionRepo:  permissionRepo,
		proposalRepo:    proposalRepo,
		solutionRepo:    repository.NewSolutionRepository(db),
		opportunityRepo: repository.NewOpportunityRepository(db),
	}
}

// ctx returns a context authenticated as the fixture's contact
func (f *tenantFixture) ctx() context.Context {
	return auth.WithTenantContext(context.Background(), &auth.TenantContext{
		ContactID:      f.contact.ID,
		OrganizationID: f.org.ID,
		Email:          f.contact.Email,
	})
}

// ctxAs returns a context authenticated as another contact of the same tenant
func (f *tenantFixture) ctxAs(contact *domain.Contact) context.Context {
	return auth.WithTenantContext(context.Background(), &auth.TenantContext{
		ContactID:      contact.ID,
		OrganizationID: f.org.ID,
		Email:          contact.Email,
	})
}
