package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"gorm.io/gorm"
)

// handlerFixture is a tenant organization with one contact signed in,
// plus the repositories the handlers under test are wired through
type handlerFixture struct {
	db      *gorm.DB
	org     *domain.Organization
	contact *domain.Contact

	orgRepo         *repository.OrganizationRepository
	contactRepo     *repository.ContactRepository
	teamRepo        *repository.TeamRepository
	permissionRepo  *repository.PermissionRepository
	proposalRepo    *repository.ProposalRepository
	solutionRepo    *repository.SolutionRepository
	opportunityRepo *repository.OpportunityRepository
	resolver        *auth.Resolver
}

// setupHandlerFixture builds a fresh database with one tenant whose
// contact holds the given organization role
func setupHandlerFixture(t *testing.T, role string) *handlerFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Tenant Org")
	contact := testutil.CreateTestContact(t, db, org.ID, "Alice", "Ames", "alice@tenant.test")
	testutil.GrantRole(t, db, contact.ID, domain.TargetOrganization, org.ID, role)

	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)

	return &handlerFixture{
		db:              db,
		org:             org,
		contact:         contact,
		orgRepo:         repository.NewOrganizationRepository(db),
		contactRepo:     repository.NewContactRepository(db),
		teamRepo:        repository.NewTeamRepository(db),
		permissionRepo:  permissionRepo,
		proposalRepo:    proposalRepo,
		solutionRepo:    repository.NewSolutionRepository(db),
		opportunityRepo: repository.NewOpportunityRepository(db),
		resolver:        auth.NewResolver(permissionRepo, proposalRepo),
	}
}

// authenticate attaches the fixture contact's session to the request,
// the way the auth middleware would
func (f *handlerFixture) authenticate(req *http.Request) *http.Request {
	ctx := auth.WithTenantContext(req.Context(), &auth.TenantContext{
		ContactID:      f.contact.ID,
		OrganizationID: f.org.ID,
		Email:          f.contact.Email,
	})
	return req.WithContext(ctx)
}

// withURLParams injects chi route parameters as key/value pairs, the
// way the router would when dispatching the request
func withURLParams(req *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
