package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/database"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory database with the full
// schema migrated. Each call returns a fresh database, so tests never
// see each other's rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache memory database, pinned to a single
	// connection so the pool cannot drop it mid-test
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Match the production config so unique violations translate
		// to gorm.ErrDuplicatedKey in tests too
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open in-memory test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test database")

	return db
}

// CreateTestOrganization inserts a tenant organization
func CreateTestOrganization(t *testing.T, db *gorm.DB, name string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{Name: name}
	require.NoError(t, db.Create(org).Error)
	return org
}

// CreateTestCustomerOrganization inserts an organization owned by a tenant
func CreateTestCustomerOrganization(t *testing.T, db *gorm.DB, name string, ownerID uuid.UUID) *domain.Organization {
	t.Helper()
	org := &domain.Organization{Name: name, OwnerOrganizationID: &ownerID}
	require.NoError(t, db.Create(org).Error)
	return org
}

// CreateTestContact inserts a contact belonging to an organization
func CreateTestContact(t *testing.T, db *gorm.DB, orgID uuid.UUID, firstName, lastName, email string) *domain.Contact {
	t.Helper()
	contact := &domain.Contact{
		OrganizationID: orgID,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// CreateTestProposal inserts a proposal owned by an organization
func CreateTestProposal(t *testing.T, db *gorm.DB, ownerOrgID uuid.UUID, title string) *domain.Proposal {
	t.Helper()
	proposal := &domain.Proposal{
		Title:               title,
		Status:              domain.ProposalStatusDraft,
		OwnerOrganizationID: ownerOrgID,
		Sections:            domain.ProposalSections{},
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

// GrantRole writes a permission edge directly
func GrantRole(t *testing.T, db *gorm.DB, contactID uuid.UUID, targetEntity string, targetID uuid.UUID, role string) {
	t.Helper()
	perm := &domain.Permission{
		PermittedEntity:   domain.PermittedEntityContact,
		PermittedEntityID: contactID,
		TargetEntity:      targetEntity,
		TargetEntityID:    targetID,
		Role:              role,
	}
	require.NoError(t, db.Create(perm).Error)
}
