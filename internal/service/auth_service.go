package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/mapper"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService provisions tenants for new signups and answers "who am
// I" queries. It implements auth.ContactDirectory for the passkey
// ceremony service.
type AuthService struct {
	db             *gorm.DB
	contactRepo    *repository.ContactRepository
	orgRepo        *repository.OrganizationRepository
	permissionRepo *repository.PermissionRepository
	credentialRepo *repository.PasskeyCredentialRepository
	logger         *zap.Logger
}

func NewAuthService(
	db *gorm.DB,
	contactRepo *repository.ContactRepository,
	orgRepo *repository.OrganizationRepository,
	permissionRepo *repository.PermissionRepository,
	credentialRepo *repository.PasskeyCredentialRepository,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		db:             db,
		contactRepo:    contactRepo,
		orgRepo:        orgRepo,
		permissionRepo: permissionRepo,
		credentialRepo: credentialRepo,
		logger:         logger,
	}
}

// FindByEmail returns the contact for an email, or nil when unknown
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByEmail(ctx, email)
	if isRecordNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact: %w", err)
	}
	return contact, nil
}

// FindByID returns the contact by id, or nil when unknown
func (s *AuthService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if isRecordNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact: %w", err)
	}
	return contact, nil
}

// Provision creates a new tenant for a first-time signup: the
// contact's own organization, a free account, the contact record, and
// the owner permission edge, all in one transaction.
func (s *AuthService) Provision(ctx context.Context, email, firstName, lastName string) (*domain.Contact, error) {
	if firstName == "" {
		firstName = "New"
	}
	if lastName == "" {
		lastName = "User"
	}

	var contact *domain.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org := &domain.Organization{
			Name: fmt.Sprintf("%s %s's Organization", firstName, lastName),
		}
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		account := &domain.Account{
			OrganizationID:   org.ID,
			SubscriptionTier: domain.TierFree,
		}
		if err := tx.Create(account).Error; err != nil {
			return err
		}

		contact = &domain.Contact{
			OrganizationID: org.ID,
			Email:          email,
			FirstName:      firstName,
			LastName:       lastName,
		}
		if err := tx.Create(contact).Error; err != nil {
			return err
		}

		account.BillingContactID = &contact.ID
		if err := tx.Save(account).Error; err != nil {
			return err
		}

		perm := &domain.Permission{
			PermittedEntity:   domain.PermittedEntityContact,
			PermittedEntityID: contact.ID,
			TargetEntity:      domain.TargetOrganization,
			TargetEntityID:    org.ID,
			Role:              domain.RoleOwner,
		}
		return tx.Create(perm).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to provision tenant: %w", err)
	}

	s.logger.Info("tenant provisioned",
		zap.String("contact_id", contact.ID.String()),
		zap.String("organization_id", contact.OrganizationID.String()),
	)
	return contact, nil
}

// Me returns the authenticated contact with its organization and role
func (s *AuthService) Me(ctx context.Context) (*domain.AuthUserDTO, error) {
	tenant, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	contact, err := s.contactRepo.GetByID(ctx, tenant.ContactID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	role, err := s.permissionRepo.FindRole(ctx, domain.PermittedEntityContact, contact.ID,
		domain.TargetOrganization, contact.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve role: %w", err)
	}

	credCount, err := s.credentialRepo.CountByContact(ctx, contact.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count credentials: %w", err)
	}

	dto := &domain.AuthUserDTO{
		ID:             contact.ID,
		Email:          contact.Email,
		FullName:       contact.FullName(),
		OrganizationID: contact.OrganizationID,
		Role:           role,
		HasPasskey:     credCount > 0,
	}

	if org, err := s.orgRepo.GetByID(ctx, contact.OrganizationID); err == nil {
		orgDTO := mapper.ToOrganizationDTO(org)
		dto.Organization = &orgDTO
	}

	return dto, nil
}

// ListCredentials returns the authenticated contact's passkeys
func (s *AuthService) ListCredentials(ctx context.Context) ([]domain.PasskeyCredentialDTO, error) {
	tenant, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	creds, err := s.credentialRepo.ListByContact(ctx, tenant.ContactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	dtos := make([]domain.PasskeyCredentialDTO, len(creds))
	for i, cred := range creds {
		dtos[i] = mapper.ToPasskeyCredentialDTO(&cred)
	}
	return dtos, nil
}
