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
)

type ContactService struct {
	contactRepo    *repository.ContactRepository
	orgRepo        *repository.OrganizationRepository
	teamRepo       *repository.TeamRepository
	permissionRepo *repository.PermissionRepository
	logger         *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	orgRepo *repository.OrganizationRepository,
	teamRepo *repository.TeamRepository,
	permissionRepo *repository.PermissionRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo:    contactRepo,
		orgRepo:        orgRepo,
		teamRepo:       teamRepo,
		permissionRepo: permissionRepo,
		logger:         logger,
	}
}

func (s *ContactService) Create(ctx context.Context, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	if err := s.requireVisibleOrganization(ctx, req.OrganizationID); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		OrganizationID: req.OrganizationID,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Title:          req.Title,
		Background:     req.Background,
		ImageURL:       req.ImageURL,
		LinkedInURL:    req.LinkedInURL,
		Phone:          req.Phone,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("contact created",
		zap.String("contact_id", contact.ID.String()),
		zap.String("organization_id", contact.OrganizationID.String()),
	)

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactDTO, error) {
	contact, err := s.visibleContact(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.ContactDTO, error) {
	if err := s.requireVisibleOrganization(ctx, organizationID); err != nil {
		return nil, err
	}

	contacts, err := s.contactRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i, contact := range contacts {
		dtos[i] = mapper.ToContactDTO(&contact)
	}
	return dtos, nil
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	contact, err := s.visibleContact(ctx, id)
	if err != nil {
		return nil, err
	}

	contact.Email = req.Email
	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Title = req.Title
	contact.Background = req.Background
	contact.ImageURL = req.ImageURL
	contact.LinkedInURL = req.LinkedInURL
	contact.Phone = req.Phone

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// UpdateEnrichment writes scraped profile fields onto a contact,
// leaving anything the enricher could not find untouched
func (s *ContactService) UpdateEnrichment(ctx context.Context, id uuid.UUID, title, background, imageURL string) error {
	contact, err := s.visibleContact(ctx, id)
	if err != nil {
		return err
	}

	if title != "" {
		contact.Title = title
	}
	if background != "" {
		contact.Background = background
	}
	if imageURL != "" {
		contact.ImageURL = imageURL
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return fmt.Errorf("failed to update contact enrichment: %w", err)
	}
	return nil
}

// Delete removes a contact along with its team memberships and
// permission edges
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	contact, err := s.visibleContact(ctx, id)
	if err != nil {
		return err
	}

	tenant := auth.MustFromContext(ctx)
	if contact.ID == tenant.ContactID {
		return ErrConflict
	}

	if err := s.teamRepo.DeleteByContact(ctx, contact.ID); err != nil {
		return fmt.Errorf("failed to delete team memberships: %w", err)
	}
	if err := s.permissionRepo.DeleteByPermitted(ctx, domain.PermittedEntityContact, contact.ID); err != nil {
		return fmt.Errorf("failed to delete permissions: %w", err)
	}
	if err := s.contactRepo.Delete(ctx, contact.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.logger.Info("contact deleted",
		zap.String("contact_id", id.String()),
	)
	return nil
}

// visibleContact loads a contact the tenant may see: one in its own
// organization or in a customer organization it owns
func (s *ContactService) visibleContact(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if err := s.requireVisibleOrganization(ctx, contact.OrganizationID); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) requireVisibleOrganization(ctx context.Context, organizationID uuid.UUID) error {
	tenant := auth.MustFromContext(ctx)

	if organizationID == tenant.OrganizationID {
		return nil
	}

	org, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org.OwnerOrganizationID == nil || *org.OwnerOrganizationID != tenant.OrganizationID {
		return ErrForbidden
	}
	return nil
}
