package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type OrganizationDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	OwnerOrganizationID *uuid.UUID `json:"ownerOrganizationId,omitempty"`
	Website             string     `json:"website,omitempty"`
	Sector              string     `json:"sector,omitempty"`
	Size                string     `json:"size,omitempty"`
	LogoURL             string     `json:"logoUrl,omitempty"`
	PrimaryColor        string     `json:"primaryColor,omitempty"`
	SecondaryColor      string     `json:"secondaryColor,omitempty"`
	Address             string     `json:"address,omitempty"`
	CreatedAt           string     `json:"createdAt"` // ISO 8601
	UpdatedAt           string     `json:"updatedAt"` // ISO 8601
}

// OrganizationWithStatsDTO includes an organization with related counts
type OrganizationWithStatsDTO struct {
	OrganizationDTO
	ContactCount  int64 `json:"contactCount"`
	ProposalCount int64 `json:"proposalCount"`
}

type ContactDTO struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Email          string    `json:"email,omitempty"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	FullName       string    `json:"fullName"`
	Title          string    `json:"title,omitempty"`
	Background     string    `json:"background,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	LinkedInURL    string    `json:"linkedInUrl,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      string    `json:"createdAt"` // ISO 8601
	UpdatedAt      string    `json:"updatedAt"` // ISO 8601
}

type AccountDTO struct {
	ID               uuid.UUID        `json:"id"`
	OrganizationID   uuid.UUID        `json:"organizationId"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
	BillingContactID *uuid.UUID       `json:"billingContactId,omitempty"`
	CreatedAt        string           `json:"createdAt"`
	UpdatedAt        string           `json:"updatedAt"`
}

// TeamMemberDTO is a membership row joined with contact display data
type TeamMemberDTO struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"teamId"`
	TeamType  TeamType  `json:"teamType"`
	ContactID uuid.UUID `json:"contactId"`
	FullName  string    `json:"fullName,omitempty"`
	Email     string    `json:"email,omitempty"`
	Title     string    `json:"title,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type PermissionDTO struct {
	ID                uuid.UUID `json:"id"`
	PermittedEntity   string    `json:"permittedEntity"`
	PermittedEntityID uuid.UUID `json:"permittedEntityId"`
	TargetEntity      string    `json:"targetEntity"`
	TargetEntityID    uuid.UUID `json:"targetEntityId"`
	Role              string    `json:"role"`
	CreatedAt         string    `json:"createdAt"`
	UpdatedAt         string    `json:"updatedAt"`
}

type ProposalDTO struct {
	ID                  uuid.UUID         `json:"id"`
	Title               string            `json:"title"`
	Status              ProposalStatus    `json:"status"`
	OwnerOrganizationID uuid.UUID         `json:"ownerOrganizationId"`
	ForOrganizationID   *uuid.UUID        `json:"forOrganizationId,omitempty"`
	ForContactID        *uuid.UUID        `json:"forContactId,omitempty"`
	Sections            []ProposalSection `json:"sections"`
	ReferenceDocuments  []string          `json:"referenceDocuments,omitempty"`
	CreatedAt           string            `json:"createdAt"` // ISO 8601
	UpdatedAt           string            `json:"updatedAt"` // ISO 8601
}

// ProposalSummaryDTO is the lighter list representation without section bodies
type ProposalSummaryDTO struct {
	ID                  uuid.UUID      `json:"id"`
	Title               string         `json:"title"`
	Status              ProposalStatus `json:"status"`
	OwnerOrganizationID uuid.UUID      `json:"ownerOrganizationId"`
	ForOrganizationID   *uuid.UUID     `json:"forOrganizationId,omitempty"`
	SectionCount        int            `json:"sectionCount"`
	CreatedAt           string         `json:"createdAt"`
	UpdatedAt           string         `json:"updatedAt"`
}

type ProposalMessageDTO struct {
	ID         uuid.UUID `json:"id"`
	ProposalID uuid.UUID `json:"proposalId"`
	ContactID  uuid.UUID `json:"contactId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  string    `json:"createdAt"`
}

type ProposalViewDTO struct {
	ID         uuid.UUID  `json:"id"`
	ProposalID uuid.UUID  `json:"proposalId"`
	ContactID  *uuid.UUID `json:"contactId,omitempty"`
	ViewedAt   string     `json:"viewedAt"`
}

type SolutionDTO struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organizationId"`
	Title          string           `json:"title"`
	Status         SolutionStatus   `json:"status"`
	Sections       SolutionSections `json:"sections"`
	MediaAssets    []string         `json:"mediaAssets,omitempty"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}

type OpportunityDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organizationId"`
	Status         OpportunityStatus `json:"status"`
	Source         OpportunitySource `json:"source"`
	SourceURL      string            `json:"sourceUrl,omitempty"`
	Title          string            `json:"title,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Requirements   string            `json:"requirements,omitempty"`
	Deadline       *string           `json:"deadline,omitempty"` // ISO 8601 date
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
}

type FileDTO struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	ProposalID     *uuid.UUID `json:"proposalId,omitempty"`
	FileName       string     `json:"fileName"`
	ContentType    string     `json:"contentType,omitempty"`
	Size           int64      `json:"size"`
	URL            string     `json:"url"`
	CreatedAt      string     `json:"createdAt"`
}

// Auth DTOs

// AuthUserDTO represents the current authenticated contact with tenant context
type AuthUserDTO struct {
	ID             uuid.UUID        `json:"id"`
	Email          string           `json:"email"`
	FullName       string           `json:"fullName"`
	OrganizationID uuid.UUID        `json:"organizationId"`
	Organization   *OrganizationDTO `json:"organization,omitempty"`
	Role           string           `json:"role"`
	HasPasskey     bool             `json:"hasPasskey"`
}

type PasskeyCredentialDTO struct {
	ID         uuid.UUID `json:"id"`
	AAGUID     string    `json:"aaguid,omitempty"`
	SignCount  uint32    `json:"signCount"`
	Transports []string  `json:"transports,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

// API Response wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type CreateOrganizationRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Website        string `json:"website,omitempty" validate:"omitempty,max=500"`
	Sector         string `json:"sector,omitempty" validate:"max=100"`
	Size           string `json:"size,omitempty" validate:"max=50"`
	LogoURL        string `json:"logoUrl,omitempty" validate:"omitempty,max=1000"`
	PrimaryColor   string `json:"primaryColor,omitempty" validate:"max=20"`
	SecondaryColor string `json:"secondaryColor,omitempty" validate:"max=20"`
	Address        string `json:"address,omitempty" validate:"max=500"`
}

// UpdateOrganizationRequest carries a partial update: nil fields are
// left untouched
type UpdateOrganizationRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Website        *string `json:"website,omitempty" validate:"omitempty,max=500"`
	Sector         *string `json:"sector,omitempty" validate:"omitempty,max=100"`
	Size           *string `json:"size,omitempty" validate:"omitempty,max=50"`
	LogoURL        *string `json:"logoUrl,omitempty" validate:"omitempty,max=1000"`
	PrimaryColor   *string `json:"primaryColor,omitempty" validate:"omitempty,max=20"`
	SecondaryColor *string `json:"secondaryColor,omitempty" validate:"omitempty,max=20"`
	Address        *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type CreateContactRequest struct {
	OrganizationID uuid.UUID `json:"organizationId" validate:"required"`
	Email          string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	FirstName      string    `json:"firstName" validate:"required,max=100"`
	LastName       string    `json:"lastName" validate:"required,max=100"`
	Title          string    `json:"title,omitempty" validate:"max=150"`
	Background     string    `json:"background,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty" validate:"omitempty,max=1000"`
	LinkedInURL    string    `json:"linkedInUrl,omitempty" validate:"max=500"`
	Phone          string    `json:"phone,omitempty" validate:"max=50"`
}

type UpdateContactRequest struct {
	Email       string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	Title       string `json:"title,omitempty" validate:"max=150"`
	Background  string `json:"background,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,max=1000"`
	LinkedInURL string `json:"linkedInUrl,omitempty" validate:"max=500"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
}

type UpdateAccountRequest struct {
	SubscriptionTier SubscriptionTier `json:"subscriptionTier" validate:"required,oneof=free starter professional enterprise"`
	BillingContactID *uuid.UUID       `json:"billingContactId,omitempty"`
}

type AddTeamMemberRequest struct {
	ContactID uuid.UUID `json:"contactId" validate:"required"`
}

// SetPermissionRequest writes a role edge. Writing an existing
// (permitted, target) pair updates the role in place.
type SetPermissionRequest struct {
	PermittedEntityID uuid.UUID `json:"permittedEntityId" validate:"required"`
	TargetEntity      string    `json:"targetEntity" validate:"required,oneof=organization proposal"`
	TargetEntityID    uuid.UUID `json:"targetEntityId" validate:"required"`
	Role              string    `json:"role" validate:"required,oneof=owner admin member lead team viewer"`
}

type CreateProposalRequest struct {
	Title             string     `json:"title" validate:"required,max=300"`
	ForOrganizationID *uuid.UUID `json:"forOrganizationId,omitempty"`
	ForContactID      *uuid.UUID `json:"forContactId,omitempty"`
}

type UpdateProposalRequest struct {
	Title             string         `json:"title" validate:"required,max=300"`
	Status            ProposalStatus `json:"status,omitempty"`
	ForOrganizationID *uuid.UUID     `json:"forOrganizationId,omitempty"`
	ForContactID      *uuid.UUID     `json:"forContactId,omitempty"`
}

type AddSectionRequest struct {
	Title   string      `json:"title" validate:"required,max=300"`
	Type    SectionType `json:"type" validate:"required,oneof=text fields"`
	Content string      `json:"content,omitempty"`
	Images  []string    `json:"images,omitempty"`
	// Position inserts the section at the given index; nil appends.
	Position *int `json:"position,omitempty" validate:"omitempty,gte=0"`
}

type UpdateSectionRequest struct {
	Title   string   `json:"title" validate:"required,max=300"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ReorderSectionsRequest struct {
	OrderedIDs []string `json:"orderedIds" validate:"required,min=1"`
}

type CreateProposalMessageRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type CreateSolutionRequest struct {
	Title    string           `json:"title" validate:"required,max=300"`
	Sections SolutionSections `json:"sections,omitempty"`
}

type UpdateSolutionRequest struct {
	Title       string           `json:"title" validate:"required,max=300"`
	Status      SolutionStatus   `json:"status,omitempty"`
	Sections    SolutionSections `json:"sections"`
	MediaAssets []string         `json:"mediaAssets,omitempty"`
}

type CreateOpportunityRequest struct {
	Source       OpportunitySource `json:"source" validate:"required,oneof=url file manual"`
	SourceURL    string            `json:"sourceUrl,omitempty" validate:"omitempty,url,max=1000"`
	Title        string            `json:"title,omitempty" validate:"max=300"`
	Summary      string            `json:"summary,omitempty"`
	Requirements string            `json:"requirements,omitempty"`
	Deadline     *time.Time        `json:"deadline,omitempty"`
}

type UpdateOpportunityRequest struct {
	Status       OpportunityStatus `json:"status,omitempty"`
	Title        string            `json:"title" validate:"required,max=300"`
	Summary      string            `json:"summary,omitempty"`
	Requirements string            `json:"requirements,omitempty"`
	Deadline     *time.Time        `json:"deadline,omitempty"`
}

// Enrichment DTOs

// GenerateSectionRequest asks the model chain to draft content for one section
type GenerateSectionRequest struct {
	SectionID string `json:"sectionId" validate:"required"`
	Prompt    string `json:"prompt,omitempty" validate:"max=4000"`
}

type GenerateSectionResponse struct {
	SectionID string `json:"sectionId"`
	Content   string `json:"content"`
	Model     string `json:"model"`
}

type EnrichLogoRequest struct {
	OrganizationID uuid.UUID `json:"organizationId" validate:"required"`
}

type EnrichLogoResponse struct {
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	Source         string `json:"source"`
}

type EnrichProfileRequest struct {
	ContactID   uuid.UUID `json:"contactId" validate:"required"`
	LinkedInURL string    `json:"linkedInUrl,omitempty" validate:"omitempty,url,max=500"`
}

type EnrichProfileResponse struct {
	ContactID  uuid.UUID `json:"contactId"`
	Title      string    `json:"title,omitempty"`
	Background string    `json:"background,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
}

// Passkey ceremony DTOs. The options and response payloads are the
// protocol JSON produced and consumed by the webauthn library, passed
// through opaquely.

type StartPasskeyRegistrationRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName,omitempty" validate:"max=100"`
	LastName  string `json:"lastName,omitempty" validate:"max=100"`
}

type StartPasskeyCeremonyResponse struct {
	SessionID uuid.UUID   `json:"sessionId"`
	Options   interface{} `json:"options"`
}

type FinishPasskeyCeremonyRequest struct {
	SessionID  uuid.UUID   `json:"sessionId" validate:"required"`
	Credential interface{} `json:"credential" validate:"required"`
}

type StartPasskeyLoginRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  AuthUserDTO `json:"user"`
}
