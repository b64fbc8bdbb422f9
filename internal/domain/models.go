package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are generated client-side in
// BeforeCreate so the same models work against PostgreSQL and the
// sqlite test databases.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Organization represents either a tenant's own organization
// (OwnerOrganizationID is nil) or a customer organization managed by a
// tenant (OwnerOrganizationID points at the owning tenant's org).
// Customer organizations are visible and mutable only by their owner.
type Organization struct {
	BaseModel
	Name                string     `gorm:"type:varchar(200);not null;index"`
	NameLower           string     `gorm:"type:varchar(200);not null;index;column:name_lower"`
	OwnerOrganizationID *uuid.UUID `gorm:"type:uuid;index;column:owner_organization_id"`
	Website             string     `gorm:"type:varchar(500)"`
	Sector              string     `gorm:"type:varchar(100)"`
	Size                string     `gorm:"type:varchar(50)"`
	LogoURL             string     `gorm:"type:varchar(1000);column:logo_url"`
	PrimaryColor        string     `gorm:"type:varchar(20);column:primary_color"`
	SecondaryColor      string     `gorm:"type:varchar(20);column:secondary_color"`
	Address             string     `gorm:"type:varchar(500)"`
}

// NameLower backs the prefix-range search and must always track Name.
func (o *Organization) BeforeSave(tx *gorm.DB) error {
	o.NameLower = strings.ToLower(o.Name)
	return nil
}

// Contact represents an individual person. Contacts double as users:
// the email is the sign-in identity and passkey credentials hang off
// the contact record.
type Contact struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index;column:organization_id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex"`
	FirstName      string    `gorm:"type:varchar(100);not null;column:first_name"`
	LastName       string    `gorm:"type:varchar(100);not null;column:last_name"`
	Title          string    `gorm:"type:varchar(150)"`
	Background     string    `gorm:"type:text"`
	ImageURL       string    `gorm:"type:varchar(1000);column:image_url"`
	LinkedInURL    string    `gorm:"type:varchar(500);column:linkedin_url"`
	Phone          string    `gorm:"type:varchar(50)"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// SubscriptionTier represents the billing tier of an account
type SubscriptionTier string

const (
	TierFree         SubscriptionTier = "free"
	TierStarter      SubscriptionTier = "starter"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

// IsValid checks if the SubscriptionTier is a valid enum value
func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierStarter, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// Account is the billing record for a tenant. Exactly one account
// exists per owning organization.
type Account struct {
	BaseModel
	OrganizationID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex;column:organization_id"`
	SubscriptionTier SubscriptionTier `gorm:"type:varchar(50);not null;default:'free';column:subscription_tier"`
	BillingContactID *uuid.UUID       `gorm:"type:uuid;column:billing_contact_id"`
	StripeCustomerID string           `gorm:"type:varchar(100);column:stripe_customer_id"`
}

// TeamType identifies the kind of entity a team membership scopes to
type TeamType string

const (
	TeamTypeOrganization TeamType = "organization"
	TeamTypeProposal     TeamType = "proposal"
	TeamTypeSolution     TeamType = "solution"
	TeamTypeOpportunity  TeamType = "opportunity"
)

// IsValid checks if the TeamType is a valid enum value
func (t TeamType) IsValid() bool {
	switch t {
	case TeamTypeOrganization, TeamTypeProposal, TeamTypeSolution, TeamTypeOpportunity:
		return true
	}
	return false
}

// TeamMember records that a contact participates in a team scope.
// The composite unique index makes duplicate inserts fail atomically
// instead of relying on the pre-insert existence check alone.
type TeamMember struct {
	BaseModel
	TeamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_membership;column:team_id"`
	TeamType  TeamType  `gorm:"type:varchar(50);not null;uniqueIndex:idx_team_membership;column:team_type"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_membership;column:contact_id"`
}

// Role names for organization and proposal permissions
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleLead   = "lead"
	RoleTeam   = "team"
	RoleViewer = "viewer"
)

// Target entity names for permissions
const (
	TargetOrganization = "organization"
	TargetProposal     = "proposal"
)

// PermittedEntityContact is the only permitted-entity kind written
// today; the column stays generic to match the ACL edge model.
const PermittedEntityContact = "contact"

// Permission is a generalized ACL edge: "entity X has role R on target
// Y". At most one row exists per (permitted, target) pair; writing an
// existing pair updates the role in place.
type Permission struct {
	BaseModel
	PermittedEntity   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_permission_edge;column:permitted_entity"`
	PermittedEntityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_permission_edge;column:permitted_entity_id"`
	TargetEntity      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_permission_edge;column:target_entity"`
	TargetEntityID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_permission_edge;column:target_entity_id"`
	Role              string    `gorm:"type:varchar(50);not null"`
}

// ProposalStatus represents the lifecycle state of a proposal
type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "draft"
	ProposalStatusSubmitted ProposalStatus = "submitted"
	ProposalStatusApproved  ProposalStatus = "approved"
	ProposalStatusRejected  ProposalStatus = "rejected"
)

// IsValid checks if the ProposalStatus is a valid enum value
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusSubmitted, ProposalStatusApproved, ProposalStatusRejected:
		return true
	}
	return false
}

// SectionType distinguishes free-text sections from structured field sections
type SectionType string

const (
	SectionTypeText   SectionType = "text"
	SectionTypeFields SectionType = "fields"
)

// ProposalSection is one independently addressable block of a
// proposal's body. Sections keep their slice order.
type ProposalSection struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Type    SectionType `json:"type"`
	Content string      `json:"content"`
	Images  []string    `json:"images,omitempty"`
}

// ProposalSections is the ordered section list, stored as a JSON column
type ProposalSections []ProposalSection

func (s ProposalSections) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *ProposalSections) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// StringList is a JSON-encoded list of strings (reference document
// URLs, media asset paths, credential transports)
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Proposal is the central document entity
type Proposal struct {
	BaseModel
	Title               string           `gorm:"type:varchar(300);not null"`
	Status              ProposalStatus   `gorm:"type:varchar(50);not null;default:'draft';index"`
	OwnerOrganizationID uuid.UUID        `gorm:"type:uuid;not null;index;column:owner_organization_id"`
	ForOrganizationID   *uuid.UUID       `gorm:"type:uuid;index;column:for_organization_id"`
	ForContactID        *uuid.UUID       `gorm:"type:uuid;column:for_contact_id"`
	Sections            ProposalSections `gorm:"type:jsonb"`
	ReferenceDocuments  StringList       `gorm:"type:jsonb;column:reference_documents"`
}

// SectionByID returns the index of the section with the given id, or -1
func (p *Proposal) SectionByID(sectionID string) int {
	for i, s := range p.Sections {
		if s.ID == sectionID {
			return i
		}
	}
	return -1
}

// ProposalMessage is a comment left on a proposal
type ProposalMessage struct {
	BaseModel
	ProposalID uuid.UUID `gorm:"type:uuid;not null;index;column:proposal_id"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;column:contact_id"`
	Body       string    `gorm:"type:text;not null"`
}

// ProposalView records that someone opened a shared proposal
type ProposalView struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProposalID uuid.UUID  `gorm:"type:uuid;not null;index;column:proposal_id"`
	ContactID  *uuid.UUID `gorm:"type:uuid;column:contact_id"`
	ViewedAt   time.Time  `gorm:"not null;column:viewed_at"`
}

func (v *ProposalView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.ViewedAt.IsZero() {
		v.ViewedAt = time.Now().UTC()
	}
	return nil
}

// SolutionStatus represents the publication state of a solution
type SolutionStatus string

const (
	SolutionStatusDraft     SolutionStatus = "draft"
	SolutionStatusPublished SolutionStatus = "published"
	SolutionStatusArchived  SolutionStatus = "archived"
)

// IsValid checks if the SolutionStatus is a valid enum value
func (s SolutionStatus) IsValid() bool {
	switch s {
	case SolutionStatusDraft, SolutionStatusPublished, SolutionStatusArchived:
		return true
	}
	return false
}

// SolutionSections is the fixed keyed section set of a solution,
// stored as a JSON column
type SolutionSections struct {
	Description         string `json:"description"`
	Benefits            string `json:"benefits"`
	PainPoints          string `json:"painPoints"`
	Timeline            string `json:"timeline"`
	CompetitivePosition string `json:"competitivePosition"`
	Pricing             string `json:"pricing"`
}

func (s SolutionSections) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *SolutionSections) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Solution is a reusable offering a tenant maintains and pulls into
// proposals
type Solution struct {
	BaseModel
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index;column:organization_id"`
	Title          string           `gorm:"type:varchar(300);not null"`
	Status         SolutionStatus   `gorm:"type:varchar(50);not null;default:'draft';index"`
	Sections       SolutionSections `gorm:"type:jsonb"`
	MediaAssets    StringList       `gorm:"type:jsonb;column:media_assets"`
}

// OpportunityStatus represents the lifecycle state of an opportunity
type OpportunityStatus string

const (
	OpportunityStatusDraft    OpportunityStatus = "draft"
	OpportunityStatusActive   OpportunityStatus = "active"
	OpportunityStatusArchived OpportunityStatus = "archived"
)

// OpportunitySource records where an opportunity was captured from
type OpportunitySource string

const (
	OpportunitySourceURL    OpportunitySource = "url"
	OpportunitySourceFile   OpportunitySource = "file"
	OpportunitySourceManual OpportunitySource = "manual"
)

// IsValid checks if the OpportunitySource is a valid enum value
func (s OpportunitySource) IsValid() bool {
	switch s {
	case OpportunitySourceURL, OpportunitySourceFile, OpportunitySourceManual:
		return true
	}
	return false
}

// Opportunity is an inbound RFP or lead a tenant tracks
type Opportunity struct {
	BaseModel
	OrganizationID uuid.UUID         `gorm:"type:uuid;not null;index;column:organization_id"`
	Status         OpportunityStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Source         OpportunitySource `gorm:"type:varchar(50);not null"`
	SourceURL      string            `gorm:"type:varchar(1000);column:source_url"`
	Title          string            `gorm:"type:varchar(300)"`
	Summary        string            `gorm:"type:text"`
	Requirements   string            `gorm:"type:text"`
	Deadline       *time.Time        `gorm:"type:date"`
}

// UploadedFile is the metadata record for a stored blob
type UploadedFile struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:organization_id"`
	ProposalID     *uuid.UUID `gorm:"type:uuid;index;column:proposal_id"`
	FileName       string     `gorm:"type:varchar(300);not null;column:file_name"`
	ContentType    string     `gorm:"type:varchar(150);column:content_type"`
	Size           int64      `gorm:"not null"`
	StoragePath    string     `gorm:"type:varchar(500);not null;column:storage_path"`
}

// PasskeyCredential stores a WebAuthn credential registered by a contact
type PasskeyCredential struct {
	BaseModel
	ContactID       uuid.UUID  `gorm:"type:uuid;not null;index;column:contact_id"`
	CredentialID    []byte     `gorm:"type:bytea;not null;uniqueIndex;column:credential_id"`
	PublicKey       []byte     `gorm:"type:bytea;not null;column:public_key"`
	AttestationType string     `gorm:"type:varchar(50);column:attestation_type"`
	AAGUID          []byte     `gorm:"type:bytea;column:aaguid"`
	SignCount       uint32     `gorm:"not null;default:0;column:sign_count"`
	Transports      StringList `gorm:"type:jsonb"`
}

// WebauthnCeremony distinguishes the two passkey ceremony kinds
type WebauthnCeremony string

const (
	CeremonyRegistration   WebauthnCeremony = "registration"
	CeremonyAuthentication WebauthnCeremony = "authentication"
)

// WebauthnSession holds the server-side challenge state between the
// start and verify halves of a passkey ceremony
type WebauthnSession struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID        `gorm:"type:uuid;not null;index;column:contact_id"`
	Ceremony  WebauthnCeremony `gorm:"type:varchar(50);not null"`
	Data      []byte           `gorm:"type:bytea;not null"`
	ExpiresAt time.Time        `gorm:"not null;index;column:expires_at"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime"`
}

func (s *WebauthnSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// LinkedInSession is a captured browser session used by the profile
// enrichment scraper. Sessions expire quickly and are swept by a
// background job.
type LinkedInSession struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContactID  uuid.UUID  `gorm:"type:uuid;not null;index;column:contact_id"`
	Cookies    StringList `gorm:"type:jsonb;not null"`
	CapturedAt time.Time  `gorm:"not null;column:captured_at"`
	ExpiresAt  time.Time  `gorm:"not null;index;column:expires_at"`
}

func (s *LinkedInSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsFresh reports whether the session is still usable at the given time
func (s *LinkedInSession) IsFresh(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// scanJSON decodes a JSON column value that may arrive as []byte
// (postgres) or string (sqlite)
func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
