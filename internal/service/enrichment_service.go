package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/enrichment"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"go.uber.org/zap"
)

// EnrichmentService runs the AI and lookup chains that fill in
// proposal sections, organization branding, and contact profiles
type EnrichmentService struct {
	proposalRepo *repository.ProposalRepository
	orgRepo      *repository.OrganizationRepository
	contactRepo  *repository.ContactRepository
	sessionRepo  *repository.LinkedInSessionRepository
	resolver     *auth.Resolver
	generator    *enrichment.ContentGenerator
	logoFinder   *enrichment.LogoFinder
	profiles     enrichment.ProfileEnricher
	perplexity   *enrichment.PerplexityClient
	logger       *zap.Logger
}

func NewEnrichmentService(
	proposalRepo *repository.ProposalRepository,
	orgRepo *repository.OrganizationRepository,
	contactRepo *repository.ContactRepository,
	sessionRepo *repository.LinkedInSessionRepository,
	resolver *auth.Resolver,
	generator *enrichment.ContentGenerator,
	logoFinder *enrichment.LogoFinder,
	profiles enrichment.ProfileEnricher,
	perplexity *enrichment.PerplexityClient,
	logger *zap.Logger,
) *EnrichmentService {
	return &EnrichmentService{
		proposalRepo: proposalRepo,
		orgRepo:      orgRepo,
		contactRepo:  contactRepo,
		sessionRepo:  sessionRepo,
		resolver:     resolver,
		generator:    generator,
		logoFinder:   logoFinder,
		profiles:     profiles,
		perplexity:   perplexity,
		logger:       logger,
	}
}

// GenerateSection drafts content for one proposal section through the
// model chain and stores the result on the section
func (s *EnrichmentService) GenerateSection(ctx context.Context, proposalID uuid.UUID, req *domain.GenerateSectionRequest) (*domain.GenerateSectionResponse, error) {
	tenant := auth.MustFromContext(ctx)

	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal.OwnerOrganizationID != tenant.OrganizationID {
		return nil, ErrNotFound
	}
	if err := s.resolver.RequireProposalRole(ctx, tenant.ContactID, proposalID, domain.RoleTeam); err != nil {
		return nil, ErrForbidden
	}

	idx := proposal.SectionByID(req.SectionID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	section := proposal.Sections[idx]

	content, model, err := s.generator.Generate(ctx, sectionPrompt(proposal, &section, req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	proposal.Sections[idx].Content = content
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to store generated content: %w", err)
	}

	s.logger.Info("section content generated",
		zap.String("proposal_id", proposalID.String()),
		zap.String("section_id", req.SectionID),
		zap.String("model", model),
	)

	return &domain.GenerateSectionResponse{
		SectionID: req.SectionID,
		Content:   content,
		Model:     model,
	}, nil
}

// EnrichLogo finds a logo for an organization through the provider
// chain and stores it on the record
func (s *EnrichmentService) EnrichLogo(ctx context.Context, req *domain.EnrichLogoRequest) (*domain.EnrichLogoResponse, error) {
	org, err := s.visibleOrganization(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	result, err := s.logoFinder.Find(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	org.LogoURL = result.LogoURL
	if result.PrimaryColor != "" {
		org.PrimaryColor = result.PrimaryColor
	}
	if result.SecondaryColor != "" {
		org.SecondaryColor = result.SecondaryColor
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	s.logger.Info("organization logo enriched",
		zap.String("organization_id", org.ID.String()),
		zap.String("source", result.Source),
	)

	return &domain.EnrichLogoResponse{
		LogoURL:        result.LogoURL,
		PrimaryColor:   result.PrimaryColor,
		SecondaryColor: result.SecondaryColor,
		Source:         result.Source,
	}, nil
}

// EnrichProfile fills a contact's title, background, and photo. A
// stored browser session drives the profile scraper; without one the
// research model provides a background summary only.
func (s *EnrichmentService) EnrichProfile(ctx context.Context, req *domain.EnrichProfileRequest) (*domain.EnrichProfileResponse, error) {
	tenant := auth.MustFromContext(ctx)

	contact, err := s.contactRepo.GetByID(ctx, req.ContactID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if err := s.requireVisibleOrganization(ctx, contact.OrganizationID); err != nil {
		return nil, err
	}

	profileURL := req.LinkedInURL
	if profileURL == "" {
		profileURL = contact.LinkedInURL
	}

	var profile *enrichment.Profile
	if profileURL != "" {
		session, err := s.sessionRepo.GetFresh(ctx, tenant.ContactID, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to load browser session: %w", err)
		}
		if session != nil {
			profile, err = s.profiles.EnrichProfile(ctx, profileURL, session)
			if err != nil {
				s.logger.Warn("profile scrape failed, falling back to research",
					zap.String("contact_id", contact.ID.String()),
					zap.Error(err),
				)
				profile = nil
			}
		}
	}

	if profile != nil && profile.Background != "" {
		// Scraped text is noisy, run it through a cleanup pass
		cleaned, _, err := s.generator.Generate(ctx, cleanupPrompt(profile.Background))
		if err == nil {
			profile.Background = cleaned
		}
	}

	if profile == nil {
		org, err := s.orgRepo.GetByID(ctx, contact.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get organization: %w", err)
		}
		background, err := s.perplexity.ResearchPerson(ctx, contact.FullName(), org.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		profile = &enrichment.Profile{Background: strings.TrimSpace(background)}
	}

	if profile.Title != "" {
		contact.Title = profile.Title
	}
	if profile.Background != "" {
		contact.Background = profile.Background
	}
	if profile.ImageURL != "" {
		contact.ImageURL = profile.ImageURL
	}
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to store enriched profile: %w", err)
	}

	s.logger.Info("contact profile enriched",
		zap.String("contact_id", contact.ID.String()),
	)

	return &domain.EnrichProfileResponse{
		ContactID:  contact.ID,
		Title:      profile.Title,
		Background: profile.Background,
		ImageURL:   profile.ImageURL,
	}, nil
}

func (s *EnrichmentService) visibleOrganization(ctx context.Context, organizationID uuid.UUID) (*domain.Organization, error) {
	tenant := auth.MustFromContext(ctx)

	org, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if org.ID != tenant.OrganizationID &&
		(org.OwnerOrganizationID == nil || *org.OwnerOrganizationID != tenant.OrganizationID) {
		return nil, ErrNotFound
	}
	return org, nil
}

func (s *EnrichmentService) requireVisibleOrganization(ctx context.Context, organizationID uuid.UUID) error {
	_, err := s.visibleOrganization(ctx, organizationID)
	return err
}

func sectionPrompt(proposal *domain.Proposal, section *domain.ProposalSection, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the %q section of a business proposal titled %q.\n", section.Title, proposal.Title)
	fmt.Fprintf(&b, "Section type: %s.\n", section.Type)
	if section.Content != "" {
		fmt.Fprintf(&b, "Current draft to improve:\n%s\n", section.Content)
	}
	if extra != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", extra)
	}
	b.WriteString("Answer with the section content only, no preamble.")
	return b.String()
}

func cleanupPrompt(scraped string) string {
	return "Rewrite the following scraped profile text as a clean professional " +
		"background summary in the third person. Remove navigation text and " +
		"duplicated fragments.\n\n" + scraped
}
