package mapper

import (
	"time"

	"github.com/proposalhub/proposalhub-api/internal/domain"
)

// Millisecond precision so closely spaced updates still order
const timeFormat = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

func ToOrganizationDTO(org *domain.Organization) domain.OrganizationDTO {
	return domain.OrganizationDTO{
		ID:                  org.ID,
		Name:                org.Name,
		OwnerOrganizationID: org.OwnerOrganizationID,
		Website:             org.Website,
		Sector:              org.Sector,
		Size:                org.Size,
		LogoURL:             org.LogoURL,
		PrimaryColor:        org.PrimaryColor,
		SecondaryColor:      org.SecondaryColor,
		Address:             org.Address,
		CreatedAt:           formatTime(org.CreatedAt),
		UpdatedAt:           formatTime(org.UpdatedAt),
	}
}

func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:             contact.ID,
		OrganizationID: contact.OrganizationID,
		Email:          contact.Email,
		FirstName:      contact.FirstName,
		LastName:       contact.LastName,
		FullName:       contact.FullName(),
		Title:          contact.Title,
		Background:     contact.Background,
		ImageURL:       contact.ImageURL,
		LinkedInURL:    contact.LinkedInURL,
		Phone:          contact.Phone,
		CreatedAt:      formatTime(contact.CreatedAt),
		UpdatedAt:      formatTime(contact.UpdatedAt),
	}
}

func ToAccountDTO(account *domain.Account) domain.AccountDTO {
	return domain.AccountDTO{
		ID:               account.ID,
		OrganizationID:   account.OrganizationID,
		SubscriptionTier: account.SubscriptionTier,
		BillingContactID: account.BillingContactID,
		CreatedAt:        formatTime(account.CreatedAt),
		UpdatedAt:        formatTime(account.UpdatedAt),
	}
}

// ToTeamMemberDTO joins a membership row with its contact's display
// fields. The contact may be nil when it was deleted out from under
// the membership.
func ToTeamMemberDTO(member *domain.TeamMember, contact *domain.Contact) domain.TeamMemberDTO {
	dto := domain.TeamMemberDTO{
		ID:        member.ID,
		TeamID:    member.TeamID,
		TeamType:  member.TeamType,
		ContactID: member.ContactID,
		CreatedAt: formatTime(member.CreatedAt),
	}
	if contact != nil {
		dto.FullName = contact.FullName()
		dto.Email = contact.Email
		dto.Title = contact.Title
		dto.ImageURL = contact.ImageURL
	}
	return dto
}

func ToPermissionDTO(perm *domain.Permission) domain.PermissionDTO {
	return domain.PermissionDTO{
		ID:                perm.ID,
		PermittedEntity:   perm.PermittedEntity,
		PermittedEntityID: perm.PermittedEntityID,
		TargetEntity:      perm.TargetEntity,
		TargetEntityID:    perm.TargetEntityID,
		Role:              perm.Role,
		CreatedAt:         formatTime(perm.CreatedAt),
		UpdatedAt:         formatTime(perm.UpdatedAt),
	}
}

func ToProposalDTO(proposal *domain.Proposal) domain.ProposalDTO {
	sections := proposal.Sections
	if sections == nil {
		sections = domain.ProposalSections{}
	}
	return domain.ProposalDTO{
		ID:                  proposal.ID,
		Title:               proposal.Title,
		Status:              proposal.Status,
		OwnerOrganizationID: proposal.OwnerOrganizationID,
		ForOrganizationID:   proposal.ForOrganizationID,
		ForContactID:        proposal.ForContactID,
		Sections:            sections,
		ReferenceDocuments:  proposal.ReferenceDocuments,
		CreatedAt:           formatTime(proposal.CreatedAt),
		UpdatedAt:           formatTime(proposal.UpdatedAt),
	}
}

func ToProposalSummaryDTO(proposal *domain.Proposal) domain.ProposalSummaryDTO {
	return domain.ProposalSummaryDTO{
		ID:                  proposal.ID,
		Title:               proposal.Title,
		Status:              proposal.Status,
		OwnerOrganizationID: proposal.OwnerOrganizationID,
		ForOrganizationID:   proposal.ForOrganizationID,
		SectionCount:        len(proposal.Sections),
		CreatedAt:           formatTime(proposal.CreatedAt),
		UpdatedAt:           formatTime(proposal.UpdatedAt),
	}
}

func ToProposalMessageDTO(message *domain.ProposalMessage, author *domain.Contact) domain.ProposalMessageDTO {
	dto := domain.ProposalMessageDTO{
		ID:         message.ID,
		ProposalID: message.ProposalID,
		ContactID:  message.ContactID,
		Body:       message.Body,
		CreatedAt:  formatTime(message.CreatedAt),
	}
	if author != nil {
		dto.AuthorName = author.FullName()
	}
	return dto
}

func ToProposalViewDTO(view *domain.ProposalView) domain.ProposalViewDTO {
	return domain.ProposalViewDTO{
		ID:         view.ID,
		ProposalID: view.ProposalID,
		ContactID:  view.ContactID,
		ViewedAt:   formatTime(view.ViewedAt),
	}
}

func ToSolutionDTO(solution *domain.Solution) domain.SolutionDTO {
	return domain.SolutionDTO{
		ID:             solution.ID,
		OrganizationID: solution.OrganizationID,
		Title:          solution.Title,
		Status:         solution.Status,
		Sections:       solution.Sections,
		MediaAssets:    solution.MediaAssets,
		CreatedAt:      formatTime(solution.CreatedAt),
		UpdatedAt:      formatTime(solution.UpdatedAt),
	}
}

func ToOpportunityDTO(opp *domain.Opportunity) domain.OpportunityDTO {
	return domain.OpportunityDTO{
		ID:             opp.ID,
		OrganizationID: opp.OrganizationID,
		Status:         opp.Status,
		Source:         opp.Source,
		SourceURL:      opp.SourceURL,
		Title:          opp.Title,
		Summary:        opp.Summary,
		Requirements:   opp.Requirements,
		Deadline:       formatDate(opp.Deadline),
		CreatedAt:      formatTime(opp.CreatedAt),
		UpdatedAt:      formatTime(opp.UpdatedAt),
	}
}

func ToFileDTO(file *domain.UploadedFile, url string) domain.FileDTO {
	return domain.FileDTO{
		ID:             file.ID,
		OrganizationID: file.OrganizationID,
		ProposalID:     file.ProposalID,
		FileName:       file.FileName,
		ContentType:    file.ContentType,
		Size:           file.Size,
		URL:            url,
		CreatedAt:      formatTime(file.CreatedAt),
	}
}

func ToPasskeyCredentialDTO(cred *domain.PasskeyCredential) domain.PasskeyCredentialDTO {
	return domain.PasskeyCredentialDTO{
		ID:         cred.ID,
		SignCount:  cred.SignCount,
		Transports: cred.Transports,
		CreatedAt:  formatTime(cred.CreatedAt),
	}
}
