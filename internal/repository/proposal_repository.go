package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).First(&proposal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetOwnerOrganizationID resolves a proposal to its owning tenant
// without loading the section payload
func (r *ProposalRepository) GetOwnerOrganizationID(ctx context.Context, proposalID uuid.UUID) (uuid.UUID, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).
		Select("id", "owner_organization_id").
		First(&proposal, "id = ?", proposalID).Error
	if err != nil {
		return uuid.Nil, err
	}
	return proposal.OwnerOrganizationID, nil
}

func (r *ProposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}

func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Proposal{}, "id = ?", id).Error
}

func (r *ProposalRepository) ListByOwnerOrganization(ctx context.Context, ownerOrganizationID uuid.UUID, page, pageSize int) ([]domain.Proposal, int64, error) {
	var proposals []domain.Proposal
	var total int64

	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("owner_organization_id = ?", ownerOrganizationID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("owner_organization_id = ?", ownerOrganizationID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&proposals).Error

	return proposals, total, err
}

// ListByIDs fetches a batch of proposals in a single query
func (r *ProposalRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Proposal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&proposals).Error
	return proposals, err
}

// Messages

func (r *ProposalRepository) CreateMessage(ctx context.Context, message *domain.ProposalMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *ProposalRepository) ListMessages(ctx context.Context, proposalID uuid.UUID) ([]domain.ProposalMessage, error) {
	var messages []domain.ProposalMessage
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at").
		Find(&messages).Error
	return messages, err
}

func (r *ProposalRepository) DeleteMessagesByProposal(ctx context.Context, proposalID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.ProposalMessage{}, "proposal_id = ?", proposalID).Error
}

// Views

func (r *ProposalRepository) CreateView(ctx context.Context, view *domain.ProposalView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

func (r *ProposalRepository) ListViews(ctx context.Context, proposalID uuid.UUID, limit int) ([]domain.ProposalView, error) {
	var views []domain.ProposalView
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("viewed_at DESC").
		Limit(limit).
		Find(&views).Error
	return views, err
}

func (r *ProposalRepository) CountViews(ctx context.Context, proposalID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProposalView{}).
		Where("proposal_id = ?", proposalID).
		Count(&count).Error
	return count, err
}

func (r *ProposalRepository) DeleteViewsByProposal(ctx context.Context, proposalID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.ProposalView{}, "proposal_id = ?", proposalID).Error
}

// DeleteCascade removes a proposal together with its permission edges,
// team memberships, messages, and view records in one transaction
func (r *ProposalRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_entity = ? AND target_entity_id = ?",
			domain.TargetProposal, id).
			Delete(&domain.Permission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ? AND team_type = ?", id, domain.TeamTypeProposal).
			Delete(&domain.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.ProposalMessage{}, "proposal_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.ProposalView{}, "proposal_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Proposal{}, "id = ?", id).Error
	})
}
