package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Organization{}, "id = ?", id).Error
}

// ListByOwner returns the customer organizations owned by a tenant
func (r *OrganizationRepository) ListByOwner(ctx context.Context, ownerOrganizationID uuid.UUID, page, pageSize int) ([]domain.Organization, int64, error) {
	var orgs []domain.Organization
	var total int64

	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).Model(&domain.Organization{}).
		Where("owner_organization_id = ?", ownerOrganizationID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("owner_organization_id = ?", ownerOrganizationID).
		Order("name_lower").
		Offset(offset).
		Limit(pageSize).
		Find(&orgs).Error

	return orgs, total, err
}

// SearchByNamePrefix finds owned organizations whose lowercased name
// starts with the query. The upper bound "" sorts after any
// reasonable name continuation, turning the prefix match into an
// index-friendly range scan.
func (r *OrganizationRepository) SearchByNamePrefix(ctx context.Context, ownerOrganizationID uuid.UUID, query string, limit int) ([]domain.Organization, error) {
	var orgs []domain.Organization
	q := strings.ToLower(query)

	err := r.db.WithContext(ctx).
		Where("owner_organization_id = ?", ownerOrganizationID).
		Where("name_lower >= ? AND name_lower < ?", q, q+"").
		Order("name_lower").
		Limit(limit).
		Find(&orgs).Error

	return orgs, err
}

// ContactCountsByOrganization returns contact counts keyed by
// organization, one grouped query for the whole id set
func (r *OrganizationRepository) ContactCountsByOrganization(ctx context.Context, organizationIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countsByColumn(ctx, &domain.Contact{}, "organization_id", organizationIDs)
}

// ProposalCountsByOrganization returns proposal counts keyed by
// target organization
func (r *OrganizationRepository) ProposalCountsByOrganization(ctx context.Context, organizationIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countsByColumn(ctx, &domain.Proposal{}, "for_organization_id", organizationIDs)
}

type countRow struct {
	Key   uuid.UUID `gorm:"column:key"`
	Count int64     `gorm:"column:count"`
}

func (r *OrganizationRepository) countsByColumn(ctx context.Context, model interface{}, column string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(model).
		Select(column+" AS key, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// DeleteCascade removes an organization together with its contacts,
// team memberships, and permission edges in one transaction
func (r *OrganizationRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contactIDs []uuid.UUID
		if err := tx.Model(&domain.Contact{}).
			Where("organization_id = ?", id).
			Pluck("id", &contactIDs).Error; err != nil {
			return err
		}

		if len(contactIDs) > 0 {
			if err := tx.Where("contact_id IN ?", contactIDs).
				Delete(&domain.TeamMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("permitted_entity = ? AND permitted_entity_id IN ?",
				domain.PermittedEntityContact, contactIDs).
				Delete(&domain.Permission{}).Error; err != nil {
				return err
			}
			if err := tx.Where("organization_id = ?", id).
				Delete(&domain.Contact{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("team_id = ? AND team_type = ?", id, domain.TeamTypeOrganization).
			Delete(&domain.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_entity = ? AND target_entity_id = ?",
			domain.TargetOrganization, id).
			Delete(&domain.Permission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&domain.Organization{}, "id = ?", id).Error
	})
}
