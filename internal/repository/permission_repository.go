package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Upsert writes a permission edge. An existing (permitted, target)
// pair has its role updated in place via the unique index, so two
// concurrent writers cannot create duplicate edges.
func (r *PermissionRepository) Upsert(ctx context.Context, perm *domain.Permission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "permitted_entity"},
				{Name: "permitted_entity_id"},
				{Name: "target_entity"},
				{Name: "target_entity_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(perm).Error
}

// FindRole returns the role on a single edge, or empty string when no
// edge exists
func (r *PermissionRepository) FindRole(ctx context.Context, permittedEntity string, permittedEntityID uuid.UUID, targetEntity string, targetEntityID uuid.UUID) (string, error) {
	var perm domain.Permission
	err := r.db.WithContext(ctx).
		Where("permitted_entity = ? AND permitted_entity_id = ? AND target_entity = ? AND target_entity_id = ?",
			permittedEntity, permittedEntityID, targetEntity, targetEntityID).
		First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return perm.Role, nil
}

func (r *PermissionRepository) GetByEdge(ctx context.Context, permittedEntity string, permittedEntityID uuid.UUID, targetEntity string, targetEntityID uuid.UUID) (*domain.Permission, error) {
	var perm domain.Permission
	err := r.db.WithContext(ctx).
		Where("permitted_entity = ? AND permitted_entity_id = ? AND target_entity = ? AND target_entity_id = ?",
			permittedEntity, permittedEntityID, targetEntity, targetEntityID).
		First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *PermissionRepository) ListByTarget(ctx context.Context, targetEntity string, targetEntityID uuid.UUID) ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.WithContext(ctx).
		Where("target_entity = ? AND target_entity_id = ?", targetEntity, targetEntityID).
		Order("created_at").
		Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) ListByPermitted(ctx context.Context, permittedEntity string, permittedEntityID uuid.UUID) ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.WithContext(ctx).
		Where("permitted_entity = ? AND permitted_entity_id = ?", permittedEntity, permittedEntityID).
		Find(&perms).Error
	return perms, err
}

// FindByTargetAndRole returns edges on a target holding a given role
func (r *PermissionRepository) FindByTargetAndRole(ctx context.Context, targetEntity string, targetEntityID uuid.UUID, role string) ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.WithContext(ctx).
		Where("target_entity = ? AND target_entity_id = ? AND role = ?", targetEntity, targetEntityID, role).
		Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) DeleteEdge(ctx context.Context, permittedEntity string, permittedEntityID uuid.UUID, targetEntity string, targetEntityID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("permitted_entity = ? AND permitted_entity_id = ? AND target_entity = ? AND target_entity_id = ?",
			permittedEntity, permittedEntityID, targetEntity, targetEntityID).
		Delete(&domain.Permission{})
	return result.RowsAffected, result.Error
}

// DeleteByTarget removes every edge pointing at a target, used when
// the target entity is deleted
func (r *PermissionRepository) DeleteByTarget(ctx context.Context, targetEntity string, targetEntityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("target_entity = ? AND target_entity_id = ?", targetEntity, targetEntityID).
		Delete(&domain.Permission{}).Error
}

// DeleteByPermitted removes every edge held by an entity, used when a
// contact is deleted
func (r *PermissionRepository) DeleteByPermitted(ctx context.Context, permittedEntity string, permittedEntityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("permitted_entity = ? AND permitted_entity_id = ?", permittedEntity, permittedEntityID).
		Delete(&domain.Permission{}).Error
}

// ReassignLead makes the given contact the lead on a target and
// demotes any other current lead to team in the same transaction, so
// the target never ends up with zero or two leads.
func (r *PermissionRepository) ReassignLead(ctx context.Context, targetEntity string, targetEntityID uuid.UUID, newLeadContactID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Permission{}).
			Where("target_entity = ? AND target_entity_id = ? AND role = ? AND permitted_entity_id <> ?",
				targetEntity, targetEntityID, domain.RoleLead, newLeadContactID).
			Update("role", domain.RoleTeam).Error; err != nil {
			return err
		}

		perm := &domain.Permission{
			PermittedEntity:   domain.PermittedEntityContact,
			PermittedEntityID: newLeadContactID,
			TargetEntity:      targetEntity,
			TargetEntityID:    targetEntityID,
			Role:              domain.RoleLead,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "permitted_entity"},
				{Name: "permitted_entity_id"},
				{Name: "target_entity"},
				{Name: "target_entity_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).Create(perm).Error
	})
}
