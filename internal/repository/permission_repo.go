package repository

import (
	"context"

	"docvault/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Exists(ctx context.Context, documentID, departmentID int64) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&domain.Permission{}).
		Where("document_id = ? AND department_id = ?", documentID, departmentID).
		Count(&count)
	return count > 0, tx.Error
}

// Grant is idempotent: re-granting an existing pair is a no-op.
func (r *PermissionRepository) Grant(ctx context.Context, documentID, departmentID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Permission{DocumentID: documentID, DepartmentID: departmentID}).
		Error
}
