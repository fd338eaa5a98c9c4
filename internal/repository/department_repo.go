package repository

import (
	"context"

	"docvault/internal/domain"

	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// GetOrCreate keys on the unique department name.
func (r *DepartmentRepository) GetOrCreate(ctx context.Context, name string) (*domain.Department, error) {
	var dep domain.Department
	err := r.db.WithContext(ctx).
		Where(domain.Department{Name: name}).
		FirstOrCreate(&dep).Error
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dep domain.Department
	if err := r.db.WithContext(ctx).First(&dep, id).Error; err != nil {
		return nil, err
	}
	return &dep, nil
}

func (r *DepartmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Department{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	var deps []domain.Department
	err := r.db.WithContext(ctx).Order("id ASC").Find(&deps).Error
	return deps, err
}
