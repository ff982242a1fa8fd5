package repository

import (
	"context"

	"gorm.io/gorm"

	"todopro/internal/model"
)

// DepartmentWithCount pairs a department with its member count for listings.
type DepartmentWithCount struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	UserCount int64  `json:"user_count"`
}

type DepartmentRepository interface {
	Create(ctx context.Context, department *model.Department) error
	FindByID(ctx context.Context, id uint) (*model.Department, error)
	FindByName(ctx context.Context, name string) (*model.Department, error)
	FindAllWithCount(ctx context.Context) ([]DepartmentWithCount, error)
	Update(ctx context.Context, department *model.Department) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, department *model.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) FindByID(ctx context.Context, id uint) (*model.Department, error) {
	var department model.Department
	if err := r.db.WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindByName(ctx context.Context, name string) (*model.Department, error) {
	var department model.Department
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&department).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindAllWithCount(ctx context.Context) ([]DepartmentWithCount, error) {
	var departments []DepartmentWithCount
	err := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Select("departments.id, departments.name, count(users.id) as user_count").
		Joins("LEFT JOIN users ON users.department_id = departments.id").
		Group("departments.id, departments.name").
		Order("departments.name").
		Scan(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *departmentRepository) Update(ctx context.Context, department *model.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

// Delete removes a department and orphans its members in the same
// transaction. Users are never deleted with their department.
func (r *departmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Department{}, id).Error
	})
}

func (r *departmentRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Department{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
