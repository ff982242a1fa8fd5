package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/internal/repository"
	"todopro/pkg/apperror"
	"todopro/pkg/token"
)

type DepartmentService interface {
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	Create(ctx context.Context, actor token.Identity, input dto.DepartmentRequest) (*dto.DepartmentResponse, error)
	Rename(ctx context.Context, actor token.Identity, id uint, input dto.DepartmentRequest) error
	Delete(ctx context.Context, actor token.Identity, id uint) error
	Users(ctx context.Context, id uint) ([]dto.UserResponse, error)
}

type departmentService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

func NewDepartmentService(departments repository.DepartmentRepository, users repository.UserRepository) DepartmentService {
	return &departmentService{
		departments: departments,
		users:       users,
	}
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	rows, err := s.departments.FindAllWithCount(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.DepartmentResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.DepartmentResponse{
			ID:        row.ID,
			Name:      row.Name,
			UserCount: row.UserCount,
		})
	}
	return out, nil
}

// Create adds a department. Names are matched case-sensitively; an exact
// duplicate is rejected.
func (s *departmentService) Create(ctx context.Context, actor token.Identity, input dto.DepartmentRequest) (*dto.DepartmentResponse, error) {
	if !actor.Supervisor {
		return nil, apperror.Authorization("only supervisors can manage departments")
	}

	name := strings.TrimSpace(input.Name)
	if _, err := s.departments.FindByName(ctx, name); err == nil {
		return nil, apperror.Validation("department name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	department := &model.Department{Name: name}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, err
	}

	return &dto.DepartmentResponse{ID: department.ID, Name: department.Name}, nil
}

func (s *departmentService) Rename(ctx context.Context, actor token.Identity, id uint, input dto.DepartmentRequest) error {
	if !actor.Supervisor {
		return apperror.Authorization("only supervisors can manage departments")
	}

	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("department not found")
		}
		return err
	}

	name := strings.TrimSpace(input.Name)
	if existing, err := s.departments.FindByName(ctx, name); err == nil {
		if existing.ID != id {
			return apperror.Validation("department name already in use")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	department.Name = name
	return s.departments.Update(ctx, department)
}

// Delete removes the department; its members keep existing with a null
// department reference.
func (s *departmentService) Delete(ctx context.Context, actor token.Identity, id uint) error {
	if !actor.Supervisor {
		return apperror.Authorization("only supervisors can manage departments")
	}

	if _, err := s.departments.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("department not found")
		}
		return err
	}

	return s.departments.Delete(ctx, id)
}

func (s *departmentService) Users(ctx context.Context, id uint) ([]dto.UserResponse, error) {
	users, err := s.users.FindByDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		exists, err := s.departments.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperror.NotFound("department not found")
		}
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, *userResponse(user))
	}
	return out, nil
}
