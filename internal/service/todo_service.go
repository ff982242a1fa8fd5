package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/internal/repository"
	"todopro/pkg/apperror"
	"todopro/pkg/token"
)

type TodoService interface {
	Create(ctx context.Context, actor token.Identity, input dto.CreateTodoRequest) (*dto.CreateTodoResponse, error)
	List(ctx context.Context) ([]*model.TodoItem, error)
	Detail(ctx context.Context, id uint) (*model.TodoItem, error)
	SetCompletion(ctx context.Context, actor token.Identity, id uint, completed bool) error
	AddComment(ctx context.Context, actor token.Identity, todoID uint, input dto.CommentRequest) (*model.Comment, error)
	Delete(ctx context.Context, actor token.Identity, id uint) error
}

type todoService struct {
	todos     repository.TodoRepository
	users     repository.UserRepository
	sanitizer *bluemonday.Policy
}

func NewTodoService(todos repository.TodoRepository, users repository.UserRepository) TodoService {
	return &todoService{
		todos:     todos,
		users:     users,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Create provisions a todo together with its discussion group and the
// membership rows for every assignee, as one atomic unit. The acting
// supervisor is always a member, assigned or not.
func (s *todoService) Create(ctx context.Context, actor token.Identity, input dto.CreateTodoRequest) (*dto.CreateTodoResponse, error) {
	if !actor.Supervisor {
		return nil, apperror.Authorization("only supervisors can create todos")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.Validation("title must not be empty")
	}

	memberIDs := dedupeMembers(input.AssignedUserIDs, actor.UserID)

	found, err := s.users.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(memberIDs) {
		return nil, apperror.Validation("assigned user does not exist")
	}

	ownerID := actor.UserID
	todo := &model.TodoItem{
		Title:            title,
		Description:      input.Description,
		UserID:           &ownerID,
		ParticipantCount: len(memberIDs),
	}

	group := &model.Group{
		Name:        deriveGroupName(title),
		Description: stringPtr(fmt.Sprintf("Discussion for %q", title)),
	}

	if err := s.todos.CreateWithGroup(ctx, todo, group, memberIDs); err != nil {
		return nil, err
	}

	return &dto.CreateTodoResponse{
		ID:               todo.ID,
		Title:            todo.Title,
		GroupID:          group.ID,
		ParticipantCount: todo.ParticipantCount,
	}, nil
}

func (s *todoService) List(ctx context.Context) ([]*model.TodoItem, error) {
	return s.todos.FindAll(ctx)
}

// Detail resolves purely by id; any authenticated caller may view any todo,
// including its group roster.
func (s *todoService) Detail(ctx context.Context, id uint) (*model.TodoItem, error) {
	todo, err := s.todos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("todo not found")
		}
		return nil, err
	}
	return todo, nil
}

func (s *todoService) SetCompletion(ctx context.Context, actor token.Identity, id uint, completed bool) error {
	if _, err := s.todos.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("todo not found")
		}
		return err
	}
	return s.todos.SetCompletion(ctx, id, completed)
}

// AddComment appends a comment to a todo. Comments are append-only; there is
// no update or delete operation for them.
func (s *todoService) AddComment(ctx context.Context, actor token.Identity, todoID uint, input dto.CommentRequest) (*model.Comment, error) {
	if _, err := s.todos.FindByID(ctx, todoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("todo not found")
		}
		return nil, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(input.Content))
	if content == "" {
		return nil, apperror.Validation("comment must not be empty")
	}

	authorID := actor.UserID
	comment := &model.Comment{
		TodoID:  todoID,
		UserID:  &authorID,
		Content: content,
	}

	if err := s.todos.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *todoService) Delete(ctx context.Context, actor token.Identity, id uint) error {
	if !actor.Supervisor {
		return apperror.Authorization("only supervisors can delete todos")
	}

	if _, err := s.todos.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("todo not found")
		}
		return err
	}

	return s.todos.Delete(ctx, id)
}

// dedupeMembers returns the distinct assignee set, always including the
// creator, in first-seen order.
func dedupeMembers(assigned []uint, creatorID uint) []uint {
	seen := make(map[uint]struct{}, len(assigned)+1)
	out := make([]uint, 0, len(assigned)+1)

	seen[creatorID] = struct{}{}
	out = append(out, creatorID)

	for _, id := range assigned {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// deriveGroupName appends a short random token so that todos sharing a title
// do not collide on group names.
func deriveGroupName(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	name := fmt.Sprintf("%s-%s", title, suffix)
	if len(name) > 100 {
		name = name[:95] + "-" + suffix
	}
	return name
}

func stringPtr(s string) *string {
	return &s
}
