package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todopro/internal/model"
)

type TodoRepository interface {
	// CreateWithGroup persists the todo, its discussion group and one
	// membership row per member as a single atomic unit.
	CreateWithGroup(ctx context.Context, todo *model.TodoItem, group *model.Group, memberIDs []uint) error
	FindAll(ctx context.Context) ([]*model.TodoItem, error)
	FindByID(ctx context.Context, id uint) (*model.TodoItem, error)
	SetCompletion(ctx context.Context, id uint, completed bool) error
	AddComment(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id uint) error
}

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) CreateWithGroup(ctx context.Context, todo *model.TodoItem, group *model.Group, memberIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(todo).Error; err != nil {
			return err
		}

		group.TodoItemID = &todo.ID
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		memberships := make([]model.UserGroup, 0, len(memberIDs))
		for _, userID := range memberIDs {
			memberships = append(memberships, model.UserGroup{
				UserID:  userID,
				GroupID: group.ID,
			})
		}
		if len(memberships) > 0 {
			if err := tx.Create(&memberships).Error; err != nil {
				return err
			}
		}

		todo.Group = group
		return nil
	})
}

func (r *todoRepository) FindAll(ctx context.Context) ([]*model.TodoItem, error) {
	var todos []*model.TodoItem
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Department").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at")
		}).
		Preload("Comments.User").
		Preload("Group").
		Order("todos.created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepository) FindByID(ctx context.Context, id uint) (*model.TodoItem, error) {
	var todo model.TodoItem
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Department").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at")
		}).
		Preload("Comments.User").
		Preload("Group").
		Preload("Group.UserGroups").
		Preload("Group.UserGroups.User").
		First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) SetCompletion(ctx context.Context, id uint, completed bool) error {
	return r.db.WithContext(ctx).Model(&model.TodoItem{}).
		Where("id = ?", id).
		Update("is_completed", completed).Error
}

func (r *todoRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Delete removes a todo and cascades through its discussion group: messages,
// memberships and the group itself go first, then the todo's comments, then
// the todo. One transaction, no partial state.
func (r *todoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.Group
		err := tx.Where("todo_item_id = ?", id).First(&group).Error
		switch {
		case err == nil:
			if err := deleteGroupCascade(tx, group.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Where("todo_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TodoItem{}, id).Error
	})
}

// deleteGroupCascade removes a group with all of its messages and membership
// rows, nulling any pointers at those messages first.
func deleteGroupCascade(tx *gorm.DB, groupID uint) error {
	messageIDs := tx.Model(&model.Message{}).Select("id").Where("group_id = ?", groupID)
	if err := clearMessagePointers(tx, messageIDs); err != nil {
		return err
	}
	if err := tx.Where("group_id = ?", groupID).Delete(&model.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("group_id = ?", groupID).Delete(&model.UserGroup{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Group{}, groupID).Error
}
