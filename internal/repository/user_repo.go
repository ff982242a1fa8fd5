package repository

import (
	"context"

	"gorm.io/gorm"

	"todopro/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByAccount(ctx context.Context, account string) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	FindByDepartment(ctx context.Context, departmentID uint) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Department").
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Department").
		Where("account = ?", account).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]*model.User, error) {
	var users []*model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Preload("Department").
		Order("id").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindByDepartment(ctx context.Context, departmentID uint) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("id").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes a user inside one transaction. Owned todos and authored
// comments survive with a null author; memberships and authored messages go
// with the user, and any denormalized pointers at those messages are nulled
// first.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TodoItem{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Comment{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := clearMessagePointers(tx, tx.Model(&model.Message{}).
			Select("id").Where("user_id = ?", id)); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
}

// clearMessagePointers nulls every latest-message and last-read pointer that
// references one of the messages selected by messageIDs. Must run before
// those messages are deleted.
func clearMessagePointers(tx *gorm.DB, messageIDs *gorm.DB) error {
	if err := tx.Model(&model.Group{}).
		Where("latest_message_id IN (?)", messageIDs).
		Update("latest_message_id", nil).Error; err != nil {
		return err
	}
	return tx.Model(&model.UserGroup{}).
		Where("last_read_message_id IN (?)", messageIDs).
		Update("last_read_message_id", nil).Error
}
