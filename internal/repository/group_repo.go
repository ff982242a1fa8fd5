package repository

import (
	"context"

	"gorm.io/gorm"

	"todopro/internal/model"
)

type GroupRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Group, error)
	// CreateMessage inserts the message and moves the group's latest-message
	// pointer to it inside one transaction.
	CreateMessage(ctx context.Context, message *model.Message) error
	ListMessages(ctx context.Context, groupID uint) ([]*model.Message, error)
	FindMembership(ctx context.Context, userID, groupID uint) (*model.UserGroup, error)
	UpdateLastRead(ctx context.Context, userID, groupID, messageID uint) error
	FindMessageInGroup(ctx context.Context, messageID, groupID uint) (*model.Message, error)
	MembershipsForUser(ctx context.Context, userID uint) ([]*model.UserGroup, error)
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}

	if group.LatestMessageID != nil {
		var latest model.Message
		if err := r.db.WithContext(ctx).
			Preload("User").
			First(&latest, *group.LatestMessageID).Error; err == nil {
			group.LatestMessage = &latest
		}
	}

	return &group, nil
}

func (r *groupRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	// The message id does not exist before the insert, so the pointer update
	// has to follow it; both writes commit or roll back together.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&model.Group{}).
			Where("id = ?", message.GroupID).
			Update("latest_message_id", message.ID).Error
	})
}

func (r *groupRepository) ListMessages(ctx context.Context, groupID uint) ([]*model.Message, error) {
	var messages []*model.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at, id").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *groupRepository) FindMembership(ctx context.Context, userID, groupID uint) (*model.UserGroup, error) {
	var membership model.UserGroup
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *groupRepository) UpdateLastRead(ctx context.Context, userID, groupID, messageID uint) error {
	return r.db.WithContext(ctx).Model(&model.UserGroup{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Update("last_read_message_id", messageID).Error
}

func (r *groupRepository) FindMessageInGroup(ctx context.Context, messageID, groupID uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND group_id = ?", messageID, groupID).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *groupRepository) MembershipsForUser(ctx context.Context, userID uint) ([]*model.UserGroup, error) {
	var memberships []*model.UserGroup
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// Delete removes a group with its messages and memberships. The group holds
// the foreign key in the todo relation, so the owning todo survives; the
// reverse direction (todo delete) is what takes the group along.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.Group
		if err := tx.First(&group, id).Error; err != nil {
			return err
		}
		return deleteGroupCascade(tx, id)
	})
}
