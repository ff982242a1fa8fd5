package model

import (
	"time"
)

type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description *string   `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Back-reference to the owning todo; at most one group per todo.
	TodoItemID *uint     `gorm:"uniqueIndex" json:"todo_item_id,omitempty"`
	TodoItem   *TodoItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// Denormalized pointer to the most recent message, kept for unread
	// indicators. Plain column: the groups<->messages constraint cycle is
	// broken here and the repositories null it when the referent goes away.
	LatestMessageID *uint    `json:"latest_message_id,omitempty"`
	LatestMessage   *Message `gorm:"-" json:"latest_message,omitempty"`

	Messages   []Message   `gorm:"foreignKey:GroupID" json:"messages,omitempty"`
	UserGroups []UserGroup `gorm:"foreignKey:GroupID" json:"user_groups,omitempty"`
}

type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GroupID uint   `gorm:"not null;index" json:"group_id"`
	Group   *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	UserID uint  `gorm:"not null" json:"user_id"`
	User   *User `json:"user,omitempty"`

	Content     string    `gorm:"type:text;not null" json:"content"`
	MessageType string    `gorm:"size:50;not null;default:text" json:"message_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserGroup links a user to a discussion group. The composite primary key
// guarantees at most one membership row per (user, group) pair.
type UserGroup struct {
	UserID uint  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`

	GroupID uint   `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	Group   *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"group,omitempty"`

	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Read-tracking pointer, same plain-column treatment as
	// Group.LatestMessageID.
	LastReadMessageID *uint `json:"last_read_message_id,omitempty"`
}

// AllModels lists every entity in dependency order for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Department{},
		&User{},
		&TodoItem{},
		&Group{},
		&Message{},
		&Comment{},
		&UserGroup{},
	}
}
