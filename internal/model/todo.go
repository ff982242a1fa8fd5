package model

import (
	"time"
)

type TodoItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	IsCompleted bool    `gorm:"not null;default:false" json:"is_completed"`

	// Snapshot of the distinct group membership at creation time. Recomputed
	// on membership mutation, never read back as the source of truth.
	ParticipantCount int `gorm:"not null;default:0" json:"participant_count"`

	// Deleting the owner orphans the todo, it does not delete it.
	UserID *uint `json:"user_id,omitempty"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// The discussion group holds the foreign key; deleting the todo cascades
	// to the group and everything under it.
	Group    *Group    `gorm:"foreignKey:TodoItemID" json:"group,omitempty"`
	Comments []Comment `gorm:"foreignKey:TodoID" json:"comments,omitempty"`
}

type Comment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TodoID uint      `gorm:"not null;index" json:"todo_id"`
	Todo   *TodoItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// Comments survive the deletion of their author.
	UserID *uint `json:"user_id,omitempty"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`

	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
