package dto

import "time"

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      uint      `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	UserAccount string    `json:"user_account,omitempty"`
}

type MarkReadRequest struct {
	MessageID uint `json:"message_id" binding:"required"`
}

// GroupSummary lists one of the caller's discussion groups with its unread
// indicator.
type GroupSummary struct {
	ID            uint             `json:"id"`
	Name          string           `json:"name"`
	TodoItemID    *uint            `json:"todo_item_id,omitempty"`
	JoinedAt      time.Time        `json:"joined_at"`
	LatestMessage *MessageResponse `json:"latest_message,omitempty"`
	Unread        bool             `json:"unread"`
}
