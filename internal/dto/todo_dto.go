package dto

type CreateTodoRequest struct {
	Title           string  `json:"title" binding:"required,max=200"`
	Description     *string `json:"description"`
	AssignedUserIDs []uint  `json:"assigned_user_ids"`
}

type CreateTodoResponse struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	GroupID          uint   `json:"group_id"`
	ParticipantCount int    `json:"participant_count"`
}

type SetCompletionRequest struct {
	IsCompleted *bool `json:"is_completed" binding:"required"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}
