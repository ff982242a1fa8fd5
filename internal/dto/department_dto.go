package dto

type DepartmentRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type DepartmentResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	UserCount int64  `json:"user_count"`
}
