package model

import (
	"time"
)

type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Users []User `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Account      string `gorm:"size:100;uniqueIndex;not null" json:"account"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Supervisor   bool   `gorm:"not null;default:false" json:"supervisor"`

	// Deleting a department never deletes its members.
	DepartmentID *uint       `json:"department_id,omitempty"`
	Department   *Department `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"department,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Todos    []TodoItem `gorm:"foreignKey:UserID" json:"todos,omitempty"`
	Comments []Comment  `gorm:"foreignKey:UserID" json:"comments,omitempty"`
}
