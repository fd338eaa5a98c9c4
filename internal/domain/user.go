package domain

import "time"

// RoleAdmin bypasses the per-document permission check. Role is otherwise
// free text (the original schema never made it an enum).
const RoleAdmin = "admin"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" gorm:"uniqueIndex" validate:"required"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name" gorm:"uniqueIndex"`
}
