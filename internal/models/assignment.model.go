package models

import "time"

type ReviewerRole string

const (
	RoleFidu      ReviewerRole = "fidu"
	RoleAgent     ReviewerRole = "agent"
	RoleValidator ReviewerRole = "validator"
)

func (r ReviewerRole) Valid() bool {
	switch r {
	case RoleFidu, RoleAgent, RoleValidator:
		return true
	}
	return false
}

// RequiredRoles lists the reviewer roles every new request must be assigned to.
func RequiredRoles() []ReviewerRole {
	return []ReviewerRole{RoleFidu, RoleAgent, RoleValidator}
}

// Assignment pairs a reviewer with a request. Rows are written once per
// (request, role) and never mutated; reassignment does not exist.
type Assignment struct {
	UserID    string       `gorm:"type:varchar(64);primaryKey"     json:"userId"`
	RequestID string       `gorm:"type:varchar(64);primaryKey"     json:"requestId"`
	Role      ReviewerRole `gorm:"type:varchar(32);not null;index" json:"role"`
	CreatedAt time.Time    `gorm:"autoCreateTime"                  json:"createdAt"`
}
