package models

import (
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleEmployee   Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleTechnician, RoleEmployee:
		return true
	}
	return false
}

// User represents a user account in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'employee';check:chk_users_role,role IN ('manager','technician','employee')" json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Memberships []TeamMember `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// Profile is the identity resolved from a session token.
type Profile struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
