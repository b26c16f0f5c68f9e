package models

import "time"

// Team groups technicians by specialty (e.g. "Mechanical", "IT Support").
type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TeamMember links a user to a team. A user belongs to a team at most once.
type TeamMember struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_team_members_user_team" json:"user_id"`
	TeamID uint `gorm:"not null;uniqueIndex:idx_team_members_user_team" json:"team_id"`
}
