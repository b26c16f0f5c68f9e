package models

import "time"

// ResetCodeTTL bounds how long a reset code or its exchanged token stays valid.
const ResetCodeTTL = 15 * time.Minute

// PasswordResetCode stores a one-time code sent by email and, once verified,
// the single-use reset token it was exchanged for. Only the newest row per
// email is considered.
type PasswordResetCode struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"size:150;not null;index" json:"email"`
	Code       string    `gorm:"size:6;not null" json:"-"`
	ResetToken *string   `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// Expired reports whether the row is older than ResetCodeTTL at now.
func (p *PasswordResetCode) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > ResetCodeTTL
}
