package models

import (
	"time"

	"gorm.io/datatypes"
)

// Equipment is a trackable asset serviced by an optional team.
// Scrapped equipment is kept for history but never receives new requests.
type Equipment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:120;not null" json:"name"`
	Category     string          `gorm:"size:120;not null" json:"category"`
	SerialNumber *string         `gorm:"size:120" json:"serial_number"`
	Location     *string         `gorm:"size:150" json:"location"`
	PurchaseDate *datatypes.Date `json:"purchase_date"`
	WarrantyEnd  *datatypes.Date `json:"warranty_end"`
	TeamID       *uint           `gorm:"index" json:"team_id"`
	IsScrapped   bool            `gorm:"not null;default:false" json:"is_scrapped"`
	CreatedAt    time.Time       `json:"created_at"`

	// Relations
	Team *Team `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (Equipment) TableName() string {
	return "equipment"
}
