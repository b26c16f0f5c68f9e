package models

import "time"

type RequestAction string

const (
	ActionCreate RequestAction = "create"
	ActionAssign RequestAction = "assign"
	ActionStatus RequestAction = "status"
)

// RequestEvent is an append-only history row for a maintenance request.
type RequestEvent struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	RequestID  uint          `gorm:"not null;index" json:"request_id"`
	ActorID    *uint         `json:"actor_id"`
	Action     RequestAction `gorm:"type:varchar(20);not null" json:"action"`
	FromStatus RequestStatus `gorm:"type:varchar(20)" json:"from_status,omitempty"`
	ToStatus   RequestStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	Note       string        `gorm:"size:255" json:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`

	Request *MaintenanceRequest `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BoardEvent is pushed to Kanban board subscribers after a committed lifecycle change.
type BoardEvent struct {
	Action      RequestAction `json:"action"`
	RequestID   uint          `json:"request_id"`
	EquipmentID uint          `json:"equipment_id"`
	Status      RequestStatus `json:"status"`
	AssignedTo  *uint         `json:"assigned_to,omitempty"`
	// EquipmentScrapped is set when the change decommissioned the equipment.
	EquipmentScrapped bool      `json:"equipment_scrapped,omitempty"`
	At                time.Time `json:"at"`
}
