package models

import (
	"time"

	"gorm.io/datatypes"
)

type RequestType string

const (
	RequestCorrective RequestType = "corrective"
	RequestPreventive RequestType = "preventive"
)

func (t RequestType) Valid() bool {
	return t == RequestCorrective || t == RequestPreventive
}

type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusRepaired   RequestStatus = "repaired"
	StatusScrap      RequestStatus = "scrap"
)

// OpenStatuses are the statuses counted by the equipment smart badge.
var OpenStatuses = []RequestStatus{StatusNew, StatusInProgress}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusRepaired, StatusScrap:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s RequestStatus) Terminal() bool {
	return s == StatusRepaired || s == StatusScrap
}

// CanTransitionTo encodes the workflow new -> in_progress -> repaired,
// with scrap reachable from any non-terminal status.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	switch next {
	case StatusScrap:
		return true
	case StatusInProgress:
		return s == StatusNew || s == StatusInProgress
	case StatusRepaired:
		return s == StatusInProgress
	}
	return false
}

// MaintenanceRequest is a unit of repair work against one piece of equipment.
type MaintenanceRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Subject       string          `gorm:"size:200;not null" json:"subject"`
	Type          RequestType     `gorm:"type:varchar(20);not null;check:chk_requests_type,type IN ('corrective','preventive')" json:"type"`
	EquipmentID   uint            `gorm:"not null;index" json:"equipment_id"`
	RequestedBy   *uint           `gorm:"index" json:"requested_by"`
	AssignedTo    *uint           `gorm:"index" json:"assigned_to"`
	Status        RequestStatus   `gorm:"type:varchar(20);not null;default:'new';check:chk_requests_status,status IN ('new','in_progress','repaired','scrap')" json:"status"`
	ScheduledDate *datatypes.Date `json:"scheduled_date"`
	DurationHours *float64        `json:"duration_hours"`
	CreatedAt     time.Time       `json:"created_at"`

	// Relations
	Equipment  *Equipment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Requester  *User      `gorm:"foreignKey:RequestedBy;constraint:OnDelete:SET NULL" json:"-"`
	Technician *User      `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL" json:"-"`
}
