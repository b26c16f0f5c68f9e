package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gearguard/models"
	"gearguard/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoardPublisher receives committed lifecycle changes for the Kanban board.
type BoardPublisher interface {
	Publish(event models.BoardEvent)
}

// RequestInput is the payload for opening a maintenance request.
type RequestInput struct {
	Subject       string             `json:"subject" validate:"required,max=200"`
	Type          models.RequestType `json:"type" validate:"required,oneof=corrective preventive"`
	EquipmentID   uint               `json:"equipment_id" validate:"required"`
	ScheduledDate *string            `json:"scheduled_date"`
}

// AutoFilledInfo is derived from the equipment at creation time and is not
// stored on the request.
type AutoFilledInfo struct {
	Category string `json:"category"`
	TeamID   *uint  `json:"team_id"`
}

type CreateResult struct {
	Request        *models.MaintenanceRequest `json:"request"`
	AutoFilledInfo AutoFilledInfo             `json:"autoFilledInfo"`
}

// RequestListing is the joined view used by the Kanban board and reports.
type RequestListing struct {
	ID                uint                 `json:"id"`
	Subject           string               `json:"subject"`
	Type              models.RequestType   `json:"type"`
	EquipmentID       uint                 `json:"equipment_id"`
	RequestedBy       *uint                `json:"requested_by"`
	AssignedTo        *uint                `json:"assigned_to"`
	Status            models.RequestStatus `json:"status"`
	ScheduledDate     *datatypes.Date      `json:"scheduled_date"`
	DurationHours     *float64             `json:"duration_hours"`
	CreatedAt         time.Time            `json:"created_at"`
	EquipmentName     *string              `json:"equipment_name"`
	Category          *string              `json:"category"`
	TeamID            *uint                `json:"team_id"`
	EquipmentScrapped *bool                `json:"equipment_scrapped"`
	Requester         *string              `json:"requester"`
	Technician        *string              `json:"technician"`
}

// RequestLifecycle owns the maintenance request state machine and its
// coupling to equipment state.
type RequestLifecycle struct {
	db        *gorm.DB
	strict    bool
	publisher BoardPublisher
	log       *logrus.Entry
}

type LifecycleOption func(*RequestLifecycle)

// WithStrictWorkflow rejects transitions the workflow does not allow.
func WithStrictWorkflow(strict bool) LifecycleOption {
	return func(rl *RequestLifecycle) { rl.strict = strict }
}

// WithBoardPublisher streams committed changes to p.
func WithBoardPublisher(p BoardPublisher) LifecycleOption {
	return func(rl *RequestLifecycle) { rl.publisher = p }
}

func NewRequestLifecycle(db *gorm.DB, opts ...LifecycleOption) *RequestLifecycle {
	rl := &RequestLifecycle{db: db, log: utils.Logger("requests")}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Create opens a request against active equipment on behalf of requesterID.
func (rl *RequestLifecycle) Create(ctx context.Context, requesterID uint, in RequestInput) (*CreateResult, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	scheduled, err := parseDate("scheduled_date", in.ScheduledDate)
	if err != nil {
		return nil, err
	}

	var result CreateResult
	err = rl.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var equipment models.Equipment
		err := tx.Select("id", "category", "team_id").
			Where("id = ? AND is_scrapped = ?", in.EquipmentID, false).
			First(&equipment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Equipment not found or is already scrapped.")
			}
			return utils.NewInternalError("load equipment", err)
		}

		request := models.MaintenanceRequest{
			Subject:       in.Subject,
			Type:          in.Type,
			EquipmentID:   equipment.ID,
			RequestedBy:   &requesterID,
			Status:        models.StatusNew,
			ScheduledDate: scheduled,
		}
		if err := tx.Omit(clause.Associations).Create(&request).Error; err != nil {
			return utils.NewInternalError("create request", err)
		}
		if err := recordEvent(tx, request.ID, requesterID, models.ActionCreate, "", models.StatusNew, ""); err != nil {
			return err
		}

		result = CreateResult{
			Request:        &request,
			AutoFilledInfo: AutoFilledInfo{Category: equipment.Category, TeamID: equipment.TeamID},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rl.log.WithFields(logrus.Fields{
		"request_id":   result.Request.ID,
		"equipment_id": result.Request.EquipmentID,
		"type":         result.Request.Type,
	}).Info("maintenance request created")
	rl.publish(models.BoardEvent{
		Action:      models.ActionCreate,
		RequestID:   result.Request.ID,
		EquipmentID: result.Request.EquipmentID,
		Status:      result.Request.Status,
	})
	return &result, nil
}

// AssignTechnician sets the assignee and moves the request to in_progress,
// whatever its prior status, unless the workflow is strict.
func (rl *RequestLifecycle) AssignTechnician(ctx context.Context, actorID, requestID, userID uint) (*models.MaintenanceRequest, error) {
	if requestID == 0 || userID == 0 {
		return nil, utils.NewValidationError("request_id and user_id are required")
	}

	var request models.MaintenanceRequest
	err := rl.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadRequest(tx, requestID, &request); err != nil {
			return err
		}

		var technician models.User
		if err := tx.Select("id").First(&technician, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("User not found.")
			}
			return utils.NewInternalError("load user", err)
		}

		from := request.Status
		if rl.strict && !from.CanTransitionTo(models.StatusInProgress) {
			return utils.NewValidationError("Cannot assign a technician to a " + string(from) + " request.")
		}

		err := tx.Model(&models.MaintenanceRequest{}).Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"assigned_to": userID,
				"status":      models.StatusInProgress,
			}).Error
		if err != nil {
			return utils.NewInternalError("assign technician", err)
		}
		request.AssignedTo = &userID
		request.Status = models.StatusInProgress

		return recordEvent(tx, requestID, actorID, models.ActionAssign, from, models.StatusInProgress, "")
	})
	if err != nil {
		return nil, err
	}

	rl.log.WithFields(logrus.Fields{"request_id": requestID, "technician_id": userID}).Info("technician assigned")
	rl.publish(models.BoardEvent{
		Action:      models.ActionAssign,
		RequestID:   request.ID,
		EquipmentID: request.EquipmentID,
		Status:      request.Status,
		AssignedTo:  request.AssignedTo,
	})
	return &request, nil
}

// UpdateStatus moves a request to status and records durationHours (or
// clears it when omitted or zero). Reaching scrap decommissions the request's equipment in the
// same transaction.
func (rl *RequestLifecycle) UpdateStatus(ctx context.Context, actorID, requestID uint, status models.RequestStatus, durationHours *float64) (*models.MaintenanceRequest, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError("status must be one of: new, in_progress, repaired, scrap")
	}
	if durationHours != nil && *durationHours < 0 {
		return nil, utils.NewValidationError("duration_hours must not be negative")
	}
	if durationHours != nil && *durationHours == 0 {
		durationHours = nil
	}

	var request models.MaintenanceRequest
	err := rl.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadRequest(tx, requestID, &request); err != nil {
			return err
		}

		from := request.Status
		if rl.strict && !from.CanTransitionTo(status) {
			return utils.NewValidationError("Cannot move a request from " + string(from) + " to " + string(status) + ".")
		}

		if status == models.StatusScrap {
			if err := scrapEquipment(tx, request.EquipmentID); err != nil {
				return err
			}
		}

		var duration interface{}
		if durationHours != nil {
			duration = *durationHours
		}
		err := tx.Model(&models.MaintenanceRequest{}).Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"status":         status,
				"duration_hours": duration,
			}).Error
		if err != nil {
			return utils.NewInternalError("update request status", err)
		}
		request.Status = status
		request.DurationHours = durationHours

		return recordEvent(tx, requestID, actorID, models.ActionStatus, from, status, durationNote(durationHours))
	})
	if err != nil {
		return nil, err
	}

	rl.log.WithFields(logrus.Fields{"request_id": requestID, "status": status}).Info("request status updated")
	rl.publish(models.BoardEvent{
		Action:            models.ActionStatus,
		RequestID:         request.ID,
		EquipmentID:       request.EquipmentID,
		Status:            request.Status,
		AssignedTo:        request.AssignedTo,
		EquipmentScrapped: status == models.StatusScrap,
	})
	return &request, nil
}

// List returns every request joined with equipment and user names, ordered by id.
func (rl *RequestLifecycle) List(ctx context.Context) ([]RequestListing, error) {
	listings := make([]RequestListing, 0)
	err := rl.db.WithContext(ctx).
		Table("maintenance_requests AS mr").
		Select(`mr.id, mr.subject, mr.type, mr.equipment_id, mr.requested_by, mr.assigned_to, mr.status,
			mr.scheduled_date, mr.duration_hours, mr.created_at,
			eq.name AS equipment_name, eq.category AS category, eq.team_id AS team_id, eq.is_scrapped AS equipment_scrapped,
			u.name AS requester, tech.name AS technician`).
		Joins("LEFT JOIN equipment eq ON mr.equipment_id = eq.id").
		Joins("LEFT JOIN users u ON mr.requested_by = u.id").
		Joins("LEFT JOIN users tech ON mr.assigned_to = tech.id").
		Order("mr.id ASC").
		Scan(&listings).Error
	if err != nil {
		return nil, utils.NewInternalError("list requests", err)
	}
	return listings, nil
}

// History returns the lifecycle events of one request, oldest first.
func (rl *RequestLifecycle) History(ctx context.Context, requestID uint) ([]models.RequestEvent, error) {
	db := rl.db.WithContext(ctx)

	var request models.MaintenanceRequest
	if err := loadRequest(db, requestID, &request); err != nil {
		return nil, err
	}

	events := make([]models.RequestEvent, 0)
	if err := db.Where("request_id = ?", requestID).Order("id ASC").Find(&events).Error; err != nil {
		return nil, utils.NewInternalError("list request events", err)
	}
	return events, nil
}

func (rl *RequestLifecycle) publish(event models.BoardEvent) {
	if rl.publisher == nil {
		return
	}
	event.At = time.Now().UTC()
	rl.publisher.Publish(event)
}

func loadRequest(db *gorm.DB, id uint, dest *models.MaintenanceRequest) error {
	if err := db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Request not found.")
		}
		return utils.NewInternalError("load request", err)
	}
	return nil
}

func recordEvent(tx *gorm.DB, requestID, actorID uint, action models.RequestAction, from, to models.RequestStatus, note string) error {
	event := models.RequestEvent{
		RequestID:  requestID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
	}
	if actorID != 0 {
		event.ActorID = &actorID
	}
	if err := tx.Omit(clause.Associations).Create(&event).Error; err != nil {
		return utils.NewInternalError("record request event", err)
	}
	return nil
}

func durationNote(hours *float64) string {
	if hours == nil {
		return ""
	}
	return strconv.FormatFloat(*hours, 'f', -1, 64) + "h spent"
}
