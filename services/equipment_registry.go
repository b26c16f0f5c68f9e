package services

import (
	"context"
	"errors"
	"strings"

	"gearguard/models"
	"gearguard/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EquipmentInput carries the attributes accepted when registering equipment.
type EquipmentInput struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Category     string  `json:"category" validate:"required,max=120"`
	SerialNumber *string `json:"serial_number" validate:"omitempty,max=120"`
	Location     *string `json:"location" validate:"omitempty,max=150"`
	PurchaseDate *string `json:"purchase_date"`
	WarrantyEnd  *string `json:"warranty_end"`
	TeamID       *uint   `json:"team_id"`
}

// EquipmentListing is an active equipment row annotated with its smart badge count.
type EquipmentListing struct {
	models.Equipment
	OpenRequestsCount int64 `json:"open_requests_count"`
}

// EquipmentRegistry owns equipment records and their scrapped state.
type EquipmentRegistry struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewEquipmentRegistry(db *gorm.DB) *EquipmentRegistry {
	return &EquipmentRegistry{db: db, log: utils.Logger("equipment")}
}

// Create inserts a new, not scrapped equipment record.
func (r *EquipmentRegistry) Create(ctx context.Context, in EquipmentInput) (*models.Equipment, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	purchase, err := parseDate("purchase_date", in.PurchaseDate)
	if err != nil {
		return nil, err
	}
	warranty, err := parseDate("warranty_end", in.WarrantyEnd)
	if err != nil {
		return nil, err
	}

	equipment := models.Equipment{
		Name:         in.Name,
		Category:     in.Category,
		SerialNumber: optionalString(in.SerialNumber),
		Location:     optionalString(in.Location),
		PurchaseDate: purchase,
		WarrantyEnd:  warranty,
		TeamID:       in.TeamID,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.TeamID != nil {
			var team models.Team
			if err := tx.Select("id").First(&team, *in.TeamID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NewNotFoundError("Team not found.")
				}
				return utils.NewInternalError("load team", err)
			}
		}
		if err := tx.Omit("Team").Create(&equipment).Error; err != nil {
			return utils.NewInternalError("create equipment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{"equipment_id": equipment.ID, "category": equipment.Category}).Info("equipment registered")
	return &equipment, nil
}

// ListActive returns non-scrapped equipment ordered by id, each annotated
// with the number of its requests still new or in progress.
func (r *EquipmentRegistry) ListActive(ctx context.Context) ([]EquipmentListing, error) {
	db := r.db.WithContext(ctx)

	var equipment []models.Equipment
	if err := db.Where("is_scrapped = ?", false).Order("id ASC").Find(&equipment).Error; err != nil {
		return nil, utils.NewInternalError("list equipment", err)
	}

	counts, err := openRequestCounts(db, equipmentIDs(equipment))
	if err != nil {
		return nil, err
	}

	listings := make([]EquipmentListing, 0, len(equipment))
	for _, e := range equipment {
		listings = append(listings, EquipmentListing{Equipment: e, OpenRequestsCount: counts[e.ID]})
	}
	return listings, nil
}

// Get returns one equipment record, scrapped or not, with its open request count.
func (r *EquipmentRegistry) Get(ctx context.Context, id uint) (*EquipmentListing, error) {
	db := r.db.WithContext(ctx)

	var equipment models.Equipment
	if err := db.First(&equipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Equipment not found.")
		}
		return nil, utils.NewInternalError("load equipment", err)
	}

	counts, err := openRequestCounts(db, []uint{equipment.ID})
	if err != nil {
		return nil, err
	}
	return &EquipmentListing{Equipment: equipment, OpenRequestsCount: counts[equipment.ID]}, nil
}

// Scrap marks equipment as no longer usable. Scrapping twice is a no-op.
// Open requests against it are left untouched.
func (r *EquipmentRegistry) Scrap(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return scrapEquipment(tx, id)
	})
	if err != nil {
		return err
	}
	r.log.WithField("equipment_id", id).Info("equipment scrapped")
	return nil
}

// scrapEquipment runs inside the caller's transaction so the request
// lifecycle can decommission equipment atomically with a status change.
func scrapEquipment(tx *gorm.DB, id uint) error {
	var equipment models.Equipment
	if err := tx.Select("id", "is_scrapped").First(&equipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Equipment not found.")
		}
		return utils.NewInternalError("load equipment", err)
	}
	if equipment.IsScrapped {
		return nil
	}
	if err := tx.Model(&models.Equipment{}).Where("id = ?", id).Update("is_scrapped", true).Error; err != nil {
		return utils.NewInternalError("scrap equipment", err)
	}
	return nil
}

type openCountRow struct {
	EquipmentID uint
	Total       int64
}

func openRequestCounts(db *gorm.DB, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []openCountRow
	err := db.Model(&models.MaintenanceRequest{}).
		Select("equipment_id, COUNT(*) AS total").
		Where("equipment_id IN ? AND status IN ?", ids, models.OpenStatuses).
		Group("equipment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.NewInternalError("count open requests", err)
	}

	for _, row := range rows {
		counts[row.EquipmentID] = row.Total
	}
	return counts, nil
}

func equipmentIDs(equipment []models.Equipment) []uint {
	ids := make([]uint, len(equipment))
	for i, e := range equipment {
		ids[i] = e.ID
	}
	return ids
}
