package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gearguard/models"
	"gearguard/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamListing is a team with its member count and suggested technician.
type TeamListing struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	TechnicianCount     int64  `json:"technician_count"`
	DefaultTechnicianID *uint  `json:"default_technician_id"`
}

// TeamDirectory owns teams and technician membership.
type TeamDirectory struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewTeamDirectory(db *gorm.DB) *TeamDirectory {
	return &TeamDirectory{db: db, log: utils.Logger("teams")}
}

// CreateTeam inserts a team; names are unique.
func (d *TeamDirectory) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.NewValidationError("name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, utils.NewValidationError("name must be at most 100 characters")
	}

	team := models.Team{Name: name}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Team{}).Where("name = ?", name).Count(&existing).Error; err != nil {
			return utils.NewInternalError("check team name", err)
		}
		if existing > 0 {
			return utils.NewConflictError("A team with this name already exists.")
		}
		if err := tx.Omit(clause.Associations).Create(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewConflictError("A team with this name already exists.")
			}
			return utils.NewInternalError("create team", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.WithFields(logrus.Fields{"team_id": team.ID, "name": team.Name}).Info("team created")
	return &team, nil
}

// AddMember links a user to a team. Repeating the call is a silent no-op.
func (d *TeamDirectory) AddMember(ctx context.Context, userID, teamID uint) error {
	if userID == 0 || teamID == 0 {
		return utils.NewValidationError("user_id and team_id are required")
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.Select("id").First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Team not found.")
			}
			return utils.NewInternalError("load team", err)
		}
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("User not found.")
			}
			return utils.NewInternalError("load user", err)
		}

		member := models.TeamMember{UserID: userID, TeamID: teamID}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
		if err != nil {
			return utils.NewInternalError("add team member", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.log.WithFields(logrus.Fields{"team_id": teamID, "user_id": userID}).Info("technician linked to team")
	return nil
}

// ListTeams returns teams ordered by id with member counts. The default
// technician is the member with the oldest membership row.
func (d *TeamDirectory) ListTeams(ctx context.Context) ([]TeamListing, error) {
	db := d.db.WithContext(ctx)

	var teams []models.Team
	if err := db.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, utils.NewInternalError("list teams", err)
	}

	var members []models.TeamMember
	if err := db.Order("id ASC").Find(&members).Error; err != nil {
		return nil, utils.NewInternalError("list team members", err)
	}

	counts := make(map[uint]int64, len(teams))
	defaults := make(map[uint]uint, len(teams))
	for _, m := range members {
		if _, ok := defaults[m.TeamID]; !ok {
			defaults[m.TeamID] = m.UserID
		}
		counts[m.TeamID]++
	}

	listings := make([]TeamListing, 0, len(teams))
	for _, t := range teams {
		listing := TeamListing{ID: t.ID, Name: t.Name, TechnicianCount: counts[t.ID]}
		if userID, ok := defaults[t.ID]; ok {
			listing.DefaultTechnicianID = &userID
		}
		listings = append(listings, listing)
	}
	return listings, nil
}
