package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gearguard/models"
	"gearguard/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService covers the signed-in user's own account.
type UserService struct {
	db     *gorm.DB
	mailer utils.Mailer
	log    *logrus.Entry
}

func NewUserService(db *gorm.DB, mailer utils.Mailer) *UserService {
	return &UserService{db: db, mailer: mailer, log: utils.Logger("users")}
}

func (s *UserService) UpdateName(ctx context.Context, user *models.User, name string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 2 {
		return utils.NewValidationError("Name must be at least 2 characters.")
	}
	if utf8.RuneCountInString(name) > 120 {
		return utils.NewValidationError("Name must be at most 120 characters.")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("name", name).Error; err != nil {
		return utils.NewInternalError("update name", err)
	}
	user.Name = name
	return nil
}

// SetPassword replaces the password of an already authenticated user.
func (s *UserService) SetPassword(ctx context.Context, user *models.User, newPassword string) error {
	if newPassword == "" {
		return utils.NewValidationError("New password is required.")
	}
	if !utils.IsStrongPassword(newPassword) {
		return utils.NewValidationError("Password does not meet security requirements.")
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return utils.NewInternalError("hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("password_hash", hashed).Error; err != nil {
		return utils.NewInternalError("update password", err)
	}
	user.PasswordHash = hashed

	s.log.WithField("user_id", user.ID).Info("password changed")
	notifyPasswordChanged(s.mailer, user)
	return nil
}

// ChangePassword is SetPassword guarded by the current password.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return utils.NewValidationError("Current password is required.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return utils.NewAuthorizationError("Current password is incorrect.")
	}
	return s.SetPassword(ctx, user, newPassword)
}

// DeleteAccount removes the user. Team memberships go with it; requests
// they opened or were assigned keep their history with a null reference.
func (s *UserService) DeleteAccount(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return utils.NewInternalError("delete memberships", err)
		}
		if err := tx.Model(&models.MaintenanceRequest{}).Where("requested_by = ?", user.ID).Update("requested_by", nil).Error; err != nil {
			return utils.NewInternalError("detach requester", err)
		}
		if err := tx.Model(&models.MaintenanceRequest{}).Where("assigned_to = ?", user.ID).Update("assigned_to", nil).Error; err != nil {
			return utils.NewInternalError("detach technician", err)
		}
		if err := tx.Delete(&models.User{}, user.ID).Error; err != nil {
			return utils.NewInternalError("delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("user_id", user.ID).Info("account deleted")
	return nil
}
