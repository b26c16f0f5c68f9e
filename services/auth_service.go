package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"gearguard/models"
	"gearguard/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,max=150,mailformat"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,mailformat"`
}

type VerifyOTPInput struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required,len=6"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
	ResetToken  string `json:"resetToken" validate:"required"`
}

// AuthService issues identities: signup, login and the emailed
// password-reset flow.
type AuthService struct {
	db     *gorm.DB
	mailer utils.Mailer
	now    func() time.Time
	log    *logrus.Entry
}

func NewAuthService(db *gorm.DB, mailer utils.Mailer) *AuthService {
	return &AuthService{db: db, mailer: mailer, now: time.Now, log: utils.Logger("auth")}
}

// WithClock replaces the time source used for reset code expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Signup registers a new employee account.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, utils.NewValidationError("All fields are required.")
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, utils.NewInternalError("hash password", err)
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         models.RoleEmployee,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
			return utils.NewInternalError("check email", err)
		}
		if existing > 0 {
			return utils.NewConflictError("Email already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewConflictError("Email already exists")
			}
			return utils.NewInternalError("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return &user, nil
}

// Login verifies credentials and returns the account.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError("Invalid email or password")
		}
		return nil, utils.NewInternalError("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, utils.NewValidationError("Invalid email or password")
	}
	return &user, nil
}

// Authenticate resolves a session's user id to the account.
func (s *AuthService) Authenticate(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, utils.NewInternalError("load user", err)
	}
	return &user, nil
}

// ForgotPassword stores a fresh reset code for the account and emails it.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Email not found.")
		}
		return utils.NewInternalError("load user", err)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return utils.NewInternalError("generate reset code", err)
	}

	row := models.PasswordResetCode{Email: in.Email, Code: code, CreatedAt: s.now()}
	if err := db.Create(&row).Error; err != nil {
		return utils.NewInternalError("store reset code", err)
	}

	if err := s.mailer.SendResetCode(user.Email, user.Name, code); err != nil {
		return utils.NewInternalError("send reset code", err)
	}

	s.log.WithField("user_id", user.ID).Info("password reset code issued")
	return nil
}

// VerifyOTP checks the newest code for the email and exchanges it for a
// single-use reset token.
func (s *AuthService) VerifyOTP(ctx context.Context, in VerifyOTPInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := utils.ValidateStruct(in); err != nil {
		return "", utils.NewValidationError("Invalid OTP")
	}

	db := s.db.WithContext(ctx)
	var row models.PasswordResetCode
	err := db.Where("email = ?", in.Email).Order("created_at DESC, id DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", utils.NewValidationError("Invalid OTP")
		}
		return "", utils.NewInternalError("load reset code", err)
	}
	if row.Expired(s.now()) || subtle.ConstantTimeCompare([]byte(row.Code), []byte(in.Code)) != 1 {
		return "", utils.NewValidationError("Invalid OTP")
	}

	token, err := utils.GenerateSecureToken()
	if err != nil {
		return "", utils.NewInternalError("generate reset token", err)
	}
	if err := db.Model(&models.PasswordResetCode{}).Where("id = ?", row.ID).Update("reset_token", token).Error; err != nil {
		return "", utils.NewInternalError("store reset token", err)
	}
	return token, nil
}

// ResetPassword sets a new password using a verified reset token and
// consumes every reset row for the email.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" || in.NewPassword == "" || in.ResetToken == "" {
		return utils.NewValidationError("Invalid request.")
	}
	if !utils.IsStrongPassword(in.NewPassword) {
		return utils.NewValidationError("Password does not meet security requirements.")
	}

	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return utils.NewInternalError("hash password", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PasswordResetCode
		err := tx.Where("email = ?", in.Email).Order("created_at DESC, id DESC").First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewAuthorizationError("Reset token invalid or expired.")
			}
			return utils.NewInternalError("load reset token", err)
		}
		// Only the newest row for the email can carry a live token.
		if row.ResetToken == nil || row.Expired(s.now()) ||
			subtle.ConstantTimeCompare([]byte(*row.ResetToken), []byte(in.ResetToken)) != 1 {
			return utils.NewAuthorizationError("Reset token invalid or expired.")
		}

		if err := tx.Where("email = ?", in.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Email not found.")
			}
			return utils.NewInternalError("load user", err)
		}
		if err := tx.Model(&user).Update("password_hash", hashed).Error; err != nil {
			return utils.NewInternalError("update password", err)
		}
		if err := tx.Where("email = ?", in.Email).Delete(&models.PasswordResetCode{}).Error; err != nil {
			return utils.NewInternalError("consume reset codes", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID).Info("password reset")
	notifyPasswordChanged(s.mailer, &user)
	return nil
}

// SweepExpiredResetCodes deletes reset rows older than the code TTL.
func (s *AuthService) SweepExpiredResetCodes(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-models.ResetCodeTTL)
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.PasswordResetCode{})
	if res.Error != nil {
		return 0, utils.NewInternalError("sweep reset codes", res.Error)
	}
	return res.RowsAffected, nil
}

func notifyPasswordChanged(mailer utils.Mailer, user *models.User) {
	if err := mailer.SendPasswordChanged(user.Email, user.Name); err != nil {
		utils.LogError("password_notification_failed", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
}
