package controller

import (
	"gearguard/middleware"
	"gearguard/services"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	auth   *services.AuthService
	users  *services.UserService
	issuer *utils.TokenIssuer
	log    *logrus.Entry
}

func NewAuthController(auth *services.AuthService, users *services.UserService, issuer *utils.TokenIssuer) *AuthController {
	return &AuthController{auth: auth, users: users, issuer: issuer, log: utils.Logger("auth")}
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if _, err := ac.auth.Signup(c.UserContext(), req); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered",
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := ac.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	if err := ac.issuer.SetSessionCookie(c, user.ID); err != nil {
		return utils.NewInternalError("issue session", err)
	}
	return c.JSON(fiber.Map{"user": user.Profile()})
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ac.issuer.ClearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req services.ForgotPasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := ac.auth.ForgotPassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "OTP sent successfully."})
}

func (ac *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var req services.VerifyOTPInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := ac.auth.VerifyOTP(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"resetToken": token,
		"message":    "OTP verified",
	})
}

func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetPasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := ac.auth.ResetPassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password reset successfully."})
}

// ResetPasswordWithLogin sets a new password for the signed-in user
// without asking for the current one.
func (ac *AuthController) ResetPasswordWithLogin(c *fiber.Ctx) error {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := ac.users.SetPassword(c.UserContext(), middleware.CurrentUser(c), req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password updated successfully."})
}
