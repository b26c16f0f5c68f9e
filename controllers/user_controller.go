package controller

import (
	"gearguard/middleware"
	"gearguard/services"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	users  *services.UserService
	issuer *utils.TokenIssuer
}

func NewUserController(users *services.UserService, issuer *utils.TokenIssuer) *UserController {
	return &UserController{users: users, issuer: issuer}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c).Profile())
}

func (uc *UserController) UpdateName(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := uc.users.UpdateName(c.UserContext(), middleware.CurrentUser(c), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Name updated successfully."})
}

func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	err := uc.users.ChangePassword(c.UserContext(), middleware.CurrentUser(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password updated successfully."})
}

func (uc *UserController) DeleteAccount(c *fiber.Ctx) error {
	if err := uc.users.DeleteAccount(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return err
	}
	uc.issuer.ClearSessionCookie(c)
	return c.JSON(fiber.Map{"success": true, "message": "Account deleted successfully."})
}
