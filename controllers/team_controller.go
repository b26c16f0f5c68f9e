package controller

import (
	"gearguard/services"

	"github.com/gofiber/fiber/v2"
)

type TeamController struct {
	teams *services.TeamDirectory
}

func NewTeamController(teams *services.TeamDirectory) *TeamController {
	return &TeamController{teams: teams}
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := tc.teams.CreateTeam(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Maintenance team created successfully",
		"team":    team,
	})
}

func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
		TeamID uint `json:"team_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := tc.teams.AddMember(c.UserContext(), req.UserID, req.TeamID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Technician successfully added to the team"})
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	teams, err := tc.teams.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(teams)
}
