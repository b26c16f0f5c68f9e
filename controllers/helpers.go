package controller

import (
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
)

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.NewValidationError("Invalid request body")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}
