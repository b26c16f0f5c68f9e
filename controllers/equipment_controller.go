package controller

import (
	"gearguard/services"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type EquipmentController struct {
	registry *services.EquipmentRegistry
	log      *logrus.Entry
}

func NewEquipmentController(registry *services.EquipmentRegistry) *EquipmentController {
	return &EquipmentController{registry: registry, log: utils.Logger("equipment")}
}

func (ec *EquipmentController) CreateEquipment(c *fiber.Ctx) error {
	var req services.EquipmentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	equipment, err := ec.registry.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Equipment added",
		"equipment": equipment,
	})
}

// GetEquipment lists active equipment with open request counts.
func (ec *EquipmentController) GetEquipment(c *fiber.Ctx) error {
	list, err := ec.registry.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (ec *EquipmentController) GetEquipmentByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	equipment, err := ec.registry.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(equipment)
}

func (ec *EquipmentController) ScrapEquipment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := ec.registry.Scrap(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Equipment marked as scrapped and unavailable for further requests",
	})
}
