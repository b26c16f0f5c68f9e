package controller

import (
	"fmt"
	"time"

	"gearguard/middleware"
	"gearguard/models"
	"gearguard/services"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RequestController struct {
	lifecycle *services.RequestLifecycle
	log       *logrus.Entry
}

func NewRequestController(lifecycle *services.RequestLifecycle) *RequestController {
	return &RequestController{lifecycle: lifecycle, log: utils.Logger("requests")}
}

func (rc *RequestController) CreateRequest(c *fiber.Ctx) error {
	var req services.RequestInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rc.lifecycle.Create(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Request created",
		"request":        result.Request,
		"autoFilledInfo": result.AutoFilledInfo,
	})
}

func (rc *RequestController) AssignTechnician(c *fiber.Ctx) error {
	var req struct {
		RequestID uint `json:"request_id"`
		UserID    uint `json:"user_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	_, err := rc.lifecycle.AssignTechnician(c.UserContext(), middleware.CurrentUser(c).ID, req.RequestID, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Technician assigned and stage moved to In Progress"})
}

func (rc *RequestController) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Status        models.RequestStatus `json:"status"`
		DurationHours *float64             `json:"duration_hours"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	request, err := rc.lifecycle.UpdateStatus(c.UserContext(), middleware.CurrentUser(c).ID, id, req.Status, req.DurationHours)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Request updated to %s", request.Status),
		"request": request,
	})
}

func (rc *RequestController) GetRequests(c *fiber.Ctx) error {
	list, err := rc.lifecycle.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (rc *RequestController) GetHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	events, err := rc.lifecycle.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(events)
}

// ExportRequests downloads the request listing as a spreadsheet.
func (rc *RequestController) ExportRequests(c *fiber.Ctx) error {
	buf, err := rc.lifecycle.ExportWorkbook(c.UserContext())
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("maintenance-requests-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
