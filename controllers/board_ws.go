package controller

import (
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// BoardController streams lifecycle changes to Kanban board clients.
type BoardController struct {
	hub *utils.BoardHub
	log *logrus.Entry
}

func NewBoardController(hub *utils.BoardHub) *BoardController {
	return &BoardController{hub: hub, log: utils.Logger("board")}
}

// Upgrade rejects plain HTTP requests on the board endpoint.
func (bc *BoardController) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (bc *BoardController) Stream(c *websocket.Conn) {
	defer c.Close()

	events, cancel := bc.hub.Subscribe()
	defer cancel()

	userID, _ := c.Locals("userID").(uint)
	log := bc.log.WithField("user_id", userID)
	log.Debug("board subscriber connected")

	// Clients only listen; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			log.Debug("board subscriber disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				log.WithError(err).Warn("board write failed")
				return
			}
		}
	}
}
