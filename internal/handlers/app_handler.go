package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetStatus reports whether the cache and the database are reachable.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.app.Status(c.UserContext()))
}

// GetStats reports the number of users and file records.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	stats, err := h.app.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
