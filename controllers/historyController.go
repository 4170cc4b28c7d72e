package controllers

import (
	"mandi-backend/models"

	"github.com/gofiber/fiber/v2"
)

// History serves one of the history collections, newest first. The
// optional "key" query narrows it to one customer, lot, sale or credit.
func (h *Handler) History(kind models.HistoryKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.Engine.History(c.UserContext(), kind, c.Query("key"), queryLimit(c, 200))
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}
