package admin_controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/helpers"
)

// ReleaseEscrow runs one escrow sweep. Per-item failures are part of the
// summary; only an unreadable commission table fails the request.
func (h *Handler) ReleaseEscrow(c *fiber.Ctx) error {
	result, err := h.Escrow.ReleaseHeldPayments(c.UserContext())
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(result)
}

func (h *Handler) ProcessPayouts(c *fiber.Ctx) error {
	result, err := h.Payouts.ProcessPayouts(c.UserContext())
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(result)
}
