package admin_controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/helpers"
	"github.com/zsmartex/venuex/controllers/queries"
)

func (h *Handler) CancelReservation(c *fiber.Ctx) error {
	var errors = new(helpers.Errors)

	reservation_id, err := c.ParamsInt("id")
	if err != nil || reservation_id <= 0 {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"admin.reservation.invalid_id"},
		})
	}

	payload := new(queries.CancelPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_body"},
		})
	}

	helpers.Vaildate(payload, errors)

	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := h.Cancellations.ApplyCancellationPolicy(c.UserContext(), uint64(reservation_id), payload.CancelledBy)
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(result)
}
