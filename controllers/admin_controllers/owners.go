package admin_controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/helpers"
	"github.com/zsmartex/venuex/models"
	"gorm.io/gorm"
)

func ownerID(c *fiber.Ctx) (uint64, bool) {
	owner_id, err := c.ParamsInt("id")
	if err != nil || owner_id <= 0 {
		return 0, false
	}

	return uint64(owner_id), true
}

func (h *Handler) RecomputeOwnerTier(c *fiber.Ctx) error {
	owner_id, ok := ownerID(c)
	if !ok {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"admin.owner.invalid_id"},
		})
	}

	result, err := h.Tiers.RecomputeOwnerTier(c.UserContext(), owner_id)
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(result)
}

func (h *Handler) GetOwnerTier(c *fiber.Ctx) error {
	owner_id, ok := ownerID(c)
	if !ok {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"admin.owner.invalid_id"},
		})
	}

	owner_tier, err := models.FindOwnerTier(h.DB.WithContext(c.UserContext()), owner_id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"admin.owner.doesnt_exist"},
		})
	} else if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(owner_tier.ToJSON())
}
