package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/auth"
	"github.com/zsmartex/venuex/controllers/helpers"
)

func AdminVaildator(c *fiber.Ctx) error {
	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil || !CurrentUser.IsAdmin() {
		return c.Status(403).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_permission"},
		})
	}

	return c.Next()
}
