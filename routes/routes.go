package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/admin_controllers"
	"github.com/zsmartex/venuex/routes/middlewares"
)

func SetupRouter(handler *admin_controllers.Handler) *fiber.App {
	app := fiber.New()

	admin := app.Group("/api/v1/admin", middlewares.Authenticate, middlewares.AdminVaildator)

	admin.Post("/commissions", handler.CreateCommission)
	admin.Get("/commissions", handler.GetCommissions)
	admin.Post("/reservations/:id/cancel", handler.CancelReservation)
	admin.Post("/escrow/release", handler.ReleaseEscrow)
	admin.Post("/payouts/process", handler.ProcessPayouts)
	admin.Get("/owners/:id/tier", handler.GetOwnerTier)
	admin.Post("/owners/:id/tier", handler.RecomputeOwnerTier)

	return app
}
