package main

import (
	"fmt"
	"os"

	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/controllers/admin_controllers"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/routes"
	"github.com/zsmartex/venuex/services/bank_service"
	"github.com/zsmartex/venuex/services/notification_service"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := models.Migrate(config.DataBase); err != nil {
		config.Logger.Fatalf("Failed to migrate database: %v", err)
	}

	notifier := notification_service.NewService(config.DataBase, config.Nats, config.Settings.Notification.Subject)
	handler := admin_controllers.NewHandler(config.DataBase, notifier, bank_service.NewLedgerTransferer())

	port := os.Getenv("PORT")
	if len(port) == 0 {
		port = "3000"
	}

	r := routes.SetupRouter(handler)
	// running
	if err := r.Listen(":" + port); err != nil {
		config.Logger.Fatal(err)
	}
}
