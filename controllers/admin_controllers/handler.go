package admin_controllers

import (
	"github.com/zsmartex/venuex/services/bank_service"
	"github.com/zsmartex/venuex/services/cancellation_service"
	"github.com/zsmartex/venuex/services/commission_service"
	"github.com/zsmartex/venuex/services/escrow_service"
	"github.com/zsmartex/venuex/services/notification_service"
	"github.com/zsmartex/venuex/services/payout_service"
	"github.com/zsmartex/venuex/services/tier_service"
	"gorm.io/gorm"
)

// Handler serves the admin API on top of the engine services.
type Handler struct {
	DB            *gorm.DB
	Commissions   *commission_service.Service
	Cancellations *cancellation_service.Service
	Escrow        *escrow_service.Service
	Payouts       *payout_service.Service
	Tiers         *tier_service.Service
}

func NewHandler(db *gorm.DB, notifier notification_service.Notifier, bank bank_service.Transferer) *Handler {
	return &Handler{
		DB:            db,
		Commissions:   commission_service.NewService(db),
		Cancellations: cancellation_service.NewService(db, notifier),
		Escrow:        escrow_service.NewService(db),
		Payouts:       payout_service.NewService(db, bank, notifier),
		Tiers:         tier_service.NewService(db, notifier),
	}
}
