package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/models/datatypes"
	"github.com/zsmartex/venuex/types"
)

type CommissionEntity struct {
	ID                uint64                 `json:"id"`
	ReservationID     uint64                 `json:"reservation_id"`
	OwnerID           uint64                 `json:"owner_id"`
	Tier              types.Tier             `json:"tier"`
	BaseRate          decimal.Decimal        `json:"base_rate"`
	Adjustments       datatypes.Adjustments  `json:"adjustments"`
	FinalRate         decimal.Decimal        `json:"final_rate"`
	ReservationAmount decimal.Decimal        `json:"reservation_amount"`
	CommissionAmount  decimal.Decimal        `json:"commission_amount"`
	OwnerPayout       decimal.Decimal        `json:"owner_payout"`
	Status            types.CommissionStatus `json:"status"`
	HoldUntil         time.Time              `json:"hold_until"`
	ReleaseDate       *time.Time             `json:"release_date"`
	PayoutStatus      types.PayoutStatus     `json:"payout_status"`
	PayoutDate        *time.Time             `json:"payout_date"`
	CreatedAt         time.Time              `json:"created_at"`
}
