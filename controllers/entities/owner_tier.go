package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/types"
)

type OwnerTierEntity struct {
	OwnerID             uint64          `json:"owner_id"`
	CurrentTier         types.Tier      `json:"current_tier"`
	NextTier            types.Tier      `json:"next_tier,omitempty"`
	TotalReservations   int64           `json:"total_reservations"`
	AverageRating       float64         `json:"average_rating"`
	AccountAgeMonths    int64           `json:"account_age_months"`
	MonthlyReservations int64           `json:"monthly_reservations"`
	IsExclusive         bool            `json:"is_exclusive"`
	PendingPayout       decimal.Decimal `json:"pending_payout"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	BankAccountVerified bool            `json:"bank_account_verified"`
	BankName            string          `json:"bank_name"`
	BankAccount         string          `json:"bank_account"`
	LastPayoutDate      *time.Time      `json:"last_payout_date"`
}
