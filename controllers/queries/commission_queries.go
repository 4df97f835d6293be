package queries

import "github.com/shopspring/decimal"

type CommissionPayload struct {
	ReservationID uint64          `json:"reservation_id" validate:"required"`
	OwnerID       uint64          `json:"owner_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

type CommissionFilters struct {
	OwnerID uint64 `query:"owner_id"`
	Status  string `query:"status" validate:"in:held,released,cancelled"`
	Limit   int    `query:"limit" validate:"uint|max:1000"`
	Page    int    `query:"page" validate:"uint"`
}
