package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/types"
)

// PayoutBatch is one transfer of an owner's payable balance.
type PayoutBatch struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	UUID            uuid.UUID       `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	OwnerID         uint64          `json:"owner_id" gorm:"index;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(32,2);not null"`
	CommissionCount int             `json:"commission_count" gorm:"not null"`
	MaskedAccount   string          `json:"masked_account"`
	PaidAt          time.Time       `json:"paid_at" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (p *PayoutBatch) Reference() Reference {
	return Reference{ID: p.ID, Type: types.ReferencePayoutBatch}
}
