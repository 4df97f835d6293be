package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry records one mutation of an owner's payable balance.
type LedgerEntry struct {
	ID            uint64          `json:"id" gorm:"primaryKey"`
	OwnerID       uint64          `json:"owner_id" gorm:"index;not null"`
	ReferenceType string          `json:"reference_type" gorm:"type:varchar(32);not null"`
	ReferenceID   uint64          `json:"reference_id" gorm:"not null"`
	Credit        decimal.Decimal `json:"credit" gorm:"type:decimal(32,2);not null;default:0"`
	Debit         decimal.Decimal `json:"debit" gorm:"type:decimal(32,2);not null;default:0"`
	BalanceAfter  decimal.Decimal `json:"balance_after" gorm:"type:decimal(32,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
}

func RecordLedgerEntry(tx *gorm.DB, owner_tier *OwnerTier, reference Reference, credit, debit decimal.Decimal, now time.Time) error {
	entry := &LedgerEntry{
		OwnerID:       owner_tier.OwnerID,
		ReferenceType: reference.Type,
		ReferenceID:   reference.ID,
		Credit:        credit,
		Debit:         debit,
		BalanceAfter:  owner_tier.PendingPayout,
		CreatedAt:     now,
	}

	return tx.Create(entry).Error
}
