package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

type Payment struct {
	ID        uint64              `json:"id" gorm:"primaryKey"`
	BookingID uint64              `json:"booking_id" gorm:"uniqueIndex;not null"`
	Amount    decimal.Decimal     `json:"amount" gorm:"type:decimal(32,2);not null"`
	Status    types.PaymentStatus `json:"status" gorm:"type:varchar(20);default:pending"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (p *Payment) UpdateStatus(tx *gorm.DB, status types.PaymentStatus, now time.Time) error {
	if err := tx.Model(p).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}).Error; err != nil {
		return err
	}

	p.Status = status

	return nil
}
