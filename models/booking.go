package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

// Booking is owned by the reservation service; the engine only reads it and
// moves it to cancelled.
type Booking struct {
	ID          uint64              `json:"id" gorm:"primaryKey"`
	OwnerID     uint64              `json:"owner_id" gorm:"index;not null"`
	UserID      uint64              `json:"user_id" gorm:"index;not null"`
	VenueID     uint64              `json:"venue_id" gorm:"index"`
	StartAt     time.Time           `json:"start_at" gorm:"index;not null"`
	TotalAmount decimal.Decimal     `json:"total_amount" gorm:"type:decimal(32,2);not null"`
	Status      types.BookingStatus `json:"status" gorm:"type:varchar(20);default:pending;index"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (b *Booking) IsCompleted() bool {
	return b.Status == types.BookingStatusCompleted
}

// IsVoided reports whether the booking ended without being played.
func (b *Booking) IsVoided() bool {
	return b.Status == types.BookingStatusCancelled || b.Status == types.BookingStatusRejected
}

func (b *Booking) Cancel(tx *gorm.DB, now time.Time) error {
	if err := tx.Model(b).Updates(map[string]interface{}{
		"status":     types.BookingStatusCancelled,
		"updated_at": now,
	}).Error; err != nil {
		return err
	}

	b.Status = types.BookingStatusCancelled

	return nil
}
