package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"github.com/zsmartex/venuex/controllers/entities"
	"github.com/zsmartex/venuex/models/datatypes"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

var (
	// ErrIllegalTransition marks a programming error: a commission only ever
	// moves forward out of held.
	ErrIllegalTransition = errors.New("illegal commission status transition")
	// ErrStaleCommission is returned when a guarded update matched no row
	// because another run already moved the commission on.
	ErrStaleCommission = errors.New("commission was modified concurrently")
)

type Commission struct {
	ID                uint64                 `json:"id" gorm:"primaryKey"`
	ReservationID     uint64                 `json:"reservation_id" gorm:"uniqueIndex;not null"`
	OwnerID           uint64                 `json:"owner_id" gorm:"index;not null"`
	Tier              types.Tier             `json:"tier" gorm:"type:varchar(16);not null"`
	BaseRate          decimal.Decimal        `json:"base_rate" gorm:"type:decimal(8,4);not null"`
	Adjustments       datatypes.Adjustments  `json:"adjustments"`
	FinalRate         decimal.Decimal        `json:"final_rate" gorm:"type:decimal(8,4);not null"`
	ReservationAmount decimal.Decimal        `json:"reservation_amount" gorm:"type:decimal(32,2);not null"`
	CommissionAmount  decimal.Decimal        `json:"commission_amount" gorm:"type:decimal(32,2);not null"`
	OwnerPayout       decimal.Decimal        `json:"owner_payout" gorm:"type:decimal(32,2);not null"`
	Status            types.CommissionStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	HoldUntil         time.Time              `json:"hold_until" gorm:"index;not null"`
	ReleaseDate       null.Time              `json:"release_date" gorm:"type:timestamp"`
	PayoutStatus      types.PayoutStatus     `json:"payout_status" gorm:"type:varchar(16);index;not null"`
	PayoutDate        null.Time              `json:"payout_date" gorm:"type:timestamp"`
	PayoutBatchID     null.Uint64            `json:"payout_batch_id" gorm:"type:bigint"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func (c *Commission) Reference() Reference {
	return Reference{ID: c.ID, Type: types.ReferenceCommission}
}

func (c *Commission) IsHeld() bool {
	return c.Status == types.CommissionStatusHeld
}

func (c *Commission) IsPayable() bool {
	return c.Status == types.CommissionStatusReleased && c.PayoutStatus == types.PayoutStatusPending
}

// CanTransitionTo reports whether status is reachable from the current one.
// held is the only non terminal state.
func (c *Commission) CanTransitionTo(status types.CommissionStatus) bool {
	if c.Status != types.CommissionStatusHeld {
		return false
	}

	return status == types.CommissionStatusReleased || status == types.CommissionStatusCancelled
}

// transition moves a held commission on with an update guarded by the held
// status, so two runs can never both apply it.
func (c *Commission) transition(tx *gorm.DB, status types.CommissionStatus, updates map[string]interface{}) error {
	if !c.CanTransitionTo(status) {
		return fmt.Errorf("%w: commission %d %s -> %s", ErrIllegalTransition, c.ID, c.Status, status)
	}

	updates["status"] = status

	result := tx.Model(&Commission{}).
		Where("id = ? AND status = ?", c.ID, types.CommissionStatusHeld).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("%w: commission %d is no longer held", ErrStaleCommission, c.ID)
	}

	c.Status = status

	return nil
}

func (c *Commission) Release(tx *gorm.DB, now time.Time) error {
	release_date := null.TimeFrom(now)
	if err := c.transition(tx, types.CommissionStatusReleased, map[string]interface{}{
		"release_date": release_date,
		"updated_at":   now,
	}); err != nil {
		return err
	}

	c.ReleaseDate = release_date
	c.UpdatedAt = now

	return nil
}

// Cancel voids the hold without touching the amounts.
func (c *Commission) Cancel(tx *gorm.DB, now time.Time) error {
	if err := c.transition(tx, types.CommissionStatusCancelled, map[string]interface{}{
		"updated_at": now,
	}); err != nil {
		return err
	}

	c.UpdatedAt = now

	return nil
}

// CancelWithSettlement voids the hold and rewrites the amounts with the ones a
// cancellation policy settled on.
func (c *Commission) CancelWithSettlement(tx *gorm.DB, commission_amount, owner_payout decimal.Decimal, now time.Time) error {
	if err := c.transition(tx, types.CommissionStatusCancelled, map[string]interface{}{
		"commission_amount": commission_amount,
		"owner_payout":      owner_payout,
		"updated_at":        now,
	}); err != nil {
		return err
	}

	c.CommissionAmount = commission_amount
	c.OwnerPayout = owner_payout
	c.UpdatedAt = now

	return nil
}

// MarkCommissionsPaid completes the payout of exactly the given commissions.
// Any of them that is no longer released and pending aborts the whole set.
func MarkCommissionsPaid(tx *gorm.DB, commissions []*Commission, batch_id uint64, now time.Time) error {
	ids := make([]uint64, 0, len(commissions))
	for _, commission := range commissions {
		if !commission.IsPayable() {
			return fmt.Errorf("%w: commission %d is %s/%s", ErrIllegalTransition, commission.ID, commission.Status, commission.PayoutStatus)
		}
		ids = append(ids, commission.ID)
	}

	payout_date := null.TimeFrom(now)
	result := tx.Model(&Commission{}).
		Where("id IN ? AND status = ? AND payout_status = ?", ids, types.CommissionStatusReleased, types.PayoutStatusPending).
		Updates(map[string]interface{}{
			"payout_status":   types.PayoutStatusCompleted,
			"payout_date":     payout_date,
			"payout_batch_id": batch_id,
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("%w: marked %d of %d commissions as paid", ErrStaleCommission, result.RowsAffected, len(ids))
	}

	for _, commission := range commissions {
		commission.PayoutStatus = types.PayoutStatusCompleted
		commission.PayoutDate = payout_date
		commission.PayoutBatchID = null.Uint64From(batch_id)
		commission.UpdatedAt = now
	}

	return nil
}

func (c *Commission) ToJSON() entities.CommissionEntity {
	return entities.CommissionEntity{
		ID:                c.ID,
		ReservationID:     c.ReservationID,
		OwnerID:           c.OwnerID,
		Tier:              c.Tier,
		BaseRate:          c.BaseRate,
		Adjustments:       c.Adjustments,
		FinalRate:         c.FinalRate,
		ReservationAmount: c.ReservationAmount,
		CommissionAmount:  c.CommissionAmount,
		OwnerPayout:       c.OwnerPayout,
		Status:            c.Status,
		HoldUntil:         c.HoldUntil,
		ReleaseDate:       c.ReleaseDate.Ptr(),
		PayoutStatus:      c.PayoutStatus,
		PayoutDate:        c.PayoutDate.Ptr(),
		CreatedAt:         c.CreatedAt,
	}
}
