package escrow_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

type Outcome = string

var (
	OutcomeReleased  Outcome = "released"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeStillHeld Outcome = "still_held"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

type Item struct {
	CommissionID  uint64          `json:"commission_id"`
	ReservationID uint64          `json:"reservation_id"`
	OwnerID       uint64          `json:"owner_id"`
	Outcome       Outcome         `json:"outcome"`
	Amount        decimal.Decimal `json:"amount"`
	BookingStatus string          `json:"booking_status,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

type Result struct {
	ReleasedCount  int             `json:"released_count"`
	CancelledCount int             `json:"cancelled_count"`
	StillHeldCount int             `json:"still_held_count"`
	SkippedCount   int             `json:"skipped_count"`
	FailedCount    int             `json:"failed_count"`
	TotalReleased  decimal.Decimal `json:"total_released"`
	Items          []*Item         `json:"items"`
}

func (r *Result) add(item *Item) {
	r.Items = append(r.Items, item)

	switch item.Outcome {
	case OutcomeReleased:
		r.ReleasedCount++
		r.TotalReleased = r.TotalReleased.Add(item.Amount)
	case OutcomeCancelled:
		r.CancelledCount++
	case OutcomeStillHeld:
		r.StillHeldCount++
	case OutcomeSkipped:
		r.SkippedCount++
	case OutcomeFailed:
		r.FailedCount++
	}
}

// ReleaseHeldPayments settles every held commission whose hold has expired
// from its booking's outcome. Commissions that leave held are never selected
// again, so the sweep can run as often as needed.
func (s *Service) ReleaseHeldPayments(ctx context.Context) (*Result, error) {
	now := s.Now()

	var commissions []*models.Commission
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND hold_until <= ?", types.CommissionStatusHeld, now).
		Order("id asc").
		Find(&commissions).Error; err != nil {
		return nil, fmt.Errorf("load held commissions: %w", err)
	}

	result := &Result{TotalReleased: decimal.Zero, Items: make([]*Item, 0, len(commissions))}
	for _, commission := range commissions {
		item := s.settle(ctx, commission, now)
		result.add(item)

		if item.Outcome == OutcomeFailed {
			config.GetLogger().WithFields(logrus.Fields{
				"commission_id":  item.CommissionID,
				"reservation_id": item.ReservationID,
			}).Errorf("Failed to settle held commission: %s", item.Reason)
		}
	}

	config.GetLogger().WithFields(logrus.Fields{
		"released":   result.ReleasedCount,
		"cancelled":  result.CancelledCount,
		"still_held": result.StillHeldCount,
		"skipped":    result.SkippedCount,
		"failed":     result.FailedCount,
		"total":      result.TotalReleased.StringFixed(2),
	}).Info("Escrow release finished")

	return result, nil
}

// settle resolves one commission in its own transaction.
func (s *Service) settle(ctx context.Context, held *models.Commission, now time.Time) *Item {
	item := &Item{
		CommissionID:  held.ID,
		ReservationID: held.ReservationID,
		OwnerID:       held.OwnerID,
		Amount:        decimal.Zero,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commission models.Commission
		if err := models.Lock(tx).Where("id = ? AND status = ?", held.ID, types.CommissionStatusHeld).First(&commission).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			item.Outcome = OutcomeSkipped
			item.Reason = "commission is no longer held"
			return nil
		} else if err != nil {
			return err
		}

		var booking models.Booking
		if err := tx.First(&booking, commission.ReservationID).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			item.Outcome = OutcomeSkipped
			item.Reason = "reservation not found"
			return nil
		} else if err != nil {
			return err
		}
		item.BookingStatus = booking.Status

		switch {
		case booking.IsCompleted():
			return s.release(tx, &commission, item, now)
		case booking.IsVoided():
			if err := commission.Cancel(tx, now); err != nil {
				return err
			}
			item.Outcome = OutcomeCancelled
			return nil
		default:
			item.Outcome = OutcomeStillHeld
			return nil
		}
	})

	switch {
	case err == nil:
	case errors.Is(err, models.ErrStaleCommission):
		item.Outcome = OutcomeSkipped
		item.Reason = "commission settled by a concurrent run"
		item.Amount = decimal.Zero
	default:
		item.Outcome = OutcomeFailed
		item.Reason = err.Error()
		item.Amount = decimal.Zero
	}

	return item
}

func (s *Service) release(tx *gorm.DB, commission *models.Commission, item *Item, now time.Time) error {
	if _, err := models.GetOrCreateOwnerTier(tx, commission.OwnerID, now); err != nil {
		return err
	}

	var owner_tier models.OwnerTier
	if err := models.Lock(tx).Where("owner_id = ?", commission.OwnerID).First(&owner_tier).Error; err != nil {
		return err
	}

	if err := commission.Release(tx, now); err != nil {
		return err
	}

	if err := owner_tier.CreditPayable(tx, commission.OwnerPayout, commission.ReservationAmount, commission.Reference(), now); err != nil {
		return err
	}

	item.Outcome = OutcomeReleased
	item.Amount = commission.OwnerPayout

	return nil
}
