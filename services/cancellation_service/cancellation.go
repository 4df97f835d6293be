package cancellation_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/policy"
	"github.com/zsmartex/venuex/services/notification_service"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

// PenaltyHook is called inside the cancellation transaction when an owner
// cancels. No penalty policy exists yet, so the default does nothing.
type PenaltyHook interface {
	ApplyOwnerPenalty(ctx context.Context, tx *gorm.DB, booking *models.Booking, settlement *policy.CancellationSettlement) error
}

type NoPenalty struct{}

func (NoPenalty) ApplyOwnerPenalty(ctx context.Context, tx *gorm.DB, booking *models.Booking, settlement *policy.CancellationSettlement) error {
	return nil
}

type Service struct {
	DB          *gorm.DB
	Notifier    notification_service.Notifier
	PenaltyHook PenaltyHook
	Now         func() time.Time
}

func NewService(db *gorm.DB, notifier notification_service.Notifier) *Service {
	return &Service{
		DB:          db,
		Notifier:    notifier,
		PenaltyHook: NoPenalty{},
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

type Result struct {
	ReservationID     uint64            `json:"reservation_id"`
	CancelledBy       types.CancelledBy `json:"cancelled_by"`
	RefundAmount      decimal.Decimal   `json:"refund_amount"`
	CommissionAmount  decimal.Decimal   `json:"commission_amount"`
	HoursUntil        float64           `json:"hours_until"`
	RefundPercentage  decimal.Decimal   `json:"refund_percentage"`
	CommissionRate    decimal.Decimal   `json:"commission_rate"`
	CommissionUpdated bool              `json:"commission_updated"`
}

// ApplyCancellationPolicy settles a booking cancelled before completion:
// payment, held commission and booking are updated in one transaction and
// the user is told about the refund afterwards.
func (s *Service) ApplyCancellationPolicy(ctx context.Context, reservation_id uint64, cancelled_by types.CancelledBy) (*Result, error) {
	if reservation_id == 0 {
		return nil, types.NewValidationError("reservation_id is required")
	}
	if cancelled_by != types.CancelledByOwner && cancelled_by != types.CancelledByUser {
		return nil, types.NewValidationError("unknown cancelled_by value %q", cancelled_by)
	}

	now := s.Now()
	var booking *models.Booking
	var settlement *policy.CancellationSettlement
	result := &Result{ReservationID: reservation_id, CancelledBy: cancelled_by}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.Lock(tx).First(&booking, reservation_id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewNotFoundError("reservation %d not found", reservation_id)
		} else if err != nil {
			return err
		}

		switch {
		case booking.IsCompleted():
			return types.NewValidationError("reservation %d is already completed", reservation_id)
		case booking.IsVoided():
			return types.NewValidationError("reservation %d is already %s", reservation_id, booking.Status)
		}

		var err error
		settlement, err = policy.SettleCancellation(cancelled_by, booking.TotalAmount, policy.HoursUntil(booking.StartAt, now))
		if err != nil {
			return err
		}

		if err := s.settlePayment(tx, booking, settlement, now); err != nil {
			return err
		}

		updated, err := s.settleCommission(tx, booking, settlement, now)
		if err != nil {
			return err
		}
		result.CommissionUpdated = updated

		if err := booking.Cancel(tx, now); err != nil {
			return err
		}

		if cancelled_by == types.CancelledByOwner && s.PenaltyHook != nil {
			return s.PenaltyHook.ApplyOwnerPenalty(ctx, tx, booking, settlement)
		}

		return nil
	})
	if err != nil {
		if types.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("cancel reservation %d: %w", reservation_id, err)
	}

	result.RefundAmount = settlement.RefundAmount
	result.CommissionAmount = settlement.CommissionAmount
	result.HoursUntil = settlement.HoursUntil
	result.RefundPercentage = settlement.RefundPercentage
	result.CommissionRate = settlement.CommissionRate

	config.GetLogger().WithFields(logrus.Fields{
		"reservation_id": reservation_id,
		"cancelled_by":   cancelled_by,
		"hours_until":    settlement.HoursUntil,
		"refund":         settlement.RefundAmount.StringFixed(2),
		"commission":     settlement.CommissionAmount.StringFixed(2),
	}).Info("Reservation cancelled")

	notification_service.Dispatch(ctx, s.Notifier, refundMessage(booking, settlement))

	return result, nil
}

func (s *Service) settlePayment(tx *gorm.DB, booking *models.Booking, settlement *policy.CancellationSettlement, now time.Time) error {
	var payment models.Payment
	err := tx.Where("booking_id = ?", booking.ID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	status := types.PaymentStatusCompleted
	if settlement.RefundAmount.IsPositive() {
		status = types.PaymentStatusRefunded
	}

	return payment.UpdateStatus(tx, status, now)
}

// settleCommission rewrites a held commission with the cancellation amounts.
// Without a commission, or with one that already left held, nothing changes.
func (s *Service) settleCommission(tx *gorm.DB, booking *models.Booking, settlement *policy.CancellationSettlement, now time.Time) (bool, error) {
	var commission models.Commission
	err := models.Lock(tx).Where("reservation_id = ?", booking.ID).First(&commission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if !commission.IsHeld() {
		config.GetLogger().WithFields(logrus.Fields{
			"reservation_id": booking.ID,
			"commission_id":  commission.ID,
			"status":         commission.Status,
		}).Warn("Commission is no longer held, leaving it untouched")
		return false, nil
	}

	if err := commission.CancelWithSettlement(tx, settlement.CommissionAmount, settlement.OwnerPayout, now); err != nil {
		return false, err
	}

	return true, nil
}

func refundMessage(booking *models.Booking, settlement *policy.CancellationSettlement) notification_service.Message {
	message := fmt.Sprintf("Your booking #%d was cancelled. No refund applies to this cancellation.", booking.ID)
	if settlement.RefundAmount.IsPositive() {
		message = fmt.Sprintf(
			"Your booking #%d was cancelled. A refund of %s (%s%%) is on its way.",
			booking.ID,
			settlement.RefundAmount.StringFixed(2),
			settlement.RefundPercentage.Shift(2).String(),
		)
	}

	return notification_service.Message{
		RecipientID: booking.UserID,
		Title:       "Booking cancelled",
		Message:     message,
		Type:        types.NotificationTypeRefund,
		Reference:   models.Reference{ID: booking.ID, Type: types.ReferenceBooking},
	}
}
