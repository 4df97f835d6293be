package commission_service

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
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// ComputeCommission prices a completed reservation and puts the owner's share
// on hold. Calling it again for the same reservation returns the stored
// commission untouched.
func (s *Service) ComputeCommission(ctx context.Context, reservation_id, owner_id uint64, amount decimal.Decimal) (*models.Commission, error) {
	if reservation_id == 0 {
		return nil, types.NewValidationError("reservation_id is required")
	}
	if owner_id == 0 {
		return nil, types.NewValidationError("owner_id is required")
	}
	if !amount.IsPositive() {
		return nil, types.NewValidationError("reservation amount must be positive, got %s", amount.String())
	}

	now := s.Now()
	var commission *models.Commission
	created := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByReservation(tx, reservation_id)
		if err != nil {
			return err
		}
		if existing != nil {
			commission = existing
			return nil
		}

		owner_tier, err := models.GetOrCreateOwnerTier(tx, owner_id, now)
		if err != nil {
			return err
		}

		quote, err := policy.QuoteCommission(owner_tier.CurrentTier, policy.OwnerSnapshot{
			AverageRating:       owner_tier.AverageRating,
			AccountAgeMonths:    owner_tier.AccountAgeMonths,
			IsExclusive:         owner_tier.IsExclusive,
			MonthlyReservations: owner_tier.MonthlyReservations,
		}, amount)
		if err != nil {
			return err
		}

		commission = &models.Commission{
			ReservationID:     reservation_id,
			OwnerID:           owner_id,
			Tier:              quote.Tier,
			BaseRate:          quote.BaseRate,
			Adjustments:       quote.Adjustments,
			FinalRate:         quote.FinalRate,
			ReservationAmount: quote.ReservationAmount,
			CommissionAmount:  quote.CommissionAmount,
			OwnerPayout:       quote.OwnerPayout,
			Status:            types.CommissionStatusHeld,
			HoldUntil:         now.Add(policy.HoldDuration),
			PayoutStatus:      types.PayoutStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reservation_id"}},
			DoNothing: true,
		}).Create(commission)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Lost the race against a concurrent computation.
			commission, err = findByReservation(tx, reservation_id)
			return err
		}

		created = true

		return nil
	})
	if err != nil {
		if types.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("compute commission for reservation %d: %w", reservation_id, err)
	}

	if commission.OwnerID != owner_id {
		return nil, types.NewValidationError("reservation %d already has a commission for owner %d", reservation_id, commission.OwnerID)
	}

	logger := config.GetLogger().WithFields(logrus.Fields{
		"reservation_id": reservation_id,
		"owner_id":       owner_id,
		"commission_id":  commission.ID,
	})
	if created {
		logger.WithFields(logrus.Fields{
			"tier":       commission.Tier,
			"final_rate": commission.FinalRate.String(),
			"commission": commission.CommissionAmount.StringFixed(2),
			"payout":     commission.OwnerPayout.StringFixed(2),
		}).Info("Commission held")
	} else {
		logger.Debug("Commission already computed")
	}

	return commission, nil
}

func findByReservation(tx *gorm.DB, reservation_id uint64) (*models.Commission, error) {
	var commission models.Commission
	err := tx.Where("reservation_id = ?", reservation_id).First(&commission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return &commission, nil
}

type ListFilter struct {
	OwnerID uint64
	Status  string
	Page    int
	Limit   int
}

func (s *Service) ListCommissions(ctx context.Context, filter ListFilter) ([]*models.Commission, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	query := s.DB.WithContext(ctx).Model(&models.Commission{})
	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if len(filter.Status) > 0 {
		query = query.Where("status = ?", filter.Status)
	}

	var commissions []*models.Commission
	if err := query.Order("id desc").Offset(filter.Page*filter.Limit - filter.Limit).Limit(filter.Limit).Find(&commissions).Error; err != nil {
		return nil, err
	}

	return commissions, nil
}
