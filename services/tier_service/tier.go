package tier_service

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

type Service struct {
	DB       *gorm.DB
	Notifier notification_service.Notifier
	Now      func() time.Time
}

func NewService(db *gorm.DB, notifier notification_service.Notifier) *Service {
	return &Service{
		DB:       db,
		Notifier: notifier,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type Result struct {
	OwnerID                uint64     `json:"owner_id"`
	PreviousTier           types.Tier `json:"previous_tier"`
	CurrentTier            types.Tier `json:"current_tier"`
	Upgraded               bool       `json:"upgraded"`
	NextTier               types.Tier `json:"next_tier,omitempty"`
	ReservationsToNextTier int64      `json:"reservations_to_next_tier"`
	TotalReservations      int64      `json:"total_reservations"`
	AverageRating          float64    `json:"average_rating"`
	AccountAgeMonths       int64      `json:"account_age_months"`
	MonthlyReservations    int64      `json:"monthly_reservations"`
}

// RecomputeOwnerTier refreshes the owner's counters from the booking history
// and venue ratings and stores the tier they qualify for.
func (s *Service) RecomputeOwnerTier(ctx context.Context, owner_id uint64) (*Result, error) {
	if owner_id == 0 {
		return nil, types.NewValidationError("owner_id is required")
	}

	now := s.Now()
	result := &Result{OwnerID: owner_id}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner_tier, err := models.FindOwnerTier(models.Lock(tx), owner_id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewNotFoundError("owner tier %d not found", owner_id)
		} else if err != nil {
			return err
		}

		snapshot, err := s.snapshot(tx, owner_tier, now)
		if err != nil {
			return err
		}

		result.PreviousTier = owner_tier.CurrentTier
		if err := owner_tier.ApplySnapshot(tx, *snapshot, now); err != nil {
			return err
		}

		result.CurrentTier = snapshot.Tier
		result.Upgraded = policy.IsUpgrade(result.PreviousTier, result.CurrentTier)
		result.NextTier, result.ReservationsToNextTier = policy.NextTier(snapshot.Tier, snapshot.TotalReservations)
		result.TotalReservations = snapshot.TotalReservations
		result.AverageRating = snapshot.AverageRating
		result.AccountAgeMonths = snapshot.AccountAgeMonths
		result.MonthlyReservations = snapshot.MonthlyReservations

		return nil
	})
	if err != nil {
		if types.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("recompute tier of owner %d: %w", owner_id, err)
	}

	if result.PreviousTier != result.CurrentTier {
		config.GetLogger().WithFields(logrus.Fields{
			"owner_id": owner_id,
			"from":     result.PreviousTier,
			"to":       result.CurrentTier,
		}).Info("Owner tier changed")
	}

	if result.Upgraded {
		notification_service.Dispatch(ctx, s.Notifier, notification_service.Message{
			RecipientID: owner_id,
			Title:       "Tier upgraded",
			Message:     fmt.Sprintf("Congratulations! Your account moved from %s to %s.", result.PreviousTier, result.CurrentTier),
			Type:        types.NotificationTypeTierUpgrade,
			Reference:   models.Reference{ID: owner_id, Type: types.ReferenceOwnerTier},
		})
	}

	return result, nil
}

func (s *Service) snapshot(tx *gorm.DB, owner_tier *models.OwnerTier, now time.Time) (*models.TierSnapshot, error) {
	var total_reservations int64
	if err := tx.Model(&models.Booking{}).
		Where("owner_id = ? AND status = ?", owner_tier.OwnerID, types.BookingStatusCompleted).
		Count(&total_reservations).Error; err != nil {
		return nil, err
	}

	month_start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthly_reservations int64
	if err := tx.Model(&models.Booking{}).
		Where("owner_id = ? AND status = ? AND start_at >= ? AND start_at < ?", owner_tier.OwnerID, types.BookingStatusCompleted, month_start, month_start.AddDate(0, 1, 0)).
		Count(&monthly_reservations).Error; err != nil {
		return nil, err
	}

	var ratings []float64
	if err := tx.Model(&models.Venue{}).Where("owner_id = ?", owner_tier.OwnerID).Pluck("rating", &ratings).Error; err != nil {
		return nil, err
	}

	average_rating := AverageRating(ratings)

	return &models.TierSnapshot{
		Tier:                policy.ClassifyTier(total_reservations, average_rating),
		TotalReservations:   total_reservations,
		AverageRating:       average_rating,
		AccountAgeMonths:    MonthsBetween(owner_tier.CreatedAt, now),
		MonthlyReservations: monthly_reservations,
	}, nil
}

// AverageRating is the mean rating rounded to two places, 0 without venues.
func AverageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}

	sum := decimal.Zero
	for _, rating := range ratings {
		sum = sum.Add(decimal.NewFromFloat(rating))
	}

	average, _ := sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(2).Float64()

	return average
}

// MonthsBetween counts whole calendar months elapsed from from to to.
func MonthsBetween(from, to time.Time) int64 {
	if !to.After(from) {
		return 0
	}

	months := int64(to.Year()-from.Year())*12 + int64(to.Month()) - int64(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}

	return months
}

type BatchResult struct {
	ProcessedCount int               `json:"processed_count"`
	UpgradedCount  int               `json:"upgraded_count"`
	FailedCount    int               `json:"failed_count"`
	Failures       map[uint64]string `json:"failures,omitempty"`
}

// RecomputeAllTiers refreshes every owner that already has a tier record; one owner failing does not
// stop the others.
func (s *Service) RecomputeAllTiers(ctx context.Context) (*BatchResult, error) {
	var owner_ids []uint64
	if err := s.DB.WithContext(ctx).Model(&models.OwnerTier{}).Order("owner_id asc").Pluck("owner_id", &owner_ids).Error; err != nil {
		return nil, err
	}

	batch := &BatchResult{Failures: make(map[uint64]string)}
	for _, owner_id := range owner_ids {
		result, err := s.RecomputeOwnerTier(ctx, owner_id)
		if err != nil {
			batch.FailedCount++
			batch.Failures[owner_id] = err.Error()
			config.GetLogger().WithField("owner_id", owner_id).Errorf("Failed to recompute tier: %v", err)
			continue
		}

		batch.ProcessedCount++
		if result.Upgraded {
			batch.UpgradedCount++
		}
	}

	return batch, nil
}
