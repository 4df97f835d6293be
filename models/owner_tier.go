package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"github.com/zsmartex/venuex/controllers/entities"
	"github.com/zsmartex/venuex/policy"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleOwnerTier is returned when the row changed between being read and
// being written; the caller's transaction must be rolled back.
var ErrStaleOwnerTier = errors.New("owner tier was modified concurrently")

type OwnerTier struct {
	ID                  uint64          `json:"id" gorm:"primaryKey"`
	OwnerID             uint64          `json:"owner_id" gorm:"uniqueIndex;not null"`
	CurrentTier         types.Tier      `json:"current_tier" gorm:"type:varchar(16);not null;default:bronze"`
	TotalReservations   int64           `json:"total_reservations" gorm:"not null;default:0"`
	AverageRating       float64         `json:"average_rating" gorm:"not null;default:0"`
	AccountAgeMonths    int64           `json:"account_age_months" gorm:"not null;default:0"`
	MonthlyReservations int64           `json:"monthly_reservations" gorm:"not null;default:0"`
	IsExclusive         bool            `json:"is_exclusive" gorm:"not null;default:false"`
	PendingPayout       decimal.Decimal `json:"pending_payout" gorm:"type:decimal(32,2);not null;default:0"`
	TotalRevenue        decimal.Decimal `json:"total_revenue" gorm:"type:decimal(32,2);not null;default:0"`
	BankAccountVerified bool            `json:"bank_account_verified" gorm:"not null;default:false"`
	BankName            string          `json:"bank_name"`
	BankAccountID       string          `json:"-"`
	BankAccountHolder   string          `json:"bank_account_holder"`
	LastPayoutDate      null.Time       `json:"last_payout_date" gorm:"type:timestamp"`
	LockVersion         uint64          `json:"-" gorm:"not null;default:0"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// GetOrCreateOwnerTier loads the owner's tier record, creating a bronze one
// with zero counters the first time an owner is seen.
func GetOrCreateOwnerTier(tx *gorm.DB, owner_id uint64, now time.Time) (*OwnerTier, error) {
	owner_tier := &OwnerTier{
		OwnerID:       owner_id,
		CurrentTier:   types.TierBronze,
		PendingPayout: decimal.Zero,
		TotalRevenue:  decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(owner_tier).Error; err != nil {
		return nil, err
	}

	return FindOwnerTier(tx, owner_id)
}

func FindOwnerTier(tx *gorm.DB, owner_id uint64) (*OwnerTier, error) {
	var owner_tier *OwnerTier
	if err := tx.Where("owner_id = ?", owner_id).First(&owner_tier).Error; err != nil {
		return nil, err
	}

	return owner_tier, nil
}

func (o *OwnerTier) Reference() Reference {
	return Reference{ID: o.ID, Type: types.ReferenceOwnerTier}
}

// MaskedBankAccount keeps only the last four characters of the account id.
func (o *OwnerTier) MaskedBankAccount() string {
	account := strings.TrimSpace(o.BankAccountID)
	if len(account) <= 4 {
		return strings.Repeat("*", len(account))
	}

	return strings.Repeat("*", len(account)-4) + account[len(account)-4:]
}

// compareAndSet writes updates only if nobody bumped lock_version since o was
// loaded.
func (o *OwnerTier) compareAndSet(tx *gorm.DB, updates map[string]interface{}) error {
	updates["lock_version"] = o.LockVersion + 1

	result := tx.Model(&OwnerTier{}).
		Where("id = ? AND lock_version = ?", o.ID, o.LockVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("%w (owner id: %d, version: %d)", ErrStaleOwnerTier, o.OwnerID, o.LockVersion)
	}

	o.LockVersion++

	return nil
}

// CreditPayable moves a released payout into the owner's payable balance and
// books the reservation amount as revenue.
func (o *OwnerTier) CreditPayable(tx *gorm.DB, amount, revenue decimal.Decimal, reference Reference, now time.Time) error {
	if amount.IsNegative() || revenue.IsNegative() {
		return fmt.Errorf("cannot credit payable (owner id: %d, amount: %s, revenue: %s, pending: %s)", o.OwnerID, amount, revenue, o.PendingPayout)
	}

	pending_payout := o.PendingPayout.Add(amount)
	total_revenue := o.TotalRevenue.Add(revenue)

	if err := o.compareAndSet(tx, map[string]interface{}{
		"pending_payout": pending_payout,
		"total_revenue":  total_revenue,
		"updated_at":     now,
	}); err != nil {
		return err
	}

	o.PendingPayout = pending_payout
	o.TotalRevenue = total_revenue
	o.UpdatedAt = now

	return RecordLedgerEntry(tx, o, reference, amount, decimal.Zero, now)
}

// DebitPayable removes a paid out amount from the payable balance. The debit
// may not exceed the balance by more than rounding noise.
func (o *OwnerTier) DebitPayable(tx *gorm.DB, amount decimal.Decimal, reference Reference, now time.Time) error {
	if !amount.IsPositive() || amount.Sub(o.PendingPayout).GreaterThan(decimal.New(1, -2)) {
		return fmt.Errorf("cannot debit payable (owner id: %d, amount: %s, pending: %s)", o.OwnerID, amount, o.PendingPayout)
	}

	pending_payout := o.PendingPayout.Sub(amount)
	if pending_payout.IsNegative() {
		pending_payout = decimal.Zero
	}
	last_payout_date := null.TimeFrom(now)

	if err := o.compareAndSet(tx, map[string]interface{}{
		"pending_payout":   pending_payout,
		"last_payout_date": last_payout_date,
		"updated_at":       now,
	}); err != nil {
		return err
	}

	o.PendingPayout = pending_payout
	o.LastPayoutDate = last_payout_date
	o.UpdatedAt = now

	return RecordLedgerEntry(tx, o, reference, decimal.Zero, amount, now)
}

// TierSnapshot is the recomputed performance of an owner.
type TierSnapshot struct {
	Tier                types.Tier
	TotalReservations   int64
	AverageRating       float64
	AccountAgeMonths    int64
	MonthlyReservations int64
}

func (o *OwnerTier) ApplySnapshot(tx *gorm.DB, snapshot TierSnapshot, now time.Time) error {
	if err := o.compareAndSet(tx, map[string]interface{}{
		"current_tier":         snapshot.Tier,
		"total_reservations":   snapshot.TotalReservations,
		"average_rating":       snapshot.AverageRating,
		"account_age_months":   snapshot.AccountAgeMonths,
		"monthly_reservations": snapshot.MonthlyReservations,
		"updated_at":           now,
	}); err != nil {
		return err
	}

	o.CurrentTier = snapshot.Tier
	o.TotalReservations = snapshot.TotalReservations
	o.AverageRating = snapshot.AverageRating
	o.AccountAgeMonths = snapshot.AccountAgeMonths
	o.MonthlyReservations = snapshot.MonthlyReservations
	o.UpdatedAt = now

	return nil
}

func (o *OwnerTier) ToJSON() entities.OwnerTierEntity {
	next_tier, _ := policy.NextTier(o.CurrentTier, o.TotalReservations)

	return entities.OwnerTierEntity{
		OwnerID:             o.OwnerID,
		CurrentTier:         o.CurrentTier,
		NextTier:            next_tier,
		TotalReservations:   o.TotalReservations,
		AverageRating:       o.AverageRating,
		AccountAgeMonths:    o.AccountAgeMonths,
		MonthlyReservations: o.MonthlyReservations,
		IsExclusive:         o.IsExclusive,
		PendingPayout:       o.PendingPayout,
		TotalRevenue:        o.TotalRevenue,
		BankAccountVerified: o.BankAccountVerified,
		BankName:            o.BankName,
		BankAccount:         o.MaskedBankAccount(),
		LastPayoutDate:      o.LastPayoutDate.Ptr(),
	}
}
