package payout_service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/services/bank_service"
	"github.com/zsmartex/venuex/services/notification_service"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

// MinimumPayout is the smallest payable balance worth a bank transfer.
var MinimumPayout = decimal.NewFromInt(100)

var (
	errNothingToPay = errors.New("no released commissions awaiting payout")
	errNotEligible  = errors.New("balance below minimum payout or bank account unverified")
)

var payoutNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://venuex.io/payouts"))

// TransferReference names the transfer of exactly this set of commissions.
// A retry of a transfer whose commit was lost carries the same reference, so
// the bank can drop the duplicate.
func TransferReference(owner_id uint64, commission_ids []uint64) uuid.UUID {
	ids := append([]uint64(nil), commission_ids...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}

	return uuid.NewSHA1(payoutNamespace, []byte(strconv.FormatUint(owner_id, 10)+":"+strings.Join(parts, ",")))
}

type Status = string

var (
	StatusPaid    Status = "paid"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type Service struct {
	DB       *gorm.DB
	Bank     bank_service.Transferer
	Notifier notification_service.Notifier
	Now      func() time.Time
}

func NewService(db *gorm.DB, bank bank_service.Transferer, notifier notification_service.Notifier) *Service {
	return &Service{
		DB:       db,
		Bank:     bank,
		Notifier: notifier,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type OwnerPayout struct {
	OwnerID         uint64          `json:"owner_id"`
	Status          Status          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	CommissionCount int             `json:"commission_count"`
	BatchUUID       string          `json:"batch_uuid,omitempty"`
	MaskedAccount   string          `json:"masked_account,omitempty"`
	// Unreconciled is what stayed in pending_payout after the debit because
	// no released commission backed it.
	Unreconciled decimal.Decimal `json:"unreconciled"`
	Reason       string          `json:"reason,omitempty"`
}

type Result struct {
	ProcessedCount int             `json:"processed_count"`
	FailedCount    int             `json:"failed_count"`
	SkippedCount   int             `json:"skipped_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Owners         []*OwnerPayout  `json:"owners"`
}

func (r *Result) add(payout *OwnerPayout) {
	r.Owners = append(r.Owners, payout)

	switch payout.Status {
	case StatusPaid:
		r.ProcessedCount++
		r.TotalAmount = r.TotalAmount.Add(payout.Amount)
	case StatusSkipped:
		r.SkippedCount++
	case StatusFailed:
		r.FailedCount++
	}
}

func eligible(owner_tier *models.OwnerTier) bool {
	return owner_tier.BankAccountVerified && owner_tier.PendingPayout.GreaterThanOrEqual(MinimumPayout)
}

// ProcessPayouts transfers the payable balance of every verified owner above
// MinimumPayout. Each owner is paid in its own transaction; a failure is
// reported and leaves that owner's balance for the next run.
func (s *Service) ProcessPayouts(ctx context.Context) (*Result, error) {
	var owner_tiers []*models.OwnerTier
	if err := s.DB.WithContext(ctx).
		Where("bank_account_verified = ?", true).
		Order("owner_id asc").
		Find(&owner_tiers).Error; err != nil {
		return nil, fmt.Errorf("load payable owners: %w", err)
	}

	result := &Result{TotalAmount: decimal.Zero, Owners: make([]*OwnerPayout, 0)}
	for _, owner_tier := range owner_tiers {
		if !eligible(owner_tier) {
			continue
		}

		payout := s.payOwner(ctx, owner_tier.ID, owner_tier.OwnerID)
		result.add(payout)
	}

	config.GetLogger().WithFields(logrus.Fields{
		"processed": result.ProcessedCount,
		"failed":    result.FailedCount,
		"skipped":   result.SkippedCount,
		"total":     result.TotalAmount.StringFixed(2),
	}).Info("Payout batch finished")

	return result, nil
}

func (s *Service) payOwner(ctx context.Context, owner_tier_id, owner_id uint64) *OwnerPayout {
	now := s.Now()
	payout := &OwnerPayout{OwnerID: owner_id, Amount: decimal.Zero}
	var owner_tier models.OwnerTier
	var batch_reference models.Reference

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.Lock(tx).First(&owner_tier, owner_tier_id).Error; err != nil {
			return err
		}
		if !eligible(&owner_tier) {
			return errNotEligible
		}

		var commissions []*models.Commission
		if err := models.Lock(tx).
			Where("owner_id = ? AND status = ? AND payout_status = ?", owner_tier.OwnerID, types.CommissionStatusReleased, types.PayoutStatusPending).
			Order("id asc").
			Find(&commissions).Error; err != nil {
			return err
		}
		if len(commissions) == 0 {
			return errNothingToPay
		}

		total := decimal.Zero
		commission_ids := make([]uint64, 0, len(commissions))
		for _, commission := range commissions {
			total = total.Add(commission.OwnerPayout)
			commission_ids = append(commission_ids, commission.ID)
		}

		batch := &models.PayoutBatch{
			UUID:            TransferReference(owner_tier.OwnerID, commission_ids),
			OwnerID:         owner_tier.OwnerID,
			Amount:          total,
			CommissionCount: len(commissions),
			MaskedAccount:   owner_tier.MaskedBankAccount(),
			PaidAt:          now,
			CreatedAt:       now,
		}
		if err := tx.Create(batch).Error; err != nil {
			return err
		}

		if err := models.MarkCommissionsPaid(tx, commissions, batch.ID, now); err != nil {
			return err
		}

		if err := owner_tier.DebitPayable(tx, total, batch.Reference(), now); err != nil {
			return err
		}

		// The transfer goes last so a failure rolls back every write above.
		if err := s.Bank.Transfer(ctx, bank_service.Transfer{
			Reference:     batch.UUID,
			OwnerID:       owner_tier.OwnerID,
			Amount:        total,
			BankName:      owner_tier.BankName,
			AccountID:     owner_tier.BankAccountID,
			AccountHolder: owner_tier.BankAccountHolder,
		}); err != nil {
			return types.NewExternalFailure(err, "bank transfer failed")
		}

		payout.Amount = total
		payout.CommissionCount = len(commissions)
		payout.BatchUUID = batch.UUID.String()
		payout.MaskedAccount = batch.MaskedAccount
		payout.Unreconciled = owner_tier.PendingPayout
		batch_reference = batch.Reference()

		return nil
	})

	switch {
	case err == nil:
		payout.Status = StatusPaid
	case errors.Is(err, errNothingToPay), errors.Is(err, errNotEligible):
		payout.Status = StatusSkipped
		payout.Reason = err.Error()
		return payout
	default:
		payout.Status = StatusFailed
		payout.Reason = err.Error()
		payout.Amount = decimal.Zero
		payout.CommissionCount = 0
		payout.BatchUUID = ""
		payout.Unreconciled = decimal.Zero
		config.GetLogger().WithField("owner_id", payout.OwnerID).Errorf("Payout failed: %v", err)
		return payout
	}

	config.GetLogger().WithFields(logrus.Fields{
		"owner_id":    payout.OwnerID,
		"amount":      payout.Amount.StringFixed(2),
		"commissions": payout.CommissionCount,
		"batch":       payout.BatchUUID,
	}).Info("Owner paid out")

	if payout.Unreconciled.IsPositive() {
		config.GetLogger().WithFields(logrus.Fields{
			"owner_id":     payout.OwnerID,
			"unreconciled": payout.Unreconciled.StringFixed(2),
		}).Warn("Pending payout not backed by released commissions")
	}

	notification_service.Dispatch(ctx, s.Notifier, notification_service.Message{
		RecipientID: owner_tier.OwnerID,
		Title:       "Payout sent",
		Message: fmt.Sprintf(
			"%s has been transferred to your %s account %s.",
			payout.Amount.StringFixed(2),
			owner_tier.BankName,
			payout.MaskedAccount,
		),
		Type:      types.NotificationTypePayout,
		Reference: batch_reference,
	})

	return payout
}
