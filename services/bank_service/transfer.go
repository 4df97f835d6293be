package bank_service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/venuex/config"
)

type Transfer struct {
	Reference     uuid.UUID
	OwnerID       uint64
	Amount        decimal.Decimal
	BankName      string
	AccountID     string
	AccountHolder string
}

// Transferer moves money to an owner's bank account. Implementations must
// fail fast; the payout batch retries on its next run.
type Transferer interface {
	Transfer(ctx context.Context, transfer Transfer) error
}

// LedgerTransferer accepts every transfer and only logs it. Real settlement
// happens outside this service from the recorded payout batches.
type LedgerTransferer struct{}

func NewLedgerTransferer() *LedgerTransferer {
	return &LedgerTransferer{}
}

func (t *LedgerTransferer) Transfer(ctx context.Context, transfer Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"reference": transfer.Reference.String(),
		"owner_id":  transfer.OwnerID,
		"amount":    transfer.Amount.StringFixed(2),
		"bank":      transfer.BankName,
	}).Info("Bank transfer accepted")

	return nil
}
