package payout_service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/services/bank_service"
	"github.com/zsmartex/venuex/services/commission_service"
	"github.com/zsmartex/venuex/services/escrow_service"
	"github.com/zsmartex/venuex/services/notification_service"
	"github.com/zsmartex/venuex/services/payout_service"
	"github.com/zsmartex/venuex/testutil"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	messages []notification_service.Message
}

func (n *recordingNotifier) Notify(ctx context.Context, message notification_service.Message) error {
	n.messages = append(n.messages, message)
	return nil
}

type flakyBank struct {
	failing   map[uint64]bool
	attempts  []bank_service.Transfer
	transfers []bank_service.Transfer
}

func (b *flakyBank) Transfer(ctx context.Context, transfer bank_service.Transfer) error {
	b.attempts = append(b.attempts, transfer)
	if b.failing[transfer.OwnerID] {
		return errors.New("connection reset by peer")
	}

	b.transfers = append(b.transfers, transfer)
	return nil
}

type suitePayoutTester struct {
	suite.Suite

	db       *gorm.DB
	clock    *testutil.Clock
	bank     *flakyBank
	notifier *recordingNotifier
	service  *payout_service.Service
}

func (s *suitePayoutTester) SetupTest() {
	s.db = testutil.NewDatabase(s.T())
	s.clock = testutil.NewClock(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	s.bank = &flakyBank{failing: map[uint64]bool{}}
	s.notifier = &recordingNotifier{}

	s.service = payout_service.NewService(s.db, s.bank, s.notifier)
	s.service.Now = s.clock.Now
}

func (s *suitePayoutTester) owner(owner_id uint64, verified bool) {
	testutil.CreateOwnerTier(s.T(), s.db, &models.OwnerTier{
		OwnerID:             owner_id,
		BankAccountVerified: verified,
		BankName:            "First Harbor Bank",
		BankAccountID:       "4400123456789",
		BankAccountHolder:   "Harbor Hall LLC",
	})
}

// earn books and completes reservations for owner_id and releases their escrow.
func (s *suitePayoutTester) earn(owner_id uint64, amounts ...string) {
	commissions := commission_service.NewService(s.db)
	commissions.Now = s.clock.Now

	for _, amount := range amounts {
		booking := testutil.CreateBooking(s.T(), s.db, owner_id, types.BookingStatusCompleted, amount, s.clock.Now().Add(-time.Hour))
		_, err := commissions.ComputeCommission(context.Background(), booking.ID, owner_id, booking.TotalAmount)
		s.Require().NoError(err)
	}

	s.clock.Advance(48 * time.Hour)

	escrow := escrow_service.NewService(s.db)
	escrow.Now = s.clock.Now
	_, err := escrow.ReleaseHeldPayments(context.Background())
	s.Require().NoError(err)
}

func (s *suitePayoutTester) completedPayoutTotal(owner_id uint64) decimal.Decimal {
	var commissions []*models.Commission
	s.Require().NoError(s.db.Where("owner_id = ? AND payout_status = ?", owner_id, types.PayoutStatusCompleted).Find(&commissions).Error)

	total := decimal.Zero
	for _, commission := range commissions {
		total = total.Add(commission.OwnerPayout)
	}

	return total
}

func (s *suitePayoutTester) TestPaysOutTheWholeReleasedBalance() {
	s.owner(1, true)
	// bronze: 100 -> 90.00, 66.67 -> 60.00
	s.earn(1, "100", "66.67")
	s.Equal("150.00", testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.StringFixed(2))

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	s.Equal(1, result.ProcessedCount)
	s.Equal(0, result.FailedCount)
	s.Equal("150.00", result.TotalAmount.StringFixed(2))
	s.Require().Len(result.Owners, 1)

	payout := result.Owners[0]
	s.Equal(payout_service.StatusPaid, payout.Status)
	s.Equal(2, payout.CommissionCount)
	s.Equal("*********6789", payout.MaskedAccount)

	owner_tier := testutil.ReloadOwnerTier(s.T(), s.db, 1)
	s.True(owner_tier.PendingPayout.IsZero())
	s.True(owner_tier.LastPayoutDate.Valid)
	s.Equal("150.00", s.completedPayoutTotal(1).StringFixed(2))

	var batch models.PayoutBatch
	s.Require().NoError(s.db.Where("owner_id = ?", 1).First(&batch).Error)
	s.Equal(payout.BatchUUID, batch.UUID.String())
	s.Equal("150.00", batch.Amount.StringFixed(2))

	var commissions []*models.Commission
	s.Require().NoError(s.db.Where("owner_id = ?", 1).Find(&commissions).Error)
	for _, commission := range commissions {
		s.True(commission.PayoutDate.Valid)
		s.Equal(batch.ID, commission.PayoutBatchID.Uint64)
	}

	s.Require().Len(s.bank.transfers, 1)
	s.Equal(batch.UUID, s.bank.transfers[0].Reference)
	s.Require().Len(s.notifier.messages, 1)
	s.Equal(types.NotificationTypePayout, s.notifier.messages[0].Type)
	s.Contains(s.notifier.messages[0].Message, "150.00")
	s.Contains(s.notifier.messages[0].Message, "*********6789")
}

func (s *suitePayoutTester) TestIgnoresSmallAndUnverifiedBalances() {
	s.owner(1, true)
	s.owner(2, false)
	s.earn(1, "100")
	s.earn(2, "500")

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	s.Equal(0, result.ProcessedCount)
	s.Empty(result.Owners)
	s.Empty(s.bank.transfers)
	s.Equal("90.00", testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.StringFixed(2))
	s.Equal("450.00", testutil.ReloadOwnerTier(s.T(), s.db, 2).PendingPayout.StringFixed(2))
}

func (s *suitePayoutTester) TestPaysABalanceOfExactlyTheMinimum() {
	s.owner(1, true)
	// bronze: 111.11 -> commission 11.11, payout 100.00
	s.earn(1, "111.11")
	s.Equal("100.00", testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.StringFixed(2))

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	s.Equal(1, result.ProcessedCount)
	s.Equal("100.00", result.TotalAmount.StringFixed(2))
	s.True(testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.IsZero())
}

func (s *suitePayoutTester) TestReportsBalanceNotBackedByCommissions() {
	s.owner(1, true)
	s.earn(1, "100", "66.67")
	s.Require().NoError(s.db.Model(&models.OwnerTier{}).Where("owner_id = ?", 1).Update("pending_payout", decimal.NewFromInt(160)).Error)

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)
	s.Require().Len(result.Owners, 1)

	payout := result.Owners[0]
	s.Equal(payout_service.StatusPaid, payout.Status)
	s.Equal("150.00", payout.Amount.StringFixed(2))
	s.Equal("10.00", payout.Unreconciled.StringFixed(2))
	s.Equal("10.00", testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.StringFixed(2))
}

func (s *suitePayoutTester) TestRetriedTransferKeepsItsReference() {
	s.owner(1, true)
	s.earn(1, "200")
	s.bank.failing[1] = true

	for i := 0; i < 2; i++ {
		result, err := s.service.ProcessPayouts(context.Background())
		s.Require().NoError(err)
		s.Equal(1, result.FailedCount)
	}

	s.Require().Len(s.bank.attempts, 2)
	s.Equal(s.bank.attempts[0].Reference, s.bank.attempts[1].Reference)

	s.bank.failing[1] = false
	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(1, result.ProcessedCount)
	s.Equal(s.bank.attempts[0].Reference.String(), result.Owners[0].BatchUUID)
}

func (s *suitePayoutTester) TestSkipsOwnerWithoutReleasedCommissions() {
	s.owner(1, true)
	s.Require().NoError(s.db.Model(&models.OwnerTier{}).Where("owner_id = ?", 1).Update("pending_payout", decimal.NewFromInt(120)).Error)

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	s.Equal(1, result.SkippedCount)
	s.Equal(payout_service.StatusSkipped, result.Owners[0].Status)
	s.Equal("120.00", testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.StringFixed(2))
}

func (s *suitePayoutTester) TestOneFailedTransferDoesNotStopTheBatch() {
	s.owner(1, true)
	s.owner(2, true)
	s.earn(1, "200")
	s.earn(2, "300")
	s.bank.failing[1] = true

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	s.Equal(1, result.ProcessedCount)
	s.Equal(1, result.FailedCount)
	s.Equal("270.00", result.TotalAmount.StringFixed(2))

	failed := result.Owners[0]
	s.Equal(uint64(1), failed.OwnerID)
	s.Equal(payout_service.StatusFailed, failed.Status)
	s.Contains(failed.Reason, "connection reset by peer")

	s.Equal("180.00", testutil.ReloadOwnerTier(s.T(), s.db, 1).PendingPayout.StringFixed(2))
	s.True(s.completedPayoutTotal(1).IsZero())

	var batches int64
	s.Require().NoError(s.db.Model(&models.PayoutBatch{}).Where("owner_id = ?", 1).Count(&batches).Error)
	s.Zero(batches)

	s.True(testutil.ReloadOwnerTier(s.T(), s.db, 2).PendingPayout.IsZero())
	s.Len(s.notifier.messages, 1)
}

func (s *suitePayoutTester) TestSecondRunPaysNothing() {
	s.owner(1, true)
	s.earn(1, "200")

	_, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	result, err := s.service.ProcessPayouts(context.Background())
	s.Require().NoError(err)

	s.Equal(0, result.ProcessedCount)
	s.Empty(result.Owners)
	s.Len(s.bank.transfers, 1)
	s.Equal("180.00", s.completedPayoutTotal(1).StringFixed(2))
}

func TestTransferReference(t *testing.T) {
	reference := payout_service.TransferReference(1, []uint64{3, 1, 2})

	assert.Equal(t, reference, payout_service.TransferReference(1, []uint64{1, 2, 3}))
	assert.NotEqual(t, reference, payout_service.TransferReference(2, []uint64{1, 2, 3}))
	assert.NotEqual(t, reference, payout_service.TransferReference(1, []uint64{1, 2}))
	assert.NotEqual(t, reference, payout_service.TransferReference(1, []uint64{12, 3}))
}

func TestPayoutService(t *testing.T) {
	suite.Run(t, new(suitePayoutTester))
}
