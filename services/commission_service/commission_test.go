package commission_service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/models/datatypes"
	"github.com/zsmartex/venuex/policy"
	"github.com/zsmartex/venuex/services/commission_service"
	"github.com/zsmartex/venuex/testutil"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

type suiteCommissionServiceTester struct {
	suite.Suite

	db      *gorm.DB
	clock   *testutil.Clock
	service *commission_service.Service
}

func (s *suiteCommissionServiceTester) SetupTest() {
	s.db = testutil.NewDatabase(s.T())
	s.clock = testutil.NewClock(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	s.service = commission_service.NewService(s.db)
	s.service.Now = s.clock.Now
}

func (s *suiteCommissionServiceTester) TestBronzeOwnerWithEveryBonus() {
	testutil.CreateOwnerTier(s.T(), s.db, &models.OwnerTier{
		OwnerID:             1,
		CurrentTier:         types.TierBronze,
		AccountAgeMonths:    13,
		IsExclusive:         true,
		MonthlyReservations: 31,
		AverageRating:       4.6,
	})

	commission, err := s.service.ComputeCommission(context.Background(), 100, 1, decimal.NewFromInt(100))
	s.Require().NoError(err)

	s.Equal(types.TierBronze, commission.Tier)
	s.True(commission.BaseRate.Equal(decimal.RequireFromString("0.10")))
	s.Require().Len(commission.Adjustments, 4)
	s.Equal([]datatypes.AdjustmentType{
		datatypes.AdjustmentRating,
		datatypes.AdjustmentSeniority,
		datatypes.AdjustmentExclusivity,
		datatypes.AdjustmentVolume,
	}, []datatypes.AdjustmentType{
		commission.Adjustments[0].Type,
		commission.Adjustments[1].Type,
		commission.Adjustments[2].Type,
		commission.Adjustments[3].Type,
	})
	s.True(commission.FinalRate.Equal(decimal.RequireFromString("0.05")))
	s.Equal("5.00", commission.CommissionAmount.StringFixed(2))
	s.Equal("95.00", commission.OwnerPayout.StringFixed(2))
	s.Equal(types.CommissionStatusHeld, commission.Status)
	s.Equal(types.PayoutStatusPending, commission.PayoutStatus)
	s.True(commission.HoldUntil.Equal(s.clock.Now().Add(48 * time.Hour)))

	stored := testutil.ReloadCommission(s.T(), s.db, commission.ID)
	s.Len(stored.Adjustments, 4)
	s.True(stored.CommissionAmount.Add(stored.OwnerPayout).Equal(decimal.NewFromInt(100)))
}

func (s *suiteCommissionServiceTester) TestCreatesOwnerTierLazily() {
	commission, err := s.service.ComputeCommission(context.Background(), 7, 9, decimal.RequireFromString("59.99"))
	s.Require().NoError(err)

	s.Equal(types.TierBronze, commission.Tier)
	s.Empty(commission.Adjustments)
	s.Equal("6.00", commission.CommissionAmount.StringFixed(2))
	s.Equal("53.99", commission.OwnerPayout.StringFixed(2))

	owner_tier := testutil.ReloadOwnerTier(s.T(), s.db, 9)
	s.Equal(types.TierBronze, owner_tier.CurrentTier)
	s.True(owner_tier.PendingPayout.IsZero())
}

func (s *suiteCommissionServiceTester) TestPlatinumIsClampedAtFloor() {
	testutil.CreateOwnerTier(s.T(), s.db, &models.OwnerTier{
		OwnerID:             2,
		CurrentTier:         types.TierPlatinum,
		AccountAgeMonths:    40,
		IsExclusive:         true,
		MonthlyReservations: 80,
		AverageRating:       4.9,
	})

	commission, err := s.service.ComputeCommission(context.Background(), 8, 2, decimal.NewFromInt(300))
	s.Require().NoError(err)
	s.True(commission.FinalRate.Equal(policy.RateFloor))
	s.Equal("9.00", commission.CommissionAmount.StringFixed(2))
	s.Equal("291.00", commission.OwnerPayout.StringFixed(2))
}

func (s *suiteCommissionServiceTester) TestRecomputationIsIdempotent() {
	first, err := s.service.ComputeCommission(context.Background(), 5, 3, decimal.NewFromInt(100))
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	second, err := s.service.ComputeCommission(context.Background(), 5, 3, decimal.NewFromInt(250))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.True(second.ReservationAmount.Equal(decimal.NewFromInt(100)))
	s.True(second.HoldUntil.Equal(first.HoldUntil))

	var count int64
	s.db.Model(&models.Commission{}).Where("reservation_id = ?", 5).Count(&count)
	s.Equal(int64(1), count)
}

func (s *suiteCommissionServiceTester) TestRejectsReservationOwnedByAnotherOwner() {
	_, err := s.service.ComputeCommission(context.Background(), 6, 3, decimal.NewFromInt(100))
	s.Require().NoError(err)

	_, err = s.service.ComputeCommission(context.Background(), 6, 4, decimal.NewFromInt(100))
	s.True(types.IsKind(err, types.KindValidation))
}

func (s *suiteCommissionServiceTester) TestValidation() {
	ctx := context.Background()

	_, err := s.service.ComputeCommission(ctx, 1, 1, decimal.Zero)
	s.True(types.IsKind(err, types.KindValidation))

	_, err = s.service.ComputeCommission(ctx, 1, 1, decimal.NewFromInt(-5))
	s.True(types.IsKind(err, types.KindValidation))

	_, err = s.service.ComputeCommission(ctx, 0, 1, decimal.NewFromInt(5))
	s.True(types.IsKind(err, types.KindValidation))

	_, err = s.service.ComputeCommission(ctx, 1, 0, decimal.NewFromInt(5))
	s.True(types.IsKind(err, types.KindValidation))

	var count int64
	s.db.Model(&models.Commission{}).Count(&count)
	s.Equal(int64(0), count)
	s.db.Model(&models.OwnerTier{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *suiteCommissionServiceTester) TestUnknownTierIsConfigurationError() {
	testutil.CreateOwnerTier(s.T(), s.db, &models.OwnerTier{OwnerID: 12, CurrentTier: types.Tier("diamond")})

	_, err := s.service.ComputeCommission(context.Background(), 1, 12, decimal.NewFromInt(100))
	s.True(types.IsKind(err, types.KindConfiguration))
}

func (s *suiteCommissionServiceTester) TestListCommissions() {
	for i := uint64(1); i <= 3; i++ {
		_, err := s.service.ComputeCommission(context.Background(), i, 20, decimal.NewFromInt(10))
		s.Require().NoError(err)
	}
	_, err := s.service.ComputeCommission(context.Background(), 4, 21, decimal.NewFromInt(10))
	s.Require().NoError(err)

	commissions, err := s.service.ListCommissions(context.Background(), commission_service.ListFilter{OwnerID: 20, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(commissions, 2)
	s.Equal(uint64(3), commissions[0].ReservationID)

	commissions, err = s.service.ListCommissions(context.Background(), commission_service.ListFilter{OwnerID: 20, Limit: 2, Page: 2})
	s.Require().NoError(err)
	s.Len(commissions, 1)
}

func TestCommissionService(t *testing.T) {
	suite.Run(t, new(suiteCommissionServiceTester))
}
