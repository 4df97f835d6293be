package policy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/models/datatypes"
	"github.com/zsmartex/venuex/types"
)

// HoldDuration is the escrow window between computing a commission and
// being allowed to release it.
const HoldDuration = 48 * time.Hour

var (
	// RateFloor is the lowest final rate any combination of bonuses can reach.
	RateFloor = Percent(3)

	BaseRates = map[types.Tier]decimal.Decimal{
		types.TierBronze:   Percent(10),
		types.TierSilver:   Percent(7),
		types.TierGold:     Percent(5),
		types.TierPlatinum: Percent(3),
	}
)

// OwnerSnapshot is the part of an owner's tier record the adjustments look at.
type OwnerSnapshot struct {
	AverageRating       float64
	AccountAgeMonths    int64
	IsExclusive         bool
	MonthlyReservations int64
}

type Quote struct {
	Tier              types.Tier
	BaseRate          decimal.Decimal
	Adjustments       datatypes.Adjustments
	FinalRate         decimal.Decimal
	ReservationAmount decimal.Decimal
	CommissionAmount  decimal.Decimal
	OwnerPayout       decimal.Decimal
}

func BaseRate(tier types.Tier) (decimal.Decimal, error) {
	rate, ok := BaseRates[tier]
	if !ok {
		return decimal.Zero, types.NewConfigurationError("no base rate configured for tier %q", tier)
	}

	return rate, nil
}

// Adjust evaluates every bonus independently against the snapshot, in a fixed
// order: rating, seniority, exclusivity, volume.
func Adjust(s OwnerSnapshot) datatypes.Adjustments {
	adjustments := datatypes.Adjustments{}

	if s.AverageRating >= 4.5 {
		adjustments = append(adjustments, datatypes.Adjustment{
			Type:        datatypes.AdjustmentRating,
			Description: fmt.Sprintf("Rating bonus (%.1f stars)", s.AverageRating),
			Value:       Percent(-1),
		})
	}

	if s.AccountAgeMonths >= 12 {
		adjustments = append(adjustments, datatypes.Adjustment{
			Type:        datatypes.AdjustmentSeniority,
			Description: "Seniority bonus (12+ months)",
			Value:       Percent(-1),
		})
	} else if s.AccountAgeMonths >= 6 {
		adjustments = append(adjustments, datatypes.Adjustment{
			Type:        datatypes.AdjustmentSeniority,
			Description: "Seniority bonus (6+ months)",
			Value:       Percent(-0.5),
		})
	}

	if s.IsExclusive {
		adjustments = append(adjustments, datatypes.Adjustment{
			Type:        datatypes.AdjustmentExclusivity,
			Description: "Exclusivity bonus",
			Value:       Percent(-2),
		})
	}

	if s.MonthlyReservations >= 30 {
		adjustments = append(adjustments, datatypes.Adjustment{
			Type:        datatypes.AdjustmentVolume,
			Description: fmt.Sprintf("Volume bonus (%d reservations this month)", s.MonthlyReservations),
			Value:       Percent(-1),
		})
	}

	return adjustments
}

// FinalRate clamps base plus adjustments at RateFloor.
func FinalRate(base decimal.Decimal, adjustments datatypes.Adjustments) decimal.Decimal {
	return decimal.Max(RateFloor, base.Add(adjustments.Total()))
}

// SplitAmount divides amount into the commission and the owner's share.
// Both halves are rounded so they always add back up to amount.
func SplitAmount(amount, rate decimal.Decimal) (commission, payout decimal.Decimal) {
	commission = RoundMoney(amount.Mul(rate))
	payout = RoundMoney(amount.Sub(commission))

	return commission, payout
}

func QuoteCommission(tier types.Tier, snapshot OwnerSnapshot, amount decimal.Decimal) (*Quote, error) {
	if !amount.IsPositive() {
		return nil, types.NewValidationError("reservation amount must be positive, got %s", amount.String())
	}

	base, err := BaseRate(tier)
	if err != nil {
		return nil, err
	}

	adjustments := Adjust(snapshot)
	final := FinalRate(base, adjustments)
	commission, payout := SplitAmount(amount, final)

	return &Quote{
		Tier:              tier,
		BaseRate:          base,
		Adjustments:       adjustments,
		FinalRate:         final,
		ReservationAmount: amount,
		CommissionAmount:  commission,
		OwnerPayout:       payout,
	}, nil
}
