package policy

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/venuex/types"
)

// CancellationTerms is the share of the booking amount refunded to the user
// and the share kept as commission.
type CancellationTerms struct {
	RefundPercentage decimal.Decimal
	CommissionRate   decimal.Decimal
}

type CancellationSettlement struct {
	CancellationTerms
	HoursUntil       float64
	RefundAmount     decimal.Decimal
	CommissionAmount decimal.Decimal
	OwnerPayout      decimal.Decimal
}

func HoursUntil(startAt, now time.Time) float64 {
	return startAt.Sub(now).Hours()
}

// TermsFor picks the refund/commission split for a cancellation happening
// hoursUntil hours before the booking starts. The 24h and 48h boundaries both
// belong to the partial refund bracket.
func TermsFor(cancelledBy types.CancelledBy, hoursUntil float64) (CancellationTerms, error) {
	switch cancelledBy {
	case types.CancelledByOwner:
		return CancellationTerms{RefundPercentage: Percent(100), CommissionRate: decimal.Zero}, nil
	case types.CancelledByUser:
		switch {
		case hoursUntil > 48:
			return CancellationTerms{RefundPercentage: Percent(100), CommissionRate: decimal.Zero}, nil
		case hoursUntil >= 24:
			return CancellationTerms{RefundPercentage: Percent(50), CommissionRate: Percent(5)}, nil
		default:
			return CancellationTerms{RefundPercentage: decimal.Zero, CommissionRate: Percent(10)}, nil
		}
	default:
		return CancellationTerms{}, types.NewValidationError("unknown cancelled_by value %q", cancelledBy)
	}
}

func SettleCancellation(cancelledBy types.CancelledBy, amount decimal.Decimal, hoursUntil float64) (*CancellationSettlement, error) {
	if amount.IsNegative() {
		return nil, types.NewValidationError("reservation amount must not be negative, got %s", amount.String())
	}

	terms, err := TermsFor(cancelledBy, hoursUntil)
	if err != nil {
		return nil, err
	}

	refund := RoundMoney(amount.Mul(terms.RefundPercentage))
	commission := RoundMoney(amount.Mul(terms.CommissionRate))
	payout := RoundMoney(amount.Sub(commission).Sub(refund))
	if payout.IsNegative() {
		payout = decimal.Zero
	}

	return &CancellationSettlement{
		CancellationTerms: terms,
		HoursUntil:        hoursUntil,
		RefundAmount:      refund,
		CommissionAmount:  commission,
		OwnerPayout:       payout,
	}, nil
}
