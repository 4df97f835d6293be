package policy

import (
	"github.com/zsmartex/venuex/types"
)

type TierThreshold struct {
	Tier            types.Tier
	MinReservations int64
	MinRating       float64
}

// TierThresholds is ordered from the highest tier down; the first entry whose
// thresholds are all met wins.
var TierThresholds = []TierThreshold{
	{Tier: types.TierPlatinum, MinReservations: 100, MinRating: 4.5},
	{Tier: types.TierGold, MinReservations: 50},
	{Tier: types.TierSilver, MinReservations: 20},
	{Tier: types.TierBronze},
}

func (t TierThreshold) Met(totalReservations int64, averageRating float64) bool {
	return totalReservations >= t.MinReservations && averageRating >= t.MinRating
}

func ClassifyTier(totalReservations int64, averageRating float64) types.Tier {
	for _, threshold := range TierThresholds {
		if threshold.Met(totalReservations, averageRating) {
			return threshold.Tier
		}
	}

	return types.TierBronze
}

// TierRank orders tiers from 0 (bronze) to 3 (platinum).
func TierRank(tier types.Tier) (int, bool) {
	for i, threshold := range TierThresholds {
		if threshold.Tier == tier {
			return len(TierThresholds) - 1 - i, true
		}
	}

	return -1, false
}

func IsUpgrade(from, to types.Tier) bool {
	fromRank, ok := TierRank(from)
	if !ok {
		return false
	}
	toRank, ok := TierRank(to)
	if !ok {
		return false
	}

	return toRank > fromRank
}

// NextTier returns the tier above current and how many more completed
// reservations are needed to reach it. At platinum it returns ("", 0).
func NextTier(current types.Tier, totalReservations int64) (types.Tier, int64) {
	for i, threshold := range TierThresholds {
		if threshold.Tier != current {
			continue
		}
		if i == 0 {
			return "", 0
		}

		next := TierThresholds[i-1]
		needed := next.MinReservations - totalReservations
		if needed < 0 {
			needed = 0
		}

		return next.Tier, needed
	}

	return "", 0
}
