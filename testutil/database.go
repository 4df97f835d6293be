// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a migrated in-memory SQLite database. A single
// connection keeps every query on the same memory database.
func NewDatabase(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sql_db, err := db.DB()
	require.NoError(t, err)
	sql_db.SetMaxOpenConns(1)
	t.Cleanup(func() { sql_db.Close() })

	require.NoError(t, models.Migrate(db))

	return db
}

// Clock is a settable time source.
type Clock struct {
	Current time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{Current: t.UTC()}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

func (c *Clock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

func CreateOwnerTier(t testing.TB, db *gorm.DB, owner_tier *models.OwnerTier) *models.OwnerTier {
	t.Helper()

	if owner_tier.CurrentTier == "" {
		owner_tier.CurrentTier = types.TierBronze
	}
	require.NoError(t, db.Create(owner_tier).Error)

	return owner_tier
}

func CreateBooking(t testing.TB, db *gorm.DB, owner_id uint64, status types.BookingStatus, amount string, start_at time.Time) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		OwnerID:     owner_id,
		UserID:      owner_id + 1000,
		StartAt:     start_at,
		TotalAmount: decimal.RequireFromString(amount),
		Status:      status,
	}
	require.NoError(t, db.Create(booking).Error)

	return booking
}

func CreatePayment(t testing.TB, db *gorm.DB, booking *models.Booking) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		BookingID: booking.ID,
		Amount:    booking.TotalAmount,
		Status:    types.PaymentStatusCompleted,
	}
	require.NoError(t, db.Create(payment).Error)

	return payment
}

func CreateVenue(t testing.TB, db *gorm.DB, owner_id uint64, rating float64) *models.Venue {
	t.Helper()

	venue := &models.Venue{OwnerID: owner_id, Name: "Court", Rating: rating}
	require.NoError(t, db.Create(venue).Error)

	return venue
}

func ReloadCommission(t testing.TB, db *gorm.DB, id uint64) *models.Commission {
	t.Helper()

	var commission models.Commission
	require.NoError(t, db.First(&commission, id).Error)

	return &commission
}

func ReloadOwnerTier(t testing.TB, db *gorm.DB, owner_id uint64) *models.OwnerTier {
	t.Helper()

	owner_tier, err := models.FindOwnerTier(db, owner_id)
	require.NoError(t, err)

	return owner_tier
}
