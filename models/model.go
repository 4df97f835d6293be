package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lock adds SELECT ... FOR UPDATE on databases that support row locks.
// SQLite serializes writers on its own.
func Lock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	return tx
}

type Reference struct {
	ID   uint64 `json:"id"`
	Type string `json:"type"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&OwnerTier{},
		&Commission{},
		&LedgerEntry{},
		&PayoutBatch{},
		&Booking{},
		&Venue{},
		&Payment{},
		&Notification{},
	)
}
