package models

import "time"

type Notification struct {
	ID            uint64    `json:"id" gorm:"primaryKey"`
	RecipientID   uint64    `json:"recipient_id" gorm:"index;not null"`
	Title         string    `json:"title" gorm:"not null"`
	Message       string    `json:"message" gorm:"type:text;not null"`
	Type          string    `json:"type" gorm:"type:varchar(32);index"`
	ReferenceType string    `json:"reference_type" gorm:"type:varchar(32)"`
	ReferenceID   uint64    `json:"reference_id"`
	Read          bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
}
