package models

import "time"

type Venue struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	OwnerID   uint64    `json:"owner_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
