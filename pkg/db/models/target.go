package models

import "time"

// Target is a named physical location robots navigate to. Deliveries
// reference targets by id for both source and destination.
type Target struct {
	ID          int    `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:128;not null"`
	Description *string
	Color       *string `gorm:"size:32"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Target) TableName() string {
	return "targets"
}
