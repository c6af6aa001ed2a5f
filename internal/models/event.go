package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Currency  string         `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Event) TableName() string {
	return "events"
}
