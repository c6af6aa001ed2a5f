package models

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     uint           `gorm:"not null;index" json:"event_id"`
	Code        string         `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Email       string         `gorm:"size:255" json:"email"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Status      string         `gorm:"size:20;not null;index" json:"status"` // PENDING, PAID, REFUNDED, CANCELED
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
