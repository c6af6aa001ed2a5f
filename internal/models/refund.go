package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Refund mirrors Payment for money flowing back to the customer. It carries
// its own provider reference and points at the payment being refunded.
type Refund struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PaymentID   uint           `gorm:"not null;index" json:"payment_id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;not null" json:"currency"`
	Provider    string         `gorm:"size:50;not null;index" json:"provider"`
	State       string         `gorm:"size:20;not null;index" json:"state"` // CREATED, TRANSIT, DONE, FAILED
	Info        string         `gorm:"type:text" json:"info"`
	DoneAt      *time.Time     `json:"done_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
}

func (Refund) TableName() string {
	return "refunds"
}

// InfoData decodes the provider info blob; never nil.
func (r *Refund) InfoData() map[string]interface{} {
	d := map[string]interface{}{}
	if r.Info != "" {
		_ = json.Unmarshal([]byte(r.Info), &d)
	}
	return d
}

func (r *Refund) SetInfoData(d map[string]interface{}) {
	b, _ := json.Marshal(d)
	r.Info = string(b)
}

// Reference returns the provider idempotency reference, if recorded.
func (r *Refund) Reference() string {
	ref, _ := r.InfoData()["reference"].(string)
	return ref
}
