package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Payment is one charge attempt against an order. Info holds the provider
// payload as JSON: {"reference": <idempotency key>, ...raw provider fields}.
type Payment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;not null" json:"currency"`
	MSISDN      string         `gorm:"size:20" json:"-"`
	Provider    string         `gorm:"size:50;not null;index" json:"provider"`
	State       string         `gorm:"size:20;not null;index" json:"state"` // CREATED, PENDING, CONFIRMED, FAILED
	Info        string         `gorm:"type:text" json:"info"`
	ConfirmedAt *time.Time     `json:"confirmed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// InfoData decodes the provider info blob; never nil.
func (p *Payment) InfoData() map[string]interface{} {
	d := map[string]interface{}{}
	if p.Info != "" {
		_ = json.Unmarshal([]byte(p.Info), &d)
	}
	return d
}

func (p *Payment) SetInfoData(d map[string]interface{}) {
	b, _ := json.Marshal(d)
	p.Info = string(b)
}

// Reference returns the provider idempotency reference, if recorded.
func (p *Payment) Reference() string {
	ref, _ := p.InfoData()["reference"].(string)
	return ref
}
