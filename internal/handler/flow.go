package handler

import (
	"context"

	"tikiti/internal/models"
)

// PaymentFlow is the slice of the payment service the HTTP layer depends on.
type PaymentFlow interface {
	ExecutePayment(ctx context.Context, p *models.Payment) error
	ExecuteRefund(ctx context.Context, r *models.Refund) error
	UpdatePayment(ctx context.Context, p *models.Payment) error
	UpdateRefund(ctx context.Context, r *models.Refund) error
	ShredPaymentInfo(p *models.Payment) error
	RefundSupported() bool
}
