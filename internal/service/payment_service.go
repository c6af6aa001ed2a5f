package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tikiti/internal/domain"
	"tikiti/internal/events"
	"tikiti/internal/models"
	"tikiti/pkg/momo"

	"github.com/google/uuid"
)

var (
	// ErrPaymentComms is surfaced to the customer when the provider cannot
	// be reached while submitting a charge or refund.
	ErrPaymentComms = errors.New("we had trouble communicating with the payment service, please try again")

	ErrRefundNotSupported = errors.New("refunds are not enabled for this merchant")
	ErrMissingReference   = errors.New("attempt has no provider reference")
)

// RefundError carries the provider-reported reason for a failed refund back
// to the initiating caller.
type RefundError struct {
	Reason string
}

func (e *RefundError) Error() string {
	return "refund failed: " + e.Reason
}

// PaymentStore is the slice of the payment repository the service uses.
type PaymentStore interface {
	GetByID(id uint) (*models.Payment, error)
	GetByProviderAndID(provider string, id uint) (*models.Payment, error)
	Update(p *models.Payment) error
	ListInStateSince(provider, state string, since time.Time) ([]models.Payment, error)
}

type RefundStore interface {
	GetByProviderAndID(provider string, id uint) (*models.Refund, error)
	Update(r *models.Refund) error
	ListInStateSince(provider, state string, since time.Time) ([]models.Refund, error)
}

type OrderStore interface {
	GetByID(id uint) (*models.Order, error)
	Update(o *models.Order) error
}

type EventStore interface {
	GetByID(id uint) (*models.Event, error)
}

// PaymentService drives MTN MoMo charges and refunds through their lifecycle:
// submit with a fresh reference, then reconcile the asynchronous outcome into
// the payment/refund and its order.
type PaymentService struct {
	client      *momo.Client
	payments    PaymentStore
	refunds     RefundStore
	orders      OrderStore
	eventStore  EventStore
	publisher   *events.Publisher
	webhookBase string
}

func NewPaymentService(
	client *momo.Client,
	payments PaymentStore,
	refunds RefundStore,
	orders OrderStore,
	eventStore EventStore,
	publisher *events.Publisher,
	webhookBase string,
) *PaymentService {
	return &PaymentService{
		client:      client,
		payments:    payments,
		refunds:     refunds,
		orders:      orders,
		eventStore:  eventStore,
		publisher:   publisher,
		webhookBase: webhookBase,
	}
}

// RefundSupported reports whether the disbursement API family is configured.
func (s *PaymentService) RefundSupported() bool {
	return s.client.Credentials().RefundSupported()
}

// ExecutePayment submits the charge for a freshly created payment. The
// reference is generated and persisted before any network call, so a crash
// mid-submission is recoverable by reconciliation. On success the payment
// moves to PENDING and is immediately reconciled once, since the provider may
// already have resolved the charge before the callback arrives.
func (s *PaymentService) ExecutePayment(ctx context.Context, p *models.Payment) error {
	order, err := s.orders.GetByID(p.OrderID)
	if err != nil {
		return err
	}
	event, err := s.eventStore.GetByID(order.EventID)
	if err != nil {
		return err
	}

	refid := uuid.New().String()
	p.SetInfoData(map[string]interface{}{"reference": refid})
	if err := s.payments.Update(p); err != nil {
		return err
	}

	externalID := externalID(event.Slug, order.Code, "P", p.ID)
	body := momo.PayRequest{
		Amount:     amountString(p.AmountCents),
		Currency:   p.Currency,
		ExternalID: externalID,
		Payer: momo.Party{
			PartyIDType: "MSISDN",
			PartyID:     strings.TrimPrefix(p.MSISDN, "+"),
		},
		PayerMessage: externalID,
		PayeeNote:    event.Name,
	}
	callback := s.webhookURL("payment", p.ID)
	if err := s.client.RequestToPay(ctx, refid, callback, body); err != nil {
		log.Printf("[MoMo] requesttopay failed for payment %d: %v", p.ID, err)
		s.failPayment(p, map[string]interface{}{
			"reference": refid,
			"error":     err.Error(),
		})
		return ErrPaymentComms
	}

	// The held phone number is only needed for submission.
	p.MSISDN = ""
	p.State = domain.PaymentStatePending
	if err := s.payments.Update(p); err != nil {
		return err
	}
	return s.UpdatePayment(ctx, p)
}

// UpdatePayment reconciles a submitted payment against the provider. A
// transport failure is transient: it is logged and left for the next trigger
// (callback, sweep, or customer reload).
func (s *PaymentService) UpdatePayment(ctx context.Context, p *models.Payment) error {
	reference := p.Reference()
	if reference == "" {
		return ErrMissingReference
	}
	d, err := s.client.PaymentStatus(ctx, reference)
	if err != nil {
		log.Printf("[MoMo] could not update payment %d state: %v", p.ID, err)
		return nil
	}

	status, _ := d["status"].(string)
	// Successful and failed are separate conditionals, not an exclusive
	// branch; the provider never reports both, and confirm runs first.
	if status == domain.MomoStatusSuccessful {
		p.SetInfoData(merge(p.InfoData(), d))
		if err := s.payments.Update(p); err != nil {
			return err
		}
		if err := s.confirmPayment(p); err != nil {
			return err
		}
	}
	if status == domain.MomoStatusFailed &&
		(p.State == domain.PaymentStateCreated || p.State == domain.PaymentStatePending) {
		s.failPayment(p, merge(p.InfoData(), d))
	} else {
		p.SetInfoData(merge(p.InfoData(), d))
		if err := s.payments.Update(p); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteRefund submits a refund for a confirmed payment via the disbursement
// API. Unlike charges, a terminal failure must reach the initiating caller,
// so UpdateRefund's error is propagated.
func (s *PaymentService) ExecuteRefund(ctx context.Context, r *models.Refund) error {
	if !s.RefundSupported() {
		return ErrRefundNotSupported
	}
	payment, err := s.payments.GetByID(r.PaymentID)
	if err != nil {
		return err
	}
	if payment.Reference() == "" {
		return ErrMissingReference
	}
	order, err := s.orders.GetByID(r.OrderID)
	if err != nil {
		return err
	}
	event, err := s.eventStore.GetByID(order.EventID)
	if err != nil {
		return err
	}

	refid := uuid.New().String()
	r.SetInfoData(map[string]interface{}{"reference": refid})
	if err := s.refunds.Update(r); err != nil {
		return err
	}

	externalID := externalID(event.Slug, order.Code, "R", r.ID)
	body := momo.RefundRequest{
		Amount:              amountString(r.AmountCents),
		Currency:            r.Currency,
		ExternalID:          externalID,
		ReferenceIDToRefund: payment.Reference(),
		PayerMessage:        externalID,
		PayeeNote:           event.Name,
	}
	callback := s.webhookURL("refund", r.ID)
	if err := s.client.Refund(ctx, refid, callback, body); err != nil {
		log.Printf("[MoMo] refund submission failed for refund %d: %v", r.ID, err)
		return ErrPaymentComms
	}

	r.State = domain.RefundStateTransit
	if err := s.refunds.Update(r); err != nil {
		return err
	}
	return s.UpdateRefund(ctx, r)
}

// UpdateRefund reconciles a submitted refund. A provider-reported failure on
// a live refund is returned as a RefundError carrying the reason; the refund
// record itself is left in its current state for the caller to act on.
func (s *PaymentService) UpdateRefund(ctx context.Context, r *models.Refund) error {
	reference := r.Reference()
	if reference == "" {
		return ErrMissingReference
	}
	d, err := s.client.RefundStatus(ctx, reference)
	if err != nil {
		log.Printf("[MoMo] could not update refund %d state: %v", r.ID, err)
		return nil
	}

	status, _ := d["status"].(string)
	if status == domain.MomoStatusSuccessful {
		r.SetInfoData(merge(r.InfoData(), d))
		if err := s.refunds.Update(r); err != nil {
			return err
		}
		if err := s.doneRefund(r); err != nil {
			return err
		}
	}
	if status == domain.MomoStatusFailed &&
		(r.State == domain.RefundStateCreated || r.State == domain.RefundStateTransit) {
		reason, _ := d["reason"].(string)
		return &RefundError{Reason: reason}
	} else {
		r.SetInfoData(merge(r.InfoData(), d))
		if err := s.refunds.Update(r); err != nil {
			return err
		}
	}
	return nil
}

// CheckPayment reloads a payment and reconciles it. Entry point for the task
// queue and the provider callback.
func (s *PaymentService) CheckPayment(ctx context.Context, id uint) error {
	p, err := s.payments.GetByProviderAndID(domain.ProviderMTNMoMo, id)
	if err != nil {
		return err
	}
	return s.UpdatePayment(ctx, p)
}

// CheckRefund reloads a refund and reconciles it.
func (s *PaymentService) CheckRefund(ctx context.Context, id uint) error {
	r, err := s.refunds.GetByProviderAndID(domain.ProviderMTNMoMo, id)
	if err != nil {
		return err
	}
	return s.UpdateRefund(ctx, r)
}

// ShredPaymentInfo erases payer data from the stored provider payload while
// keeping the reference for bookkeeping.
func (s *PaymentService) ShredPaymentInfo(p *models.Payment) error {
	if p.Info == "" {
		return nil
	}
	d := p.InfoData()
	d["payer"] = map[string]interface{}{"_shredded": true}
	d["_shredded"] = true
	p.SetInfoData(d)
	return s.payments.Update(p)
}

// confirmPayment is idempotent: an already confirmed payment is left as-is.
func (s *PaymentService) confirmPayment(p *models.Payment) error {
	if p.State == domain.PaymentStateConfirmed {
		return nil
	}
	now := time.Now()
	p.State = domain.PaymentStateConfirmed
	p.ConfirmedAt = &now
	if err := s.payments.Update(p); err != nil {
		return err
	}
	if order, err := s.orders.GetByID(p.OrderID); err == nil && order.Status != domain.OrderStatusPaid {
		order.Status = domain.OrderStatusPaid
		if err := s.orders.Update(order); err != nil {
			log.Printf("[MoMo] could not mark order %d paid: %v", order.ID, err)
		}
	}
	s.publisher.PaymentConfirmed(p)
	return nil
}

// failPayment records the failure payload and moves the payment to FAILED.
// Terminal payments are left untouched.
func (s *PaymentService) failPayment(p *models.Payment, info map[string]interface{}) {
	if p.State == domain.PaymentStateConfirmed || p.State == domain.PaymentStateFailed {
		return
	}
	p.SetInfoData(info)
	p.State = domain.PaymentStateFailed
	if err := s.payments.Update(p); err != nil {
		log.Printf("[MoMo] could not persist failed payment %d: %v", p.ID, err)
		return
	}
	s.publisher.PaymentFailed(p)
}

func (s *PaymentService) doneRefund(r *models.Refund) error {
	if r.State == domain.RefundStateDone {
		return nil
	}
	now := time.Now()
	r.State = domain.RefundStateDone
	r.DoneAt = &now
	if err := s.refunds.Update(r); err != nil {
		return err
	}
	if order, err := s.orders.GetByID(r.OrderID); err == nil {
		if r.AmountCents >= order.AmountCents && order.Status != domain.OrderStatusRefunded {
			order.Status = domain.OrderStatusRefunded
			if err := s.orders.Update(order); err != nil {
				log.Printf("[MoMo] could not mark order %d refunded: %v", order.ID, err)
			}
		}
	}
	s.publisher.RefundDone(r)
	return nil
}

func (s *PaymentService) webhookURL(kind string, id uint) string {
	if s.webhookBase == "" {
		return ""
	}
	return fmt.Sprintf("%s/_mtn_momo/webhook/?%s=%d", strings.TrimRight(s.webhookBase, "/"), kind, id)
}

// externalID builds the provider-visible id, e.g. SUMMERFEST-A1B2C3-P-7.
func externalID(slug, code, kind string, id uint) string {
	return fmt.Sprintf("%s-%s-%s-%d", strings.ToUpper(slug), code, kind, id)
}

// amountString renders minor units the way the provider expects: whole major
// units when even, two decimals otherwise.
func amountString(cents int64) string {
	if cents%100 == 0 {
		return strconv.FormatInt(cents/100, 10)
	}
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func merge(base, overlay map[string]interface{}) map[string]interface{} {
	for k, v := range overlay {
		base[k] = v
	}
	return base
}
