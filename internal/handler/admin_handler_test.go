package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tikiti/internal/domain"
	"tikiti/internal/models"
	"tikiti/internal/service"

	"github.com/gin-gonic/gin"
)

type fakeEventCreator struct {
	created []*models.Event
}

func (f *fakeEventCreator) Create(e *models.Event) error {
	e.ID = uint(len(f.created) + 1)
	f.created = append(f.created, e)
	return nil
}

type fakeRefundCreator struct {
	created []*models.Refund
}

func (f *fakeRefundCreator) Create(r *models.Refund) error {
	r.ID = uint(len(f.created) + 1)
	f.created = append(f.created, r)
	return nil
}

type refundingFlow struct {
	fakeFlow
	refundErr error
	refunded  []*models.Refund
}

func (f *refundingFlow) ExecuteRefund(ctx context.Context, r *models.Refund) error {
	f.refunded = append(f.refunded, r)
	return f.refundErr
}

func adminRouter(flow PaymentFlow, events *fakeEventCreator, payments *fakePaymentStore, refunds *fakeRefundCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAdminHandler(events, payments, refunds, flow)
	r.POST("/admin/events", h.CreateEvent)
	r.POST("/admin/payments/:id/refund", h.Refund)
	r.POST("/admin/payments/:id/shred", h.Shred)
	return r
}

func adminPost(r *gin.Engine, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func confirmedPaymentStore() *fakePaymentStore {
	return &fakePaymentStore{fakePaymentLookup: fakePaymentLookup{byID: map[uint]*models.Payment{
		1: {
			ID:          1,
			OrderID:     1,
			AmountCents: 10000,
			Currency:    "EUR",
			Provider:    domain.ProviderMTNMoMo,
			State:       domain.PaymentStateConfirmed,
		},
	}}}
}

func TestCreateEvent(t *testing.T) {
	events := &fakeEventCreator{}
	r := adminRouter(&fakeFlow{}, events, confirmedPaymentStore(), &fakeRefundCreator{})
	w := adminPost(r, "/admin/events", `{"slug":"SummerFest","name":"Summer Fest","currency":"eur"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	if len(events.created) != 1 {
		t.Fatal("event not created")
	}
	e := events.created[0]
	if e.Slug != "summerfest" || e.Currency != "EUR" {
		t.Fatalf("event = %+v, want lowercased slug and uppercased currency", e)
	}
}

func TestRefund(t *testing.T) {
	t.Run("gated on disbursement configuration", func(t *testing.T) {
		flow := &refundingFlow{}
		flow.refundable = false
		r := adminRouter(flow, &fakeEventCreator{}, confirmedPaymentStore(), &fakeRefundCreator{})
		w := adminPost(r, "/admin/payments/1/refund", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("got %d, want 400", w.Code)
		}
		if len(flow.refunded) != 0 {
			t.Fatal("refund must not be submitted")
		}
	})

	t.Run("only confirmed payments are refundable", func(t *testing.T) {
		flow := &refundingFlow{}
		flow.refundable = true
		payments := confirmedPaymentStore()
		payments.byID[1].State = domain.PaymentStatePending
		r := adminRouter(flow, &fakeEventCreator{}, payments, &fakeRefundCreator{})
		w := adminPost(r, "/admin/payments/1/refund", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("got %d, want 409", w.Code)
		}
	})

	t.Run("no body means a full refund", func(t *testing.T) {
		flow := &refundingFlow{}
		flow.refundable = true
		refunds := &fakeRefundCreator{}
		r := adminRouter(flow, &fakeEventCreator{}, confirmedPaymentStore(), refunds)
		w := adminPost(r, "/admin/payments/1/refund", "")
		if w.Code != http.StatusCreated {
			t.Fatalf("got %d: %s", w.Code, w.Body.String())
		}
		if len(refunds.created) != 1 || refunds.created[0].AmountCents != 10000 {
			t.Fatalf("refunds = %+v, want full amount", refunds.created)
		}
	})

	t.Run("partial refunds pass the requested amount", func(t *testing.T) {
		flow := &refundingFlow{}
		flow.refundable = true
		refunds := &fakeRefundCreator{}
		r := adminRouter(flow, &fakeEventCreator{}, confirmedPaymentStore(), refunds)
		w := adminPost(r, "/admin/payments/1/refund", `{"amount_cents":2500}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("got %d: %s", w.Code, w.Body.String())
		}
		if refunds.created[0].AmountCents != 2500 {
			t.Fatalf("amount = %d, want 2500", refunds.created[0].AmountCents)
		}
	})

	t.Run("over-refunding is rejected", func(t *testing.T) {
		flow := &refundingFlow{}
		flow.refundable = true
		r := adminRouter(flow, &fakeEventCreator{}, confirmedPaymentStore(), &fakeRefundCreator{})
		w := adminPost(r, "/admin/payments/1/refund", `{"amount_cents":20000}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("got %d, want 400", w.Code)
		}
	})

	t.Run("provider failure reason reaches the admin", func(t *testing.T) {
		flow := &refundingFlow{refundErr: &service.RefundError{Reason: "NOT_ENOUGH_FUNDS"}}
		flow.refundable = true
		r := adminRouter(flow, &fakeEventCreator{}, confirmedPaymentStore(), &fakeRefundCreator{})
		w := adminPost(r, "/admin/payments/1/refund", "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("got %d: %s", w.Code, w.Body.String())
		}
		var resp map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["reason"] != "NOT_ENOUGH_FUNDS" {
			t.Fatalf("response = %v", resp)
		}
	})
}

func TestShred(t *testing.T) {
	flow := &fakeFlow{}
	r := adminRouter(flow, &fakeEventCreator{}, confirmedPaymentStore(), &fakeRefundCreator{})
	w := adminPost(r, "/admin/payments/1/shred", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	w = adminPost(r, "/admin/payments/999/shred", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}
