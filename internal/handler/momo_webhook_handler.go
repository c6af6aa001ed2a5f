package handler

import (
	"log"
	"net/http"
	"strconv"

	"tikiti/internal/domain"
	"tikiti/internal/models"

	"github.com/gin-gonic/gin"
)

type paymentLookup interface {
	GetByProviderAndID(provider string, id uint) (*models.Payment, error)
}

type refundLookup interface {
	GetByProviderAndID(provider string, id uint) (*models.Refund, error)
}

type MomoWebhookHandler struct {
	paymentRepo paymentLookup
	refundRepo  refundLookup
	flow        PaymentFlow
}

func NewMomoWebhookHandler(paymentRepo paymentLookup, refundRepo refundLookup, flow PaymentFlow) *MomoWebhookHandler {
	return &MomoWebhookHandler{
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		flow:        flow,
	}
}

// Handle processes the provider callback. The endpoint carries no auth (the
// provider calls it without any session) and always answers 200 "OK" so the
// provider does not redeliver forever over transient internal errors; those
// are logged instead.
func (h *MomoWebhookHandler) Handle(c *gin.Context) {
	if v := c.Query("payment"); v != "" {
		h.checkPayment(c, v)
	} else if v := c.Query("refund"); v != "" {
		h.checkRefund(c, v)
	}
	c.String(http.StatusOK, "OK")
}

func (h *MomoWebhookHandler) checkPayment(c *gin.Context, raw string) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("[MoMo callback] bad payment id %q", raw)
		return
	}
	p, err := h.paymentRepo.GetByProviderAndID(domain.ProviderMTNMoMo, uint(id))
	if err != nil {
		log.Printf("[MoMo callback] payment %d not found", id)
		return
	}
	if err := h.flow.UpdatePayment(c.Request.Context(), p); err != nil {
		log.Printf("[MoMo callback] update payment %d: %v", p.ID, err)
	}
}

func (h *MomoWebhookHandler) checkRefund(c *gin.Context, raw string) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("[MoMo callback] bad refund id %q", raw)
		return
	}
	r, err := h.refundRepo.GetByProviderAndID(domain.ProviderMTNMoMo, uint(id))
	if err != nil {
		log.Printf("[MoMo callback] refund %d not found", id)
		return
	}
	// There is no caller to surface a refund failure to here; it stays in
	// the log and the record for the back office.
	if err := h.flow.UpdateRefund(c.Request.Context(), r); err != nil {
		log.Printf("[MoMo callback] update refund %d: %v", r.ID, err)
	}
}
