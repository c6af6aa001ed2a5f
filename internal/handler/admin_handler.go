package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tikiti/internal/domain"
	"tikiti/internal/models"
	"tikiti/internal/service"
	"tikiti/pkg/momo"

	"github.com/gin-gonic/gin"
)

type eventCreator interface {
	Create(e *models.Event) error
}

type refundCreator interface {
	Create(r *models.Refund) error
}

type AdminHandler struct {
	eventRepo   eventCreator
	paymentRepo paymentStore
	refundRepo  refundCreator
	flow        PaymentFlow
}

func NewAdminHandler(eventRepo eventCreator, paymentRepo paymentStore, refundRepo refundCreator, flow PaymentFlow) *AdminHandler {
	return &AdminHandler{
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		flow:        flow,
	}
}

// CreateEvent registers a sellable event.
func (h *AdminHandler) CreateEvent(c *gin.Context) {
	var req struct {
		Slug     string `json:"slug" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Currency string `json:"currency" binding:"required,len=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := &models.Event{
		Slug:     strings.ToLower(req.Slug),
		Name:     req.Name,
		Currency: strings.ToUpper(req.Currency),
	}
	if err := h.eventRepo.Create(e); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "event create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": e.ID, "slug": e.Slug})
}

// Environments lists the deployments accepted as X-Target-Environment.
func (h *AdminHandler) Environments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"environments": momo.Environments})
}

// Refund sends money back for a confirmed payment. Refunds resolve mostly
// synchronously from the admin's point of view: a provider-declared failure
// during submission is returned here with its reason.
func (h *AdminHandler) Refund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	// Body is optional; no body means a full refund.
	_ = c.ShouldBindJSON(&req)
	if !h.flow.RefundSupported() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refunds are not enabled for this merchant"})
		return
	}
	p, err := h.paymentRepo.GetByProviderAndID(domain.ProviderMTNMoMo, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if p.State != domain.PaymentStateConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "payment is not confirmed"})
		return
	}
	amount := req.AmountCents
	if amount <= 0 {
		amount = p.AmountCents
	}
	if amount > p.AmountCents {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refund exceeds payment amount"})
		return
	}

	r := &models.Refund{
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		AmountCents: amount,
		Currency:    p.Currency,
		Provider:    domain.ProviderMTNMoMo,
		State:       domain.RefundStateCreated,
	}
	if err := h.refundRepo.Create(r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refund create failed"})
		return
	}

	if err := h.flow.ExecuteRefund(c.Request.Context(), r); err != nil {
		var refundErr *service.RefundError
		switch {
		case errors.As(err, &refundErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     "refund failed",
				"reason":    refundErr.Reason,
				"refund_id": r.ID,
			})
		case errors.Is(err, service.ErrPaymentComms):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "refund_id": r.ID})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refund failed", "refund_id": r.ID})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"refund_id": r.ID, "state": r.State})
}

// Shred erases payer data from a payment's stored provider payload.
func (h *AdminHandler) Shred(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	p, err := h.paymentRepo.GetByProviderAndID(domain.ProviderMTNMoMo, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if err := h.flow.ShredPaymentInfo(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shred failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_id": p.ID, "shredded": true})
}
