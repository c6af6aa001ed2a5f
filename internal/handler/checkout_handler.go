package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"tikiti/internal/domain"
	"tikiti/internal/models"
	"tikiti/internal/queue"
	"tikiti/internal/service"

	"github.com/gin-gonic/gin"
)

type eventByID interface {
	GetByID(id uint) (*models.Event, error)
}

type paymentStore interface {
	Create(p *models.Payment) error
	GetByProviderAndID(provider string, id uint) (*models.Payment, error)
}

type orderByCode interface {
	GetByCode(code string) (*models.Order, error)
}

type CheckoutHandler struct {
	orderRepo   orderByCode
	eventRepo   eventByID
	paymentRepo paymentStore
	flow        PaymentFlow
	tasks       queue.TaskQueue
}

func NewCheckoutHandler(orderRepo orderByCode, eventRepo eventByID, paymentRepo paymentStore, flow PaymentFlow, tasks queue.TaskQueue) *CheckoutHandler {
	return &CheckoutHandler{
		orderRepo:   orderRepo,
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		flow:        flow,
		tasks:       tasks,
	}
}

// Pay starts an MTN MoMo charge for an order. The customer gets a prompt on
// their phone; the outcome arrives asynchronously.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	var req struct {
		MSISDN string `json:"msisdn" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orderRepo.GetByCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.Status == domain.OrderStatusPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "order already paid"})
		return
	}
	event, err := h.eventRepo.GetByID(order.EventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event lookup failed"})
		return
	}
	msisdn := NormalizeMSISDN(req.MSISDN)
	if msisdn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}

	p := &models.Payment{
		OrderID:     order.ID,
		AmountCents: order.AmountCents,
		Currency:    event.Currency,
		MSISDN:      msisdn,
		Provider:    domain.ProviderMTNMoMo,
		State:       domain.PaymentStateCreated,
	}
	if err := h.paymentRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment create failed"})
		return
	}

	if err := h.flow.ExecutePayment(c.Request.Context(), p); err != nil {
		if errors.Is(err, service.ErrPaymentComms) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "payment_id": p.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed", "payment_id": p.ID})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id": p.ID,
		"state":      p.State,
		"message":    "Check your phone to approve the Mobile Money payment.",
	})
}

// Status returns the payment state. A payment still waiting on the provider
// gets an opportunistic re-check enqueued, so a customer reloading the
// pending page nudges reconciliation along.
func (h *CheckoutHandler) Status(c *gin.Context) {
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
	if p.State == domain.PaymentStatePending {
		h.tasks.Enqueue(queue.Task{Kind: queue.CheckPayment, ID: p.ID})
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id":   p.ID,
		"state":        p.State,
		"amount_cents": p.AmountCents,
		"currency":     p.Currency,
	})
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeMSISDN reduces user input to +<digits>. Real validation is the
// provider's job; this only rejects obviously broken input.
func NormalizeMSISDN(s string) string {
	digits := nonDigits.ReplaceAllString(strings.TrimSpace(s), "")
	if len(digits) < 8 || len(digits) > 15 {
		return ""
	}
	return "+" + digits
}
