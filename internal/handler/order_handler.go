package handler

import (
	"net/http"
	"strings"

	"tikiti/internal/domain"
	"tikiti/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type eventBySlug interface {
	GetBySlug(slug string) (*models.Event, error)
}

type orderStore interface {
	Create(o *models.Order) error
	GetByCode(code string) (*models.Order, error)
}

type OrderHandler struct {
	eventRepo eventBySlug
	orderRepo orderStore
}

func NewOrderHandler(eventRepo eventBySlug, orderRepo orderStore) *OrderHandler {
	return &OrderHandler{eventRepo: eventRepo, orderRepo: orderRepo}
}

// Create registers a ticket order for an event. Payment happens separately
// via the pay endpoint.
func (h *OrderHandler) Create(c *gin.Context) {
	var req struct {
		EventSlug   string `json:"event_slug" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event, err := h.eventRepo.GetBySlug(req.EventSlug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	o := &models.Order{
		EventID:     event.ID,
		Code:        newOrderCode(),
		Email:       req.Email,
		AmountCents: req.AmountCents,
		Status:      domain.OrderStatusPending,
	}
	if err := h.orderRepo.Create(o); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":         o.Code,
		"event_slug":   event.Slug,
		"amount_cents": o.AmountCents,
		"currency":     event.Currency,
		"status":       o.Status,
	})
}

// Get returns the order by its public code.
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orderRepo.GetByCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":         o.Code,
		"amount_cents": o.AmountCents,
		"status":       o.Status,
	})
}

func newOrderCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:10]
}
