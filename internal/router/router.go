package router

import (
	"time"

	"tikiti/config"
	"tikiti/internal/handler"
	"tikiti/internal/middleware"
	"tikiti/internal/queue"
	"tikiti/internal/repository"
	"tikiti/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, svc *service.PaymentService, tasks queue.TaskQueue) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo)
	orderHandler := handler.NewOrderHandler(eventRepo, orderRepo)
	checkoutHandler := handler.NewCheckoutHandler(orderRepo, eventRepo, paymentRepo, svc, tasks)
	adminHandler := handler.NewAdminHandler(eventRepo, paymentRepo, refundRepo, svc)
	webhookHandler := handler.NewMomoWebhookHandler(paymentRepo, refundRepo, svc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/orders", orderHandler.Create)
		api.GET("/orders/:code", orderHandler.Get)
		api.POST("/orders/:code/pay", checkoutHandler.Pay)
		api.GET("/payments/:id", checkoutHandler.Status)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/events", adminHandler.CreateEvent)
			admin.GET("/momo/environments", adminHandler.Environments)
			admin.POST("/payments/:id/refund", adminHandler.Refund)
			admin.POST("/payments/:id/shred", adminHandler.Shred)
		}
	}

	// The provider calls back without any session; this stays open.
	r.GET("/_mtn_momo/webhook/", webhookHandler.Handle)

	return r
}
