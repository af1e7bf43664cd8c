package http

import (
	"time"

	"github.com/895623789/fresh-store-backend/configs"
	"github.com/895623789/fresh-store-backend/internal/adapter/http/middleware"
	"github.com/895623789/fresh-store-backend/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg configs.Config, oh *OrderHandler, ph *PaymentHandler, ah *AuthHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "X-Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "service": cfg.App.Name})
	})
	// scraped by Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/verify-token", ah.VerifyToken)
			auth.POST("/custom-token", authz.Require("auth.mint"), ah.CustomToken)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", oh.CreateOrder)
			orders.GET("/:id", oh.GetOrderByID)
			orders.GET("/customer/:customer_id", oh.ListByCustomer)
			orders.PUT("/:id/status", authz.Require("orders.write"), oh.UpdateStatus)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/intent", ph.CreateIntent)
			payments.POST("/callback", ph.Callback)
			payments.GET("/:payment_id", ph.GetPayment)
			payments.POST("/refund", authz.Require("payments.refund"), ph.Refund)
		}
	}

	return r
}
