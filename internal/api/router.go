// Package api exposes the storefront and the admin console over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/checkout"
	"github.com/safar/storefront/internal/metrics"
	"github.com/safar/storefront/internal/notify"
	"github.com/safar/storefront/internal/session"
)

// UserHeader carries the messaging platform identity of the shopper.
const UserHeader = "X-Line-User-Id"

const userKey = "user_id"

type Handler struct {
	ctl  *session.Controller
	auth *auth.Authenticator
	loc  *time.Location
	log  logrus.FieldLogger
}

func NewHandler(ctl *session.Controller, authenticator *auth.Authenticator, loc *time.Location, log logrus.FieldLogger) *Handler {
	return &Handler{ctl: ctl, auth: authenticator, loc: loc, log: log}
}

func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = checkout.MaxSlipSize + 1<<20
	r.Use(gin.Recovery(), requestLogger(h.log), metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	shop := r.Group("/api", identity())
	{
		shop.GET("/products", h.listProducts)
		shop.GET("/products/:id", h.getProduct)

		shop.GET("/cart", h.getCart)
		shop.DELETE("/cart", h.clearCart)
		shop.POST("/cart/items", h.addCartItem)
		shop.PUT("/cart/items/:id", h.setCartItem)
		shop.DELETE("/cart/items/:id", h.removeCartItem)

		shop.GET("/customer-info", h.getCustomerInfo)

		shop.POST("/checkout", h.startCheckout)
		shop.GET("/checkout", h.getCheckout)
		shop.DELETE("/checkout", h.closeCheckout)
		shop.POST("/checkout/next", h.nextStep)
		shop.POST("/checkout/back", h.backStep)
		shop.PUT("/checkout/customer", h.setCustomer)
		shop.PUT("/checkout/payment", h.setPayment)
		shop.POST("/checkout/confirm", h.confirm)

		shop.GET("/notices", h.getNotices)
	}

	r.POST("/api/admin/login", h.login)
	admin := r.Group("/api/admin", h.auth.Middleware())
	{
		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.GET("/orders", h.listOrders)
		admin.GET("/orders/:id", h.getOrder)
		admin.PUT("/orders/:id/status", h.setOrderStatus)

		admin.GET("/reports", h.report)
		admin.GET("/notices", h.adminNotices)

		admin.GET("/ledger", h.getLedgerSettings)
		admin.PUT("/ledger", h.updateLedgerSettings)
		admin.GET("/ledger/orders", h.ledgerOrders)
	}

	return r
}

// identity resolves the shopper from the messaging platform header.
// Requests without one shop as the shared guest.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserHeader)
		if userID == "" {
			userID = notify.GuestUserID
		}
		c.Set(userKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request handled")
	}
}
