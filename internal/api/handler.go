package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/service"
	"orders-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
	authService    *service.AuthService
	catalogService *service.CatalogService
	adminService   *service.AdminService
	addressService *service.AddressService
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	paymentService *service.PaymentService,
	authService *service.AuthService,
	catalogService *service.CatalogService,
	adminService *service.AdminService,
	addressService *service.AddressService,
) *Handler {
	return &Handler{
		orderService:   orderService,
		paymentService: paymentService,
		authService:    authService,
		catalogService: catalogService,
		adminService:   adminService,
		addressService: addressService,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.GET("/orders/by-owner/:ownerId", h.listOrdersByOwner)
		v1.POST("/payments", h.processPayment)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.POST("/users", h.registerUser)
		v1.POST("/users/login", h.loginUser)
		v1.GET("/users/:id", h.getUser)
		v1.POST("/users/recover-password", h.recoverPassword)
		v1.POST("/users/reset-password", h.resetPassword)
		v1.POST("/users/:id/addresses", h.createAddress)
		v1.GET("/users/:id/addresses", h.listAddresses)

		v1.POST("/admin/login", h.adminLogin)

		admin := v1.Group("", h.adminAuth())
		{
			admin.PATCH("/orders/:id/status", h.updateOrderStatus)
			admin.GET("/admin/orders", h.adminListOrders)
			admin.GET("/admin/report", h.adminReport)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps the failure taxonomy onto HTTP statuses. Internal
// failures get a generic body; raw database and gateway errors stay in the
// logs.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrGateway):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrGatewayUnavailable):
		h.logger.Error("Gateway unavailable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment gateway unavailable"})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
