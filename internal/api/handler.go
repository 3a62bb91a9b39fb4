package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"voucher-service/internal/models"
	"voucher-service/internal/service"
	"voucher-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	inventory  *service.InventoryService
	issuance   *service.IssuanceService
	redemption *service.RedemptionService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	inventory *service.InventoryService,
	issuance *service.IssuanceService,
	redemption *service.RedemptionService,
) *Handler {
	return &Handler{
		inventory:  inventory,
		issuance:   issuance,
		redemption: redemption,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:productID", h.updateProduct)
		v1.POST("/products/:productID/stock", h.adjustStock)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:productID", h.getProduct)

		v1.POST("/tickets", h.issueTickets)
		v1.GET("/tickets", h.listTickets)
		v1.GET("/tickets/:id", h.getTicket)
		v1.GET("/tickets/product/:productID", h.listTicketsByProduct)
		v1.POST("/tickets/redeem", h.redeemTicket)
		v1.POST("/tickets/refund", h.refundTicket)
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

// createProduct handles product registration
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.inventory.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// updateProduct handles partial product updates
func (h *Handler) updateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.inventory.UpdateProduct(c.Request.Context(), c.Param("productID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// adjustStockRequest carries a signed stock delta
type adjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// adjustStock handles manual stock adjustment
func (h *Handler) adjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.inventory.AdjustStock(c.Request.Context(), c.Param("productID"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// getProduct handles get product by product_id
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.inventory.GetProduct(c.Request.Context(), c.Param("productID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// listProducts handles listing all products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.inventory.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// issueTickets handles ticket issuance
func (h *Handler) issueTickets(c *gin.Context) {
	var req service.IssueTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	tickets, err := h.issuance.IssueTickets(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tickets)
}

// getTicket handles get ticket by id
func (h *Handler) getTicket(c *gin.Context) {
	ticket, err := h.issuance.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// listTickets handles listing the whole ledger
func (h *Handler) listTickets(c *gin.Context) {
	tickets, err := h.issuance.ListTickets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// listTicketsByProduct handles listing tickets for one product
func (h *Handler) listTicketsByProduct(c *gin.Context) {
	tickets, err := h.issuance.ListTicketsByProduct(c.Request.Context(), c.Param("productID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// redeemTicketRequest carries the scanned or typed ticket reference
type redeemTicketRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
}

// redeemTicket handles ticket redemption
func (h *Handler) redeemTicket(c *gin.Context) {
	var req redeemTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ticket, err := h.redemption.RedeemTicket(c.Request.Context(), req.TicketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// refundTicket handles the explicit stock-reversal path
func (h *Handler) refundTicket(c *gin.Context) {
	var req redeemTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ticket, err := h.redemption.RefundTicket(c.Request.Context(), req.TicketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// respondError maps business-rule failures onto HTTP statuses.
// Anything outside the known taxonomy is a persistence failure and
// reports as 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInactiveProduct):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateID),
		errors.Is(err, models.ErrAlreadyRedeemed),
		errors.Is(err, models.ErrAlreadyRefunded):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
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
