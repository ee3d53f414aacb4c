package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"trade-service/internal/blob"
	"trade-service/internal/models"
	"trade-service/internal/service"
	"trade-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	trades   *service.TradeRequestService
	invoices *service.InvoiceService
	dealers  *service.DealerService
	admin    service.DangerousOperations
	photos   blob.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(
	trades *service.TradeRequestService,
	invoices *service.InvoiceService,
	dealers *service.DealerService,
	admin service.DangerousOperations,
	photos blob.Store,
) *Handler {
	return &Handler{
		trades:   trades,
		invoices: invoices,
		dealers:  dealers,
		admin:    admin,
		photos:   photos,
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
		v1.POST("/trade-requests", h.createTradeRequest)
		v1.GET("/trade-requests", h.listTradeRequests)
		v1.GET("/trade-requests/:id", h.getTradeRequest)
		v1.PATCH("/trade-requests/:id", h.updateTradeRequest)
		v1.POST("/trade-requests/:id/status", h.updateInspectionStatus)
		v1.POST("/trade-requests/:id/photos", h.uploadPhoto)

		v1.POST("/trade-requests/:id/invoice/request", h.requestInvoice)
		v1.POST("/trade-requests/:id/invoice/received", h.markInvoiceReceived)
		v1.POST("/trade-requests/:id/invoice/payment", h.recordPayment)
		v1.POST("/trade-requests/:id/invoice/documents", h.confirmDocuments)
		v1.POST("/trade-requests/:id/sale-type", h.setSaleType)

		v1.POST("/dealers", h.createDealer)
		v1.GET("/dealers", h.listDealers)
		v1.GET("/dealers/:id", h.getDealer)
		v1.GET("/dealers/:id/analytics", h.getDealerAnalytics)

		v1.DELETE("/admin/trade-requests", h.clearTradeRequests)
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

func (h *Handler) createTradeRequest(c *gin.Context) {
	var in service.CreateTradeRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.trades.CreateTradeRequest(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) listTradeRequests(c *gin.Context) {
	ctx := c.Request.Context()

	if dealerID := c.Query("dealer_id"); dealerID != "" {
		requests, err := h.trades.GetTradeRequestsByDealerID(ctx, dealerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trade_requests": requests})
		return
	}

	requests, err := h.trades.ListTradeRequests(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade_requests": requests})
}

func (h *Handler) getTradeRequest(c *gin.Context) {
	req, err := h.trades.GetTradeRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) updateTradeRequest(c *gin.Context) {
	var patch models.TradeRequestPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.trades.UpdateTradeRequest(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

type updateStatusRequest struct {
	Status models.InspectionStatus `json:"status" binding:"required"`
	service.TransitionInput
}

func (h *Handler) updateInspectionStatus(c *gin.Context) {
	var in updateStatusRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.trades.UpdateInspectionStatus(c.Request.Context(), c.Param("id"), in.Status, in.TransitionInput)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}

	ctx := c.Request.Context()
	url, err := h.photos.Put(ctx, header.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo", "details": err.Error()})
		return
	}

	req, err := h.trades.GetTradeRequestByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	photos := append(append([]string{}, req.Inspection.Photos...), url)
	updated, err := h.trades.UpdateTradeRequest(ctx, req.ID, models.TradeRequestPatch{
		Inspection: &models.InspectionPatch{Photos: &photos},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "trade_request": updated})
}

func (h *Handler) requestInvoice(c *gin.Context) {
	var in service.InvoiceRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.invoices.RequestInvoice(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) markInvoiceReceived(c *gin.Context) {
	var in struct {
		DocumentURL string `json:"document_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.invoices.MarkInvoiceReceived(c.Request.Context(), c.Param("id"), in.DocumentURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) recordPayment(c *gin.Context) {
	var in struct {
		Reference string `json:"reference" binding:"required"`
		ProofURL  string `json:"proof_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.invoices.RecordPayment(c.Request.Context(), c.Param("id"), in.Reference, in.ProofURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) confirmDocuments(c *gin.Context) {
	req, err := h.invoices.ConfirmDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) setSaleType(c *gin.Context) {
	var in struct {
		SaleType     models.SaleType `json:"sale_type" binding:"required"`
		SellingPrice *int64          `json:"selling_price,omitempty"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req, err := h.invoices.SetSaleType(c.Request.Context(), c.Param("id"), in.SaleType, in.SellingPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) createDealer(c *gin.Context) {
	var in service.CreateDealerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	dealer, err := h.dealers.CreateDealer(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dealer)
}

func (h *Handler) listDealers(c *gin.Context) {
	dealers, err := h.dealers.GetDealers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dealers": dealers})
}

func (h *Handler) getDealer(c *gin.Context) {
	dealer, err := h.dealers.GetDealerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dealer)
}

func (h *Handler) getDealerAnalytics(c *gin.Context) {
	analytics, err := h.dealers.GetDealerAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) clearTradeRequests(c *gin.Context) {
	if err := h.admin.ClearTradeRequests(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// respondError maps the typed failure taxonomy onto HTTP statuses, always
// carrying enough detail for the caller to render an actionable message.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *models.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Validation failed",
			"violations": e.Violations,
		})
	case *models.NotFoundError:
		c.JSON(http.StatusNotFound, gin.H{
			"error":  e.Error(),
			"entity": e.Entity,
			"id":     e.ID,
		})
	case *models.TransitionError:
		c.JSON(http.StatusConflict, gin.H{
			"error":     e.Error(),
			"current":   e.Current,
			"requested": e.Requested,
		})
	case *models.ConflictError:
		c.JSON(http.StatusConflict, gin.H{
			"error": e.Error(),
			"id":    e.ID,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
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
