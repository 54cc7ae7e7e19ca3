package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"payout-service/internal/ingest"
	"payout-service/internal/models"
	"payout-service/internal/redisclient"
	"payout-service/internal/report"
	"payout-service/internal/service"
	"payout-service/internal/store"
	"payout-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	ingestService  *service.IngestService
	poolService    *service.PoolService
	creatorService *service.CreatorService
	orchestrator   *service.PayoutOrchestrator
	store          *store.Store
	cache          *redisclient.Client
}

// NewHandler creates a new HTTP handler. Cache may be nil; the summary
// endpoint then always recomputes from the database.
func NewHandler(
	ingestService *service.IngestService,
	poolService *service.PoolService,
	creatorService *service.CreatorService,
	orchestrator *service.PayoutOrchestrator,
	st *store.Store,
	cache *redisclient.Client,
) *Handler {
	return &Handler{
		ingestService:  ingestService,
		poolService:    poolService,
		creatorService: creatorService,
		orchestrator:   orchestrator,
		store:          st,
		cache:          cache,
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
		v1.POST("/imports/csv", h.importCSV)
		v1.POST("/imports/single", h.importSingleFile)
		v1.POST("/imports/rows", h.importRows)

		v1.POST("/svod-pool", h.savePool)
		v1.GET("/svod-pool/:month", h.getPool)

		v1.POST("/payouts/recalculate", h.recalculatePayouts)
		v1.GET("/payouts", h.listPayouts)
		v1.GET("/payouts/summary", h.payoutSummary)

		v1.GET("/creators", h.listCreators)
		v1.POST("/creators", h.createCreator)
		v1.PATCH("/creators/:id/share", h.updateShare)

		v1.GET("/reports/:creatorID", h.creatorStatement)
	}
}

// session builds the caller identity from gateway-verified headers.
// Authentication itself happens upstream.
func session(c *gin.Context) models.Session {
	return models.Session{
		UserID:    c.GetHeader("X-User-Id"),
		CreatorID: c.GetHeader("X-Creator-Id"),
		Role:      c.GetHeader("X-User-Role"),
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

// importCSV commits the two-file analytics export for one creator-month
func (h *Handler) importCSV(c *gin.Context) {
	creatorID := c.PostForm("creator_id")
	month := c.PostForm("report_month")

	views, err := formFile(c, "views")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing views file", "details": err.Error()})
		return
	}
	defer views.Close()

	duration, err := formFile(c, "duration")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing duration file", "details": err.Error()})
		return
	}
	defer duration.Close()

	result, err := h.ingestService.CommitCSVImport(c.Request.Context(),
		creatorID, month, c.GetHeader("Idempotency-Key"), views, duration)
	if err != nil {
		writeServiceError(c, err, "Failed to import analytics")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// importSingleFile commits a combined export with aliased headers
func (h *Handler) importSingleFile(c *gin.Context) {
	creatorID := c.PostForm("creator_id")
	month := c.PostForm("report_month")

	file, err := formFile(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing analytics file", "details": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.ingestService.CommitSingleFileImport(c.Request.Context(),
		creatorID, month, c.GetHeader("Idempotency-Key"), file)
	if err != nil {
		writeServiceError(c, err, "Failed to import analytics")
		return
	}

	c.JSON(http.StatusCreated, result)
}

type importRowsRequest struct {
	CreatorID   string              `json:"creator_id"`
	ReportMonth string              `json:"report_month"`
	Entries     []ingest.EntryInput `json:"entries"`
}

// importRows commits manually entered rows. Entries pass through the
// same staging validation the interactive path uses: a title plus at
// least one metric per row.
func (h *Handler) importRows(c *gin.Context) {
	var req importRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	staging := ingest.NewStaging()
	for i, entry := range req.Entries {
		if _, err := staging.Add(entry); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   fmt.Sprintf("Invalid entry at row %d", i+1),
				"details": err.Error(),
			})
			return
		}
	}

	result, err := h.ingestService.CommitRows(c.Request.Context(),
		req.CreatorID, req.ReportMonth, c.GetHeader("Idempotency-Key"),
		service.SourceManual, staging.Drain())
	if err != nil {
		writeServiceError(c, err, "Failed to import analytics")
		return
	}

	c.JSON(http.StatusCreated, result)
}

type savePoolRequest struct {
	ReportMonth          string  `json:"report_month"`
	TotalPool            float64 `json:"total_pool"`
	PlatformTotalStreams int64   `json:"platform_total_streams"`
}

// savePool records the month's platform-wide SVOD revenue pool
func (h *Handler) savePool(c *gin.Context) {
	var req savePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pool, err := h.poolService.SavePool(c.Request.Context(), session(c),
		req.ReportMonth, req.TotalPool, req.PlatformTotalStreams)
	if err != nil {
		writeServiceError(c, err, "Failed to save pool entry")
		return
	}

	c.JSON(http.StatusCreated, pool)
}

// getPool returns the month's pool entry
func (h *Handler) getPool(c *gin.Context) {
	pool, err := h.poolService.GetPool(c.Request.Context(), c.Param("month"))
	if err != nil {
		writeServiceError(c, err, "Failed to fetch pool entry")
		return
	}
	if pool == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No pool entry for month"})
		return
	}

	c.JSON(http.StatusOK, pool)
}

type recalculateRequest struct {
	ReportMonth string `json:"report_month"`
}

// recalculatePayouts triggers a synchronous recalculation run. The same
// run also fires off the event consumer; this endpoint exists for
// operators who want the result and row count back.
func (h *Handler) recalculatePayouts(c *gin.Context) {
	if !session(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		return
	}

	var req recalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	count, err := h.orchestrator.Recalculate(c.Request.Context(), req.ReportMonth)
	if err != nil {
		writeServiceError(c, err, "Failed to recalculate payouts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report_month": req.ReportMonth,
		"creators":     count,
	})
}

// listPayouts returns the derived payout rows for a month
func (h *Handler) listPayouts(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month query parameter is required"})
		return
	}

	payouts, err := h.store.GetPayouts(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payouts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report_month": month, "payouts": payouts})
}

// payoutSummary returns the cached month-level totals when present
func (h *Handler) payoutSummary(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month query parameter is required"})
		return
	}

	if h.cache != nil {
		summary, err := h.cache.GetPayoutSummary(c.Request.Context(), month)
		if err == nil && summary != nil {
			c.JSON(http.StatusOK, summary)
			return
		}
	}

	payouts, err := h.store.GetPayouts(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payouts", "details": err.Error()})
		return
	}

	summary := redisclient.PayoutSummary{ReportMonth: month}
	for _, p := range payouts {
		summary.CreatorCount++
		summary.TotalNet += p.NetPayout
		summary.TotalFees += p.PlatformFee
	}
	c.JSON(http.StatusOK, summary)
}

// listCreators returns the roster
func (h *Handler) listCreators(c *gin.Context) {
	creators, err := h.creatorService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch creators", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"creators": creators})
}

type createCreatorRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	RevenueShare float64 `json:"revenue_share"`
}

// createCreator adds a creator to the roster
func (h *Handler) createCreator(c *gin.Context) {
	var req createCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	creator, err := h.creatorService.Create(c.Request.Context(), session(c),
		req.Name, req.Email, req.RevenueShare)
	if err != nil {
		writeServiceError(c, err, "Failed to create creator")
		return
	}

	c.JSON(http.StatusCreated, creator)
}

type updateShareRequest struct {
	RevenueShare float64 `json:"revenue_share"`
}

// updateShare changes a creator's revenue share
func (h *Handler) updateShare(c *gin.Context) {
	var req updateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err := h.creatorService.UpdateShare(c.Request.Context(), session(c),
		c.Param("id"), req.RevenueShare)
	if err != nil {
		writeServiceError(c, err, "Failed to update revenue share")
		return
	}

	c.JSON(http.StatusOK, gin.H{"creator_id": c.Param("id"), "revenue_share": req.RevenueShare})
}

// creatorStatement renders the print-ready HTML statement for one
// creator and month
func (h *Handler) creatorStatement(c *gin.Context) {
	creatorID := c.Param("creatorID")
	month := c.DefaultQuery("month", time.Now().Format("2006-01"))
	ctx := c.Request.Context()

	// creators may only view their own statement
	sess := session(c)
	if !sess.IsAdmin() && sess.CreatorID != creatorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your statement"})
		return
	}

	creator, err := h.store.GetCreatorByID(ctx, creatorID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found", "details": err.Error()})
		return
	}

	titles, err := h.store.GetTitlesByCreator(ctx, creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch titles", "details": err.Error()})
		return
	}
	metrics, err := h.store.GetMonthlyMetrics(ctx, creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics", "details": err.Error()})
		return
	}
	pool, err := h.store.GetSVODPool(ctx, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pool entry", "details": err.Error()})
		return
	}
	ppv, err := h.store.GetPPVTransactions(ctx, creatorID, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ppv sales", "details": err.Error()})
		return
	}

	html, err := report.Render(report.StatementData{
		Creator:  creator,
		Titles:   titles,
		Metrics:  metrics,
		SVODPool: pool,
		PPVItems: ppv,
		Month:    month,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render statement", "details": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// formFile opens a named multipart upload
func formFile(c *gin.Context, name string) (multipart.File, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil, err
	}
	return fh.Open()
}

// writeServiceError maps service sentinels onto HTTP statuses
func writeServiceError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrDuplicateImport):
		status = http.StatusConflict
	case errors.Is(err, service.ErrPoolMissing):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrCreatorRequired),
		errors.Is(err, service.ErrNoRowsToImport),
		errors.Is(err, service.ErrInvalidPool),
		errors.Is(err, service.ErrInvalidStreams),
		errors.Is(err, service.ErrShareOutOfRange),
		errors.Is(err, service.ErrAdminShareEdit):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": msg, "details": err.Error()})
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
