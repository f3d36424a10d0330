package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// CrawlSubmitter queues crawl units without blocking.
type CrawlSubmitter interface {
	TrySubmit(domains []string) error
}

// ScanSubmitter queues scan units without blocking.
type ScanSubmitter interface {
	TrySubmit(domains, scanners []string) error
}

// CrawlRequest is the body of POST /api/crawl.
type CrawlRequest struct {
	Domains []string `json:"domains"`
}

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	Domains  []string `json:"domains"`
	Scanners []string `json:"scanners"`
}

// Handlers serves the crawl, scan and record endpoints.
type Handlers struct {
	crawls CrawlSubmitter
	scans  ScanSubmitter
	store  storage.Store
	logger logger.Logger
}

// NewHandlers creates the handlers.
func NewHandlers(crawls CrawlSubmitter, scans ScanSubmitter, store storage.Store, log logger.Logger) *Handlers {
	return &Handlers{crawls: crawls, scans: scans, store: store, logger: log}
}

// StartCrawl handles POST /api/crawl.
func (h *Handlers) StartCrawl(c *gin.Context) {
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.crawls.TrySubmit(req.Domains); err != nil {
		h.respondSubmitError(c, "crawl", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Crawl initialized for domains: " + formatList(req.Domains),
		"domains": req.Domains,
	})
}

// StartScan handles POST /api/scan.
func (h *Handlers) StartScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.scans.TrySubmit(req.Domains, req.Scanners); err != nil {
		h.respondSubmitError(c, "scan", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Scan initialized for domains: " + formatList(req.Domains),
		"domains":  req.Domains,
		"scanners": req.Scanners,
	})
}

// ListAssets handles GET /api/assets.
func (h *Handlers) ListAssets(c *gin.Context) {
	assets, err := h.store.ListAssets(c.Request.Context())
	if err != nil {
		h.requestLogger(c).Error("Failed to list assets", logger.Error(err))
		respondInternalError(c, "Failed to retrieve assets")
		return
	}
	if assets == nil {
		assets = []*domain.Asset{}
	}
	c.JSON(http.StatusOK, assets)
}

// ListReports handles GET /api/reports.
func (h *Handlers) ListReports(c *gin.Context) {
	reports, err := h.store.ListReports(c.Request.Context())
	if err != nil {
		h.requestLogger(c).Error("Failed to list reports", logger.Error(err))
		respondInternalError(c, "Failed to retrieve reports")
		return
	}
	if reports == nil {
		reports = []*domain.ScanReport{}
	}
	c.JSON(http.StatusOK, reports)
}

// respondSubmitError maps a saturated or stopped pool to 503 and anything
// else to 400. Domains queued before a 503 keep running.
func (h *Handlers) respondSubmitError(c *gin.Context, what string, err error) {
	if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrPoolNotRunning) {
		h.requestLogger(c).Warn("Rejected submission", logger.String("pipeline", what), logger.Error(err))
		c.Header("Retry-After", "5")
		respondError(c, http.StatusServiceUnavailable, fmt.Sprintf("The %s queue is full, retry later", what))
		return
	}
	respondBadRequest(c, err.Error())
}

// requestLogger returns the request-scoped logger set by RequestIDMiddleware.
func (h *Handlers) requestLogger(c *gin.Context) logger.Logger {
	return logger.FromContext(c.Request.Context(), h.logger)
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

func respondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, message)
}
