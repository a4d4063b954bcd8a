// Package handler exposes the order pipeline over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cargotrack_backend/internal/orders/service"
	"cargotrack_backend/internal/orders/transport"
	"cargotrack_backend/internal/scheduler"
	"cargotrack_backend/platform/httpkit"
	"cargotrack_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	// A full sheet run fetches, notifies in paced batches and persists; it can
	// legitimately take minutes on a large sheet.
	processTimeout = 5 * time.Minute

	defaultRunsLimit = 50
	maxRunsLimit     = 200
)

// Handler handles HTTP requests for the order pipeline.
type Handler struct {
	svc       *service.Service
	scheduler scheduler.SheetScheduler
	val       *validator.Validator
}

// New creates a new orders handler. sched may be nil when Redis is not
// configured; the enqueue endpoint then responds 503.
func New(svc *service.Service, sched scheduler.SheetScheduler, val *validator.Validator) *Handler {
	return &Handler{svc: svc, scheduler: sched, val: val}
}

// Process runs the pipeline synchronously for one sheet.
// POST /api/v1/orders/process
func (h *Handler) Process(c *gin.Context) {
	var req transport.ProcessSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), processTimeout)
	defer cancel()

	result := h.svc.ProcessSheet(ctx, req.SheetName)
	if !result.Success {
		// The result is structured, not an error: the pipeline reports
		// failures in-band. 422 distinguishes a failed run from a bad request.
		httpkit.JSON(c, http.StatusUnprocessableEntity, result)
		return
	}
	httpkit.OK(c, result)
}

// Enqueue queues a pipeline run, optionally at a later time.
// POST /api/v1/orders/enqueue
func (h *Handler) Enqueue(c *gin.Context) {
	if h.scheduler == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "queued processing is not configured", nil)
		return
	}

	var req transport.EnqueueSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	taskID, err := h.scheduler.ScheduleProcessSheet(c.Request.Context(), scheduler.ProcessSheetPayload{SheetName: req.SheetName}, req.RunAt)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "failed to enqueue sheet run", nil)
		return
	}

	httpkit.Accepted(c, transport.EnqueueResponse{
		TaskID:    taskID,
		SheetName: req.SheetName,
		RunAt:     req.RunAt,
	})
}

// ListSheets returns the live sheet tab names.
// GET /api/v1/orders/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	sheets, err := h.svc.ListSheets(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SheetListResponse{Sheets: sheets})
}

// ListProcessed returns the processed-sheet markers.
// GET /api/v1/orders/processed
func (h *Handler) ListProcessed(c *gin.Context) {
	markers, err := h.svc.ListProcessedSheets(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.ProcessedSheetResponse, 0, len(markers))
	for _, m := range markers {
		resp = append(resp, transport.ProcessedSheetResponse{
			SheetName:   m.SheetName,
			ProcessedAt: m.ProcessedAt,
		})
	}
	httpkit.OK(c, resp)
}

// ListRuns returns the most recent pipeline runs.
// GET /api/v1/orders/runs?limit=50
func (h *Handler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		if parsed > maxRunsLimit {
			parsed = maxRunsLimit
		}
		limit = parsed
	}

	runs, err := h.svc.ListRecentRuns(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.RunResponse, 0, len(runs))
	for _, r := range runs {
		resp = append(resp, transport.RunResponse{
			ID:               r.ID,
			SheetName:        r.SheetName,
			StartedAt:        r.StartedAt,
			FinishedAt:       r.FinishedAt,
			Success:          r.Success,
			Message:          r.Message,
			NewCount:         r.NewCount,
			AlreadySentCount: r.AlreadySentCount,
			SkippedCount:     r.SkippedCount,
			SentCount:        r.SentCount,
			FailedCount:      r.FailedCount,
		})
	}
	httpkit.OK(c, resp)
}
