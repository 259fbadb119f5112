package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/middleware"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/service"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/response"
)

type priceSyncService interface {
	Options() dto.PriceSyncOptions
	GetRecord(ctx context.Context, id string) (*models.PriceUpdateRecord, error)
	RecordHistory(ctx context.Context, id string) ([]models.AuditLog, error)
	Register(ctx context.Context, req dto.RegisterPriceUpdateRequest, operator string) (*models.PriceUpdateRecord, error)
	CreateSession(ctx context.Context, req dto.CreatePriceSyncSessionRequest, operator string) (*dto.PriceSyncSessionView, error)
	GetSession(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	CloseSession(ctx context.Context, id string) error
	SwitchTab(ctx context.Context, id string, req dto.SwitchPriceSyncTabRequest) (*dto.PriceSyncSessionView, error)
	SetFilters(ctx context.Context, id string, req dto.UpdatePriceSyncFiltersRequest) (*dto.PriceSyncSessionView, error)
	SetPage(ctx context.Context, id string, req dto.SetPriceSyncPageRequest) (*dto.PriceSyncSessionView, error)
	ToggleSelection(ctx context.Context, id string, req dto.ToggleSelectionRequest) (*dto.PriceSyncSessionView, error)
	ToggleAll(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	ClearSelection(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	OpenReview(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	CancelReview(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	RemoveFromReview(ctx context.Context, id, recordID string) (*dto.PriceSyncSessionView, error)
	Commit(ctx context.Context, id, operator string) (*dto.PriceSyncCommitResult, error)
}

type syncedExporter interface {
	ExportSynced(ctx context.Context, format string, filter models.PriceUpdateFilter) (*service.ExportFile, error)
}

// PriceSyncHandler exposes the distributor price review workflow.
type PriceSyncHandler struct {
	service  priceSyncService
	exporter syncedExporter
}

// NewPriceSyncHandler builds a new handler.
func NewPriceSyncHandler(service priceSyncService, exporter syncedExporter) *PriceSyncHandler {
	return &PriceSyncHandler{service: service, exporter: exporter}
}

// Options godoc
// @Summary List price sync filter options
// @Tags PriceSync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /price-sync/options [get]
func (h *PriceSyncHandler) Options(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Options(), nil)
}

// GetRecord godoc
// @Summary Get a price update
// @Tags PriceSync
// @Produce json
// @Param id path string true "Price update ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/records/{id} [get]
func (h *PriceSyncHandler) GetRecord(c *gin.Context) {
	rec, err := h.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// RecordHistory godoc
// @Summary List audit entries of a price update
// @Tags PriceSync
// @Produce json
// @Param id path string true "Price update ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/records/{id}/history [get]
func (h *PriceSyncHandler) RecordHistory(c *gin.Context) {
	logs, err := h.service.RecordHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Register godoc
// @Summary Register a detected price discrepancy
// @Tags PriceSync
// @Accept json
// @Produce json
// @Param payload body dto.RegisterPriceUpdateRequest true "Price update payload"
// @Success 201 {object} response.Envelope
// @Router /price-sync/records [post]
func (h *PriceSyncHandler) Register(c *gin.Context) {
	var req dto.RegisterPriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid price update payload"))
		return
	}
	rec, err := h.service.Register(c.Request.Context(), req, operatorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// CreateSession godoc
// @Summary Open a price sync session
// @Tags PriceSync
// @Accept json
// @Produce json
// @Param payload body dto.CreatePriceSyncSessionRequest false "Session payload"
// @Success 201 {object} response.Envelope
// @Router /price-sync/sessions [post]
func (h *PriceSyncHandler) CreateSession(c *gin.Context) {
	var req dto.CreatePriceSyncSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
			return
		}
	}
	view, err := h.service.CreateSession(c.Request.Context(), req, operatorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, view, &view.Pagination)
}

// GetSession godoc
// @Summary Render the current page of a session
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id} [get]
func (h *PriceSyncHandler) GetSession(c *gin.Context) {
	h.respond(c, func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return h.service.GetSession(ctx, id)
	})
}

// CloseSession godoc
// @Summary Close a session
// @Tags PriceSync
// @Param id path string true "Session ID"
// @Success 204
// @Router /price-sync/sessions/{id} [delete]
func (h *PriceSyncHandler) CloseSession(c *gin.Context) {
	if err := h.service.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SwitchTab godoc
// @Summary Switch the active tab
// @Tags PriceSync
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SwitchPriceSyncTabRequest true "Tab payload"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/tab [put]
func (h *PriceSyncHandler) SwitchTab(c *gin.Context) {
	var req dto.SwitchPriceSyncTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tab payload"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return h.service.SwitchTab(ctx, id, req)
	})
}

// SetFilters godoc
// @Summary Set search and filters
// @Tags PriceSync
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdatePriceSyncFiltersRequest true "Filter payload"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/filters [put]
func (h *PriceSyncHandler) SetFilters(c *gin.Context) {
	var req dto.UpdatePriceSyncFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter payload"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return h.service.SetFilters(ctx, id, req)
	})
}

// SetPage godoc
// @Summary Move to a page
// @Tags PriceSync
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetPriceSyncPageRequest true "Page payload"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/page [put]
func (h *PriceSyncHandler) SetPage(c *gin.Context) {
	var req dto.SetPriceSyncPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page payload"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return h.service.SetPage(ctx, id, req)
	})
}

// ToggleSelection godoc
// @Summary Toggle one record in the selection
// @Tags PriceSync
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ToggleSelectionRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/selection/toggle [post]
func (h *PriceSyncHandler) ToggleSelection(c *gin.Context) {
	var req dto.ToggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return h.service.ToggleSelection(ctx, id, req)
	})
}

// ToggleAll godoc
// @Summary Select or clear every visible record
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/selection/toggle-all [post]
func (h *PriceSyncHandler) ToggleAll(c *gin.Context) {
	h.respond(c, h.service.ToggleAll)
}

// ClearSelection godoc
// @Summary Clear the selection
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/selection [delete]
func (h *PriceSyncHandler) ClearSelection(c *gin.Context) {
	h.respond(c, h.service.ClearSelection)
}

// OpenReview godoc
// @Summary Stage the selection for review
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/review [post]
func (h *PriceSyncHandler) OpenReview(c *gin.Context) {
	h.respond(c, h.service.OpenReview)
}

// CancelReview godoc
// @Summary Close the review and keep the selection
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/review [delete]
func (h *PriceSyncHandler) CancelReview(c *gin.Context) {
	h.respond(c, h.service.CancelReview)
}

// RemoveFromReview godoc
// @Summary Remove a record from the review
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Param recordId path string true "Price update ID"
// @Success 200 {object} response.Envelope
// @Router /price-sync/sessions/{id}/review/items/{recordId} [delete]
func (h *PriceSyncHandler) RemoveFromReview(c *gin.Context) {
	recordID := c.Param("recordId")
	h.respond(c, func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return h.service.RemoveFromReview(ctx, id, recordID)
	})
}

// Commit godoc
// @Summary Commit the staged records
// @Description Records move to the synced history as PENDING and resolve in the background.
// @Tags PriceSync
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} response.Envelope
// @Router /price-sync/sessions/{id}/review/commit [post]
func (h *PriceSyncHandler) Commit(c *gin.Context) {
	result, err := h.service.Commit(c.Request.Context(), c.Param("id"), operatorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "resolveAfter", result.ResolveAfter)
	response.Accepted(c, result, middleware.ExtractMeta(c))
}

// ExportSynced godoc
// @Summary Export the synced history
// @Tags PriceSync
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param query query string false "Product name or SKU"
// @Param distributor query string false "Distributor"
// @Param status query string false "PENDING, SUCCESS or FAILED"
// @Success 200 {file} file
// @Router /price-sync/synced/export [get]
func (h *PriceSyncHandler) ExportSynced(c *gin.Context) {
	file, err := h.exporter.ExportSynced(c.Request.Context(), c.DefaultQuery("format", service.ExportFormatCSV), syncedFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("X-Export-Rows", fmt.Sprintf("%d", file.Rows))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func (h *PriceSyncHandler) respond(c *gin.Context, fn func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)) {
	view, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, &view.Pagination)
}
