package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/neilboltonAD/marketplace-admin-api/internal/middleware"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

type auditSink interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RegisterPriceSyncRoutes mounts the review workflow under rg. audit may be nil.
func RegisterPriceSyncRoutes(rg *gin.RouterGroup, h *PriceSyncHandler, audit auditSink) {
	group := rg.Group("/price-sync")
	group.GET("/options", h.Options)
	group.POST("/records", h.Register)
	group.GET("/records/:id", h.GetRecord)
	group.GET("/records/:id/history", h.RecordHistory)
	group.GET("/synced/export", middleware.Audit(audit, models.AuditActionSyncedExport, models.AuditResourcePriceUpdate, ""), h.ExportSynced)

	sessions := group.Group("/sessions")
	sessions.POST("", middleware.Audit(audit, models.AuditActionSessionOpen, models.AuditResourceSession, ""), h.CreateSession)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", middleware.Audit(audit, models.AuditActionSessionClose, models.AuditResourceSession, "id"), h.CloseSession)
	sessions.PUT("/:id/tab", h.SwitchTab)
	sessions.PUT("/:id/filters", h.SetFilters)
	sessions.PUT("/:id/page", h.SetPage)
	sessions.POST("/:id/selection/toggle", h.ToggleSelection)
	sessions.POST("/:id/selection/toggle-all", h.ToggleAll)
	sessions.DELETE("/:id/selection", h.ClearSelection)
	sessions.POST("/:id/review", h.OpenReview)
	sessions.DELETE("/:id/review", h.CancelReview)
	sessions.DELETE("/:id/review/items/:recordId", h.RemoveFromReview)
	sessions.POST("/:id/review/commit", h.Commit)
}

// RegisterDistributorRoutes mounts the distributor settings endpoints under rg.
func RegisterDistributorRoutes(rg *gin.RouterGroup, h *DistributorHandler) {
	group := rg.Group("/distributors")
	group.GET("/settings", h.Settings)
	group.PATCH("/settings", h.UpdateSettings)
	group.GET("/add-product-target", h.AddProductTarget)
	group.GET("/:distributor/credentials/form", h.CredentialForm)
	group.POST("/:distributor/credentials/test", h.TestCredentials)
	group.PUT("/:distributor/credentials", h.SaveCredentials)
}
