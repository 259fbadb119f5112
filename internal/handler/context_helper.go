package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neilboltonAD/marketplace-admin-api/internal/middleware"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

func operatorFromContext(c *gin.Context) string {
	return middleware.OperatorFromContext(c)
}

// syncedFilterFromQuery reads query, distributor and status. Unknown distributors are kept
// verbatim for the exporter to reject.
func syncedFilterFromQuery(c *gin.Context) models.PriceUpdateFilter {
	filter := models.PriceUpdateFilter{
		Query:  strings.TrimSpace(c.Query("query")),
		Status: models.PriceUpdateStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
	}
	if raw := strings.TrimSpace(c.Query("distributor")); raw != "" {
		if d, ok := models.ParseDistributor(raw); ok {
			filter.Distributor = d
		} else {
			filter.Distributor = models.Distributor(raw)
		}
	}
	return filter
}
