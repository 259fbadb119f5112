package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/service"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/response"
)

type distributorService interface {
	Settings(ctx context.Context) (*dto.DistributorSettingsView, error)
	UpdateSettings(ctx context.Context, req dto.UpdateDistributorSettingsRequest, operator string) (*dto.DistributorSettingsView, error)
	AddProductTarget(ctx context.Context) (*models.AddProductTarget, error)
	CredentialForm(distributor string) (*dto.DistributorCredentialForm, error)
	TestCredentials(ctx context.Context, distributor string, req dto.DistributorCredentialsRequest) (*dto.DistributorCredentialsResult, error)
	SaveCredentials(ctx context.Context, distributor string, req dto.DistributorCredentialsRequest, operator string) (*dto.DistributorCredentialsResult, error)
}

// DistributorHandler exposes distributor integration settings.
type DistributorHandler struct {
	service distributorService
}

// NewDistributorHandler builds a new handler.
func NewDistributorHandler(service distributorService) *DistributorHandler {
	return &DistributorHandler{service: service}
}

// Settings godoc
// @Summary List distributor configured flags
// @Tags Distributors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /distributors/settings [get]
func (h *DistributorHandler) Settings(c *gin.Context) {
	view, err := h.service.Settings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UpdateSettings godoc
// @Summary Merge-patch distributor configured flags
// @Tags Distributors
// @Accept json
// @Produce json
// @Param payload body dto.UpdateDistributorSettingsRequest true "Flags payload"
// @Success 200 {object} response.Envelope
// @Router /distributors/settings [patch]
func (h *DistributorHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateDistributorSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	view, err := h.service.UpdateSettings(c.Request.Context(), req, operatorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AddProductTarget godoc
// @Summary Decide where "Add Disti Product" leads
// @Tags Distributors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /distributors/add-product-target [get]
func (h *DistributorHandler) AddProductTarget(c *gin.Context) {
	target, err := h.service.AddProductTarget(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, target, nil)
}

// CredentialForm godoc
// @Summary Describe a distributor credential form
// @Tags Distributors
// @Produce json
// @Param distributor path string true "Distributor"
// @Success 200 {object} response.Envelope
// @Router /distributors/{distributor}/credentials/form [get]
func (h *DistributorHandler) CredentialForm(c *gin.Context) {
	form, err := h.service.CredentialForm(c.Param("distributor"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// TestCredentials godoc
// @Summary Validate credentials and run a connection test
// @Tags Distributors
// @Accept json
// @Produce json
// @Param distributor path string true "Distributor"
// @Param payload body dto.DistributorCredentialsRequest true "Credential fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /distributors/{distributor}/credentials/test [post]
func (h *DistributorHandler) TestCredentials(c *gin.Context) {
	var req dto.DistributorCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid credentials payload"))
		return
	}
	result, err := h.service.TestCredentials(c.Request.Context(), c.Param("distributor"), req)
	if err != nil {
		credentialError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SaveCredentials godoc
// @Summary Validate and save credentials
// @Tags Distributors
// @Accept json
// @Produce json
// @Param distributor path string true "Distributor"
// @Param payload body dto.DistributorCredentialsRequest true "Credential fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /distributors/{distributor}/credentials [put]
func (h *DistributorHandler) SaveCredentials(c *gin.Context) {
	var req dto.DistributorCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid credentials payload"))
		return
	}
	result, err := h.service.SaveCredentials(c.Request.Context(), c.Param("distributor"), req, operatorFromContext(c))
	if err != nil {
		credentialError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func credentialError(c *gin.Context, err error) {
	var fieldErr *service.CredentialValidationError
	if errors.As(err, &fieldErr) {
		response.Error(c, err, map[string]interface{}{"fields": fieldErr.Fields})
		return
	}
	response.Error(c, err)
}
