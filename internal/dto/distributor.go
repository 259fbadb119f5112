package dto

import (
	"time"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

// DistributorSettingsView lists the resolved configured flag of every distributor.
type DistributorSettingsView struct {
	Configured map[models.Distributor]bool `json:"configured"`
	Count      int                         `json:"configuredCount"`
}

// DistributorCredentialsRequest carries the credential form values keyed by field name.
type DistributorCredentialsRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

// DistributorCredentialsResult reports a simulated connection test or save.
type DistributorCredentialsResult struct {
	Distributor models.Distributor `json:"distributor"`
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Configured  bool               `json:"configured"`
	CheckedAt   time.Time          `json:"checkedAt"`
}

// DistributorCredentialForm describes the inputs of a distributor credential page.
type DistributorCredentialForm struct {
	Distributor models.Distributor       `json:"distributor"`
	Label       string                   `json:"label"`
	Fields      []models.CredentialField `json:"fields"`
}

// UpdateDistributorSettingsRequest merge-patches configured flags keyed by distributor.
type UpdateDistributorSettingsRequest struct {
	Configured map[string]bool `json:"configured" validate:"required,min=1"`
}
