package models

import "time"

// AuditAction constants represent actions recorded in the audit trail.
const (
	AuditActionPriceSyncCommit       = "PRICE_SYNC_COMMIT"
	AuditActionPriceSyncResolve      = "PRICE_SYNC_RESOLVE"
	AuditActionPriceUpdateRegister   = "PRICE_UPDATE_REGISTER"
	AuditActionDistributorSettings   = "DISTRIBUTOR_SETTINGS_UPDATE"
	AuditActionDistributorCredential = "DISTRIBUTOR_CREDENTIALS_SAVE"
	AuditActionSessionOpen           = "PRICE_SYNC_SESSION_OPEN"
	AuditActionSessionClose          = "PRICE_SYNC_SESSION_CLOSE"
	AuditActionSyncedExport          = "PRICE_SYNC_EXPORT"
)

// Audit resources.
const (
	AuditResourcePriceUpdate = "price_update"
	AuditResourceDistributor = "distributor"
	AuditResourceSession     = "price_sync_session"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	OperatorID *string   `db:"operator_id" json:"operator_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
