package entitlement

import (
	"time"
)

// Grant links one user to one catalog entry (a role or a permission). The
// catalog name and description are snapshotted at grant time for read
// efficiency; accessed_at is refreshed on every read-through join.
type Grant struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Username           string    `json:"username,omitempty"`
	CatalogID          int32     `json:"catalog_id"`
	CatalogName        string    `json:"catalog_name"`
	CatalogDescription string    `json:"catalog_description"`
	CreatedAt          time.Time `json:"created_at"`
	AccessedAt         time.Time `json:"accessed_at"`
}
