package catalog

import (
	"time"
)

// Kind selects which catalog a component operates on. Roles and permissions
// share the same shape and lifecycle; only their backing tables differ.
type Kind string

const (
	KindRole       Kind = "role"
	KindPermission Kind = "permission"
)

// Entry is a canonical catalog record (a role or a permission). Entries are
// reference data: looked up and snapshotted by the entitlement layer, never
// created through this package.
//
// The JSON tags are camelCase on purpose: the aggregated list query emits
// role/permission arrays built with jsonb_build_object using these exact keys.
type Entry struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	AccessedAt  time.Time `json:"accessedAt"`
}

// Ref is a caller-supplied reference to a catalog entry, by id or by unique
// name. When both are set the id takes precedence.
type Ref struct {
	ID   *int32  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// RefByID builds a Ref pointing at a catalog id.
func RefByID(id int32) Ref {
	return Ref{ID: &id}
}

// RefByName builds a Ref pointing at a catalog name.
func RefByName(name string) Ref {
	return Ref{Name: &name}
}
