package catalog

import (
	"context"
	"time"
)

// Store defines read access to one catalog (roles or permissions).
type Store interface {
	// GetByID retrieves a catalog entry by its id
	GetByID(ctx context.Context, id int32) (Entry, error)
	// GetByName retrieves a catalog entry by its unique name, honoring the
	// entry's validity bounds as of the given instant
	GetByName(ctx context.Context, name string, asOf time.Time) (Entry, error)
}
