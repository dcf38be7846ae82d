package entitlement

import (
	"context"

	"github.com/tendant/simple-entitlements/pkg/user"
)

// GrantRepository defines the interface for grant storage operations
type GrantRepository interface {
	// FindAllByUserID returns the grants currently held by a user
	FindAllByUserID(ctx context.Context, userID int64) ([]Grant, error)
	// FindAllByCatalogID returns the grants held against a catalog entry,
	// across all users
	FindAllByCatalogID(ctx context.Context, catalogID int32) ([]Grant, error)
	// Save persists a new grant and returns it with its assigned id
	Save(ctx context.Context, grant Grant) (Grant, error)
	// DeleteByIDs removes the grants whose id is in the given set and
	// returns the number of rows affected. Missing ids are not an error.
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	// DeleteByCatalogIDs removes every grant referencing one of the given
	// catalog ids, across all users, and returns the number of rows affected.
	DeleteByCatalogIDs(ctx context.Context, catalogIDs []int32) (int64, error)
	// List returns grants joined with their live catalog entry, ordered by
	// grant id, with optional forward cursor and limit
	List(ctx context.Context, cursor *int64, limit *int32) ([]Grant, error)
	// FindByUserWithRefresh returns a user's grants enriched from the joined
	// tables, bumping accessed_at in the same round trip
	FindByUserWithRefresh(ctx context.Context, userID int64) ([]Grant, error)
}

// UserDirectory is the slice of the user store the reconciler needs for
// population-wide assignment.
type UserDirectory interface {
	FindAll(ctx context.Context) ([]user.User, error)
}
