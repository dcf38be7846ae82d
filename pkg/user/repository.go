package user

import (
	"context"
	"errors"
)

// ErrUserNotFound indicates no user matched the lookup.
var ErrUserNotFound = errors.New("user not found")

// Repository defines keyed lookups and existence checks over the user store.
// Username and email matching is case-insensitive.
type Repository interface {
	FindByID(ctx context.Context, id int64) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u User) (User, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByMobileNumber(ctx context.Context, mobileNumber string) (bool, error)
}

// Lister runs the aggregated, filtered, cursor-paginated user listing. Only
// SQL-backed repositories implement it.
type Lister interface {
	List(ctx context.Context, params ListParams) ([]User, error)
}
