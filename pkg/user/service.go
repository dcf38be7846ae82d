package user

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrDuplicateUser = errors.New("username, email or mobile number already taken")
)

// UserService provides user directory operations. The aggregated listing is
// the interesting path; single-entity operations are thin pass-throughs for
// the API surface.
type UserService struct {
	repo   Repository
	lister Lister
}

// NewUserService creates a new user service. lister may be nil for backends
// without the aggregated listing.
func NewUserService(repo Repository, lister Lister) *UserService {
	return &UserService{
		repo:   repo,
		lister: lister,
	}
}

// List returns one denormalized user per row with nested profile, address and
// entitlement arrays, filtered and paginated per params.
func (s *UserService) List(ctx context.Context, params ListParams) ([]User, error) {
	if s.lister == nil {
		return nil, errors.New("aggregated listing is not supported by this backend")
	}
	return s.lister.List(ctx, params)
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates uniqueness and adds a new user.
func (s *UserService) Create(ctx context.Context, u User) (User, error) {
	if u.Username == "" {
		return User{}, ErrEmptyUsername
	}
	taken, err := s.repo.ExistsByUsername(ctx, u.Username)
	if err != nil {
		return User{}, fmt.Errorf("failed to check username: %w", err)
	}
	if !taken && u.Email != "" {
		taken, err = s.repo.ExistsByEmail(ctx, u.Email)
		if err != nil {
			return User{}, fmt.Errorf("failed to check email: %w", err)
		}
	}
	if !taken && u.MobileNumber != "" {
		taken, err = s.repo.ExistsByMobileNumber(ctx, u.MobileNumber)
		if err != nil {
			return User{}, fmt.Errorf("failed to check mobile number: %w", err)
		}
	}
	if taken {
		return User{}, ErrDuplicateUser
	}
	return s.repo.Create(ctx, u)
}

// Delete removes a user by id.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}
