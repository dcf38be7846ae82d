package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryUserRepository implements Repository using in-memory storage. The
// aggregated listing is SQL-only; this backend serves unit tests and demos.
type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]User // user id -> User
	nextID int64
}

// NewInMemoryUserRepository creates a new in-memory user repository
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[int64]User),
		nextID: 1,
	}
}

// FindByID retrieves a user by id
func (r *InMemoryUserRepository) FindByID(ctx context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// FindAll returns all users ordered by id
func (r *InMemoryUserRepository) FindAll(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Create adds a new user
func (r *InMemoryUserRepository) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.AccessedAt = now
	r.users[u.ID] = u
	return u, nil
}

// DeleteByID removes a user
func (r *InMemoryUserRepository) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

// ExistsByUsername reports whether a user holds the username, ignoring case
func (r *InMemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByEmail reports whether a user holds the email, ignoring case
func (r *InMemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByMobileNumber reports whether a user holds the mobile number
func (r *InMemoryUserRepository) ExistsByMobileNumber(ctx context.Context, mobileNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.MobileNumber == mobileNumber {
			return true, nil
		}
	}
	return false, nil
}
