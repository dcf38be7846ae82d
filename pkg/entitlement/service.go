package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-entitlements/pkg/catalog"
)

const defaultAssignWorkers = 8

// ReconcileService computes and persists only the entitlements a user is
// missing relative to a requested target set. One instance serves one catalog
// kind (roles or permissions); construct two for both.
//
// The read-then-write window is not transactionally isolated: concurrent
// reconciliations for the same user and overlapping catalog ids can race and
// produce duplicate grants. Callers that need stronger guarantees must
// serialize per user or add a unique index on (user_id, catalog id).
type ReconcileService struct {
	resolver  *catalog.Resolver
	grants    GrantRepository
	users     UserDirectory
	validator *Validator
	workers   int
	now       func() time.Time
}

// ReconcileOption configures a ReconcileService.
type ReconcileOption func(*ReconcileService)

// WithAssignWorkers bounds how many user batches run concurrently.
func WithAssignWorkers(n int) ReconcileOption {
	return func(s *ReconcileService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock overrides the batch timestamp source.
func WithClock(now func() time.Time) ReconcileOption {
	return func(s *ReconcileService) {
		s.now = now
	}
}

// NewReconcileService creates a reconciliation service for one catalog kind.
func NewReconcileService(resolver *catalog.Resolver, grants GrantRepository, users UserDirectory, validator *Validator, opts ...ReconcileOption) *ReconcileService {
	s := &ReconcileService{
		resolver:  resolver,
		grants:    grants,
		users:     users,
		validator: validator,
		workers:   defaultAssignWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the catalog kind this service reconciles.
func (s *ReconcileService) Kind() catalog.Kind {
	return s.resolver.Kind()
}

// AssignToUsers assigns the referenced catalog entries to each of the given
// users. User batches are processed independently and concurrently: one
// user's unresolvable reference fails only that user's batch, reported in the
// joined error, while every other batch proceeds. The returned grants are the
// rows actually created; entries already held are skipped, and individual
// save failures are logged and skipped rather than aborting the batch.
//
// The whole call shares a single timestamp so every grant of one
// reconciliation carries the same created_at.
func (s *ReconcileService) AssignToUsers(ctx context.Context, assignments map[int64][]catalog.Ref) ([]Grant, error) {
	now := s.now().UTC()
	runID := uuid.New()
	slog.Info("Starting entitlement reconciliation",
		"run_id", runID, "kind", s.Kind(), "users", len(assignments))

	var (
		mu      sync.Mutex
		created []Grant
		errs    []error
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, s.workers)

	for userID, refs := range assignments {
		wg.Add(1)
		go func(userID int64, refs []catalog.Ref) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			grants, err := s.assignToUser(ctx, runID, userID, "", refs, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
				return
			}
			created = append(created, grants...)
		}(userID, refs)
	}
	wg.Wait()

	slog.Info("Entitlement reconciliation finished",
		"run_id", runID, "kind", s.Kind(), "created", len(created), "failed_users", len(errs))
	return created, errors.Join(errs...)
}

// AssignToAllUsers assigns the given catalog ids to every existing user.
// Unlike AssignToUsers this path is tolerant of bad input: unresolvable or
// errored ids are dropped with a diagnostic so a single stale id cannot block
// the whole population. The resolved list is built once and reused per user.
func (s *ReconcileService) AssignToAllUsers(ctx context.Context, catalogIDs []int32) ([]Grant, error) {
	now := s.now().UTC()
	runID := uuid.New()

	resolved := make([]catalog.Entry, 0, len(catalogIDs))
	seen := make(map[int32]struct{}, len(catalogIDs))
	for _, id := range catalogIDs {
		entry, err := s.resolver.Resolve(ctx, catalog.RefByID(id))
		if err != nil {
			slog.Warn("Dropping unresolvable catalog id",
				"run_id", runID, "kind", s.Kind(), "catalog_id", id, "err", err)
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		resolved = append(resolved, entry)
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	slog.Info("Starting population-wide entitlement reconciliation",
		"run_id", runID, "kind", s.Kind(), "entries", len(resolved), "users", len(users))

	var (
		mu      sync.Mutex
		created []Grant
		errs    []error
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, s.workers)

	for _, u := range users {
		wg.Add(1)
		go func(userID int64, username string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			grants, err := s.persistMissing(ctx, runID, userID, username, resolved, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
				return
			}
			created = append(created, grants...)
		}(u.ID, u.Username)
	}
	wg.Wait()

	slog.Info("Population-wide entitlement reconciliation finished",
		"run_id", runID, "kind", s.Kind(), "created", len(created), "failed_users", len(errs))
	return created, errors.Join(errs...)
}

// assignToUser resolves and deduplicates one user's references, then persists
// the missing grants. Any unresolvable reference aborts this user's batch.
func (s *ReconcileService) assignToUser(ctx context.Context, runID uuid.UUID, userID int64, username string, refs []catalog.Ref, now time.Time) ([]Grant, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	resolved := make([]catalog.Entry, 0, len(refs))
	seen := make(map[int32]struct{}, len(refs))
	for _, ref := range refs {
		entry, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		resolved = append(resolved, entry)
	}

	return s.persistMissing(ctx, runID, userID, username, resolved, now)
}

// persistMissing diffs the resolved entries against the user's current grants
// and persists only the missing ones. Save failures are skipped per row.
func (s *ReconcileService) persistMissing(ctx context.Context, runID uuid.UUID, userID int64, username string, resolved []catalog.Entry, now time.Time) ([]Grant, error) {
	current, err := s.grants.FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current grants: %w", err)
	}
	held := make(map[int32]struct{}, len(current))
	for _, g := range current {
		held[g.CatalogID] = struct{}{}
	}

	var created []Grant
	for _, entry := range resolved {
		if _, ok := held[entry.ID]; ok {
			continue
		}
		grant := Grant{
			UserID:             userID,
			Username:           username,
			CatalogID:          entry.ID,
			CatalogName:        entry.Name,
			CatalogDescription: entry.Description,
			CreatedAt:          now,
			AccessedAt:         now,
		}
		if err := s.validator.Validate(ctx, grant); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return created, err
			}
			slog.Warn("Skipping grant that failed validation",
				"run_id", runID, "user_id", userID, "catalog_id", entry.ID, "err", err)
			continue
		}
		saved, err := s.grants.Save(ctx, grant)
		if err != nil {
			slog.Warn("Failed to save grant, skipping",
				"run_id", runID, "user_id", userID, "catalog_id", entry.ID, "err", err)
			continue
		}
		created = append(created, saved)
	}
	return created, nil
}

// Unassign deletes grants by id. Deletes are idempotent: ids that no longer
// exist are not an error, and an empty set is a no-op reporting zero rows.
func (s *ReconcileService) Unassign(ctx context.Context, grantIDs []int64) (int64, error) {
	if len(grantIDs) == 0 {
		return 0, nil
	}
	return s.grants.DeleteByIDs(ctx, grantIDs)
}

// UnassignByCatalog deletes every grant referencing one of the catalog ids,
// across all users, and returns a human-readable summary.
func (s *ReconcileService) UnassignByCatalog(ctx context.Context, catalogIDs []int32) (string, error) {
	if len(catalogIDs) == 0 {
		return fmt.Sprintf("unassigned %s ids []: 0 grants removed", s.Kind()), nil
	}
	affected, err := s.grants.DeleteByCatalogIDs(ctx, catalogIDs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("unassigned %s ids %v: %d grants removed", s.Kind(), catalogIDs, affected), nil
}

// ListGrants returns grants joined with their live catalog entry, ordered by
// grant id, with optional forward cursor and limit.
func (s *ReconcileService) ListGrants(ctx context.Context, cursor *int64, limit *int32) ([]Grant, error) {
	return s.grants.List(ctx, cursor, limit)
}

// GetUserGrants returns a user's grants, refreshing their accessed_at in the
// same round trip.
func (s *ReconcileService) GetUserGrants(ctx context.Context, userID int64) ([]Grant, error) {
	return s.grants.FindByUserWithRefresh(ctx, userID)
}
