package entitlement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-entitlements/pkg/catalog"
	"github.com/tendant/simple-entitlements/pkg/user"
)

type fixture struct {
	service *ReconcileService
	grants  *InMemoryGrantRepository
	users   *user.InMemoryUserRepository
	store   *catalog.InMemoryCatalogStore
}

func newFixture(t *testing.T, opts ...ReconcileOption) fixture {
	store := catalog.NewInMemoryCatalogStore()
	now := time.Now().UTC()
	store.Put(catalog.Entry{ID: 1, Name: "admin", Description: "administrator", CreatedAt: now, UpdatedAt: now, AccessedAt: now})
	store.Put(catalog.Entry{ID: 2, Name: "viewer", Description: "read only", CreatedAt: now, UpdatedAt: now, AccessedAt: now})
	store.Put(catalog.Entry{ID: 3, Name: "editor", Description: "read write", CreatedAt: now, UpdatedAt: now, AccessedAt: now})

	grants := NewInMemoryGrantRepository()
	users := user.NewInMemoryUserRepository()

	validator := NewValidator(2)
	t.Cleanup(validator.Close)

	service := NewReconcileService(catalog.NewResolver(store, catalog.KindRole), grants, users, validator, opts...)
	return fixture{service: service, grants: grants, users: users, store: store}
}

func (f fixture) addUser(t *testing.T, username string) int64 {
	u, err := f.users.Create(context.Background(), user.User{Username: username, Active: true})
	require.NoError(t, err)
	return u.ID
}

func TestAssignToUsersCreatesMissingGrants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.addUser(t, "alice")

	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		userID: {catalog.RefByID(1), catalog.RefByName("viewer")},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	held, err := f.grants.FindAllByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, held, 2)
	for _, g := range held {
		assert.Equal(t, userID, g.UserID)
		assert.Empty(t, g.Username)
		assert.NotEmpty(t, g.CatalogName)
	}
}

func TestAssignToUsersIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.addUser(t, "alice")
	refs := []catalog.Ref{catalog.RefByID(1), catalog.RefByID(2)}

	first, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{userID: refs})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{userID: refs})
	require.NoError(t, err)
	assert.Empty(t, second)

	held, err := f.grants.FindAllByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, held, 2)
}

func TestAssignToUsersDeduplicatesMixedRefs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.addUser(t, "alice")

	// id 1 and name "admin" resolve to the same entry
	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		userID: {catalog.RefByID(1), catalog.RefByName("admin")},
	})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestAssignToUsersEmptyRefsIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.addUser(t, "alice")

	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{userID: {}})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestAssignToUsersIsolatesFailedUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	good := f.addUser(t, "alice")
	bad := f.addUser(t, "bob")

	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		good: {catalog.RefByID(1)},
		bad:  {catalog.RefByID(99)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrEntryNotFound)
	assert.Contains(t, err.Error(), fmt.Sprintf("user %d", bad))

	// the good user's batch still landed
	require.Len(t, created, 1)
	assert.Equal(t, good, created[0].UserID)

	held, err := f.grants.FindAllByUserID(ctx, bad)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestAssignToUsersSharesOneTimestamp(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return fixed }))
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		alice: {catalog.RefByID(1), catalog.RefByID(2)},
		bob:   {catalog.RefByID(3)},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, g := range created {
		assert.Equal(t, fixed, g.CreatedAt)
		assert.Equal(t, fixed, g.AccessedAt)
	}
}

// failOnSave wraps a grant repository and fails Save for one catalog id.
type failOnSave struct {
	GrantRepository
	failCatalogID int32
}

func (f failOnSave) Save(ctx context.Context, grant Grant) (Grant, error) {
	if grant.CatalogID == f.failCatalogID {
		return Grant{}, fmt.Errorf("store unavailable")
	}
	return f.GrantRepository.Save(ctx, grant)
}

func TestAssignToUsersSkipsFailedSaves(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewInMemoryCatalogStore()
	now := time.Now().UTC()
	store.Put(catalog.Entry{ID: 1, Name: "admin", CreatedAt: now, UpdatedAt: now, AccessedAt: now})
	store.Put(catalog.Entry{ID: 2, Name: "viewer", CreatedAt: now, UpdatedAt: now, AccessedAt: now})

	grants := NewInMemoryGrantRepository()
	users := user.NewInMemoryUserRepository()
	u, err := users.Create(ctx, user.User{Username: "alice", Active: true})
	require.NoError(t, err)

	validator := NewValidator(1)
	t.Cleanup(validator.Close)

	service := NewReconcileService(
		catalog.NewResolver(store, catalog.KindRole),
		failOnSave{GrantRepository: grants, failCatalogID: 1},
		users, validator)

	created, err := service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		u.ID: {catalog.RefByID(1), catalog.RefByID(2)},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int32(2), created[0].CatalogID)
}

func TestAssignToAllUsersSnapshotsUsernames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	created, err := f.service.AssignToAllUsers(ctx, []int32{1})
	require.NoError(t, err)
	require.Len(t, created, 2)

	names := map[string]bool{}
	for _, g := range created {
		names[g.Username] = true
	}
	assert.True(t, names["alice"])
	assert.True(t, names["bob"])
}

func TestAssignToAllUsersDropsUnresolvableIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice")

	// 99 does not exist; 1 is duplicated
	created, err := f.service.AssignToAllUsers(ctx, []int32{99, 1, 1})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestAssignToAllUsersNothingResolvable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice")

	created, err := f.service.AssignToAllUsers(ctx, []int32{99})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestUnassignRemovesGrants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.addUser(t, "alice")

	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		userID: {catalog.RefByID(1), catalog.RefByID(2)},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	removed, err := f.service.Unassign(ctx, []int64{created[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// unknown ids are not an error
	removed, err = f.service.Unassign(ctx, []int64{created[0].ID})
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestUnassignEmptyIsNoOp(t *testing.T) {
	f := newFixture(t)

	removed, err := f.service.Unassign(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestUnassignByCatalogReportsSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	_, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		alice: {catalog.RefByID(1)},
		bob:   {catalog.RefByID(1), catalog.RefByID(2)},
	})
	require.NoError(t, err)

	summary, err := f.service.UnassignByCatalog(ctx, []int32{1})
	require.NoError(t, err)
	assert.Equal(t, "unassigned role ids [1]: 2 grants removed", summary)

	held, err := f.grants.FindAllByCatalogID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestListGrantsPaginatesByCursor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.addUser(t, "alice")

	created, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		userID: {catalog.RefByID(1), catalog.RefByID(2), catalog.RefByID(3)},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	limit := int32(2)
	page, err := f.service.ListGrants(ctx, nil, &limit)
	require.NoError(t, err)
	require.Len(t, page, 2)

	cursor := page[1].ID
	rest, err := f.service.ListGrants(ctx, &cursor, &limit)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Greater(t, rest[0].ID, cursor)
}

func TestGetUserGrantsRefreshesAccessTime(t *testing.T) {
	ctx := context.Background()
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return past }))
	userID := f.addUser(t, "alice")

	_, err := f.service.AssignToUsers(ctx, map[int64][]catalog.Ref{
		userID: {catalog.RefByID(1)},
	})
	require.NoError(t, err)

	grants, err := f.service.GetUserGrants(ctx, userID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].AccessedAt.After(past))
	assert.Equal(t, past, grants[0].CreatedAt)
}
