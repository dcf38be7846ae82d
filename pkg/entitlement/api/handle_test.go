package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-entitlements/pkg/catalog"
	"github.com/tendant/simple-entitlements/pkg/entitlement"
	"github.com/tendant/simple-entitlements/pkg/user"
)

func setupHandler(t *testing.T, now time.Time) (http.Handler, int64) {
	store := catalog.NewInMemoryCatalogStore()
	store.Put(catalog.Entry{ID: 1, Name: "admin", Description: "administrator", CreatedAt: now, UpdatedAt: now, AccessedAt: now})

	grants := entitlement.NewInMemoryGrantRepository()
	users := user.NewInMemoryUserRepository()

	u, err := users.Create(context.Background(), user.User{Username: "alice", Active: true})
	require.NoError(t, err)

	validator := entitlement.NewValidator(2)
	t.Cleanup(validator.Close)

	service := entitlement.NewReconcileService(catalog.NewResolver(store, catalog.KindRole), grants, users, validator,
		entitlement.WithClock(func() time.Time { return now }))

	_, err = service.AssignToUsers(context.Background(), map[int64][]catalog.Ref{
		u.ID: {catalog.RefByID(1)},
	})
	require.NoError(t, err)

	return Handler(NewHandle(service)), u.ID
}

func TestListGrantsRendersRFC3339Timestamps(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	handler, _ := setupHandler(t, now)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body GrantListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Grants, 1)

	assert.Equal(t, "2026-08-28T10:30:00Z", body.Grants[0].CreatedAt)

	_, err := time.Parse(time.RFC3339, body.Grants[0].AccessedAt)
	assert.NoError(t, err)
}

func TestGetUserGrantsReturnsGrants(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	handler, userID := setupHandler(t, now)

	req := httptest.NewRequest(http.MethodGet, "/users/"+strconv.FormatInt(userID, 10), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body GrantListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Grants, 1)
	assert.Equal(t, "admin", body.Grants[0].CatalogName)

	_, err := time.Parse(time.RFC3339, body.Grants[0].CreatedAt)
	assert.NoError(t, err)
}
