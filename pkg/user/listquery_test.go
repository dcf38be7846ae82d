package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-entitlements/pkg/utils"
)

func TestBuildWithoutFilters(t *testing.T) {
	query, args := ListParams{}.Build()

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "GROUP BY users.id, profiles.id, addresses.id")
	assert.Contains(t, query, "ORDER BY users.id ASC")
	assert.NotContains(t, query, "LIMIT")
	assert.Empty(t, args)
}

func TestBuildSingleFilterWritesWhere(t *testing.T) {
	query, args := ListParams{Country: "Germany"}.Build()

	assert.Equal(t, 1, strings.Count(query, "WHERE"))
	assert.NotContains(t, query, "\nAND ")
	assert.Contains(t, query, "addresses.country ILIKE")
	require.Len(t, args, 1)
	assert.Equal(t, "Germany", args["country"])
}

func TestBuildCombinedFiltersChainWithAnd(t *testing.T) {
	query, args := ListParams{Country: "Germany", City: "Berlin"}.Build()

	assert.Equal(t, 1, strings.Count(query, "WHERE"))
	assert.Equal(t, 1, strings.Count(query, "\nAND "))
	assert.Contains(t, query, "addresses.country ILIKE")
	assert.Contains(t, query, "addresses.city ILIKE")
	require.Len(t, args, 2)
	assert.Equal(t, "Germany", args["country"])
	assert.Equal(t, "Berlin", args["city"])
}

func TestBuildBlankFiltersBindNothing(t *testing.T) {
	query, args := ListParams{Country: "  ", Search: "\t"}.Build()

	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestBuildSearchUsesPrefixMatching(t *testing.T) {
	query, args := ListParams{Search: "ali"}.Build()

	assert.Contains(t, query, "to_tsquery('simple', @search || ':*')")
	assert.Contains(t, query, "profiles.firstname")
	assert.Equal(t, "ali", args["search"])
}

func TestBuildCursorPrecedesOtherPredicates(t *testing.T) {
	query, args := ListParams{Cursor: utils.Int64Ptr(42), City: "Berlin"}.Build()

	cursorIdx := strings.Index(query, "users.id > @cursor")
	cityIdx := strings.Index(query, "addresses.city")
	require.Greater(t, cursorIdx, 0)
	require.Greater(t, cityIdx, 0)
	assert.Less(t, cursorIdx, cityIdx)
	assert.Equal(t, int64(42), args["cursor"])
}

func TestBuildLimitComesLast(t *testing.T) {
	query, args := ListParams{Limit: utils.Int32Ptr(25)}.Build()

	assert.True(t, strings.HasSuffix(strings.TrimSpace(query), "LIMIT @limit"))
	assert.Equal(t, int32(25), args["limit"])
}

func TestSortAllowList(t *testing.T) {
	tests := []struct {
		sortBy string
		want   string
	}{
		{"id", "ORDER BY users.id ASC"},
		{"username", "ORDER BY users.username ASC"},
		{"created_at", "ORDER BY users.created_at ASC"},
		{"firstname", "ORDER BY profiles.firstname ASC"},
		{"fullname", "ORDER BY (profiles.firstname || ' ' || profiles.lastname) ASC"},
		// anything outside the allow-list falls back to users.id
		{"dropTable", "ORDER BY users.id ASC"},
		{"users.id; DROP TABLE users", "ORDER BY users.id ASC"},
		{"", "ORDER BY users.id ASC"},
	}
	for _, tt := range tests {
		query, _ := ListParams{SortBy: tt.sortBy}.Build()
		assert.Contains(t, query, tt.want, "sort_by=%q", tt.sortBy)
	}
}

func TestSortDirection(t *testing.T) {
	query, _ := ListParams{SortBy: "username", Direction: "DESC"}.Build()
	assert.Contains(t, query, "ORDER BY users.username DESC")

	query, _ = ListParams{SortBy: "username", Direction: "desc"}.Build()
	assert.Contains(t, query, "ORDER BY users.username DESC")

	// anything else is ascending
	query, _ = ListParams{SortBy: "username", Direction: "sideways"}.Build()
	assert.Contains(t, query, "ORDER BY users.username ASC")
}

func TestBuildAggregatesUseCamelCaseKeys(t *testing.T) {
	query, _ := ListParams{}.Build()

	assert.Contains(t, query, "'createdAt',   r.created_at")
	assert.Contains(t, query, "'accessedAt',  p.accessed_at")
	assert.Contains(t, query, "'[]'::jsonb")
}
