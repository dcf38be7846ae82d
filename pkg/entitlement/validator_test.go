package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGrant() Grant {
	now := time.Now().UTC()
	return Grant{
		UserID:      1,
		CatalogID:   1,
		CatalogName: "admin",
		CreatedAt:   now,
		AccessedAt:  now,
	}
}

func TestValidateAcceptsWellFormedGrant(t *testing.T) {
	v := NewValidator(2)
	t.Cleanup(v.Close)

	assert.NoError(t, v.Validate(context.Background(), validGrant()))
}

func TestValidateRejectsBadFields(t *testing.T) {
	v := NewValidator(2)
	t.Cleanup(v.Close)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Grant)
	}{
		{"non-positive user id", func(g *Grant) { g.UserID = 0 }},
		{"non-positive catalog id", func(g *Grant) { g.CatalogID = -1 }},
		{"blank catalog name", func(g *Grant) { g.CatalogName = "   " }},
		{"zero created_at", func(g *Grant) { g.CreatedAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGrant()
			tt.mutate(&g)
			err := v.Validate(ctx, g)
			assert.ErrorIs(t, err, ErrInvalidGrant)
		})
	}
}

func TestValidateHonorsCanceledContext(t *testing.T) {
	v := NewValidator(1)
	t.Cleanup(v.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := v.Validate(ctx, validGrant())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidatorCloseIsIdempotent(t *testing.T) {
	v := NewValidator(1)
	v.Close()
	v.Close()
}
