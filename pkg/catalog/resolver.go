package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEntryNotFound indicates a reference did not resolve to any catalog entry.
var ErrEntryNotFound = errors.New("catalog entry not found")

// Resolver turns caller-supplied, possibly-incomplete references into
// authoritative catalog entries. Every write path resolves through it so a
// grant can never point at a catalog id that failed resolution.
type Resolver struct {
	store Store
	kind  Kind
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store, kind Kind) *Resolver {
	return &Resolver{
		store: store,
		kind:  kind,
	}
}

// Kind returns the catalog kind this resolver serves.
func (r *Resolver) Kind() Kind {
	return r.kind
}

// Resolve looks up the entry a reference points at. The id wins when both id
// and name are present; a reference carrying neither fails immediately.
func (r *Resolver) Resolve(ctx context.Context, ref Ref) (Entry, error) {
	switch {
	case ref.ID != nil:
		entry, err := r.store.GetByID(ctx, *ref.ID)
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				return Entry{}, fmt.Errorf("%w: %s with id %d", ErrEntryNotFound, r.kind, *ref.ID)
			}
			return Entry{}, err
		}
		return entry, nil
	case ref.Name != nil:
		entry, err := r.store.GetByName(ctx, *ref.Name, time.Now().UTC())
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				return Entry{}, fmt.Errorf("%w: %s with name %q", ErrEntryNotFound, r.kind, *ref.Name)
			}
			return Entry{}, err
		}
		return entry, nil
	default:
		return Entry{}, fmt.Errorf("%w: %s reference has neither id nor name", ErrEntryNotFound, r.kind)
	}
}
