package entitlement

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryGrantRepository implements GrantRepository using in-memory storage
type InMemoryGrantRepository struct {
	mu     sync.RWMutex
	grants map[int64]Grant // grant id -> Grant
	nextID int64
}

// NewInMemoryGrantRepository creates a new in-memory grant repository
func NewInMemoryGrantRepository() *InMemoryGrantRepository {
	return &InMemoryGrantRepository{
		grants: make(map[int64]Grant),
		nextID: 1,
	}
}

// FindAllByUserID returns the grants currently held by a user
func (r *InMemoryGrantRepository) FindAllByUserID(ctx context.Context, userID int64) ([]Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Grant
	for _, g := range r.grants {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	sortGrants(result)
	return result, nil
}

// FindAllByCatalogID returns the grants held against a catalog entry
func (r *InMemoryGrantRepository) FindAllByCatalogID(ctx context.Context, catalogID int32) ([]Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Grant
	for _, g := range r.grants {
		if g.CatalogID == catalogID {
			result = append(result, g)
		}
	}
	sortGrants(result)
	return result, nil
}

// Save persists a new grant
func (r *InMemoryGrantRepository) Save(ctx context.Context, grant Grant) (Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant.ID = r.nextID
	r.nextID++
	r.grants[grant.ID] = grant
	return grant, nil
}

// DeleteByIDs removes grants by id
func (r *InMemoryGrantRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, id := range ids {
		if _, ok := r.grants[id]; ok {
			delete(r.grants, id)
			affected++
		}
	}
	return affected, nil
}

// DeleteByCatalogIDs removes every grant referencing one of the catalog ids
func (r *InMemoryGrantRepository) DeleteByCatalogIDs(ctx context.Context, catalogIDs []int32) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for id, g := range r.grants {
		for _, catalogID := range catalogIDs {
			if g.CatalogID == catalogID {
				delete(r.grants, id)
				affected++
				break
			}
		}
	}
	return affected, nil
}

// List returns grants ordered by id with optional cursor and limit
func (r *InMemoryGrantRepository) List(ctx context.Context, cursor *int64, limit *int32) ([]Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Grant
	for _, g := range r.grants {
		if cursor != nil && g.ID <= *cursor {
			continue
		}
		result = append(result, g)
	}
	sortGrants(result)
	if limit != nil && int64(len(result)) > int64(*limit) {
		result = result[:*limit]
	}
	return result, nil
}

// FindByUserWithRefresh returns a user's grants with accessed_at bumped
func (r *InMemoryGrantRepository) FindByUserWithRefresh(ctx context.Context, userID int64) ([]Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var result []Grant
	for id, g := range r.grants {
		if g.UserID == userID {
			g.AccessedAt = now
			r.grants[id] = g
			result = append(result, g)
		}
	}
	sortGrants(result)
	return result, nil
}

func sortGrants(grants []Grant) {
	sort.Slice(grants, func(i, j int) bool { return grants[i].ID < grants[j].ID })
}
