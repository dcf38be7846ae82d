package catalog

import (
	"context"
	"sync"
	"time"
)

type storedEntry struct {
	entry      Entry
	validFrom  *time.Time
	validUntil *time.Time
}

// InMemoryCatalogStore implements Store using in-memory storage
type InMemoryCatalogStore struct {
	mu      sync.RWMutex
	entries map[int32]storedEntry // entry id -> entry with validity bounds
}

// NewInMemoryCatalogStore creates a new in-memory catalog store
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		entries: make(map[int32]storedEntry),
	}
}

// Put adds or replaces a catalog entry without validity bounds. Test seeding helper.
func (s *InMemoryCatalogStore) Put(entry Entry) {
	s.PutWithValidity(entry, nil, nil)
}

// PutWithValidity adds or replaces a catalog entry with optional validity
// bounds. A nil bound is open-ended on that side, matching a NULL
// valid_from/valid_until column.
func (s *InMemoryCatalogStore) PutWithValidity(entry Entry, validFrom, validUntil *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = storedEntry{entry: entry, validFrom: validFrom, validUntil: validUntil}
}

// GetByID retrieves a catalog entry by id
func (s *InMemoryCatalogStore) GetByID(ctx context.Context, id int32) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return stored.entry, nil
}

// GetByName retrieves a catalog entry by its unique name. The match is
// case-exact and only entries valid as of the given instant are returned,
// mirroring the SQL lookup.
func (s *InMemoryCatalogStore) GetByName(ctx context.Context, name string, asOf time.Time) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, stored := range s.entries {
		if stored.entry.Name != name {
			continue
		}
		if stored.validFrom != nil && stored.validFrom.After(asOf) {
			continue
		}
		if stored.validUntil != nil && !stored.validUntil.After(asOf) {
			continue
		}
		return stored.entry, nil
	}
	return Entry{}, ErrEntryNotFound
}
