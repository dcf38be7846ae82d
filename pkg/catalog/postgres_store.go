package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var kindTables = map[Kind]string{
	KindRole:       "roles",
	KindPermission: "permissions",
}

// PostgresCatalogStore implements Store over the roles or permissions table.
type PostgresCatalogStore struct {
	pool  *pgxpool.Pool
	kind  Kind
	table string
}

// NewPostgresCatalogStore creates a catalog store for the given kind.
func NewPostgresCatalogStore(pool *pgxpool.Pool, kind Kind) (*PostgresCatalogStore, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported catalog kind: %s", kind)
	}
	return &PostgresCatalogStore{
		pool:  pool,
		kind:  kind,
		table: table,
	}, nil
}

// GetByID retrieves a catalog entry by id.
func (s *PostgresCatalogStore) GetByID(ctx context.Context, id int32) (Entry, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, created_at, updated_at, accessed_at
		FROM %s
		WHERE id = @id
	`, s.table)

	return s.scanEntry(s.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
}

// GetByName retrieves a catalog entry by its unique name. Entries may carry
// validity bounds; the lookup only matches entries valid as of the given
// instant.
func (s *PostgresCatalogStore) GetByName(ctx context.Context, name string, asOf time.Time) (Entry, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, created_at, updated_at, accessed_at
		FROM %s
		WHERE name = @name
		  AND (valid_from IS NULL OR valid_from <= @as_of)
		  AND (valid_until IS NULL OR valid_until > @as_of)
	`, s.table)

	return s.scanEntry(s.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"name":  name,
		"as_of": asOf,
	}))
}

func (s *PostgresCatalogStore) scanEntry(row pgx.Row) (Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.AccessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	return entry, nil
}
