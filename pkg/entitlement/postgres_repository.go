package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-entitlements/pkg/catalog"
)

// grantTables holds the identifiers for one kind's grant storage. Values are
// compile-time constants, never caller input.
type grantTables struct {
	grants     string
	catalog    string
	fkColumn   string
	nameColumn string
	descColumn string
}

var kindGrantTables = map[catalog.Kind]grantTables{
	catalog.KindRole: {
		grants:     "user_roles",
		catalog:    "roles",
		fkColumn:   "role_id",
		nameColumn: "role_name",
		descColumn: "role_description",
	},
	catalog.KindPermission: {
		grants:     "user_permissions",
		catalog:    "permissions",
		fkColumn:   "permission_id",
		nameColumn: "permission_name",
		descColumn: "permission_description",
	},
}

// PostgresGrantRepository implements GrantRepository for one catalog kind.
type PostgresGrantRepository struct {
	pool   *pgxpool.Pool
	kind   catalog.Kind
	tables grantTables
}

// NewPostgresGrantRepository creates a grant repository for the given kind.
func NewPostgresGrantRepository(pool *pgxpool.Pool, kind catalog.Kind) (*PostgresGrantRepository, error) {
	tables, ok := kindGrantTables[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported catalog kind: %s", kind)
	}
	return &PostgresGrantRepository{
		pool:   pool,
		kind:   kind,
		tables: tables,
	}, nil
}

// FindAllByUserID returns the grants currently held by a user.
func (r *PostgresGrantRepository) FindAllByUserID(ctx context.Context, userID int64) ([]Grant, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, username, %s, %s, %s, created_at, accessed_at
		FROM %s
		WHERE user_id = @user_id
		ORDER BY id
	`, r.tables.fkColumn, r.tables.nameColumn, r.tables.descColumn, r.tables.grants)

	rows, err := r.pool.Query(ctx, query, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.tables.grants, err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// FindAllByCatalogID returns the grants held against a catalog entry.
func (r *PostgresGrantRepository) FindAllByCatalogID(ctx context.Context, catalogID int32) ([]Grant, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, username, %s, %s, %s, created_at, accessed_at
		FROM %s
		WHERE %s = @catalog_id
		ORDER BY id
	`, r.tables.fkColumn, r.tables.nameColumn, r.tables.descColumn, r.tables.grants, r.tables.fkColumn)

	rows, err := r.pool.Query(ctx, query, pgx.NamedArgs{"catalog_id": catalogID})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.tables.grants, err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// Save persists a new grant row.
func (r *PostgresGrantRepository) Save(ctx context.Context, grant Grant) (Grant, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, username, %s, %s, %s, created_at, accessed_at)
		VALUES (@user_id, @username, @catalog_id, @catalog_name, @catalog_description, @created_at, @accessed_at)
		RETURNING id
	`, r.tables.grants, r.tables.fkColumn, r.tables.nameColumn, r.tables.descColumn)

	err := r.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"user_id":             grant.UserID,
		"username":            grant.Username,
		"catalog_id":          grant.CatalogID,
		"catalog_name":        grant.CatalogName,
		"catalog_description": grant.CatalogDescription,
		"created_at":          grant.CreatedAt,
		"accessed_at":         grant.AccessedAt,
	}).Scan(&grant.ID)
	if err != nil {
		return Grant{}, fmt.Errorf("failed to save grant: %w", err)
	}
	return grant, nil
}

// DeleteByIDs removes grants by id. Zero-row deletes succeed silently.
func (r *PostgresGrantRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY(@ids)`, r.tables.grants)

	tag, err := r.pool.Exec(ctx, query, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return 0, fmt.Errorf("failed to delete grants: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByCatalogIDs removes every grant referencing one of the catalog ids.
func (r *PostgresGrantRepository) DeleteByCatalogIDs(ctx context.Context, catalogIDs []int32) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY(@catalog_ids)`, r.tables.grants, r.tables.fkColumn)

	tag, err := r.pool.Exec(ctx, query, pgx.NamedArgs{"catalog_ids": catalogIDs})
	if err != nil {
		return 0, fmt.Errorf("failed to delete grants: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns grants joined with the live catalog entry, forward-paginated
// by grant id.
func (r *PostgresGrantRepository) List(ctx context.Context, cursor *int64, limit *int32) ([]Grant, error) {
	query := fmt.Sprintf(`
		SELECT g.id, g.user_id, g.username, g.%s, c.name, c.description, g.created_at, g.accessed_at
		FROM %s g
		JOIN %s c ON g.%s = c.id
	`, r.tables.fkColumn, r.tables.grants, r.tables.catalog, r.tables.fkColumn)

	args := pgx.NamedArgs{}
	if cursor != nil {
		query += " WHERE g.id > @cursor"
		args["cursor"] = *cursor
	}
	query += " ORDER BY g.id ASC"
	if limit != nil {
		query += " LIMIT @limit"
		args["limit"] = *limit
	}

	rows, err := r.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// FindByUserWithRefresh bumps accessed_at on the user's grants and returns
// the enriched rows in one round trip.
func (r *PostgresGrantRepository) FindByUserWithRefresh(ctx context.Context, userID int64) ([]Grant, error) {
	query := fmt.Sprintf(`
		UPDATE %s g
		SET accessed_at = @accessed_at
		FROM %s c, users u
		WHERE g.%s = c.id
		  AND g.user_id = u.id
		  AND g.user_id = @user_id
		RETURNING g.id, g.user_id, u.username, g.%s, c.name, c.description, g.created_at, g.accessed_at
	`, r.tables.grants, r.tables.catalog, r.tables.fkColumn, r.tables.fkColumn)

	rows, err := r.pool.Query(ctx, query, pgx.NamedArgs{
		"accessed_at": time.Now().UTC(),
		"user_id":     userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

func scanGrants(rows pgx.Rows) ([]Grant, error) {
	var grants []Grant
	for rows.Next() {
		var g Grant
		err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.Username,
			&g.CatalogID,
			&g.CatalogName,
			&g.CatalogDescription,
			&g.CreatedAt,
			&g.AccessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
