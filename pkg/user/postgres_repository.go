package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-entitlements/pkg/utils"
)

// PostgresUserRepository implements Repository and Lister using PostgreSQL.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL user repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, email_verified, mobile_number, mobile_number_verified, country_code, active, created_at, updated_at, accessed_at`

// List runs the aggregated statement compiled from params and projects each
// row into the nested entity graph.
func (r *PostgresUserRepository) List(ctx context.Context, params ListParams) ([]User, error) {
	query, args := params.Build()
	rows, err := r.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var raw rawUserRow
		err := rows.Scan(
			&raw.ID,
			&raw.Username,
			&raw.Email,
			&raw.EmailVerified,
			&raw.MobileNumber,
			&raw.MobileNumberVerified,
			&raw.CountryCode,
			&raw.Active,
			&raw.CreatedAt,
			&raw.UpdatedAt,
			&raw.AccessedAt,
			&raw.ProfileID,
			&raw.Firstname,
			&raw.Lastname,
			&raw.ProfilePicture,
			&raw.Bio,
			&raw.Website,
			&raw.ProfileCreatedAt,
			&raw.ProfileUpdatedAt,
			&raw.AddressID,
			&raw.Country,
			&raw.Region,
			&raw.City,
			&raw.Street,
			&raw.UnitNumber,
			&raw.ZipCode,
			&raw.AddressType,
			&raw.Latitude,
			&raw.Longitude,
			&raw.AddressCreatedAt,
			&raw.AddressUpdatedAt,
			&raw.Roles,
			&raw.Permissions,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u, err := raw.project()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// FindByID retrieves a user by id, without the nested graph.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = @id`
	return r.scanUser(r.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
}

// FindAll returns all users ordered by id, without the nested graph.
func (r *PostgresUserRepository) FindAll(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user row.
func (r *PostgresUserRepository) Create(ctx context.Context, u User) (User, error) {
	query := `
		INSERT INTO users (username, email, email_verified, mobile_number, mobile_number_verified, country_code, active)
		VALUES (@username, @email, @email_verified, @mobile_number, @mobile_number_verified, @country_code, @active)
		RETURNING ` + userColumns

	return r.scanUser(r.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"username":               u.Username,
		"email":                  utils.ToNullString(u.Email),
		"email_verified":         u.EmailVerified,
		"mobile_number":          utils.ToNullString(u.MobileNumber),
		"mobile_number_verified": u.MobileNumberVerified,
		"country_code":           utils.ToNullString(u.CountryCode),
		"active":                 u.Active,
	}))
}

// DeleteByID removes a user. The grant tables cascade on user deletion.
func (r *PostgresUserRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ExistsByUsername reports whether a user holds the username, ignoring case.
func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER(@value))`, username)
}

// ExistsByEmail reports whether a user holds the email, ignoring case.
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER(@value))`, email)
}

// ExistsByMobileNumber reports whether a user holds the mobile number.
func (r *PostgresUserRepository) ExistsByMobileNumber(ctx context.Context, mobileNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE mobile_number = @value)`, mobileNumber)
}

func (r *PostgresUserRepository) exists(ctx context.Context, query, value string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, pgx.NamedArgs{"value": value}).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (User, error) {
	var (
		u            User
		email        sql.NullString
		mobileNumber sql.NullString
		countryCode  sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&email,
		&u.EmailVerified,
		&mobileNumber,
		&u.MobileNumberVerified,
		&countryCode,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.AccessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Email = email.String
	u.MobileNumber = mobileNumber.String
	u.CountryCode = countryCode.String
	return u, nil
}
