package user

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedProjection indicates an aggregated JSON column could not be
// decoded. This is fatal for the row: an empty array is a legitimate value,
// so a parse failure must never be masked as "no entitlements".
var ErrMalformedProjection = errors.New("malformed projection")

// rawUserRow mirrors the column list of the aggregated user statement, in
// scan order. Profile and address columns are nullable because both joins are
// optional.
type rawUserRow struct {
	ID                   int64
	Username             string
	Email                sql.NullString
	EmailVerified        bool
	MobileNumber         sql.NullString
	MobileNumberVerified bool
	CountryCode          sql.NullString
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	AccessedAt           time.Time

	ProfileID        sql.NullInt64
	Firstname        sql.NullString
	Lastname         sql.NullString
	ProfilePicture   sql.NullString
	Bio              sql.NullString
	Website          sql.NullString
	ProfileCreatedAt sql.NullTime
	ProfileUpdatedAt sql.NullTime

	AddressID        sql.NullInt64
	Country          sql.NullString
	Region           sql.NullString
	City             sql.NullString
	Street           sql.NullString
	UnitNumber       sql.NullString
	ZipCode          sql.NullString
	AddressType      sql.NullString
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	AddressCreatedAt sql.NullTime
	AddressUpdatedAt sql.NullTime

	Roles       []byte
	Permissions []byte
}

// project assembles the structured entity graph from one raw result row.
func (r rawUserRow) project() (User, error) {
	u := User{
		ID:                   r.ID,
		Username:             r.Username,
		Email:                r.Email.String,
		EmailVerified:        r.EmailVerified,
		MobileNumber:         r.MobileNumber.String,
		MobileNumberVerified: r.MobileNumberVerified,
		CountryCode:          r.CountryCode.String,
		Active:               r.Active,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		AccessedAt:           r.AccessedAt,
	}

	if err := json.Unmarshal(r.Roles, &u.Roles); err != nil {
		return User{}, fmt.Errorf("%w: roles column for user %d: %v", ErrMalformedProjection, r.ID, err)
	}
	if err := json.Unmarshal(r.Permissions, &u.Permissions); err != nil {
		return User{}, fmt.Errorf("%w: permissions column for user %d: %v", ErrMalformedProjection, r.ID, err)
	}

	if r.ProfileID.Valid {
		u.Profile = &Profile{
			ID:             r.ProfileID.Int64,
			UserID:         r.ID,
			Firstname:      r.Firstname.String,
			Lastname:       r.Lastname.String,
			ProfilePicture: r.ProfilePicture.String,
			Bio:            r.Bio.String,
			Website:        r.Website.String,
			CreatedAt:      r.ProfileCreatedAt.Time,
			UpdatedAt:      r.ProfileUpdatedAt.Time,
		}
	}
	if r.AddressID.Valid {
		addr := &Address{
			ID:         r.AddressID.Int64,
			UserID:     r.ID,
			Country:    r.Country.String,
			Region:     r.Region.String,
			City:       r.City.String,
			Street:     r.Street.String,
			UnitNumber: r.UnitNumber.String,
			ZipCode:    r.ZipCode.String,
			Type:       r.AddressType.String,
			CreatedAt:  r.AddressCreatedAt.Time,
			UpdatedAt:  r.AddressUpdatedAt.Time,
		}
		if r.Latitude.Valid {
			addr.Latitude = &r.Latitude.Float64
		}
		if r.Longitude.Valid {
			addr.Longitude = &r.Longitude.Float64
		}
		u.Address = addr
	}
	return u, nil
}
