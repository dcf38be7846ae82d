package user

import (
	"time"

	"github.com/tendant/simple-entitlements/pkg/catalog"
)

// User is an identity record with its optional nested graph. Roles and
// Permissions are populated by the aggregated list query; plain lookups leave
// them nil.
type User struct {
	ID                   int64           `json:"id"`
	Username             string          `json:"username"`
	Email                string          `json:"email,omitempty"`
	EmailVerified        bool            `json:"email_verified"`
	MobileNumber         string          `json:"mobile_number,omitempty"`
	MobileNumberVerified bool            `json:"mobile_number_verified"`
	CountryCode          string          `json:"country_code,omitempty"`
	Active               bool            `json:"active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	AccessedAt           time.Time       `json:"accessed_at"`
	Profile              *Profile        `json:"profile,omitempty"`
	Address              *Address        `json:"address,omitempty"`
	Roles                []catalog.Entry `json:"roles,omitempty"`
	Permissions          []catalog.Entry `json:"permissions,omitempty"`
}

// Profile holds a user's display data. A user owns zero or one profile,
// keyed by user_id from the profile side.
type Profile struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Firstname      string    `json:"firstname"`
	Lastname       string    `json:"lastname"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Website        string    `json:"website,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Address holds a user's location data. A user owns zero or one address.
type Address struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Country    string    `json:"country"`
	Region     string    `json:"region,omitempty"`
	City       string    `json:"city"`
	Street     string    `json:"street,omitempty"`
	UnitNumber string    `json:"unit_number,omitempty"`
	ZipCode    string    `json:"zip_code,omitempty"`
	Type       string    `json:"type,omitempty"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
