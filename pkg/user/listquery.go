package user

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// ListParams carries the optional filters, sort and pagination of the
// aggregated user listing. Zero values mean "absent": nil cursor/limit and
// blank strings bind nothing.
type ListParams struct {
	Cursor    *int64
	Limit     *int32
	SortBy    string
	Direction string
	Search    string
	Country   string
	City      string
	Region    string
	Street    string
}

// listUsersBase is the aggregate statement: one row per user with the profile
// and address columns flattened in and the role/permission catalog entries
// collapsed into two JSON arrays. The jsonb_build_object keys are camelCase
// so the arrays decode straight into catalog.Entry.
const listUsersBase = `SELECT
	users.id,
	users.username,
	users.email,
	users.email_verified,
	users.mobile_number,
	users.mobile_number_verified,
	users.country_code,
	users.active,
	users.created_at,
	users.updated_at,
	users.accessed_at,
	profiles.id AS profile_id,
	profiles.firstname,
	profiles.lastname,
	profiles.profile_picture,
	profiles.bio,
	profiles.website,
	profiles.created_at AS profile_created_at,
	profiles.updated_at AS profile_updated_at,
	addresses.id AS address_id,
	addresses.country,
	addresses.region,
	addresses.city,
	addresses.street,
	addresses.unit_number,
	addresses.zip_code,
	addresses.type AS address_type,
	addresses.latitude,
	addresses.longitude,
	addresses.created_at AS address_created_at,
	addresses.updated_at AS address_updated_at,
	COALESCE(
		jsonb_agg(DISTINCT jsonb_build_object(
			'id',          r.id,
			'name',        r.name,
			'description', r.description,
			'createdAt',   r.created_at,
			'updatedAt',   r.updated_at,
			'accessedAt',  r.accessed_at
		)) FILTER (WHERE r.id IS NOT NULL),
		'[]'::jsonb
	) AS roles,
	COALESCE(
		jsonb_agg(DISTINCT jsonb_build_object(
			'id',          p.id,
			'name',        p.name,
			'description', p.description,
			'createdAt',   p.created_at,
			'updatedAt',   p.updated_at,
			'accessedAt',  p.accessed_at
		)) FILTER (WHERE p.id IS NOT NULL),
		'[]'::jsonb
	) AS permissions
FROM users
LEFT JOIN profiles ON users.id = profiles.user_id
LEFT JOIN addresses ON users.id = addresses.user_id
LEFT JOIN user_roles ur ON users.id = ur.user_id
LEFT JOIN roles r ON ur.role_id = r.id
LEFT JOIN user_permissions up ON users.id = up.user_id
LEFT JOIN permissions p ON up.permission_id = p.id`

const searchClause = `(
	to_tsvector('simple', coalesce(users.username,''))
	@@ to_tsquery('simple', @search || ':*')
	OR
	to_tsvector('simple', coalesce(profiles.firstname,'') || ' ' || coalesce(profiles.lastname,''))
	@@ to_tsquery('simple', @search || ':*')
)`

// predicate is one optional WHERE fragment with its bound value. Folding an
// ordered predicate list into the statement makes the WHERE/AND joining
// mechanical instead of scattered through string assembly.
type predicate struct {
	clause string
	name   string
	value  any
}

func (p ListParams) predicates() []predicate {
	var preds []predicate
	if p.Cursor != nil {
		preds = append(preds, predicate{clause: "users.id > @cursor", name: "cursor", value: *p.Cursor})
	}
	if strings.TrimSpace(p.Search) != "" {
		preds = append(preds, predicate{clause: searchClause, name: "search", value: p.Search})
	}
	if strings.TrimSpace(p.Country) != "" {
		preds = append(preds, predicate{clause: "addresses.country ILIKE '%'||TRIM(@country)||'%'", name: "country", value: p.Country})
	}
	if strings.TrimSpace(p.City) != "" {
		preds = append(preds, predicate{clause: "addresses.city ILIKE '%'||TRIM(@city)||'%'", name: "city", value: p.City})
	}
	if strings.TrimSpace(p.Region) != "" {
		preds = append(preds, predicate{clause: "addresses.region ILIKE '%'||TRIM(@region)||'%'", name: "region", value: p.Region})
	}
	if strings.TrimSpace(p.Street) != "" {
		preds = append(preds, predicate{clause: "addresses.street ILIKE '%'||TRIM(@street)||'%'", name: "street", value: p.Street})
	}
	return preds
}

// sortColumn maps the requested sort key onto the column allow-list. Any key
// outside the list falls back to users.id, so caller input never reaches the
// SQL text verbatim.
func (p ListParams) sortColumn() string {
	switch p.SortBy {
	case "id", "created_at", "username", "email":
		return "users." + p.SortBy
	case "firstname":
		return "profiles.firstname"
	case "lastname":
		return "profiles.lastname"
	case "fullname":
		return "(profiles.firstname || ' ' || profiles.lastname)"
	default:
		return "users.id"
	}
}

func (p ListParams) sortDirection() string {
	if strings.EqualFold(p.Direction, "desc") {
		return "DESC"
	}
	return "ASC"
}

// Build compiles the parameters into a single statement plus its named binds.
// Filters are additive and independent; the first present predicate writes
// WHERE and every later one writes AND. Grouping at the user/profile/address
// grain keeps the JSON aggregation correct however many join rows exist, and
// LIMIT is applied last, after ordering.
func (p ListParams) Build() (string, pgx.NamedArgs) {
	var b strings.Builder
	b.WriteString(listUsersBase)
	args := pgx.NamedArgs{}

	wroteWhere := false
	for _, pred := range p.predicates() {
		if wroteWhere {
			b.WriteString("\nAND ")
		} else {
			b.WriteString("\nWHERE ")
			wroteWhere = true
		}
		b.WriteString(pred.clause)
		args[pred.name] = pred.value
	}

	b.WriteString("\nGROUP BY users.id, profiles.id, addresses.id")
	b.WriteString("\nORDER BY " + p.sortColumn() + " " + p.sortDirection())
	if p.Limit != nil {
		b.WriteString("\nLIMIT @limit")
		args["limit"] = *p.Limit
	}
	return b.String(), args
}
