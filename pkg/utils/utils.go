package utils

import "database/sql"

func ToNullString(str string) sql.NullString {
	if str == "" {
		return sql.NullString{
			String: str,
			Valid:  false,
		}
	}
	return sql.NullString{
		String: str,
		Valid:  true,
	}
}

// Int64Ptr returns a pointer to v. Useful for optional filter fields.
func Int64Ptr(v int64) *int64 {
	return &v
}

// Int32Ptr returns a pointer to v.
func Int32Ptr(v int32) *int32 {
	return &v
}
