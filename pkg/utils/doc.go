// Package utils provides small, stateless helpers shared across the
// simple-entitlements packages: SQL null type conversions and pointer
// helpers for optional query parameters.
//
//	email := utils.ToNullString("")   // Valid = false, stored as NULL
//	cursor := utils.Int64Ptr(20)      // *int64 for optional pagination fields
package utils
