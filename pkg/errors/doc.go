// Package errors provides structured error handling with error codes for simple-entitlements.
//
// This package standardizes error handling across all services with typed error codes,
// structured error details, and automatic HTTP status code mapping.
//
// # Basic Usage
//
// Creating errors with codes:
//
//	import "github.com/tendant/simple-entitlements/pkg/errors"
//
//	// Create a simple error
//	err := errors.New(errors.ErrCodeUserNotFound, "user not found")
//
//	// Create error with formatted message
//	err := errors.Newf(errors.ErrCodeRoleNotFound, "role not found: %s", name)
//
//	// Wrap an existing error
//	err := errors.Wrap(dbErr, errors.ErrCodeInternal, "failed to query database")
//
//	// Use convenience constructors
//	err := errors.NotFound("user", userID)
//	err := errors.InvalidInput("limit", "must be positive")
//
// # HTTP Status Mapping
//
// API handlers translate error codes to HTTP responses:
//
//	if err != nil {
//		status := errors.GetCode(err)
//		http.Error(w, err.Error(), errors.MapErrorCodeToHTTPStatus(status))
//		return
//	}
//
// Or, when holding a structured *Error directly:
//
//	render.Status(r, e.HTTPStatusCode())
//
// # Error Inspection
//
// Check error codes without unwrapping manually:
//
//	if errors.IsCode(err, errors.ErrCodeRoleNotFound) {
//		// handle the missing role
//	}
//
// Plain sentinel errors from the domain packages (catalog.ErrEntryNotFound,
// user.ErrUserNotFound) still work with the standard library errors.Is; this
// package is the translation layer at the API boundary, not a replacement for
// sentinels inside services.
package errors
