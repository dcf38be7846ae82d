package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-entitlements/pkg/catalog"
	"github.com/tendant/simple-entitlements/pkg/entitlement"
	entErrors "github.com/tendant/simple-entitlements/pkg/errors"
)

// Handle handles HTTP requests for one entitlement kind.
// Mount one instance under /api/roles and another under /api/permissions.
type Handle struct {
	service *entitlement.ReconcileService
}

// NewHandle creates a new entitlement handler
func NewHandle(service *entitlement.ReconcileService) *Handle {
	return &Handle{
		service: service,
	}
}

// EntryRef identifies a catalog entry by id or name. ID wins when both are set.
type EntryRef struct {
	ID   *int32  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// UserAssignment carries the entries requested for one user
type UserAssignment struct {
	UserID  int64      `json:"user_id"`
	Entries []EntryRef `json:"entries"`
}

// AssignRequest represents the request body for assigning entries to specific users
type AssignRequest struct {
	Assignments []UserAssignment `json:"assignments"`
}

// AssignAllRequest represents the request body for assigning entries to every user
type AssignAllRequest struct {
	CatalogIDs []int32 `json:"catalog_ids"`
}

// UnassignRequest represents the request body for removing grants by grant id
type UnassignRequest struct {
	GrantIDs []int64 `json:"grant_ids"`
}

// UnassignByEntryRequest represents the request body for removing grants by catalog id
type UnassignByEntryRequest struct {
	CatalogIDs []int32 `json:"catalog_ids"`
}

// GrantResponse represents one user-entry grant in API responses
type GrantResponse struct {
	ID                 int64  `json:"id"`
	UserID             int64  `json:"user_id"`
	Username           string `json:"username,omitempty"`
	CatalogID          int32  `json:"catalog_id"`
	CatalogName        string `json:"catalog_name"`
	CatalogDescription string `json:"catalog_description,omitempty"`
	CreatedAt          string `json:"created_at"`
	AccessedAt         string `json:"accessed_at"`
}

// GrantListResponse represents the response body for grant listings
type GrantListResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Grants  []GrantResponse `json:"grants"`
}

// RemovedResponse represents the response body for grant removal
type RemovedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Assign handles assigning catalog entries to specific users
func (h *Handle) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if len(req.Assignments) == 0 {
		renderErrorResponse(w, r, http.StatusBadRequest, "Missing required field", "assignments is required")
		return
	}

	assignments := make(map[int64][]catalog.Ref, len(req.Assignments))
	for _, a := range req.Assignments {
		if a.UserID <= 0 {
			renderErrorResponse(w, r, http.StatusBadRequest, "Invalid user id", "user_id must be positive")
			return
		}
		assignments[a.UserID] = toRefs(a.Entries)
	}

	grants, err := h.service.AssignToUsers(r.Context(), assignments)
	if err != nil {
		slog.Error("Failed assigning entries", "kind", h.service.Kind(), "error", err)
		renderServiceError(w, r, err, "Failed assigning entries")
		return
	}

	renderGrantList(w, r, http.StatusOK, "Entries assigned successfully", grants)
}

// AssignAll handles assigning catalog entries to every user
func (h *Handle) AssignAll(w http.ResponseWriter, r *http.Request) {
	var req AssignAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if len(req.CatalogIDs) == 0 {
		renderErrorResponse(w, r, http.StatusBadRequest, "Missing required field", "catalog_ids is required")
		return
	}

	grants, err := h.service.AssignToAllUsers(r.Context(), req.CatalogIDs)
	if err != nil {
		slog.Error("Failed assigning entries to all users", "kind", h.service.Kind(), "error", err)
		renderServiceError(w, r, err, "Failed assigning entries to all users")
		return
	}

	renderGrantList(w, r, http.StatusOK, "Entries assigned successfully", grants)
}

// ListGrants handles listing grants with cursor pagination
func (h *Handle) ListGrants(w http.ResponseWriter, r *http.Request) {
	var cursor *int64
	var limit *int32

	if v := r.URL.Query().Get("cursor"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			renderErrorResponse(w, r, http.StatusBadRequest, "Invalid cursor", err.Error())
			return
		}
		cursor = &parsed
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed <= 0 {
			renderErrorResponse(w, r, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		l := int32(parsed)
		limit = &l
	}

	grants, err := h.service.ListGrants(r.Context(), cursor, limit)
	if err != nil {
		slog.Error("Failed listing grants", "kind", h.service.Kind(), "error", err)
		renderServiceError(w, r, err, "Failed listing grants")
		return
	}

	renderGrantList(w, r, http.StatusOK, "Grants retrieved successfully", grants)
}

// GetUserGrants handles listing one user's grants, refreshing their access time
func (h *Handle) GetUserGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}

	grants, err := h.service.GetUserGrants(r.Context(), userID)
	if err != nil {
		slog.Error("Failed getting user grants", "kind", h.service.Kind(), "user_id", userID, "error", err)
		renderServiceError(w, r, err, "Failed getting user grants")
		return
	}

	renderGrantList(w, r, http.StatusOK, "Grants retrieved successfully", grants)
}

// Unassign handles removing grants by grant id
func (h *Handle) Unassign(w http.ResponseWriter, r *http.Request) {
	var req UnassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	removed, err := h.service.Unassign(r.Context(), req.GrantIDs)
	if err != nil {
		slog.Error("Failed removing grants", "kind", h.service.Kind(), "error", err)
		renderServiceError(w, r, err, "Failed removing grants")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RemovedResponse{
		Status:  "success",
		Message: "Grants removed successfully",
		Removed: removed,
	})
}

// UnassignByEntry handles removing every grant of the given catalog entries
func (h *Handle) UnassignByEntry(w http.ResponseWriter, r *http.Request) {
	var req UnassignByEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if len(req.CatalogIDs) == 0 {
		renderErrorResponse(w, r, http.StatusBadRequest, "Missing required field", "catalog_ids is required")
		return
	}

	summary, err := h.service.UnassignByCatalog(r.Context(), req.CatalogIDs)
	if err != nil {
		slog.Error("Failed removing grants by entry", "kind", h.service.Kind(), "error", err)
		renderServiceError(w, r, err, "Failed removing grants by entry")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{
		Status:  "success",
		Message: summary,
	})
}

// Handler returns a http.Handler for the entitlement API
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListGrants)
	r.Post("/assign", h.Assign)
	r.Post("/assign-all", h.AssignAll)
	r.Get("/users/{user_id}", h.GetUserGrants)
	r.Delete("/", h.Unassign)
	r.Delete("/by-entry", h.UnassignByEntry)

	return r
}

func toRefs(entries []EntryRef) []catalog.Ref {
	refs := make([]catalog.Ref, len(entries))
	for i, e := range entries {
		refs[i] = catalog.Ref{ID: e.ID, Name: e.Name}
	}
	return refs
}

func renderGrantList(w http.ResponseWriter, r *http.Request, code int, message string, grants []entitlement.Grant) {
	apiGrants := make([]GrantResponse, 0, len(grants))
	if err := copier.Copy(&apiGrants, &grants); err != nil {
		slog.Error("Failed to copy grants", "error", err)
		renderErrorResponse(w, r, http.StatusInternalServerError, "Failed to prepare response", err.Error())
		return
	}
	for i, g := range grants {
		apiGrants[i].CreatedAt = g.CreatedAt.Format(time.RFC3339)
		apiGrants[i].AccessedAt = g.AccessedAt.Format(time.RFC3339)
	}

	render.Status(r, code)
	render.JSON(w, r, GrantListResponse{
		Status:  "success",
		Message: message,
		Grants:  apiGrants,
	})
}

// renderServiceError maps service errors to HTTP responses
func renderServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, catalog.ErrEntryNotFound):
		renderCodedError(w, r, entErrors.ErrCodeNotFound, message, err)
	case errors.Is(err, entitlement.ErrInvalidGrant):
		renderCodedError(w, r, entErrors.ErrCodeGrantInvalid, message, err)
	default:
		renderCodedError(w, r, entErrors.ErrCodeInternal, message, err)
	}
}

func renderCodedError(w http.ResponseWriter, r *http.Request, code entErrors.ErrorCode, message string, err error) {
	render.Status(r, entErrors.MapErrorCodeToHTTPStatus(code))
	render.JSON(w, r, ErrorResponse{
		Status:  "error",
		Code:    string(code),
		Message: message,
		Error:   err.Error(),
	})
}

// renderErrorResponse renders an error response with the given status code and message
func renderErrorResponse(w http.ResponseWriter, r *http.Request, code int, message, errMsg string) {
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{
		Status:  "error",
		Message: message,
		Error:   errMsg,
	})
}
