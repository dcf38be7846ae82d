package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	entErrors "github.com/tendant/simple-entitlements/pkg/errors"
	"github.com/tendant/simple-entitlements/pkg/user"
	"github.com/tendant/simple-entitlements/pkg/utils"
)

// Handle handles HTTP requests for user management
type Handle struct {
	userService *user.UserService
}

// NewHandle creates a new user handler
func NewHandle(userService *user.UserService) *Handle {
	return &Handle{
		userService: userService,
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}

// UserListResponse represents the response body for listing users
type UserListResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Users   []user.User `json:"users"`
}

// UserResponse represents the response body for a single user
type UserResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ListUsers handles the filtered, paginated user listing
func (h *Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromQuery(r)
	if err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	users, err := h.userService.List(r.Context(), params)
	if err != nil {
		slog.Error("Failed listing users", "error", err)
		renderServiceError(w, r, err, "Failed listing users")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, UserListResponse{
		Status:  "success",
		Message: "Users retrieved successfully",
		Users:   users,
	})
}

// GetUser handles retrieving a user by id
func (h *Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}

	u, err := h.userService.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed getting user", "user_id", id, "error", err)
		renderServiceError(w, r, err, "Failed getting user")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, UserResponse{
		Status:  "success",
		Message: "User retrieved successfully",
		User:    u,
	})
}

// CreateUser handles creating a new user
func (h *Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Username == "" {
		renderErrorResponse(w, r, http.StatusBadRequest, "Missing required field", "username is required")
		return
	}

	created, err := h.userService.Create(r.Context(), user.User{
		Username:     req.Username,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		CountryCode:  req.CountryCode,
	})
	if err != nil {
		slog.Error("Failed creating user", "username", req.Username, "error", err)
		renderServiceError(w, r, err, "Failed creating user")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UserResponse{
		Status:  "success",
		Message: "User created successfully",
		User:    created,
	})
}

// DeleteUser handles deleting a user by id
func (h *Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		slog.Error("Failed deleting user", "user_id", id, "error", err)
		renderServiceError(w, r, err, "Failed deleting user")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SuccessResponse{
		Status:  "success",
		Message: "User deleted successfully",
	})
}

// Handler returns a http.Handler for the user API
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Get("/{id}", h.GetUser)
	r.Delete("/{id}", h.DeleteUser)

	return r
}

func listParamsFromQuery(r *http.Request) (user.ListParams, error) {
	q := r.URL.Query()
	params := user.ListParams{
		SortBy:    q.Get("sort_by"),
		Direction: q.Get("direction"),
		Search:    q.Get("search"),
		Country:   q.Get("country"),
		City:      q.Get("city"),
		Region:    q.Get("region"),
		Street:    q.Get("street"),
	}

	if v := q.Get("cursor"); v != "" {
		cursor, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, errors.New("cursor must be an integer")
		}
		params.Cursor = utils.Int64Ptr(cursor)
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 32)
		if err != nil || limit <= 0 {
			return params, errors.New("limit must be a positive integer")
		}
		params.Limit = utils.Int32Ptr(int32(limit))
	}

	return params, nil
}

// renderServiceError maps service errors to HTTP responses
func renderServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var code entErrors.ErrorCode
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		code = entErrors.ErrCodeUserNotFound
	case errors.Is(err, user.ErrDuplicateUser):
		code = entErrors.ErrCodeUserAlreadyExists
	case errors.Is(err, user.ErrEmptyUsername):
		code = entErrors.ErrCodeMissingRequired
	default:
		code = entErrors.ErrCodeInternal
	}

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
