package routes

import (
	"errors"
	"net/http"

	"room-access-control/internal/booking"
	"room-access-control/internal/jwt"
	"room-access-control/internal/registry"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error    // The underlying error
	StatusCode int      // HTTP status code
	Message    string   // User-friendly message
	StopCodes  []string // Optional stop codes for client-side handling
	Internal   bool     // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors
type ErrorInfo struct {
	Message   string   // User-friendly message
	StopCodes []string // Optional stop codes for client-side application
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(statusCode int, err error, message string, stopCodes ...string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		StopCodes:  stopCodes,
		Internal:   statusCode >= 500,
	}
}

// Routes-specific errors (that don't conflict with other packages)
var (
	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Door bridge errors
	ErrDoorNotFound       = errors.New("door not found")
	ErrReaderNotVerified  = errors.New("reader id did not verify")
	ErrNoScanPending      = errors.New("no scan pending")
	ErrUnknownDoorCommand = errors.New("unknown door command")

	// Validation errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingParameter = errors.New("missing required parameter")

	// Internal errors
	ErrInternalServer = errors.New("internal server error")
	ErrDatabaseError  = errors.New("database error")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:         http.StatusBadRequest,
	ErrMissingParameter:       http.StatusBadRequest,
	ErrUnknownDoorCommand:     http.StatusBadRequest,
	booking.ErrInvalidBooking: http.StatusBadRequest,
	registry.ErrInvalidUser:   http.StatusBadRequest,

	// 401 Unauthorized
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,
	jwt.ErrNonValidToken:  http.StatusUnauthorized,

	// 403 Forbidden
	booking.ErrNotEligible:   http.StatusForbidden,
	booking.ErrNotAuthorized: http.StatusForbidden,
	ErrReaderNotVerified:     http.StatusForbidden,

	// 404 Not Found
	booking.ErrBookingNotFound: http.StatusNotFound,
	registry.ErrUserNotFound:   http.StatusNotFound,
	ErrDoorNotFound:            http.StatusNotFound,
	ErrNoScanPending:           http.StatusNotFound,

	// 409 Conflict
	booking.ErrQuotaExceeded:  http.StatusConflict,
	booking.ErrSlotConflict:   http.StatusConflict,
	registry.ErrDuplicateUser: http.StatusConflict,

	// 500 Internal Server Error
	ErrInternalServer: http.StatusInternalServerError,
	ErrDatabaseError:  http.StatusInternalServerError,
}

// errorInfoMap maps errors to user-friendly messages and optional stop codes
var errorInfoMap = map[error]ErrorInfo{
	// Authentication
	ErrUnauthorized: {
		Message:   "Authentication required",
		StopCodes: []string{"AUTH_REQUIRED"},
	},
	ErrInvalidCredentials: {
		Message:   "Invalid credentials provided",
		StopCodes: []string{"AUTH_INVALID_CREDENTIALS"},
	},
	jwt.ErrNonValidToken: {
		Message:   "Invalid or expired authentication token",
		StopCodes: []string{"AUTH_INVALID_TOKEN"},
	},

	// Booking workflow
	booking.ErrNotEligible: {
		Message:   "Your account is not eligible to book rooms",
		StopCodes: []string{"BOOKING_NOT_ELIGIBLE"},
	},
	booking.ErrNotAuthorized: {
		Message:   "You don't have permission to perform this action",
		StopCodes: []string{"BOOKING_NOT_AUTHORIZED"},
	},
	booking.ErrBookingNotFound: {
		Message:   "Booking not found",
		StopCodes: []string{"BOOKING_NOT_FOUND"},
	},
	booking.ErrInvalidBooking: {
		Message:   "Invalid booking request",
		StopCodes: []string{"BOOKING_INVALID"},
	},
	booking.ErrQuotaExceeded: {
		Message:   "Active booking limit reached",
		StopCodes: []string{"BOOKING_QUOTA_EXCEEDED"},
	},
	booking.ErrSlotConflict: {
		Message:   "Requested slot overlaps an approved booking",
		StopCodes: []string{"BOOKING_SLOT_CONFLICT"},
	},

	// User registry
	registry.ErrUserNotFound: {
		Message:   "User not found",
		StopCodes: []string{"USER_NOT_FOUND"},
	},
	registry.ErrDuplicateUser: {
		Message:   "Card, user id or email is already registered",
		StopCodes: []string{"USER_DUPLICATE"},
	},
	registry.ErrInvalidUser: {
		Message:   "Invalid user record",
		StopCodes: []string{"USER_INVALID"},
	},

	// Door bridge
	ErrDoorNotFound: {
		Message:   "Door not found",
		StopCodes: []string{"DOOR_NOT_FOUND"},
	},
	ErrReaderNotVerified: {
		Message:   "Reader identity could not be verified",
		StopCodes: []string{"READER_NOT_VERIFIED"},
	},
	ErrNoScanPending: {
		Message:   "No card scan is pending for this reader",
		StopCodes: []string{"NO_SCAN_PENDING"},
	},
	ErrUnknownDoorCommand: {
		Message:   "Unknown door command",
		StopCodes: []string{"DOOR_COMMAND_UNKNOWN"},
	},

	// Validation
	ErrInvalidRequest: {
		Message:   "Invalid request format",
		StopCodes: []string{"INVALID_REQUEST"},
	},
	ErrMissingParameter: {
		Message:   "Required parameter is missing",
		StopCodes: []string{"MISSING_PARAMETER"},
	},

	// Internal (no stop codes for internal errors)
	ErrInternalServer: {
		Message: "An internal error occurred",
	},
	ErrDatabaseError: {
		Message: "Database operation failed",
	},
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	// Check if error wraps a known error
	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// GetErrorInfo returns error information including message and stop codes
func GetErrorInfo(err error) ErrorInfo {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			Message:   httpErr.Message,
			StopCodes: httpErr.StopCodes,
		}
	}

	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Check if error wraps a known error
	for knownErr, info := range errorInfoMap {
		if errors.Is(err, knownErr) {
			return info
		}
	}

	// For unknown errors, return a generic message for 5xx, specific for others
	status := GetErrorStatus(err)
	if status >= 500 {
		return ErrorInfo{Message: "An internal error occurred"}
	}
	return ErrorInfo{Message: err.Error()}
}

// GetErrorMessage returns a user-friendly message for an error
func GetErrorMessage(err error) string {
	return GetErrorInfo(err).Message
}
