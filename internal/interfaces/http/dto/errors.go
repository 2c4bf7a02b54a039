package dto

import "net/http"

// Standardized error codes used across all API responses.
// Codes follow the pattern ERR_<CATEGORY>[_<DETAIL>]
const (
	// Client errors (4xx)
	ErrCodeValidation      = "ERR_VALIDATION"        // 400 - Request validation failed
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"       // 400 - Malformed request
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"      // 401 - Authentication required or failed
	ErrCodeForbidden       = "ERR_FORBIDDEN"         // 403 - Insufficient permissions
	ErrCodeNotFound        = "ERR_NOT_FOUND"         // 404 - Resource not found
	ErrCodeConflict        = "ERR_CONFLICT"          // 409 - Resource conflict (duplicate email, stale version)
	ErrCodeUnprocessable   = "ERR_UNPROCESSABLE"     // 422 - Semantically invalid request
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS" // 429 - Rate limit exceeded

	// Server errors (5xx)
	ErrCodeInternal    = "ERR_INTERNAL"    // 500 - Internal server error
	ErrCodeUnavailable = "ERR_UNAVAILABLE" // 503 - Service temporarily unavailable
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeUnprocessable:   http.StatusUnprocessableEntity,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes default to 500.
func GetHTTPStatus(errorCode string) int {
	if status, ok := ErrorCodeHTTPStatus[errorCode]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain-layer error codes to standardized
// API error codes. Domain code stays in the response message detail;
// the API code drives the HTTP status.
var DomainErrorCodeMapping = map[string]string{
	// Validation
	"INVALID_INPUT":    ErrCodeValidation,
	"INVALID_EMAIL":    ErrCodeValidation,
	"INVALID_NAME":     ErrCodeValidation,
	"INVALID_PASSWORD": ErrCodeValidation,
	"INVALID_IMAGE":    ErrCodeValidation,
	"INVALID_ROLE":     ErrCodeValidation,
	"INVALID_STATUS":   ErrCodeValidation,
	"INVALID_XP":       ErrCodeValidation,
	"INVALID_LEVEL":    ErrCodeValidation,
	"SELF_ROLE_CHANGE": ErrCodeValidation,

	// Authentication
	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"TOKEN_EXPIRED":       ErrCodeUnauthorized,
	"TOKEN_INVALID":       ErrCodeUnauthorized,
	"TOKEN_MAX_REFRESH":   ErrCodeUnauthorized,
	"TOKEN_ERROR":         ErrCodeUnauthorized,
	"TOKEN_REVOKED":       ErrCodeUnauthorized,

	// Authorization
	"ACCOUNT_SUSPENDED": ErrCodeForbidden,
	"FORBIDDEN":         ErrCodeForbidden,

	// Not found
	"NOT_FOUND":      ErrCodeNotFound,
	"USER_NOT_FOUND": ErrCodeNotFound,

	// Conflict
	"EMAIL_EXISTS":   ErrCodeConflict,
	"ALREADY_EXISTS": ErrCodeConflict,

	// Server
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"STORAGE_UNAVAILABLE": ErrCodeUnavailable,
}

// NormalizeErrorCode converts a domain error code to a standardized API
// error code. Codes already in the ERR_ namespace pass through unchanged;
// unknown domain codes map to ERR_INTERNAL so nothing leaks a 200.
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	if normalized, ok := DomainErrorCodeMapping[code]; ok {
		return normalized
	}
	return ErrCodeInternal
}
