package dto

import "net/http"

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here default to 400.
var ErrorCodeHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"PERIOD_OVERLAP":       http.StatusConflict,
	"HAS_PAYMENTS":         http.StatusConflict,
	"HAS_RECEIPTS":         http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"INVALID_INPUT":        http.StatusBadRequest,
	"VALIDATION_ERROR":     http.StatusBadRequest,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"PERIOD_CLOSED":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_FUNDS":   http.StatusUnprocessableEntity,
	"EXCEEDS_LIMIT":        http.StatusUnprocessableEntity,
	"EXCEEDS_ORDERED":      http.StatusUnprocessableEntity,
	"OVER_ALLOCATED":       http.StatusUnprocessableEntity,
	"NO_FUNDING_ACCOUNT":   http.StatusUnprocessableEntity,
	"INACTIVE_ACCOUNT":     http.StatusUnprocessableEntity,
	"INACTIVE_VENDOR":      http.StatusUnprocessableEntity,
	"INACTIVE_STRUCTURE":   http.StatusUnprocessableEntity,
	"CONSISTENCY":          http.StatusInternalServerError,
	"INTERNAL_ERROR":       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}
