package api

import (
	"errors"
	"net/http"

	"ticket-selling/internal/models"
)

const (
	kindInvalidRequest = "InvalidRequest"
	kindNotFound       = "NotFound"
	kindRateLimited    = "RateLimitExceeded"
	kindInternal       = "InternalError"
)

var errRateLimited = errors.New("rate limit exceeded")

// classify maps a lifecycle error to its HTTP status and rejection kind.
func classify(err error) (int, string) {
	if models.IsValidationReason(err) {
		return http.StatusBadRequest, models.Reason(err)
	}
	if reason := models.Reason(err); reason != "" {
		return http.StatusConflict, reason
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, kindRateLimited
	}
	return http.StatusInternalServerError, kindInternal
}
