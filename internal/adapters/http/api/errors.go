package api

import (
	"net/http"

	"github.com/cockroachdb/errors"

	service "github.com/okian/supportxp/internal/app"
	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/weights"
	"github.com/okian/supportxp/internal/domain/xp"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("too many submissions")
)

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.IsAny(err,
		ErrBadRequest,
		service.ErrInvalidSubmission,
		weights.ErrInvalidWeightSum,
		weights.ErrInvalidConfiguration,
		xp.ErrUnknownActivityType,
		xp.ErrUnknownDifficulty,
		model.ErrUnknownDimension,
	):
		return http.StatusBadRequest, "bad_request"
	case errors.IsAny(err, ErrNotFound, service.ErrUserNotFound, weights.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
