package response

import (
	"errors"
	"net/http"

	"github.com/bureauhq/gripp-backend-go/internal/domain/stats"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/gripp"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(w http.ResponseWriter, err error) {
	var validationErr *stats.ValidationError
	if errors.As(err, &validationErr) {
		ValidationError(w, map[string]string{validationErr.Field: validationErr.Message})
		return
	}

	var requestErr *gripp.ValidationError
	if errors.As(err, &requestErr) {
		BadRequest(w, requestErr.Message, nil)
		return
	}

	// Upstream API errors
	var rateErr *gripp.RateLimitedError
	var transientErr *gripp.TransientError
	var apiErr *gripp.APIError
	switch {
	case errors.As(err, &rateErr):
		TooManyRequests(w, "Upstream rate limit reached, try again shortly")
	case errors.Is(err, gripp.ErrAttemptsExhausted), errors.As(err, &transientErr):
		ServiceUnavailable(w, "Upstream temporarily unavailable")
	case errors.As(err, &apiErr):
		BadGateway(w, "Upstream request failed")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
