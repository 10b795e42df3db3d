package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"authgate/backend/internal/identity/service"
	"authgate/backend/internal/logger"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// writeError maps service errors to HTTP responses. Anything not typed by the
// service layer is logged and reported as an opaque 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
		unauthErr     *service.UnauthorizedError
		rateErr       *service.RateLimitError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: validationErr.Fields,
		})
	case errors.As(err, &unauthErr):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: unauthErr.Message})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflictErr.Message})
	case errors.As(err, &rateErr):
		seconds := int(rateErr.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: "Too many attempts, please try again later",
		})
	default:
		log.Err(err).Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: http.StatusText(http.StatusInternalServerError),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
