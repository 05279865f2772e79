package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindUserNotFound, apperr.KindRequestNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders err with the status and code its kind maps to. The
// underlying cause is logged, never returned.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	writeResponse(ctx, w, statusFor(kind), errorResponse{Error: apperr.MessageOf(err), Code: string(kind)}, err)
}

func respondFailure(ctx context.Context, w http.ResponseWriter, kind apperr.Kind, message string) {
	respondJSON(ctx, w, statusFor(kind), errorResponse{Error: message, Code: string(kind)})
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	writeResponse(ctx, w, status, payload, nil)
}

// writeResponse encodes payload and logs error statuses once, with cause
// attached when there is one.
func writeResponse(ctx context.Context, w http.ResponseWriter, status int, payload any, cause error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	logger := logging.FromContext(ctx)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response body", "status", status, "error", err)
		return
	}

	if status < http.StatusBadRequest {
		return
	}
	attrs := []any{"status", status, "response", payload}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
		return
	}
	logger.Warn("request returned client error", attrs...)
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
