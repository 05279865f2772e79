package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/logging"
)

// writeError emits the same error envelope the handlers use.
func writeError(w http.ResponseWriter, r *http.Request, status int, kind apperr.Kind, message string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		slog.Int("status", status),
		slog.String("code", string(kind)),
		slog.String("reason", message),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": string(kind)})
}
