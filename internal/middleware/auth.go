package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/logging"
)

// TokenVerifier resolves an access token to the user it was issued to.
type TokenVerifier interface {
	Verify(accessToken string) (string, error)
}

// Policy states who may invoke a route.
type Policy int

const (
	// PolicyAnonymous lets every caller through, authenticated or not.
	PolicyAnonymous Policy = iota
	// PolicyAuthenticated requires a valid access token.
	PolicyAuthenticated
)

type principalKey struct{}

type principal struct {
	userID string
	failed bool
}

// WithUserID marks the context as authenticated for userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal{userID: userID})
}

// UserIDFromContext returns the authenticated caller.
func UserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	if !ok || p.userID == "" {
		return "", false
	}
	return p.userID, true
}

// Authenticate resolves a bearer token into the request context. Requests
// without credentials pass through anonymously; rejected credentials are
// remembered so Guard can report them.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey{}, principal{failed: true})))
				return
			}

			userID, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logging.FromContext(ctx).Debug("access token rejected", slog.String("error", err.Error()))
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey{}, principal{failed: true})))
				return
			}

			ctx = WithUserID(ctx, userID)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(slog.String("user_id", userID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Guard enforces policy before the wrapped handler runs.
func Guard(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy == PolicyAuthenticated {
				if _, ok := UserIDFromContext(r.Context()); !ok {
					message := "authentication required"
					if p, _ := r.Context().Value(principalKey{}).(principal); p.failed {
						message = "invalid or expired access token"
					}
					w.Header().Set("WWW-Authenticate", `Bearer realm="circles"`)
					writeError(w, r, http.StatusUnauthorized, apperr.KindAuthentication, message)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
