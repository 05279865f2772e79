package handlers

import (
	"net/http"

	"github.com/circles/backend/internal/metrics"
	"github.com/circles/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users        UserStore
	Sessions     SessionManager
	Friends      FriendService
	Directory    UserSearcher
	AuthLimiter  middleware.RateLimiter
	HealthChecks map[string]HealthCheck
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux, each behind
// the guard for its access policy. Callers must wrap the mux with
// middleware.Authenticate for authenticated routes to ever pass.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Checks: deps.HealthChecks}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions}
	friends := FriendHandler{Friends: deps.Friends}
	directory := UserHandler{Directory: deps.Directory}

	anonymous := middleware.Guard(middleware.PolicyAnonymous)
	authenticated := middleware.Guard(middleware.PolicyAuthenticated)
	throttled := middleware.Throttle(deps.AuthLimiter, "auth")

	mux.Handle("/healthz", anonymous(http.HandlerFunc(health.Handle)))
	mux.Handle("/metrics", anonymous(metrics.Handler()))

	mux.Handle("/api/v1/auth/signup", anonymous(throttled(http.HandlerFunc(auth.SignUp))))
	mux.Handle("/api/v1/auth/login", anonymous(throttled(http.HandlerFunc(auth.Login))))
	mux.Handle("/api/v1/auth/refresh", anonymous(throttled(http.HandlerFunc(auth.Refresh))))
	mux.Handle("/api/v1/auth/logout", anonymous(throttled(http.HandlerFunc(auth.Logout))))

	mux.Handle("/api/v1/users/search", anonymous(http.HandlerFunc(directory.Search)))

	mux.Handle("/api/v1/friends", authenticated(http.HandlerFunc(friends.List)))
	mux.Handle("/api/v1/friends/pending", authenticated(http.HandlerFunc(friends.Pending)))
	mux.Handle("/api/v1/friends/requests", authenticated(http.HandlerFunc(friends.Send)))
	mux.Handle("/api/v1/friends/requests/accept", authenticated(http.HandlerFunc(friends.Accept)))
	mux.Handle("/api/v1/friends/requests/reject", authenticated(http.HandlerFunc(friends.Reject)))
}
