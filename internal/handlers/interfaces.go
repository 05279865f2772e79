package handlers

import (
	"context"

	"github.com/circles/backend/internal/models"
	"github.com/circles/backend/internal/users"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// SessionManager issues, refreshes and revokes authentication tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// FriendService captures the friend request operations exposed over HTTP.
type FriendService interface {
	Send(ctx context.Context, fromUser, toUserID string) (models.FriendRequest, error)
	Accept(ctx context.Context, toUser, requestID string) error
	Reject(ctx context.Context, toUser, requestID string) error
	ListFriends(ctx context.Context, toUser string) ([]string, error)
	ListPending(ctx context.Context, toUser string) ([]string, error)
}

// UserSearcher pages through the user directory.
type UserSearcher interface {
	Search(ctx context.Context, keyword string, page int) (users.Page, error)
}

// HealthCheck reports whether a single backing service is reachable.
type HealthCheck func(ctx context.Context) error
