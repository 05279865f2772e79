// Package friends implements the friend request lifecycle: sending under a
// per-sender rate limit, accepting or rejecting by deletion, and listing.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/logging"
	"github.com/circles/backend/internal/metrics"
	"github.com/circles/backend/internal/models"
	"github.com/circles/backend/internal/repositories"
)

// Store is the durable collection of friend requests. Lookups report
// repositories.ErrNotFound for missing records.
type Store interface {
	FindOrCreate(ctx context.Context, fromUser, toUser string, now time.Time) (models.FriendRequest, bool, error)
	FindByID(ctx context.Context, id string) (models.FriendRequest, error)
	FindByRecipientAndID(ctx context.Context, toUser, id string) (models.FriendRequest, error)
	Delete(ctx context.Context, id string) error
	CountRecent(ctx context.Context, fromUser string, since time.Time) (int, error)
	// ListSenderEmails returns the email of each sender with an outstanding
	// request to toUser, oldest request first.
	ListSenderEmails(ctx context.Context, toUser string) ([]string, error)
}

// UserDirectory resolves user identifiers.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Limiter decides whether sender may create another request at now.
type Limiter interface {
	Admit(ctx context.Context, sender string, now time.Time) (bool, error)
}

// Service orchestrates friend request operations.
type Service struct {
	store   Store
	users   UserDirectory
	limiter Limiter

	// Now supplies the clock used for rate windows and creation timestamps.
	Now func() time.Time
}

// NewService wires a Service. All collaborators are required.
func NewService(store Store, users UserDirectory, limiter Limiter) *Service {
	if store == nil || users == nil || limiter == nil {
		panic("friends: store, user directory and limiter must not be nil")
	}
	return &Service{
		store:   store,
		users:   users,
		limiter: limiter,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// Send creates a request from fromUser to toUserID. Sending to a pair that
// already has a pending request succeeds without creating another one, but
// is still subject to the sender's rate limit.
func (s *Service) Send(ctx context.Context, fromUser, toUserID string) (request models.FriendRequest, err error) {
	ctx, span := logging.StartSpan(ctx, "friends.send")
	defer func() { finish(span, "send", err) }()

	if _, err := s.users.FindByID(ctx, toUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.FriendRequest{}, apperr.New(apperr.KindUserNotFound, "user not found")
		}
		return models.FriendRequest{}, apperr.Storage(fmt.Errorf("look up recipient: %w", err))
	}

	now := s.Now()
	admitted, err := s.limiter.Admit(ctx, fromUser, now)
	if err != nil {
		return models.FriendRequest{}, apperr.Storage(fmt.Errorf("check rate limit: %w", err))
	}
	if !admitted {
		return models.FriendRequest{}, apperr.New(apperr.KindRateLimited, "too many friend requests, try again later")
	}

	request, created, err := s.store.FindOrCreate(ctx, fromUser, toUserID, now)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.FriendRequest{}, apperr.New(apperr.KindUserNotFound, "user not found")
		}
		return models.FriendRequest{}, apperr.Storage(fmt.Errorf("store friend request: %w", err))
	}

	logging.FromContext(ctx).Info("friend request sent",
		slog.String("request_id", request.ID),
		slog.String("to_user", toUserID),
		slog.Bool("created", created),
	)
	return request, nil
}

// Accept consumes a request addressed to toUser. No friendship record is kept.
func (s *Service) Accept(ctx context.Context, toUser, requestID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "friends.accept")
	defer func() { finish(span, "accept", err) }()

	return s.consume(ctx, toUser, requestID)
}

// Reject discards a request addressed to toUser.
func (s *Service) Reject(ctx context.Context, toUser, requestID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "friends.reject")
	defer func() { finish(span, "reject", err) }()

	return s.consume(ctx, toUser, requestID)
}

func (s *Service) consume(ctx context.Context, toUser, requestID string) error {
	request, err := s.store.FindByRecipientAndID(ctx, toUser, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.KindRequestNotFound, "friend request not found")
		}
		return apperr.Storage(fmt.Errorf("look up friend request: %w", err))
	}

	if err := s.store.Delete(ctx, request.ID); err != nil {
		return apperr.Storage(fmt.Errorf("delete friend request: %w", err))
	}
	return nil
}

// ListFriends returns the sender emails of every outstanding request to toUser.
func (s *Service) ListFriends(ctx context.Context, toUser string) (senders []string, err error) {
	ctx, span := logging.StartSpan(ctx, "friends.list_friends")
	defer func() { finish(span, "list_friends", err) }()

	return s.listSenders(ctx, toUser)
}

// ListPending returns the same senders as ListFriends; accepted requests are
// deleted so the two views cannot differ.
func (s *Service) ListPending(ctx context.Context, toUser string) (senders []string, err error) {
	ctx, span := logging.StartSpan(ctx, "friends.list_pending")
	defer func() { finish(span, "list_pending", err) }()

	return s.listSenders(ctx, toUser)
}

func (s *Service) listSenders(ctx context.Context, toUser string) ([]string, error) {
	senders, err := s.store.ListSenderEmails(ctx, toUser)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("list friend request senders: %w", err))
	}
	if senders == nil {
		senders = []string{}
	}
	return senders, nil
}

func finish(span *logging.Span, operation string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(apperr.KindOf(err))
		span.Fail(err)
	}
	metrics.RecordOperation(operation, outcome)
	span.End()
}
